// Package main writes a self-signed server certificate and key for serving
// the gateway over HTTPS in development (TLS_CERT_FILE / TLS_KEY_FILE).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/hajimigate/internal/certgen"
)

func main() {
	dir := flag.String("out", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs")
	validFor := flag.Duration("valid", 365*24*time.Hour, "certificate validity")
	flag.Parse()

	certPath, keyPath, err := run(*dir, strings.Split(*hosts, ","), *validFor)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("TLS_CERT_FILE=%s\nTLS_KEY_FILE=%s\n", certPath, keyPath)
}

func run(dir string, hosts []string, validFor time.Duration) (string, string, error) {
	var clean []string
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			clean = append(clean, h)
		}
	}

	certPEM, keyPEM, err := certgen.GenerateServerCertificate(clean, validFor)
	if err != nil {
		return "", "", fmt.Errorf("generate certificate: %w", err)
	}
	return certgen.WriteFiles(dir, certPEM, keyPEM)
}
