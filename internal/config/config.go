// Package config provides functionality for managing configuration options
// for the gateway using command-line flags, an optional JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Options holds the configuration values for the application.
// Precedence, lowest first: flag defaults, config file, flags given on the
// command line, environment variables.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address" env:"SERVER_ADDRESS"`

	// Password is the shared secret every login is checked against.
	Password string `json:"password" env:"PASSWORD"`

	// WebPassword is an optional web-specific password. It is reported by
	// the status endpoint but never checked against submitted credentials.
	WebPassword string `json:"web_password" env:"WEB_PASSWORD"`

	// LogLevel is the zap level for the application log.
	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// AuditLogPath enables a rotating JSON-lines audit file when non-empty.
	AuditLogPath string `json:"audit_log_path" env:"AUDIT_LOG_PATH"`

	// DatabaseDSN enables the Postgres audit sink when non-empty.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// AuditRetention is how long audit rows are kept in Postgres.
	AuditRetention time.Duration `json:"audit_retention" env:"AUDIT_RETENTION"`

	// RedisURL enables forwarding audit events to a Redis stream when non-empty.
	RedisURL string `json:"redis_url" env:"REDIS_URL"`

	// RedisStream is the stream key audit events are appended to.
	RedisStream string `json:"redis_stream" env:"REDIS_AUDIT_STREAM"`

	// CORSOrigins lists the origins allowed to call the API from a browser.
	CORSOrigins []string `json:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// TLSCertFile and TLSKeyFile switch the server to HTTPS when both are set.
	TLSCertFile string `json:"tls_cert_file" env:"TLS_CERT_FILE"`
	TLSKeyFile  string `json:"tls_key_file" env:"TLS_KEY_FILE"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`
}

// Secrets is the immutable credential set loaded at startup.
type Secrets struct {
	Password    string
	WebPassword string
}

// Secrets implements the gateway's secret provider. It never fails.
func (s Secrets) Secrets() (Secrets, error) {
	return s, nil
}

// Secrets returns the credential set of the options.
func (o *Options) Secrets() Secrets {
	return Secrets{Password: o.Password, WebPassword: o.WebPassword}
}

// TLSEnabled reports whether both TLS files are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCertFile != "" && o.TLSKeyFile != ""
}

func defaults() *Options {
	return &Options{
		Address:        "localhost:8080",
		LogLevel:       "info",
		AuditRetention: 30 * 24 * time.Hour,
		RedisStream:    "hajimi:audit",
		CORSOrigins:    []string{"*"},
		Config:         "config.json",
	}
}

// Parse parses the process command-line flags and environment variables.
// It exits the process on invalid configuration.
func Parse() *Options {
	opts, err := Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// Load registers the gateway flags on fs, parses args and applies the config
// file and environment overrides.
func Load(fs *flag.FlagSet, args []string) (*Options, error) {
	opts := defaults()

	fs.StringVar(&opts.Address, "a", opts.Address, "run on ip:port server")
	fs.StringVar(&opts.Password, "p", opts.Password, "shared login password")
	fs.StringVar(&opts.WebPassword, "w", opts.WebPassword, "web password (status reporting only)")
	fs.StringVar(&opts.LogLevel, "l", opts.LogLevel, "log level")
	fs.StringVar(&opts.AuditLogPath, "audit-log", opts.AuditLogPath, "path to rotating audit log file")
	fs.StringVar(&opts.DatabaseDSN, "d", opts.DatabaseDSN, "db address for the audit trail")
	fs.DurationVar(&opts.AuditRetention, "audit-retention", opts.AuditRetention, "how long audit rows are kept")
	fs.StringVar(&opts.RedisURL, "r", opts.RedisURL, "redis url for audit forwarding")
	fs.StringVar(&opts.Config, "config", opts.Config, "path to config file")
	fs.StringVar(&opts.Config, "c", opts.Config, "path to config file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}

	if opts.Config != "" {
		if err := loadFile(opts.Config, opts, fs); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return opts, nil
}

// loadFile merges the JSON config file at path into opts. A missing file is
// not an error. Flags set explicitly on the command line keep their values.
func loadFile(path string, opts *Options, fs *flag.FlagSet) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fromFile := *opts
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	keep := func(name string, dst *string, src string) {
		if !explicit[name] {
			*dst = src
		}
	}
	keep("a", &opts.Address, fromFile.Address)
	keep("p", &opts.Password, fromFile.Password)
	keep("w", &opts.WebPassword, fromFile.WebPassword)
	keep("l", &opts.LogLevel, fromFile.LogLevel)
	keep("audit-log", &opts.AuditLogPath, fromFile.AuditLogPath)
	keep("d", &opts.DatabaseDSN, fromFile.DatabaseDSN)
	keep("r", &opts.RedisURL, fromFile.RedisURL)
	if !explicit["audit-retention"] {
		opts.AuditRetention = fromFile.AuditRetention
	}
	opts.RedisStream = fromFile.RedisStream
	opts.CORSOrigins = fromFile.CORSOrigins
	opts.TLSCertFile = fromFile.TLSCertFile
	opts.TLSKeyFile = fromFile.TLSKeyFile
	return nil
}
