// Package clientip resolves the best-guess originating address of a request
// that may have passed through reverse proxies or CDNs.
//
// The result is advisory and meant for audit records only. It is never
// validated as an IP address and must not be used for authorization.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is returned when no header and no transport peer is available.
// Proxies also emit it as a placeholder, so a header carrying it is ignored.
const Unknown = "unknown"

// Headers consulted after X-Forwarded-For, in order.
var singleValueHeaders = []string{
	"X-Real-IP",
	"CF-Connecting-IP",
	"Remote-Addr",
}

// Resolve returns the originating client address for a request with the given
// headers and transport-level peer address.
//
// Lookup order: the first element of X-Forwarded-For, X-Real-IP,
// CF-Connecting-IP, the Remote-Addr header, then peer. Values are trimmed and
// empty or "unknown" values fall through to the next candidate. When nothing
// matches and peer is empty, Resolve returns "unknown".
func Resolve(headers http.Header, peer string) string {
	if xff := headers.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip, ok := usable(first); ok {
			return ip
		}
	}

	for _, name := range singleValueHeaders {
		if ip, ok := usable(headers.Get(name)); ok {
			return ip
		}
	}

	if ip, ok := usable(peer); ok {
		return ip
	}
	return Unknown
}

// FromRequest resolves the client address of r, using the host part of
// r.RemoteAddr as the transport peer.
func FromRequest(r *http.Request) string {
	return Resolve(r.Header, peerHost(r.RemoteAddr))
}

func usable(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == Unknown {
		return "", false
	}
	return v, true
}

// peerHost strips the port from a transport address. Addresses without a
// port are returned unchanged.
func peerHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
