// Package middleware provides HTTP middlewares for client identity,
// request IDs, logging and metrics.
package middleware

import (
	"context"
	"net/http"

	"github.com/atinyakov/hajimigate/internal/clientip"
)

type ctxKey string

const (
	clientIPKey  ctxKey = "client_ip"
	requestIDKey ctxKey = "request_id"
)

// WithClientIP resolves the originating client address once per request and
// stores it in the request context.
func WithClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, clientip.FromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromContext returns the address stored by WithClientIP, or an
// empty string if the middleware did not run.
func ClientIPFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(clientIPKey).(string); ok {
		return s
	}
	return ""
}

// ClientIP returns the resolved client address of r, resolving it directly
// when WithClientIP did not run.
func ClientIP(r *http.Request) string {
	if ip := ClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.FromRequest(r)
}
