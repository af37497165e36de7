package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atinyakov/hajimigate/internal/middleware"
)

// RouterOptions holds the ambient settings of the router.
type RouterOptions struct {
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string
	// Metrics is served on /metrics when non-nil.
	Metrics *prometheus.Registry
}

// NewRouter constructs and returns an HTTP handler that serves the gateway
// API.
//
// Routes:
//
//	POST /api/auth/login   → authHandler.Login
//	POST /api/auth/logout  → authHandler.Logout
//	GET  /api/auth/status  → authHandler.Status
//	GET  /healthz          → liveness
//	GET  /metrics          → Prometheus (when opts.Metrics is set)
//
// Middleware chain (applied in order):
//  1. RequestID: propagates or generates X-Request-ID
//  2. WithClientIP: resolves the originating client address
//  3. WithRequestLogging: logs every request
//  4. Metrics: records request duration
//  5. Recoverer: turns handler panics into 500s
//  6. CORS: for the browser UI
//
// The /api group additionally rejects non-JSON request bodies.
func NewRouter(authHandler *AuthHandler, logger *zap.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.WithClientIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.Metrics)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		// Only allow requests with Content-Type: application/json
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/status", authHandler.Status)
	})

	return r
}
