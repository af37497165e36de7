// Package main initializes and starts the hajimi auth gateway, setting up
// configuration, logging, audit sinks, the gateway service, handlers and
// the HTTP(S) server.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/hajimigate/internal/audit"
	"github.com/atinyakov/hajimigate/internal/config"
	"github.com/atinyakov/hajimigate/internal/db"
	"github.com/atinyakov/hajimigate/internal/logger"
	"github.com/atinyakov/hajimigate/internal/repository"
	"github.com/atinyakov/hajimigate/internal/server/handler/http"
	"github.com/atinyakov/hajimigate/internal/service"
	"github.com/atinyakov/hajimigate/internal/telemetry"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	retentionInterval = time.Hour
	redisStreamMaxLen = 100_000
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if options.Password == "" {
		zapLogger.Warn("no PASSWORD configured, every login will be rejected")
	}

	// Audit sinks: the application log always, the rest when configured.
	sinks := []audit.Sink{audit.NewZapSink(zapLogger)}

	if options.AuditLogPath != "" {
		fileSink := audit.NewFileSink(audit.FileConfig{Path: options.AuditLogPath})
		defer func() { _ = fileSink.Close() }()
		sinks = append(sinks, fileSink)
		zapLogger.Info("audit file enabled", zap.String("path", options.AuditLogPath))
	}

	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer func() { _ = postgresDB.Close() }()

		db.StartAuditRetentionCleaner(ctx, postgresDB,
			retentionInterval,
			options.AuditRetention,
			zapLogger,
		)
		sinks = append(sinks, audit.NewRepositorySink(repository.NewPostgresAuditRepository(postgresDB)))
		zapLogger.Info("postgres audit sink enabled")
	}

	if options.RedisURL != "" {
		rdb, err := db.InitRedis(ctx, options.RedisURL)
		if err != nil {
			zapLogger.Fatal("cannot init redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		sinks = append(sinks, audit.NewRedisSink(rdb, options.RedisStream, redisStreamMaxLen))
		zapLogger.Info("redis audit sink enabled", zap.String("stream", options.RedisStream))
	}

	auditSink := audit.NewAsyncSink(audit.NewFanout(sinks...), zapLogger)
	auditSink.Start(context.Background())
	defer auditSink.Close()

	// Gateway service and HTTP layer.
	authService := service.NewAuthService(options.Secrets(), auditSink, zapLogger)
	authHandler := &http.AuthHandler{AuthService: authService, Logger: zapLogger}
	router := http.NewRouter(authHandler, zapLogger, http.RouterOptions{
		CORSOrigins: options.CORSOrigins,
		Metrics:     telemetry.NewMetricsRegistry(),
	})

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Address),
			zap.Bool("tls", options.TLSEnabled()),
		)
		if options.TLSEnabled() {
			errCh <- server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
