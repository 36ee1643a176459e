package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medflow/mrz-scanner/internal/docprocessing/events"
	"github.com/medflow/mrz-scanner/internal/docprocessing/handler"
	"github.com/medflow/mrz-scanner/internal/docprocessing/metrics"
	"github.com/medflow/mrz-scanner/internal/docprocessing/processor"
	"github.com/medflow/mrz-scanner/internal/docprocessing/repository"
	"github.com/medflow/mrz-scanner/internal/docprocessing/service"
	"github.com/medflow/mrz-scanner/internal/docprocessing/storage"
	"github.com/medflow/mrz-scanner/pkg/config"
	"github.com/medflow/mrz-scanner/pkg/database"
	"github.com/medflow/mrz-scanner/pkg/httputil"
	"github.com/medflow/mrz-scanner/pkg/logger"
	"github.com/medflow/mrz-scanner/pkg/messaging"
)

const serviceName = "scanner-service"

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Scanner Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, repository.Schema...)
	cancelMigrate()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to migrate audit schema")
	}

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewRabbitMQScanEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	auditRepo, err := repository.NewAuditRepository(db, cfg.Scanner.FingerprintKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create audit repository")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	scanMetrics := metrics.New(reg)

	// Scan sessions live in memory only
	store := storage.NewTempStorage(cfg.Scanner.SessionTTL)

	proc := processor.NewMRZProcessor(processor.NewGate(cfg.Scanner), log)
	scanService := service.NewService(cfg.Scanner, proc, store, auditRepo, publisher, scanMetrics, log)
	scanHandler := handler.NewHandler(scanService, log)

	verifier := httputil.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Create router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  serviceName,
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
			"sessions": store.Len(),
		})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// Protected API endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.Auth(verifier, log))
		scanHandler.RegisterRoutes(r)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Stop evicting sessions and let pending audit writes finish before the
	// database goes away
	store.Close()
	scanService.Wait()

	log.Info().Msg("server stopped")
}
