package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/config"
	dbRedis "github.com/spotive-cloud/discovery/internal/db/redis"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	logpkg "github.com/spotive-cloud/discovery/internal/logger"
	"github.com/spotive-cloud/discovery/internal/metrics"
	catalogrepo "github.com/spotive-cloud/discovery/internal/repository/catalog"
	preferencerepo "github.com/spotive-cloud/discovery/internal/repository/preference"
	publisherrepo "github.com/spotive-cloud/discovery/internal/repository/publisher"
	venuerepo "github.com/spotive-cloud/discovery/internal/repository/venue"
	chiTransport "github.com/spotive-cloud/discovery/internal/transport/chi"
	openaiChat "github.com/spotive-cloud/discovery/internal/transport/openai"
	discoveruc "github.com/spotive-cloud/discovery/internal/usecase/discover"
	healthuc "github.com/spotive-cloud/discovery/internal/usecase/health"
	mapperuc "github.com/spotive-cloud/discovery/internal/usecase/mapper"
	preferenceuc "github.com/spotive-cloud/discovery/internal/usecase/preference"
	rankinguc "github.com/spotive-cloud/discovery/internal/usecase/ranking"
	"github.com/spotive-cloud/discovery/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting discovery API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("llm_disabled", cfg.LLM.Disabled),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register discovery metrics explicitly (no init())
	metrics.RegisterDiscoveryMetrics()

	vocab := category.Default()

	// Chat provider: classifier and describer share the provider config.
	// Pass nil interfaces (not typed nil pointers!) when the LLM is disabled.
	// Go gotcha: (*openaiChat.Classifier)(nil) wrapped in an interface != nil.
	var classifier mapperuc.Classifier
	var classifierHealth healthuc.ClassifierChecker
	var describer discoveruc.Describer
	if !cfg.LLM.Disabled {
		cls := openaiChat.NewClassifier(&openaiChat.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.ClassifierModel,
			Logger:  logger,
		}, vocab)
		classifier = cls
		classifierHealth = cls
		describer = openaiChat.NewDescriber(&openaiChat.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.DescriberModel,
			Temperature: cfg.LLM.DescriberTemperature,
			Logger:      logger,
		})
		logger.Info("Chat provider configured",
			zap.String("classifier_model", cfg.LLM.ClassifierModel),
			zap.String("describer_model", cfg.LLM.DescriberModel),
		)
	} else {
		logger.Info("LLM disabled, using keyword matching and fallback descriptions")
	}

	// Create repositories (domain-native, no adapters)
	prefix := cfg.Storage.KeyPrefix
	catalogRepo := catalogrepo.New(store, prefix)
	venueRepo := venuerepo.New(store, prefix)
	prefRepo := preferencerepo.New(store, prefix, cfg.Discovery.SearchLogCap)
	publisherRepo := publisherrepo.New(store, prefix,
		time.Duration(cfg.Discovery.EnvelopeTTLHours)*time.Hour)

	// Create use case services
	mapperSvc := mapperuc.New(classifier, vocab,
		time.Duration(cfg.LLM.ClassifyTimeoutMs)*time.Millisecond, logger)
	rankingSvc := rankinguc.New(catalogRepo, venueRepo, vocab,
		cfg.Discovery.ResultLimit, cfg.Discovery.CatalogRetries, logger)
	prefSvc := preferenceuc.New(prefRepo, vocab, nil, logger)
	discoverSvc := discoveruc.New(mapperSvc, rankingSvc, prefSvc, publisherRepo, describer, logger)

	// Health service
	healthSvc := healthuc.New(store, classifierHealth)

	// Create chi server
	server := chiTransport.NewServer(discoverSvc, prefSvc, publisherRepo, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
