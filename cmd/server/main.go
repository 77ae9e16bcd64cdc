// Package main provides the guidance bot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/janseva-labs/janseva-bot-go/internal/backup"
	"github.com/janseva-labs/janseva-bot-go/internal/bot"
	"github.com/janseva-labs/janseva-bot-go/internal/buildinfo"
	"github.com/janseva-labs/janseva-bot-go/internal/cache"
	"github.com/janseva-labs/janseva-bot-go/internal/config"
	"github.com/janseva-labs/janseva-bot-go/internal/conversation"
	"github.com/janseva-labs/janseva-bot-go/internal/discovery"
	"github.com/janseva-labs/janseva-bot-go/internal/genai"
	"github.com/janseva-labs/janseva-bot-go/internal/logger"
	"github.com/janseva-labs/janseva-bot-go/internal/metrics"
	"github.com/janseva-labs/janseva-bot-go/internal/pipeline"
	"github.com/janseva-labs/janseva-bot-go/internal/ratelimit"
	"github.com/janseva-labs/janseva-bot-go/internal/semindex"
	"github.com/janseva-labs/janseva-bot-go/internal/sentry"
	"github.com/janseva-labs/janseva-bot-go/internal/store"
	"github.com/janseva-labs/janseva-bot-go/internal/transport/line"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.WithField("version", buildinfo.Version).Info("Starting Janseva Bot Server")

	// Initialize error tracking (no-op without a DSN)
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Version,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, continuing without error tracking")
	}
	defer sentry.Flush(2 * time.Second)

	// Create Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Restore the profile database from object storage on a fresh deployment
	var backupManager *backup.Manager
	if cfg.BackupEnabled {
		objectStore, err := backup.NewObjectStore(context.Background(), backup.StoreConfig{
			Endpoint:    cfg.BackupEndpoint,
			AccessKeyID: cfg.BackupAccessKeyID,
			SecretKey:   cfg.BackupSecretAccessKey,
			BucketName:  cfg.BackupBucket,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to create object storage client")
		}
		backupManager = backup.NewManager(objectStore, backup.Config{
			Interval: cfg.BackupInterval,
		}, m, log)

		if err := backupManager.Restore(context.Background(), cfg.SQLitePath()); err != nil {
			log.WithError(err).Fatal("Failed to restore database snapshot")
		}
	}

	// Open the profile database
	db, err := store.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database opened")

	// Live-search cache (optional - requires Redis)
	var liveCache pipeline.LiveCache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		liveCache = cache.New(rdb, cfg.LiveCacheTTL)
		log.WithField("addr", cfg.RedisAddr).Info("Live-search cache enabled")
	} else {
		log.Info("Redis not configured, live-search cache disabled")
	}

	// Semantic index (optional - requires Gemini API key for embeddings)
	var searcher pipeline.Searcher
	if cfg.GeminiAPIKey != "" {
		vectorDB, err := semindex.NewVectorDB(cfg.IndexDir(), genai.NewEmbeddingFunc(cfg.GeminiAPIKey), log)
		if err != nil {
			log.WithError(err).Warn("Failed to open vector index, semantic stages disabled")
		} else {
			index := semindex.NewIndex(vectorDB, semindex.NewLexicalIndex(log), log)
			searcher = index
			log.WithField("dir", cfg.IndexDir()).Info("Semantic index ready")
		}
	} else {
		log.Info("Gemini API key not configured, semantic stages disabled")
	}

	// Live discovery
	discoveryService := discovery.New(discovery.Options{
		PlacesBaseURL:    cfg.PlacesBaseURL,
		DirectoryBaseURL: cfg.DirectoryBaseURL,
		Timeout:          cfg.DiscoveryHTTPTimeout,
		MaxRetries:       cfg.DiscoveryMaxRetries,
	}, log)

	// Generic fallback provider race
	completers, err := genai.BuildCompleters(context.Background(), genai.Config{
		Providers:      toProviders(cfg.LLMProviders),
		GeminiAPIKey:   cfg.GeminiAPIKey,
		GroqAPIKey:     cfg.GroqAPIKey,
		CerebrasAPIKey: cfg.CerebrasAPIKey,
		GeminiModel:    cfg.GeminiModel,
		GroqModel:      cfg.GroqModel,
		CerebrasModel:  cfg.CerebrasModel,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to build fallback providers")
	}
	defer genai.CloseAll(completers)

	var fallback pipeline.Fallback
	if len(completers) > 0 {
		fallback = genai.NewRacer(completers, genai.QualityBar{MaxLength: cfg.FallbackMaxAnswer}, m, log)
		log.WithField("providers", len(completers)).Info("Generic fallback enabled")
	} else {
		log.Warn("No fallback providers configured, generic stage disabled")
	}

	// Intent extraction: LLM-backed when Gemini is available, keyword
	// matching otherwise.
	var intents genai.IntentExtractor = genai.KeywordIntentExtractor{}
	if cfg.GeminiAPIKey != "" {
		extractor, err := genai.NewLLMIntentExtractor(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			log.WithError(err).Warn("Failed to create LLM intent extractor, using keyword matching")
		} else {
			intents = extractor
			log.Info("LLM intent extraction enabled")
		}
	}

	// Resolution pipeline
	pipe := pipeline.New(pipeline.Config{
		HighThreshold:    float32(cfg.HighThreshold),
		BroadThreshold:   float32(cfg.BroadThreshold),
		TopK:             cfg.SearchTopK,
		SemanticTimeout:  cfg.SemanticTimeout,
		DiscoveryTimeout: cfg.DiscoveryTimeout,
		FallbackTimeout:  cfg.FallbackTimeout,
	}, searcher, discoveryService, liveCache, fallback, m, log)

	// Conversation state
	sessions := conversation.NewSessionStore(cfg.SessionIdleTTL)
	defer sessions.Stop()
	machine := conversation.NewMachine(db, sessions, log)
	guard := conversation.NewGuard()

	// Per-user rate limiter
	limiter := ratelimit.NewPerKeyLimiter(ratelimit.PerKeyConfig{
		MaxTokens:     cfg.UserRateBurst,
		RefillRate:    cfg.UserRateRefill,
		CleanupPeriod: 10 * time.Minute,
	})
	limiter.OnDrop(func() { m.RecordRateLimitDrop("user") })
	defer limiter.Stop()

	// Bot core
	processor := bot.New(bot.Config{
		Machine:  machine,
		Guard:    guard,
		Limiter:  limiter,
		Intents:  intents,
		Resolver: pipe,
		Metrics:  m,
		Logger:   log,
	})

	// LINE transport
	lineHandler, err := line.NewHandler(cfg.LineChannelSecret, cfg.LineChannelToken, processor, m, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create webhook handler")
	}

	// Gin router
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	setupRoutes(router, cfg, lineHandler, db, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.WebhookTimeout,
		IdleTimeout:  2 * time.Minute,
	}

	// Background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if backupManager != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("Panic in backup goroutine")
				}
			}()
			backupManager.Run(ctx, db)
		}()
		log.WithField("interval", cfg.BackupInterval).Info("Backup loop started")
	}

	// Start server
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new webhooks, then drain in-flight event processing
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := lineHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timeout waiting for event processing to drain")
	}

	// Stop background goroutines
	cancel()
	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()
	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Error("Failed to close Redis client")
		}
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}

// toProviders converts the configured provider names. Unknown names are
// kept; BuildCompleters rejects them with a clear error.
func toProviders(names []string) []genai.Provider {
	providers := make([]genai.Provider, 0, len(names))
	for _, name := range names {
		providers = append(providers, genai.Provider(name))
	}
	return providers
}
