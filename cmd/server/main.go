package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baliciaga/passwordless/cache"
	redisstore "github.com/baliciaga/passwordless/cache/redis"
	"github.com/baliciaga/passwordless/config"
	"github.com/baliciaga/passwordless/domain"
	"github.com/baliciaga/passwordless/internal/mailer"
	"github.com/baliciaga/passwordless/internal/metrics"
	"github.com/baliciaga/passwordless/internal/server"
	"github.com/baliciaga/passwordless/log"
	"github.com/baliciaga/passwordless/mongodb"
	"github.com/baliciaga/passwordless/services"
	"github.com/baliciaga/passwordless/tracing"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	appLogger := log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	appLogger.Info(ctx, "Starting passwordless auth service", map[string]interface{}{
		"http_port":   cfg.HTTPPort,
		"environment": cfg.Environment,
		"storage":     cfg.StorageBackend,
		"log_level":   logLevel.String(),
	})
	if cfg.TestBypassEnabled() {
		appLogger.Warn(ctx, "Test-domain bypass is ACTIVE", map[string]interface{}{
			"suffix": cfg.TestEmailSuffix,
		})
	}

	tracerProvider, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize TracerProvider", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	// The user registry always lives in Mongo; only the one-time-code store
	// backend is selectable.
	mongoClient, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to connect to MongoDB", err)
	}

	userRepo, err := mongodb.NewUserRepositoryMongo(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize user repository", err)
	}

	var codeRepo domain.OneTimeCodeRepository
	switch cfg.StorageBackend {
	case "mongo":
		codeRepo, err = mongodb.NewCodeRepositoryMongo(ctx, db)
		if err != nil {
			appLogger.Fatal(ctx, "Failed to initialize code repository", err)
		}
	case "redis":
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLogger.Fatal(ctx, "Failed to ping Redis", err)
		}
		codeRepo = redisstore.NewCodeStore(redisClient, "passwordless")
	case "memory":
		appLogger.Warn(ctx, "Using in-memory code store, codes will not survive restarts")
		codeRepo = cache.NewMemoryCodeStore()
	default:
		appLogger.Fatal(ctx, "Unknown STORAGE_BACKEND", errors.New(cfg.StorageBackend))
	}

	var codeMailer mailer.Mailer
	if cfg.SMTPHost != "" {
		codeMailer = mailer.NewSMTPClient(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SenderAddress,
		})
	} else {
		appLogger.Warn(ctx, "No SMTP relay configured, login codes will not be delivered")
		codeMailer = mailer.Noop{}
	}

	creatorOpts := services.CreatorOptions{
		CodeLength:     cfg.CodeLength,
		CodeTTL:        cfg.CodeTTL(),
		TestBypassCode: cfg.TestBypassCode,
	}
	if cfg.TestBypassEnabled() {
		creatorOpts.TestEmailSuffix = cfg.TestEmailSuffix
	}

	hooks := server.NewHooksAPI(
		services.NewChallengeDefiner(appLogger),
		services.NewChallengeCreator(codeRepo, codeMailer, appLogger, creatorOpts),
		services.NewChallengeVerifier(appLogger),
		services.NewRegistrationService(userRepo, appLogger),
	)

	httpServer := server.NewHTTPServer(cfg, appLogger, hooks, registry)

	go func() {
		appLogger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(ctx, "HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info(ctx, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown error", err)
	}
	if closer, ok := codeRepo.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	mongodb.Disconnect(shutdownCtx, mongoClient)
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "TracerProvider shutdown error", err)
	}
	appLogger.Info(ctx, "Shutdown complete.")
}
