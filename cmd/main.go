package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Drivers
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	// Instrumentation
	"github.com/exaring/otelpgx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	// Interne
	"github.com/jupiterclapton/murmur/config"
	"github.com/jupiterclapton/murmur/internal/adapters/primary/events"
	http_adapter "github.com/jupiterclapton/murmur/internal/adapters/primary/http"
	"github.com/jupiterclapton/murmur/internal/adapters/secondary/cache"
	"github.com/jupiterclapton/murmur/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/murmur/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/murmur/internal/adapters/secondary/security"
	"github.com/jupiterclapton/murmur/internal/core/services"
)

func main() {
	// 1. Config & Logger
	cfg := config.Load()
	initLogger(cfg)
	slog.Info("🚀 Starting Murmur", "env", cfg.Env, "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing)
	tp, err := initTracer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure: Base de données (Postgres)
	dbConfig, err := pgxpool.ParseConfig(cfg.DBUrl)
	if err != nil {
		slog.Error("Unable to parse DB config", "error", err)
		os.Exit(1)
	}
	dbConfig.ConnConfig.Tracer = otelpgx.NewTracer()

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := repository.EnsureSchema(ctx, dbPool); err != nil {
		slog.Error("Unable to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Connected to Postgres")

	// 4. Infrastructure: Redis (vues de feed)
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		slog.Error("Unable to instrument Redis", "error", err)
		os.Exit(1)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("✅ Connected to Redis")

	// 5. Infrastructure: Event Broker (NATS)
	nc, err := nats.Connect(cfg.NatsUrl)
	if err != nil {
		slog.Error("Unable to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()
	slog.Info("✅ Connected to NATS")

	// 6. Adapters secondaires (Driven)
	userRepo := repository.NewUserRepo(dbPool)
	postRepo := repository.NewPostRepo(dbPool)
	graphRepo := repository.NewGraphRepo(dbPool)
	feedCache := cache.NewRedisFeedCache(rdb)

	publisher, err := eventbroker.NewNatsPublisher(nc)
	if err != nil {
		slog.Error("Unable to init event publisher", "error", err)
		os.Exit(1)
	}

	sessionPEM, err := os.ReadFile(cfg.SessionPublicKey)
	if err != nil {
		slog.Error("Unable to read session public key", "path", cfg.SessionPublicKey, "error", err)
		os.Exit(1)
	}
	tokens, err := security.NewTokenVerifier(sessionPEM)
	if err != nil {
		slog.Error("Unable to init token verifier", "error", err)
		os.Exit(1)
	}
	webhooks, err := security.NewWebhookVerifier(cfg.WebhookSecret)
	if err != nil {
		slog.Error("Unable to init webhook verifier", "error", err)
		os.Exit(1)
	}

	// 7. Core (Domain Logic)
	directoryService := services.NewDirectoryService(userRepo, publisher)
	postService := services.NewPostService(postRepo, publisher)
	graphService := services.NewGraphService(userRepo, graphRepo, feedCache)
	feedService := services.NewFeedService(postRepo, graphRepo, userRepo, feedCache)

	// 8. Adapters primaires (Driving)
	// Consumer NATS : invalidation des vues sur post.created / post.liked
	handler := events.NewEventHandler(feedService)
	if err := handler.Subscribe(nc); err != nil {
		slog.Error("Failed to subscribe to NATS", "error", err)
		os.Exit(1)
	}
	slog.Info("👂 Listening for events (NATS)")

	// Serveur HTTP : webhook provider + mutations + feeds
	serverAdapter := http_adapter.NewServer(
		directoryService, postService, graphService, feedService,
		tokens, webhooks, cfg.CorsOrigins,
	)

	srvHTTP := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: serverAdapter.Handler(),
	}

	go func() {
		slog.Info("📡 Murmur listening", "port", cfg.Port)
		if err := srvHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("👋 Server exited")
}

// --- Helpers ---

func initLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Env == "local" {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Env == "local" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func initTracer(ctx context.Context, cfg config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, _ := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("murmur"),
			semconv.DeploymentEnvironmentKey.String(cfg.Env),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
