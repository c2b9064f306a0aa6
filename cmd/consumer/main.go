package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/finguard/fraud-screening-backend/internal/infrastructure/cache"
	"github.com/finguard/fraud-screening-backend/internal/infrastructure/config"
	"github.com/finguard/fraud-screening-backend/internal/infrastructure/events"
	"github.com/finguard/fraud-screening-backend/internal/infrastructure/instrumentation"
	"github.com/finguard/fraud-screening-backend/internal/infrastructure/scoring"
	"github.com/finguard/fraud-screening-backend/internal/infrastructure/telemetry"
	"github.com/finguard/fraud-screening-backend/internal/service/workflow"
)

func main() {
	var configPath = flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create zap logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.Config{
		ServiceName:    "fraud-screening-consumer",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		SamplingRate:   1.0,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	registry := scoring.NewRegistry()
	policy := scoring.RetryPolicy{
		MaxAttempts:    cfg.Scoring.MaxAttempts,
		Multiplier:     time.Second,
		BackoffMin:     cfg.Scoring.BackoffMin,
		BackoffMax:     cfg.Scoring.BackoffMax,
		AttemptTimeout: cfg.Scoring.AttemptTimeout,
	}
	client := scoring.NewClient(cfg.Scoring.BaseURL, registry, policy, logger,
		scoring.WithRateLimit(cfg.Scoring.RateLimit.RequestsPerSecond, cfg.Scoring.RateLimit.BurstSize))

	engine := workflow.NewEngine(client, instrumentation.NewWorkflowMetrics(),
		otel.Tracer("fraud-screening-backend/workflow"), logger)
	aggregator := workflow.NewAggregator(cfg.Workflow.DeferredStatusDelay, logger)

	var stateCache workflow.StateCache
	if cfg.Redis.Enabled {
		verdicts, err := cache.NewVerdictCache(&cfg.Redis, zapLogger)
		if err != nil {
			log.Fatalf("Failed to connect verdict cache: %v", err)
		}
		defer verdicts.Close()
		stateCache = verdicts
	}

	svc := workflow.NewService(engine, aggregator, stateCache, logger)

	// The broker client is supplied by the deployment; the queue reader
	// stands in until one is wired.
	reader := events.NewQueueReader(256)

	consumer := events.NewConsumer(reader, svc, events.ConsumerConfig{
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}, zapLogger)
	defer consumer.Close()

	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("Consumer error: %v", err)
	}
}
