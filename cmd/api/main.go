package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/finguard/fraud-screening-backend/internal/api/rest"
	"github.com/finguard/fraud-screening-backend/internal/infrastructure/cache"
	"github.com/finguard/fraud-screening-backend/internal/infrastructure/config"
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

	ctx := context.Background()
	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.Config{
		ServiceName:    "fraud-screening-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		SamplingRate:   1.0,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

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

	metrics := instrumentation.NewWorkflowMetrics()
	tracer := otel.Tracer("fraud-screening-backend/workflow")
	engine := workflow.NewEngine(client, metrics, tracer, logger)
	aggregator := workflow.NewAggregator(cfg.Workflow.DeferredStatusDelay, logger)

	checkers := []rest.HealthChecker{
		scoringChecker(cfg.Scoring.BaseURL),
	}

	var stateCache workflow.StateCache
	if cfg.Redis.Enabled {
		zapLogger, err := zap.NewProduction()
		if err != nil {
			log.Fatalf("Failed to create zap logger: %v", err)
		}
		verdicts, err := cache.NewVerdictCache(&cfg.Redis, zapLogger)
		if err != nil {
			log.Fatalf("Failed to connect verdict cache: %v", err)
		}
		defer verdicts.Close()
		stateCache = verdicts
		checkers = append(checkers, rest.HealthCheckerFunc{
			CheckerName: "redis",
			Fn:          verdicts.Ping,
		})
	}

	svc := workflow.NewService(engine, aggregator, stateCache, logger)
	health := rest.NewHealthService(5*time.Second, checkers...)
	handler := rest.NewHandler(svc, health, logger)

	server := rest.NewServer(cfg, handler, logger, map[string]http.Handler{
		"GET /metrics": instrumentation.MetricsHandler(),
	})

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func scoringChecker(baseURL string) rest.HealthChecker {
	httpClient := &http.Client{Timeout: 5 * time.Second}
	return rest.HealthCheckerFunc{
		CheckerName: "scoring_api",
		Fn: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
			if err != nil {
				return err
			}
			resp, err := httpClient.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()
			return nil
		},
	}
}
