package workflow

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
	"github.com/finguard/fraud-screening-backend/internal/infrastructure/telemetry"
)

// Engine drives the four-stage scoring pipeline as a typed state machine.
// Entry point is anomaly detection; every run ends in exactly one terminal
// status and never revisits a stage. The engine itself holds no per-run
// state and may serve many concurrent runs.
type Engine struct {
	client  Invoker
	metrics MetricsCollector
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewEngine creates a workflow engine. metrics may be nil.
func NewEngine(client Invoker, metrics MetricsCollector, tracer trace.Tracer, logger *slog.Logger) *Engine {
	return &Engine{
		client:  client,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
	}
}

// Run executes the pipeline for one transaction and returns the terminal
// run state. The returned state is exclusively owned by the caller.
func (e *Engine) Run(ctx context.Context, inputs runInputs) *screening.State {
	state := screening.NewState()
	logger := telemetry.WithContext(ctx, e.logger).With("run_id", state.RunID.String())

	stage := screening.StageAnomalyDetection
	for {
		result, err := e.executeStage(ctx, logger, stage, inputs)
		if err != nil {
			state.Fail(stage, err)
			logger.Error("workflow halted", "step", string(stage), "error", err)
			if e.metrics != nil {
				e.metrics.RecordVerdict(state.Status)
			}
			return state
		}

		state.Record(stage, result)
		logger.Info("stage completed",
			"stage", string(stage),
			"prediction", result.Prediction,
			"fraud_probability", result.FraudProbability)

		decision := Decide(stage, result)
		if decision.Terminal {
			state.Conclude(decision.Status, decision.Reason)
			logger.Info("workflow concluded",
				"status", string(state.Status),
				"reason", state.Reason)
			if e.metrics != nil {
				e.metrics.RecordVerdict(state.Status)
			}
			return state
		}

		stage = decision.Next
	}
}

func (e *Engine) executeStage(ctx context.Context, logger *slog.Logger, stage screening.Stage, inputs runInputs) (*screening.ScoringResult, error) {
	ctx, span := e.tracer.Start(ctx, "workflow."+string(stage),
		trace.WithAttributes(attribute.String("screening.stage", string(stage))))
	defer span.End()

	logger.Info("starting stage", "stage", string(stage))
	start := time.Now()

	result, err := e.client.Invoke(ctx, stage, inputs.payloadFor(stage))

	if e.metrics != nil {
		e.metrics.RecordStage(stage, time.Since(start), err == nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("screening.prediction", result.Prediction),
		attribute.Float64("screening.fraud_probability", result.FraudProbability),
	)
	return result, nil
}
