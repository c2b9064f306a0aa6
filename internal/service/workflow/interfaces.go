package workflow

import (
	"context"
	"time"

	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
	"github.com/finguard/fraud-screening-backend/internal/domain/transaction"
)

// Service is the screening workflow entry point.
type Service interface {
	// Screen runs one transaction through the scoring pipeline and
	// returns the aggregate response.
	Screen(ctx context.Context, tx transaction.Features, behavioral transaction.BehavioralFeatures) (*Response, error)
}

// Invoker calls one external scoring service for a stage. Implementations
// must be safe for concurrent reuse across independent runs.
type Invoker interface {
	Invoke(ctx context.Context, stage screening.Stage, payload interface{}) (*screening.ScoringResult, error)
}

// MetricsCollector records workflow metrics.
type MetricsCollector interface {
	RecordStage(stage screening.Stage, duration time.Duration, success bool)
	RecordVerdict(status screening.Status)
}

// StateCache stores terminal run states keyed by transaction fingerprint
// so identical transactions are not re-scored within the TTL.
type StateCache interface {
	Get(ctx context.Context, key string) (*screening.State, error)
	Set(ctx context.Context, key string, state *screening.State) error
}
