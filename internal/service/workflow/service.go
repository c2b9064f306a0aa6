package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/finguard/fraud-screening-backend/internal/domain/transaction"
)

// service implements the Service interface
type service struct {
	engine     *Engine
	aggregator *Aggregator
	cache      StateCache
	logger     *slog.Logger
}

// NewService creates the screening workflow service. cache may be nil to
// disable verdict reuse.
func NewService(engine *Engine, aggregator *Aggregator, cache StateCache, logger *slog.Logger) Service {
	return &service{
		engine:     engine,
		aggregator: aggregator,
		cache:      cache,
		logger:     logger,
	}
}

// Screen validates the inputs, runs the pipeline, and renders the
// aggregate response. Validation failures surface before any stage runs.
func (s *service) Screen(ctx context.Context, tx transaction.Features, behavioral transaction.BehavioralFeatures) (*Response, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if err := behavioral.Validate(); err != nil {
		return nil, err
	}

	inputs := newRunInputs(tx, behavioral)
	key := fingerprint(tx, behavioral)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
			s.logger.Info("verdict cache hit", "run_id", cached.RunID.String(), "status", string(cached.Status))
			return s.aggregator.Assemble(cached), nil
		}
	}

	state := s.engine.Run(ctx, inputs)

	if s.cache != nil && state.Err == "" {
		if err := s.cache.Set(ctx, key, state); err != nil {
			s.logger.Warn("verdict cache store failed", "error", err)
		}
	}

	return s.aggregator.Assemble(state), nil
}

// fingerprint derives a stable cache key from the run inputs.
func fingerprint(tx transaction.Features, behavioral transaction.BehavioralFeatures) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	enc.Encode(tx)
	enc.Encode(behavioral)
	return "screening:verdict:" + hex.EncodeToString(h.Sum(nil))
}
