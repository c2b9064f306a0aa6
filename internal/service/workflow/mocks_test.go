package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
)

// scriptedInvoker returns canned results per stage and records call order.
type scriptedInvoker struct {
	mu       sync.Mutex
	results  map[screening.Stage]*screening.ScoringResult
	failures map[screening.Stage]error
	calls    []screening.Stage
	payloads map[screening.Stage]interface{}
}

func newScriptedInvoker() *scriptedInvoker {
	return &scriptedInvoker{
		results:  make(map[screening.Stage]*screening.ScoringResult),
		failures: make(map[screening.Stage]error),
		payloads: make(map[screening.Stage]interface{}),
	}
}

func (s *scriptedInvoker) score(stage screening.Stage, prediction string, probability float64, details map[string]interface{}) {
	s.results[stage] = &screening.ScoringResult{
		Prediction:       prediction,
		FraudProbability: probability,
		ModelName:        "test-model",
		Details:          details,
	}
}

func (s *scriptedInvoker) fail(stage screening.Stage, err error) {
	s.failures[stage] = err
}

func (s *scriptedInvoker) Invoke(ctx context.Context, stage screening.Stage, payload interface{}) (*screening.ScoringResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stage)
	s.payloads[stage] = payload

	if err, ok := s.failures[stage]; ok {
		return nil, err
	}
	if result, ok := s.results[stage]; ok {
		return result, nil
	}
	return nil, fmt.Errorf("unexpected stage %s", stage)
}

func (s *scriptedInvoker) callOrder() []screening.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]screening.Stage(nil), s.calls...)
}

// recordingMetrics captures collector calls.
type recordingMetrics struct {
	mu       sync.Mutex
	stages   []screening.Stage
	verdicts []screening.Status
}

func (m *recordingMetrics) RecordStage(stage screening.Stage, _ time.Duration, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

func (m *recordingMetrics) RecordVerdict(status screening.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, status)
}

// fakeStateCache is an in-memory StateCache.
type fakeStateCache struct {
	mu     sync.Mutex
	states map[string]*screening.State
	sets   int
}

func newFakeStateCache() *fakeStateCache {
	return &fakeStateCache{states: make(map[string]*screening.State)}
}

func (c *fakeStateCache) Get(ctx context.Context, key string) (*screening.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[key]
	if !ok {
		return nil, fmt.Errorf("miss")
	}
	return state, nil
}

func (c *fakeStateCache) Set(ctx context.Context, key string, state *screening.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[key] = state
	c.sets++
	return nil
}
