package workflow

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
)

// Response is the caller-facing aggregate of a screening run. Stage
// results that never executed are null, never fabricated.
type Response struct {
	mu sync.Mutex

	AnomalyDetection      *screening.ScoringResult `json:"anomaly_detection"`
	TransactionMonitoring *screening.ScoringResult `json:"transaction_monitoring"`
	BehavioralAnalysis    *screening.ScoringResult `json:"behavioral_analysis"`
	RiskScoring           *screening.ScoringResult `json:"risk_scoring"`

	Status   screening.Status `json:"status"`
	Reason   string           `json:"reason"`
	Error    string           `json:"error,omitempty"`
	Step     screening.Stage  `json:"step"`
	Messages []string         `json:"messages"`
}

// CurrentStatus reads the status, synchronized against the deferred
// background update.
func (r *Response) CurrentStatus() screening.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Status
}

func (r *Response) markProcessed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status == screening.StatusPending {
		r.Status = screening.StatusProcessed
	}
}

// MarshalJSON serializes a synchronized snapshot of the response.
func (r *Response) MarshalJSON() ([]byte, error) {
	type alias Response
	r.mu.Lock()
	snapshot := alias{
		AnomalyDetection:      r.AnomalyDetection,
		TransactionMonitoring: r.TransactionMonitoring,
		BehavioralAnalysis:    r.BehavioralAnalysis,
		RiskScoring:           r.RiskScoring,
		Status:                r.Status,
		Reason:                r.Reason,
		Error:                 r.Error,
		Step:                  r.Step,
		Messages:              r.Messages,
	}
	r.mu.Unlock()
	return json.Marshal(&snapshot)
}

// Aggregator renders terminal run states into caller-facing responses.
//
// Known quirk, preserved deliberately: successful runs are handed back
// with status "pending", and a detached goroutine flips the same response
// object to "processed" after a fixed delay. A synchronous caller has
// usually serialized the response before the flip happens, so the update
// is observably inert to it. Kept for wire compatibility with the
// original deployment; a real fix would be a one-shot notification or a
// polling endpoint.
type Aggregator struct {
	delay  time.Duration
	logger *slog.Logger
}

// NewAggregator creates an aggregator with the given deferred-status delay.
func NewAggregator(delay time.Duration, logger *slog.Logger) *Aggregator {
	return &Aggregator{delay: delay, logger: logger}
}

// Assemble renders a terminal run state. Error runs report their status
// immediately and skip the deferred update.
func (a *Aggregator) Assemble(state *screening.State) *Response {
	resp := &Response{
		AnomalyDetection:      state.Result(screening.StageAnomalyDetection),
		TransactionMonitoring: state.Result(screening.StageTransactionMonitoring),
		BehavioralAnalysis:    state.Result(screening.StageBehavioralAnalysis),
		RiskScoring:           state.Result(screening.StageRiskScoring),
		Reason:                state.Reason,
		Step:                  state.Step,
		Messages:              append([]string(nil), state.Messages...),
	}

	if state.Status == screening.StatusError {
		resp.Status = screening.StatusError
		resp.Error = state.Err
		return resp
	}

	resp.Status = screening.StatusPending
	time.AfterFunc(a.delay, func() {
		resp.markProcessed()
		a.logger.Debug("deferred status update applied", "run_id", state.RunID.String())
	})

	return resp
}
