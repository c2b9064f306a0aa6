package screening

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage identifies one of the four scoring steps of a screening run.
type Stage string

const (
	StageAnomalyDetection      Stage = "anomaly_detection"
	StageBehavioralAnalysis    Stage = "behavioral_analysis"
	StageTransactionMonitoring Stage = "transaction_monitoring"
	StageRiskScoring           Stage = "risk_scoring"
)

// Stages lists all stages in topological order.
func Stages() []Stage {
	return []Stage{
		StageAnomalyDetection,
		StageBehavioralAnalysis,
		StageTransactionMonitoring,
		StageRiskScoring,
	}
}

// Status is the disposition of a screening run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusReview    Status = "review"
	StatusError     Status = "error"
	StatusProcessed Status = "processed"
)

// Terminal reports whether the status ends a run.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusReview, StatusError:
		return true
	}
	return false
}

// Prediction labels emitted by the scoring services.
const (
	PredictionFraudulent = "Fraudulent"
	PredictionLegitimate = "Legitimate"
	PredictionSuspicious = "Suspicious Behavior"
	PredictionNormal     = "Normal Behavior"
	PredictionHighRisk   = "High Risk"
	PredictionLowRisk    = "Low Risk"
)

// Risk levels attached to the risk scoring stage's details.
const (
	RiskLevelHigh   = "High"
	RiskLevelMedium = "Medium"
	RiskLevelLow    = "Low"
)

// ScoringResult is the normalized output of one scoring call.
type ScoringResult struct {
	Prediction       string                 `json:"prediction"`
	FraudProbability float64                `json:"fraud_probability"`
	ModelName        string                 `json:"model_name"`
	Details          map[string]interface{} `json:"details"`
}

// Validate enforces the scoring contract on a decoded result.
func (r *ScoringResult) Validate() error {
	if r.Prediction == "" {
		return fmt.Errorf("missing prediction")
	}
	if r.FraudProbability < 0 || r.FraudProbability > 1 {
		return fmt.Errorf("fraud_probability %v outside [0,1]", r.FraudProbability)
	}
	return nil
}

// RiskLevel returns the categorical risk level from the result details,
// or an empty string when absent.
func (r *ScoringResult) RiskLevel() string {
	if r.Details == nil {
		return ""
	}
	if level, ok := r.Details["risk_level"].(string); ok {
		return level
	}
	return ""
}

// State is the single mutable entity of a run. It is owned exclusively by
// the executing run and becomes read-only once Status is terminal.
type State struct {
	RunID     uuid.UUID
	StartedAt time.Time

	Step    Stage
	Results map[Stage]*ScoringResult

	Status   Status
	Reason   string
	Err      string
	Messages []string
}

// NewState creates the initial state for a screening run.
func NewState() *State {
	return &State{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Results:   make(map[Stage]*ScoringResult),
		Status:    StatusPending,
		Messages:  []string{"Starting fraud detection process"},
	}
}

// Record stores a stage result and appends its trace message.
func (s *State) Record(stage Stage, result *ScoringResult) {
	s.Step = stage
	s.Results[stage] = result
	s.Messages = append(s.Messages,
		fmt.Sprintf("%s result: %s (probability: %.2f)", stage, result.Prediction, result.FraudProbability))
}

// Fail marks the run as failed at the given stage. Already collected
// results are retained but no further stages execute.
func (s *State) Fail(stage Stage, err error) {
	s.Step = stage
	s.Err = fmt.Sprintf("Error in %s: %v", stage, err)
	s.Status = StatusError
}

// Conclude sets the terminal verdict for the run.
func (s *State) Conclude(status Status, reason string) {
	s.Status = status
	s.Reason = reason
}

// Result returns the stored result for a stage, or nil if it never ran.
func (s *State) Result(stage Stage) *ScoringResult {
	return s.Results[stage]
}
