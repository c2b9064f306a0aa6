package scoring

import (
	"github.com/finguard/fraud-screening-backend/internal/domain/errors"
	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
)

// Registry maps workflow stages to scoring service endpoints. It is
// populated once at startup and injected wherever scoring calls are made;
// it is immutable afterwards and safe for concurrent reads.
type Registry struct {
	services map[screening.Stage]string
}

// NewRegistry creates a registry with the default stage-to-service
// bindings of the model inference API.
func NewRegistry() *Registry {
	return &Registry{
		services: map[screening.Stage]string{
			screening.StageAnomalyDetection:      "isolation_forest",
			screening.StageBehavioralAnalysis:    "behavioral",
			screening.StageTransactionMonitoring: "transaction",
			screening.StageRiskScoring:           "risk_scoring",
		},
	}
}

// Service returns the service identifier bound to a stage.
func (r *Registry) Service(stage screening.Stage) (string, error) {
	svc, ok := r.services[stage]
	if !ok {
		return "", errors.NewNotFoundError("scoring service for stage " + string(stage))
	}
	return svc, nil
}
