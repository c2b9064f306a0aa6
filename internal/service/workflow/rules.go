package workflow

import (
	"fmt"

	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
)

// Decision is the outcome of evaluating a stage's business rules: either
// the next stage to run or a terminal verdict.
type Decision struct {
	Next     screening.Stage
	Terminal bool
	Status   screening.Status
	Reason   string
}

func proceed(next screening.Stage) Decision {
	return Decision{Next: next}
}

func conclude(status screening.Status, reason string) Decision {
	return Decision{Terminal: true, Status: status, Reason: reason}
}

// Decide evaluates the business rules for a completed stage.
func Decide(stage screening.Stage, result *screening.ScoringResult) Decision {
	switch stage {
	case screening.StageAnomalyDetection:
		return decideAfterAnomaly(result)
	case screening.StageBehavioralAnalysis:
		return decideAfterBehavioral(result)
	case screening.StageTransactionMonitoring:
		return decideAfterMonitoring(result)
	case screening.StageRiskScoring:
		return decideAfterRisk(result)
	}
	return conclude(screening.StatusError, fmt.Sprintf("unknown stage %q", stage))
}

func decideAfterAnomaly(result *screening.ScoringResult) Decision {
	switch {
	case result.Prediction == screening.PredictionFraudulent && result.FraudProbability > 0.8:
		return conclude(screening.StatusRejected,
			fmt.Sprintf("High confidence fraud detection (probability: %.2f)", result.FraudProbability))
	case result.Prediction == screening.PredictionFraudulent:
		// Moderate confidence fraud proceeds to transaction monitoring
		return proceed(screening.StageTransactionMonitoring)
	default:
		return proceed(screening.StageBehavioralAnalysis)
	}
}

func decideAfterBehavioral(result *screening.ScoringResult) Decision {
	switch {
	case result.Prediction == screening.PredictionSuspicious && result.FraudProbability > 0.8:
		return proceed(screening.StageRiskScoring)
	case result.Prediction == screening.PredictionSuspicious:
		return proceed(screening.StageTransactionMonitoring)
	default:
		return conclude(screening.StatusApproved, "No suspicious behavior detected")
	}
}

// decideAfterMonitoring always proceeds to risk scoring. The branching on
// prediction and probability mirrors the monitoring rule set as deployed;
// the stage's own result is carried forward but does not alter routing.
func decideAfterMonitoring(result *screening.ScoringResult) Decision {
	switch {
	case result.Prediction == screening.PredictionFraudulent && result.FraudProbability > 0.8:
		return proceed(screening.StageRiskScoring)
	case result.Prediction == screening.PredictionFraudulent:
		return proceed(screening.StageRiskScoring)
	default:
		return proceed(screening.StageRiskScoring)
	}
}

func decideAfterRisk(result *screening.ScoringResult) Decision {
	level := result.RiskLevel()
	prob := result.FraudProbability

	switch {
	case level == screening.RiskLevelHigh ||
		(result.Prediction == screening.PredictionHighRisk && prob > 0.85):
		return conclude(screening.StatusRejected,
			fmt.Sprintf("High risk transaction (probability: %.2f, level: %s)", prob, level))
	case level == screening.RiskLevelMedium ||
		(result.Prediction == screening.PredictionHighRisk && prob > 0.6):
		return conclude(screening.StatusReview,
			fmt.Sprintf("Medium risk transaction (probability: %.2f, level: %s)", prob, level))
	default:
		return conclude(screening.StatusApproved,
			fmt.Sprintf("Low risk transaction (probability: %.2f, level: %s)", prob, level))
	}
}
