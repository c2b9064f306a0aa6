package workflow

import (
	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
	"github.com/finguard/fraud-screening-backend/internal/domain/transaction"
)

// runInputs bundles the immutable inputs of a run. Derived features are
// computed once when the run starts and reused by every payload builder.
type runInputs struct {
	tx         transaction.Features
	behavioral transaction.BehavioralFeatures
	derived    transaction.Derived
}

func newRunInputs(tx transaction.Features, behavioral transaction.BehavioralFeatures) runInputs {
	return runInputs{
		tx:         tx,
		behavioral: behavioral,
		derived:    tx.Derive(),
	}
}

// payloadFor builds the stage-specific feature payload.
func (in runInputs) payloadFor(stage screening.Stage) interface{} {
	switch stage {
	case screening.StageAnomalyDetection:
		// The anomaly model scores only the raw monetary features
		return map[string]float64{
			"amount":         in.tx.Amount,
			"oldbalanceOrg":  in.tx.OldBalanceOrig,
			"newbalanceOrig": in.tx.NewBalanceOrig,
			"oldbalanceDest": in.tx.OldBalanceDest,
			"newbalanceDest": in.tx.NewBalanceDest,
		}
	case screening.StageBehavioralAnalysis:
		return in.behavioral
	default:
		// Monitoring and risk scoring take the full engineered set
		return map[string]float64{
			"amount":                  in.tx.Amount,
			"oldbalanceOrg":           in.tx.OldBalanceOrig,
			"newbalanceOrig":          in.tx.NewBalanceOrig,
			"oldbalanceDest":          in.tx.OldBalanceDest,
			"newbalanceDest":          in.tx.NewBalanceDest,
			"balance_difference":      in.derived.BalanceDifference,
			"dest_balance_difference": in.derived.DestBalanceDifference,
			"large_transaction":       in.derived.LargeTransaction,
			"type_CASH_OUT":           in.derived.TypeCashOut,
			"type_DEBIT":              in.derived.TypeDebit,
			"type_PAYMENT":            in.derived.TypePayment,
			"type_TRANSFER":           in.derived.TypeTransfer,
		}
	}
}
