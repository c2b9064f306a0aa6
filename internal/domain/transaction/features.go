package transaction

import (
	"github.com/go-playground/validator/v10"

	"github.com/finguard/fraud-screening-backend/internal/domain/errors"
)

// Type identifies the transaction category used for one-hot encoding
type Type string

const (
	TypeCashOut  Type = "CASH_OUT"
	TypeDebit    Type = "DEBIT"
	TypePayment  Type = "PAYMENT"
	TypeTransfer Type = "TRANSFER"
)

// LargeTransactionThreshold is the amount above which a transaction is
// flagged as large, matching the feature set the scoring models were
// trained on.
const LargeTransactionThreshold = 10000.0

// Features is the immutable per-transaction input to a screening run.
// Field names follow the scoring service contract.
type Features struct {
	Amount         float64 `json:"amount" validate:"gte=0"`
	OldBalanceOrig float64 `json:"oldbalanceOrg" validate:"gte=0"`
	NewBalanceOrig float64 `json:"newbalanceOrig" validate:"gte=0"`
	OldBalanceDest float64 `json:"oldbalanceDest" validate:"gte=0"`
	NewBalanceDest float64 `json:"newbalanceDest" validate:"gte=0"`
	Type           Type    `json:"transaction_type,omitempty" validate:"omitempty,oneof=CASH_OUT DEBIT PAYMENT TRANSFER"`
}

// BehavioralFeatures aggregates the account's historical transaction
// pattern for the behavioral analysis stage.
type BehavioralFeatures struct {
	AvgTransactionAmount  float64 `json:"avg_transaction_amount" validate:"gte=0"`
	MaxTransactionAmount  float64 `json:"max_transaction_amount" validate:"gte=0"`
	TransactionAmountStd  float64 `json:"transaction_amount_std" validate:"gte=0"`
	AvgBalance            float64 `json:"avg_balance" validate:"gte=0"`
	TransactionCount      int     `json:"transaction_count" validate:"gte=0"`
	LargeTransactionRatio float64 `json:"large_transaction_ratio" validate:"gte=0,lte=1"`
	BalanceChangeMean     float64 `json:"balance_change_mean"`
	TypeCashOutRatio      float64 `json:"type_CASH_OUT_ratio" validate:"gte=0,lte=1"`
	TypeDebitRatio        float64 `json:"type_DEBIT_ratio" validate:"gte=0,lte=1"`
	TypePaymentRatio      float64 `json:"type_PAYMENT_ratio" validate:"gte=0,lte=1"`
	TypeTransferRatio     float64 `json:"type_TRANSFER_ratio" validate:"gte=0,lte=1"`
}

// Derived holds the engineered features computed once per run and reused
// by every stage payload that needs them.
type Derived struct {
	BalanceDifference     float64
	DestBalanceDifference float64
	LargeTransaction      float64
	TypeCashOut           float64
	TypeDebit             float64
	TypePayment           float64
	TypeTransfer          float64
}

// Derive computes the engineered feature set from the raw features.
func (f Features) Derive() Derived {
	d := Derived{
		BalanceDifference:     f.OldBalanceOrig - f.NewBalanceOrig,
		DestBalanceDifference: f.OldBalanceDest - f.NewBalanceDest,
	}
	if f.Amount > LargeTransactionThreshold {
		d.LargeTransaction = 1.0
	}
	switch f.Type {
	case TypeCashOut:
		d.TypeCashOut = 1.0
	case TypeDebit:
		d.TypeDebit = 1.0
	case TypePayment:
		d.TypePayment = 1.0
	case TypeTransfer:
		d.TypeTransfer = 1.0
	}
	return d
}

var validate = validator.New()

// Validate checks the raw transaction features before any stage runs.
func (f Features) Validate() error {
	if err := validate.Struct(f); err != nil {
		return errors.NewValidationError("INVALID_TRANSACTION", err.Error()).WithCause(err)
	}
	return nil
}

// Validate checks the behavioral aggregates before any stage runs.
func (b BehavioralFeatures) Validate() error {
	if err := validate.Struct(b); err != nil {
		return errors.NewValidationError("INVALID_BEHAVIORAL", err.Error()).WithCause(err)
	}
	return nil
}
