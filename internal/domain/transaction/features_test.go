package transaction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finguard/fraud-screening-backend/internal/domain/errors"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		features Features
		want     Derived
	}{
		{
			name: "large transfer",
			features: Features{
				Amount:         15000,
				OldBalanceOrig: 20000,
				NewBalanceOrig: 5000,
				OldBalanceDest: 1000,
				NewBalanceDest: 16000,
				Type:           TypeTransfer,
			},
			want: Derived{
				BalanceDifference:     15000,
				DestBalanceDifference: -15000,
				LargeTransaction:      1.0,
				TypeTransfer:          1.0,
			},
		},
		{
			name: "small payment",
			features: Features{
				Amount:         100,
				OldBalanceOrig: 500,
				NewBalanceOrig: 400,
				Type:           TypePayment,
			},
			want: Derived{
				BalanceDifference: 100,
				TypePayment:       1.0,
			},
		},
		{
			name: "amount exactly at threshold is not large",
			features: Features{
				Amount: LargeTransactionThreshold,
				Type:   TypeCashOut,
			},
			want: Derived{
				TypeCashOut: 1.0,
			},
		},
		{
			name:     "missing type leaves all one-hots zero",
			features: Features{Amount: 50},
			want:     Derived{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.features.Derive())
		})
	}
}

func TestFeaturesValidate(t *testing.T) {
	tests := []struct {
		name     string
		features Features
		wantErr  bool
	}{
		{"valid", Features{Amount: 100, Type: TypePayment}, false},
		{"zero values are valid", Features{}, false},
		{"negative amount", Features{Amount: -1}, true},
		{"negative balance", Features{OldBalanceOrig: -500}, true},
		{"unknown type", Features{Amount: 100, Type: Type("WIRE")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.features.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBehavioralFeaturesValidate(t *testing.T) {
	tests := []struct {
		name     string
		features BehavioralFeatures
		wantErr  bool
	}{
		{
			name: "valid",
			features: BehavioralFeatures{
				AvgTransactionAmount:  500,
				MaxTransactionAmount:  2000,
				TransactionCount:      10,
				LargeTransactionRatio: 0.2,
				BalanceChangeMean:     -50,
				TypePaymentRatio:      0.8,
			},
			wantErr: false,
		},
		{"ratio above one", BehavioralFeatures{LargeTransactionRatio: 1.5}, true},
		{"negative count", BehavioralFeatures{TransactionCount: -1}, true},
		{"negative std", BehavioralFeatures{TransactionAmountStd: -0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.features.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFeaturesJSONContract(t *testing.T) {
	raw, err := json.Marshal(Features{
		Amount:         100,
		OldBalanceOrig: 500,
		NewBalanceOrig: 400,
		Type:           TypeCashOut,
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "oldbalanceOrg")
	assert.Contains(t, decoded, "newbalanceOrig")
	assert.Equal(t, "CASH_OUT", decoded["transaction_type"])
}

func TestBehavioralFeaturesJSONContract(t *testing.T) {
	raw, err := json.Marshal(BehavioralFeatures{TypeCashOutRatio: 0.5})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 0.5, decoded["type_CASH_OUT_ratio"])
	assert.Contains(t, decoded, "avg_transaction_amount")
}
