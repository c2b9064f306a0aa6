package scoring

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finguard/fraud-screening-backend/internal/domain/errors"
	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSleeper captures backoff delays without waiting.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestClient(baseURL string, sleeper Sleeper) *Client {
	return NewClient(baseURL, NewRegistry(), DefaultRetryPolicy(), testLogger(),
		WithSleeper(sleeper))
}

func scoringResponse(prediction string, probability float64) screening.ScoringResult {
	return screening.ScoringResult{
		Prediction:       prediction,
		FraudProbability: probability,
		ModelName:        "test-model",
	}
}

func TestInvokeSuccess(t *testing.T) {
	var gotPath string
	var gotPayload map[string]float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(scoringResponse(screening.PredictionLegitimate, 0.12))
	}))
	defer server.Close()

	client := newTestClient(server.URL, &recordingSleeper{})
	result, err := client.Invoke(context.Background(), screening.StageAnomalyDetection,
		map[string]float64{"amount": 100})

	require.NoError(t, err)
	assert.Equal(t, "/predict/isolation_forest", gotPath)
	assert.Equal(t, 100.0, gotPayload["amount"])
	assert.Equal(t, screening.PredictionLegitimate, result.Prediction)
	assert.Equal(t, 0.12, result.FraudProbability)
}

func TestInvokeRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(scoringResponse(screening.PredictionFraudulent, 0.9))
	}))
	defer server.Close()

	sleeper := &recordingSleeper{}
	client := newTestClient(server.URL, sleeper)
	result, err := client.Invoke(context.Background(), screening.StageAnomalyDetection,
		map[string]float64{"amount": 15000})

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{4 * time.Second, 4 * time.Second}, sleeper.delays)
	assert.Equal(t, screening.PredictionFraudulent, result.Prediction)
}

func TestInvokeExhaustsBudgetAndSurfacesLastError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sleeper := &recordingSleeper{}
	client := newTestClient(server.URL, sleeper)
	_, err := client.Invoke(context.Background(), screening.StageRiskScoring,
		map[string]float64{"amount": 100})

	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, sleeper.delays, 2)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTransport))
	assert.Contains(t, err.Error(), "unexpected status 502")
	assert.Contains(t, err.Error(), "risk_scoring")
}

func TestInvokeMalformedResponseIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, "{not json")
	}))
	defer server.Close()

	client := newTestClient(server.URL, &recordingSleeper{})
	_, err := client.Invoke(context.Background(), screening.StageBehavioralAnalysis, nil)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, errors.IsType(err, errors.ErrorTypeStage))
}

func TestInvokeProbabilityOutOfRangeIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(scoringResponse(screening.PredictionFraudulent, 1.5))
	}))
	defer server.Close()

	client := newTestClient(server.URL, &recordingSleeper{})
	_, err := client.Invoke(context.Background(), screening.StageTransactionMonitoring, nil)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, errors.IsType(err, errors.ErrorTypeStage))
}

func TestInvokeUnknownStage(t *testing.T) {
	client := newTestClient("http://localhost:0", &recordingSleeper{})
	_, err := client.Invoke(context.Background(), screening.Stage("bogus"), nil)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestRegistryBindings(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		stage   screening.Stage
		service string
	}{
		{screening.StageAnomalyDetection, "isolation_forest"},
		{screening.StageBehavioralAnalysis, "behavioral"},
		{screening.StageTransactionMonitoring, "transaction"},
		{screening.StageRiskScoring, "risk_scoring"},
	}

	for _, tt := range tests {
		service, err := registry.Service(tt.stage)
		require.NoError(t, err)
		assert.Equal(t, tt.service, service)
	}
}
