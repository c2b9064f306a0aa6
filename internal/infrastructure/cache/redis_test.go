package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
)

func setupCache(t *testing.T, ttl time.Duration) (*VerdictCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewVerdictCacheWithClient(client, ttl, zap.NewNop())
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func terminalState() *screening.State {
	state := screening.NewState()
	state.Record(screening.StageAnomalyDetection, &screening.ScoringResult{
		Prediction:       screening.PredictionFraudulent,
		FraudProbability: 0.9,
		ModelName:        "isolation_forest",
	})
	state.Conclude(screening.StatusRejected, "High confidence fraud detection (probability: 0.90)")
	return state
}

func TestVerdictCacheRoundTrip(t *testing.T) {
	cache, _ := setupCache(t, 5*time.Minute)
	ctx := context.Background()
	state := terminalState()

	require.NoError(t, cache.Set(ctx, "screening:verdict:abc", state))

	got, err := cache.Get(ctx, "screening:verdict:abc")
	require.NoError(t, err)
	assert.Equal(t, state.RunID, got.RunID)
	assert.Equal(t, screening.StatusRejected, got.Status)
	assert.Equal(t, state.Reason, got.Reason)

	result := got.Result(screening.StageAnomalyDetection)
	require.NotNil(t, result)
	assert.Equal(t, screening.PredictionFraudulent, result.Prediction)
	assert.Equal(t, 0.9, result.FraudProbability)
}

func TestVerdictCacheMiss(t *testing.T) {
	cache, _ := setupCache(t, 5*time.Minute)

	_, err := cache.Get(context.Background(), "screening:verdict:missing")
	require.Error(t, err)
	assert.IsType(t, ErrKeyNotFound{}, err)
	assert.Contains(t, err.Error(), "screening:verdict:missing")
}

func TestVerdictCacheEntriesExpire(t *testing.T) {
	cache, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "screening:verdict:abc", terminalState()))

	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "screening:verdict:abc")
	assert.IsType(t, ErrKeyNotFound{}, err)
}

func TestVerdictCachePing(t *testing.T) {
	cache, mr := setupCache(t, time.Minute)

	assert.NoError(t, cache.Ping(context.Background()))

	mr.Close()
	assert.Error(t, cache.Ping(context.Background()))
}
