package service_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/service"
)

func TestSetRateValidation(t *testing.T) {
	svc := service.NewRateService(&fakeRateStore{}, zap.NewNop())

	for _, value := range []float64{0, -1, -0.01, math.NaN(), math.Inf(1)} {
		err := svc.SetRate(context.Background(), value)
		assert.ErrorIs(t, err, service.ErrInvalidRate, "value %v", value)
	}
}

func TestSetRateThenGetRate(t *testing.T) {
	svc := service.NewRateService(&fakeRateStore{}, zap.NewNop())

	require.NoError(t, svc.SetRate(context.Background(), 5.5))

	rate, err := svc.GetRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.5, rate)
}

func TestGetRateFreshStoreIsZero(t *testing.T) {
	svc := service.NewRateService(&fakeRateStore{}, zap.NewNop())

	rate, err := svc.GetRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)
}

func TestSetRateLastWriteWins(t *testing.T) {
	svc := service.NewRateService(&fakeRateStore{}, zap.NewNop())

	require.NoError(t, svc.SetRate(context.Background(), 4))
	require.NoError(t, svc.SetRate(context.Background(), 6.25))

	rate, err := svc.GetRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6.25, rate)
}
