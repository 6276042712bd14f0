package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
)

// ErrInvalidRate indicates a non-positive or non-numeric hourly rate.
var ErrInvalidRate = errors.New("rate: must be a number greater than zero")

// RateStore is the document-store surface for the hourly rate.
type RateStore interface {
	Upsert(ctx context.Context, value float64) error
	Current(ctx context.Context) (float64, error)
}

// RateService manages the single current hourly rate.
type RateService struct {
	store  RateStore
	logger *zap.Logger
}

// NewRateService builds service.
func NewRateService(store RateStore, logger *zap.Logger) *RateService {
	return &RateService{store: store, logger: logger}
}

// SetRate upserts the current hourly rate. Concurrent operator writes are
// fine; last write wins.
func (s *RateService) SetRate(ctx context.Context, value float64) error {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidRate
	}
	if err := s.store.Upsert(ctx, value); err != nil {
		return err
	}
	s.logger.Info("hourly rate updated", zap.Float64("hourly_rate", value))
	return nil
}

// GetRate returns the current hourly rate, or 0 when none is configured.
// Callers must treat 0 as "unconfigured" and refuse to bill, not as free
// parking.
func (s *RateService) GetRate(ctx context.Context) (float64, error) {
	return s.store.Current(ctx)
}
