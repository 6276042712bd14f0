package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/models"
)

const rateField = "hourlyRate"

// RateRepository holds the singleton current hourly rate and knows how to
// read the unkeyed rate documents older deployments left behind. Legacy
// documents are never written, only read as fallbacks.
type RateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRateRepository returns repository.
func NewRateRepository(db *sql.DB, logger *zap.Logger) *RateRepository {
	return &RateRepository{db: db, logger: logger}
}

// Upsert writes the canonical rate document, creating or merging it under
// the fixed key. Last write wins.
func (r *RateRepository) Upsert(ctx context.Context, value float64) error {
	payload, err := json.Marshal(map[string]interface{}{rateField: value})
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO parking_rates (key, doc) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET doc = parking_rates.doc || EXCLUDED.doc
	`
	_, err = r.db.ExecContext(ctx, query, models.RateKey, payload)
	return err
}

// Current resolves the hourly rate: canonical singleton first, then the
// newest legacy document, then any legacy document. A failing step is
// logged and the next attempted; 0 means no rate is configured at all.
func (r *RateRepository) Current(ctx context.Context) (float64, error) {
	const (
		canonical    = `SELECT doc FROM parking_rates WHERE key = $1`
		latestLegacy = `SELECT doc FROM parking_rates WHERE key IS DISTINCT FROM $1 ORDER BY created_at DESC LIMIT 1`
		anyLegacy    = `SELECT doc FROM parking_rates WHERE key IS DISTINCT FROM $1 LIMIT 1`
	)

	for _, step := range []struct {
		name  string
		query string
	}{
		{"canonical", canonical},
		{"legacy_latest", latestLegacy},
		{"legacy_any", anyLegacy},
	} {
		value, found, err := r.lookup(ctx, step.query)
		if err != nil {
			r.logger.Warn("rate lookup step failed",
				zap.String("step", step.name),
				zap.Error(err),
			)
			continue
		}
		if found {
			return value, nil
		}
	}
	return 0, nil
}

func (r *RateRepository) lookup(ctx context.Context, query string) (float64, bool, error) {
	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, models.RateKey).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, false, err
	}
	// A present document wins the chain even when its value does not coerce;
	// the zero then means "unconfigured" to callers.
	value, _ := Numeric(doc[rateField])
	return value, true, nil
}
