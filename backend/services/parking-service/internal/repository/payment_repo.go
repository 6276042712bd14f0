package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/models"
)

// ErrDuplicatePayment indicates a payment for this session was already
// recorded. A retried exit flow hits this instead of appending twice.
var ErrDuplicatePayment = errors.New("payment already recorded for session")

const uniqueViolation = "23505"

// PaymentDoc is one raw ledger record as stored.
type PaymentDoc struct {
	EntryID   string
	Doc       map[string]interface{}
	CreatedAt time.Time
}

// PaymentRepository is the append-only ledger of settled sessions. There is
// deliberately no update or delete; corrections require a compensating
// record.
type PaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository returns repository.
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

// Record appends one immutable payment with a server-assigned creation time.
func (r *PaymentRepository) Record(ctx context.Context, payment models.Payment) (models.Payment, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"plate":   payment.Plate,
		"entryId": payment.EntryID,
		"entryAt": payment.EntryAt.UTC().Format(time.RFC3339Nano),
		"exitAt":  payment.ExitAt.UTC().Format(time.RFC3339Nano),
		"amount":  payment.Amount,
	})
	if err != nil {
		return models.Payment{}, err
	}

	const query = `
		INSERT INTO parking_payments (entry_id, doc)
		VALUES ($1, $2)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, query, payment.EntryID, payload).Scan(&payment.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Payment{}, ErrDuplicatePayment
		}
		return models.Payment{}, err
	}
	payment.CreatedAt = payment.CreatedAt.UTC()
	return payment, nil
}

// All scans the whole ledger. Callers reduce locally so that a single
// malformed historical record never aborts a report.
func (r *PaymentRepository) All(ctx context.Context) ([]PaymentDoc, error) {
	const query = `SELECT entry_id, doc, created_at FROM parking_payments`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []PaymentDoc
	for rows.Next() {
		var rec PaymentDoc
		var raw []byte
		if err := rows.Scan(&rec.EntryID, &raw, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rec.Doc); err != nil {
			r.logger.Warn("skipping undecodable payment record",
				zap.String("entry_id", rec.EntryID),
				zap.Error(err),
			)
			continue
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		docs = append(docs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
