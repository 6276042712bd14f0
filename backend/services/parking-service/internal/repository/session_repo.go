package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/models"
)

// ErrSessionNotFound indicates an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists parking sessions as documents and reconciles
// the historical schema shapes on read.
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

// Create opens a new session document with a store-assigned id.
func (r *SessionRepository) Create(ctx context.Context, plate string, entryAt time.Time) (models.Session, error) {
	id := uuid.NewString()
	entryAt = entryAt.UTC()

	doc := map[string]interface{}{
		fieldPlate:   plate,
		fieldActive:  true,
		fieldEntryAt: entryAt.Format(time.RFC3339Nano),
		fieldExitAt:  nil,
		fieldAmount:  0,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return models.Session{}, err
	}

	const query = `INSERT INTO parking_entries (id, doc) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, id, payload); err != nil {
		return models.Session{}, err
	}

	return models.Session{
		ID:      id,
		Plate:   plate,
		Active:  true,
		EntryAt: entryAt,
	}, nil
}

// Get returns one session by id.
func (r *SessionRepository) Get(ctx context.Context, id string) (models.Session, error) {
	const query = `SELECT doc FROM parking_entries WHERE id = $1`

	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Session{}, err
	}
	return SessionDoc{ID: id, Doc: doc}.Session(), nil
}

// Close finalizes a session in a single document merge: exit instant, the
// cleared active flag and the settled amount land atomically, and any legacy
// status marker is dropped so no detection strategy keeps reporting the
// session as open.
func (r *SessionRepository) Close(ctx context.Context, id string, exitAt time.Time, amount float64) error {
	patch, err := json.Marshal(map[string]interface{}{
		fieldActive: false,
		fieldExitAt: exitAt.UTC().Format(time.RFC3339Nano),
		fieldAmount: amount,
	})
	if err != nil {
		return err
	}

	const query = `UPDATE parking_entries SET doc = (doc - 'status') || $2::jsonb WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, patch)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListActive returns all open sessions, deduplicated by id and ordered by
// entry instant descending. Three detection strategies are tried: the
// canonical boolean flag, the legacy status string, and, only when both
// returned nothing, an exhaustive scan classified locally. A failing
// strategy is logged and skipped; an error surfaces only when no strategy
// produced a usable result.
func (r *SessionRepository) ListActive(ctx context.Context) ([]models.Session, error) {
	const (
		byFlag   = `SELECT id, doc FROM parking_entries WHERE doc->>'active' = 'true'`
		byStatus = `SELECT id, doc FROM parking_entries WHERE doc->>'status' = 'active'`
		byScan   = `SELECT id, doc FROM parking_entries`
	)

	var batches [][]SessionDoc
	var lastErr error

	for _, strategy := range []struct {
		name  string
		query string
	}{
		{"active_flag", byFlag},
		{"legacy_status", byStatus},
	} {
		docs, err := r.queryDocs(ctx, strategy.query)
		if err != nil {
			r.logger.Warn("active session query failed",
				zap.String("strategy", strategy.name),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		batches = append(batches, docs)
	}

	merged := Merge(batches...)

	if len(merged) == 0 {
		docs, err := r.queryDocs(ctx, byScan)
		if err != nil {
			r.logger.Warn("active session scan failed", zap.Error(err))
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}
		for _, doc := range docs {
			if doc.Active() {
				merged[doc.ID] = doc
			}
		}
	}

	sessions := make([]models.Session, 0, len(merged))
	for _, doc := range merged {
		sessions = append(sessions, doc.Session())
	}
	SortByEntryDesc(sessions)
	return sessions, nil
}

func (r *SessionRepository) queryDocs(ctx context.Context, query string) ([]SessionDoc, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []SessionDoc
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			r.logger.Warn("skipping undecodable session document",
				zap.String("id", id),
				zap.Error(err),
			)
			continue
		}
		docs = append(docs, SessionDoc{ID: id, Doc: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
