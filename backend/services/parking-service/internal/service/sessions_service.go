package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/models"
	"parkgate/backend/services/parking-service/internal/plate"
	redisstore "parkgate/backend/services/parking-service/internal/redis"
)

// SessionStore is the document-store surface the session lifecycle needs.
type SessionStore interface {
	Create(ctx context.Context, plate string, entryAt time.Time) (models.Session, error)
	Get(ctx context.Context, id string) (models.Session, error)
	Close(ctx context.Context, id string, exitAt time.Time, amount float64) error
	ListActive(ctx context.Context) ([]models.Session, error)
}

// ActiveSessionCache is the optional fast-path cache of parked vehicles.
type ActiveSessionCache interface {
	Save(ctx context.Context, session redisstore.ActiveSession) error
	Delete(ctx context.Context, sessionID string) error
}

// ChangeNotifier is told whenever the set of sessions changed, so connected
// clients can refresh their active list.
type ChangeNotifier interface {
	SessionsChanged()
}

// SessionsService owns the session lifecycle: open on entry, close on exit,
// list what is currently parked.
type SessionsService struct {
	store    SessionStore
	cache    ActiveSessionCache
	notifier ChangeNotifier
	clock    Clock
	logger   *zap.Logger
}

// NewSessionsService builds service.
func NewSessionsService(
	store SessionStore,
	cache ActiveSessionCache,
	notifier ChangeNotifier,
	clock Clock,
	logger *zap.Logger,
) *SessionsService {
	return &SessionsService{
		store:    store,
		cache:    cache,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// OpenSession registers a vehicle entry. The plate is validated and
// normalized; a nil entry instant means "now", server-assigned.
func (s *SessionsService) OpenSession(ctx context.Context, rawPlate string, entryAt *time.Time) (models.Session, error) {
	normalized, err := plate.Normalize(rawPlate)
	if err != nil {
		return models.Session{}, err
	}

	at := s.clock.Now()
	if entryAt != nil {
		at = entryAt.UTC()
	}

	session, err := s.store.Create(ctx, normalized, at)
	if err != nil {
		return models.Session{}, err
	}

	if s.cache != nil {
		cacheErr := s.cache.Save(ctx, redisstore.ActiveSession{
			SessionID: session.ID,
			Plate:     session.Plate,
			EntryAt:   session.EntryAt,
		})
		if cacheErr != nil && cacheErr != redis.Nil {
			s.logger.Warn("failed to cache active session", zap.Error(cacheErr))
		}
	}
	s.notifyChanged()

	s.logger.Info("session opened",
		zap.String("session_id", session.ID),
		zap.String("plate", session.Plate),
		zap.Time("entry_at", session.EntryAt),
	)
	return session, nil
}

// Session returns one session by id.
func (s *SessionsService) Session(ctx context.Context, id string) (models.Session, error) {
	return s.store.Get(ctx, id)
}

// CloseSession finalizes a session with the given exit instant and amount in
// one atomic store update.
func (s *SessionsService) CloseSession(ctx context.Context, id string, exitAt time.Time, amount float64) error {
	if err := s.store.Close(ctx, id, exitAt, amount); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil && err != redis.Nil {
			s.logger.Warn("failed to delete active session cache", zap.Error(err))
		}
	}
	s.notifyChanged()

	s.logger.Info("session closed",
		zap.String("session_id", id),
		zap.Time("exit_at", exitAt),
		zap.Float64("amount", amount),
	)
	return nil
}

// ListActive returns all open sessions, newest entry first. Safe to call
// repeatedly; it reads only.
func (s *SessionsService) ListActive(ctx context.Context) ([]models.Session, error) {
	return s.store.ListActive(ctx)
}

func (s *SessionsService) notifyChanged() {
	if s.notifier != nil {
		s.notifier.SessionsChanged()
	}
}
