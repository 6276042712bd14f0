package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"parkgate/backend/services/parking-service/internal/models"
	redisstore "parkgate/backend/services/parking-service/internal/redis"
	"parkgate/backend/services/parking-service/internal/repository"
)

// fakeClock is a fixed, advanceable clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t.UTC()}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	seq      int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]models.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, plate string, entryAt time.Time) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	session := models.Session{
		ID:      fmt.Sprintf("sess-%d", f.seq),
		Plate:   plate,
		Active:  true,
		EntryAt: entryAt.UTC(),
	}
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakeSessionStore) Get(_ context.Context, id string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionStore) Close(_ context.Context, id string, exitAt time.Time, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	at := exitAt.UTC()
	session.Active = false
	session.ExitAt = &at
	session.Amount = amount
	f.sessions[id] = session
	return nil
}

func (f *fakeSessionStore) ListActive(_ context.Context) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []models.Session
	for _, session := range f.sessions {
		if session.Open() {
			active = append(active, session)
		}
	}
	repository.SortByEntryDesc(active)
	return active, nil
}

// fakeCache records cache traffic.
type fakeCache struct {
	mu      sync.Mutex
	saved   map[string]redisstore.ActiveSession
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{saved: make(map[string]redisstore.ActiveSession)}
}

func (f *fakeCache) Save(_ context.Context, session redisstore.ActiveSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[session.SessionID] = session
	return nil
}

func (f *fakeCache) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, sessionID)
	f.deleted = append(f.deleted, sessionID)
	return nil
}

// fakeNotifier counts change broadcasts.
type fakeNotifier struct {
	mu     sync.Mutex
	events int
}

func (f *fakeNotifier) SessionsChanged() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events++
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events
}

// fakeRateStore is an in-memory RateStore; a fresh one resolves to 0.
type fakeRateStore struct {
	mu    sync.Mutex
	value float64
}

func (f *fakeRateStore) Upsert(_ context.Context, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = value
	return nil
}

func (f *fakeRateStore) Current(_ context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, nil
}

// fakeLedger is an in-memory PaymentRecorder and LedgerScanner with the
// same per-session uniqueness guard the real ledger has.
type fakeLedger struct {
	mu       sync.Mutex
	payments []models.Payment
	docs     []repository.PaymentDoc
	now      func() time.Time
}

func newFakeLedger(now func() time.Time) *fakeLedger {
	return &fakeLedger{now: now}
}

func (f *fakeLedger) Record(_ context.Context, payment models.Payment) (models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.payments {
		if existing.EntryID == payment.EntryID {
			return models.Payment{}, repository.ErrDuplicatePayment
		}
	}
	payment.CreatedAt = f.now()
	f.payments = append(f.payments, payment)
	return payment, nil
}

func (f *fakeLedger) All(_ context.Context) ([]repository.PaymentDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs, nil
}
