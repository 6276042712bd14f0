package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/billing"
	"parkgate/backend/services/parking-service/internal/models"
	"parkgate/backend/services/parking-service/internal/repository"
	"parkgate/backend/services/parking-service/internal/service"
)

type checkoutFixture struct {
	checkout *service.CheckoutService
	sessions *service.SessionsService
	store    *fakeSessionStore
	rates    *fakeRateStore
	ledger   *fakeLedger
	clock    *fakeClock
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	logger := zap.NewNop()
	clock := newFakeClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	store := newFakeSessionStore()
	rates := &fakeRateStore{}
	ledger := newFakeLedger(clock.Now)

	sessions := service.NewSessionsService(store, nil, nil, clock, logger)
	rateService := service.NewRateService(rates, logger)
	checkout := service.NewCheckoutService(sessions, rateService, ledger, clock, logger)

	return &checkoutFixture{
		checkout: checkout,
		sessions: sessions,
		store:    store,
		rates:    rates,
		ledger:   ledger,
		clock:    clock,
	}
}

func (f *checkoutFixture) openSession(t *testing.T) models.Session {
	t.Helper()
	session, err := f.sessions.OpenSession(context.Background(), "ABC1234", nil)
	require.NoError(t, err)
	return session
}

func TestPreviewPricesStay(t *testing.T) {
	f := newCheckoutFixture(t)
	require.NoError(t, f.rates.Upsert(context.Background(), 10))
	session := f.openSession(t)

	f.clock.Advance(90 * time.Minute)
	quote, err := f.checkout.Preview(context.Background(), session.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, 10.0, quote.HourlyRate)
	assert.Equal(t, int64(2), quote.BilledHours)
	assert.Equal(t, 20.0, quote.Amount)
	assert.Equal(t, f.clock.Now(), quote.ExitAt)
}

func TestPreviewBlocksWithoutRate(t *testing.T) {
	f := newCheckoutFixture(t)
	session := f.openSession(t)

	_, err := f.checkout.Preview(context.Background(), session.ID, nil)
	assert.ErrorIs(t, err, service.ErrRateNotConfigured)
}

func TestPreviewUnknownSession(t *testing.T) {
	f := newCheckoutFixture(t)
	require.NoError(t, f.rates.Upsert(context.Background(), 10))

	_, err := f.checkout.Preview(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestPreviewExitBeforeEntry(t *testing.T) {
	f := newCheckoutFixture(t)
	require.NoError(t, f.rates.Upsert(context.Background(), 10))
	session := f.openSession(t)

	exitAt := session.EntryAt.Add(-time.Minute)
	_, err := f.checkout.Preview(context.Background(), session.ID, &exitAt)
	assert.ErrorIs(t, err, billing.ErrExitBeforeEntry)
}

func TestSettleLegacySessionWithoutEntryInstant(t *testing.T) {
	f := newCheckoutFixture(t)
	require.NoError(t, f.rates.Upsert(context.Background(), 10))

	// The oldest schema shape: open, but no readable entry instant.
	f.store.sessions["legacy-1"] = models.Session{
		ID:     "legacy-1",
		Plate:  "XYZ9876",
		Active: true,
	}

	quote, err := f.checkout.Preview(context.Background(), "legacy-1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), quote.BilledHours)
	assert.Equal(t, 10.0, quote.Amount)
	assert.Equal(t, f.clock.Now(), quote.EntryAt)

	payment, err := f.checkout.Settle(context.Background(), "legacy-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, payment.Amount)
	assert.Equal(t, f.clock.Now(), payment.EntryAt)
}

func TestSettleClosesSessionAndRecordsPayment(t *testing.T) {
	f := newCheckoutFixture(t)
	require.NoError(t, f.rates.Upsert(context.Background(), 10))
	session := f.openSession(t)

	f.clock.Advance(61 * time.Minute)
	payment, err := f.checkout.Settle(context.Background(), session.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, "ABC1234", payment.Plate)
	assert.Equal(t, session.ID, payment.EntryID)
	assert.Equal(t, 20.0, payment.Amount)
	assert.Equal(t, f.clock.Now(), payment.ExitAt)

	closed := f.store.sessions[session.ID]
	assert.False(t, closed.Open())
	require.NotNil(t, closed.ExitAt)
	// The settled charge and the closed session carry the same exit instant.
	assert.Equal(t, payment.ExitAt, *closed.ExitAt)
	assert.Equal(t, payment.Amount, closed.Amount)

	require.Len(t, f.ledger.payments, 1)
}

func TestSettleTwiceRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	require.NoError(t, f.rates.Upsert(context.Background(), 10))
	session := f.openSession(t)

	f.clock.Advance(time.Hour)
	_, err := f.checkout.Settle(context.Background(), session.ID, nil)
	require.NoError(t, err)

	_, err = f.checkout.Settle(context.Background(), session.ID, nil)
	assert.ErrorIs(t, err, service.ErrSessionNotOpen)
	assert.Len(t, f.ledger.payments, 1)
}

func TestSettleSurfacesDuplicatePayment(t *testing.T) {
	f := newCheckoutFixture(t)
	require.NoError(t, f.rates.Upsert(context.Background(), 10))
	session := f.openSession(t)

	// A payment for this session already sits in the ledger, as a retried
	// settle would leave behind.
	_, err := f.ledger.Record(context.Background(), models.Payment{EntryID: session.ID})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.checkout.Settle(context.Background(), session.ID, nil)
	assert.ErrorIs(t, err, repository.ErrDuplicatePayment)
}
