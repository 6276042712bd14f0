package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/billing"
	"parkgate/backend/services/parking-service/internal/models"
)

// Checkout flow errors.
var (
	// ErrRateNotConfigured blocks billing while no hourly rate is set.
	ErrRateNotConfigured = errors.New("checkout: hourly rate not configured")
	// ErrSessionNotOpen rejects settling a session that already closed.
	ErrSessionNotOpen = errors.New("checkout: session is not open")
)

// PaymentRecorder appends to the ledger.
type PaymentRecorder interface {
	Record(ctx context.Context, payment models.Payment) (models.Payment, error)
}

// Quote is a priced exit, either previewed or settled.
type Quote struct {
	SessionID   string    `json:"session_id"`
	Plate       string    `json:"plate"`
	HourlyRate  float64   `json:"hourly_rate"`
	BilledHours int64     `json:"billed_hours"`
	Amount      float64   `json:"amount"`
	EntryAt     time.Time `json:"entry_at"`
	ExitAt      time.Time `json:"exit_at"`
}

// CheckoutService runs the exit flow: price a stay against the current rate,
// close the session and append the ledger record. Preview and settle share
// the same calculation so a committed charge always matches its preview for
// the same exit instant.
type CheckoutService struct {
	sessions *SessionsService
	rates    *RateService
	ledger   PaymentRecorder
	clock    Clock
	logger   *zap.Logger
}

// NewCheckoutService builds service.
func NewCheckoutService(
	sessions *SessionsService,
	rates *RateService,
	ledger PaymentRecorder,
	clock Clock,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		sessions: sessions,
		rates:    rates,
		ledger:   ledger,
		clock:    clock,
		logger:   logger,
	}
}

// Preview prices the exit without committing anything. A nil exit instant
// means "now".
func (s *CheckoutService) Preview(ctx context.Context, sessionID string, exitAt *time.Time) (Quote, error) {
	quote, _, err := s.quote(ctx, sessionID, exitAt)
	return quote, err
}

// Settle closes the session at the computed amount and appends the payment,
// using the same exit instant the preview path would have used.
func (s *CheckoutService) Settle(ctx context.Context, sessionID string, exitAt *time.Time) (models.Payment, error) {
	quote, session, err := s.quote(ctx, sessionID, exitAt)
	if err != nil {
		return models.Payment{}, err
	}

	if err := s.sessions.CloseSession(ctx, sessionID, quote.ExitAt, quote.Amount); err != nil {
		return models.Payment{}, err
	}

	payment, err := s.ledger.Record(ctx, models.Payment{
		Plate:   session.Plate,
		EntryID: session.ID,
		EntryAt: quote.EntryAt,
		ExitAt:  quote.ExitAt,
		Amount:  quote.Amount,
	})
	if err != nil {
		// The session is already closed at this point; the ledger's
		// uniqueness guard makes a retried settle visible here.
		s.logger.Error("payment record failed after session close",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return models.Payment{}, err
	}

	s.logger.Info("exit settled",
		zap.String("session_id", sessionID),
		zap.String("plate", payment.Plate),
		zap.Float64("amount", payment.Amount),
	)
	return payment, nil
}

func (s *CheckoutService) quote(ctx context.Context, sessionID string, exitAt *time.Time) (Quote, models.Session, error) {
	session, err := s.sessions.Session(ctx, sessionID)
	if err != nil {
		return Quote{}, models.Session{}, err
	}
	if !session.Open() {
		return Quote{}, models.Session{}, ErrSessionNotOpen
	}

	rate, err := s.rates.GetRate(ctx)
	if err != nil {
		return Quote{}, models.Session{}, err
	}
	if rate <= 0 {
		return Quote{}, models.Session{}, ErrRateNotConfigured
	}

	at := s.clock.Now()
	if exitAt != nil {
		at = exitAt.UTC()
	}

	// The oldest documents carry no readable entry instant. Such a stay
	// bills at the one-hour minimum, not from the zero time.
	entryAt := session.EntryAt
	if entryAt.IsZero() {
		entryAt = at
	}

	amount, err := billing.Amount(rate, entryAt, at)
	if err != nil {
		return Quote{}, models.Session{}, err
	}

	return Quote{
		SessionID:   session.ID,
		Plate:       session.Plate,
		HourlyRate:  rate,
		BilledHours: billing.BilledHours(at.Sub(entryAt)),
		Amount:      amount,
		EntryAt:     entryAt,
		ExitAt:      at,
	}, session, nil
}
