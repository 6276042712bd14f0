package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/models"
	"parkgate/backend/services/parking-service/internal/repository"
	"parkgate/backend/services/parking-service/internal/timeparse"
)

// LedgerScanner reads the whole payment ledger.
type LedgerScanner interface {
	All(ctx context.Context) ([]repository.PaymentDoc, error)
}

// SummaryService reduces the ledger to per-day totals.
type SummaryService struct {
	ledger LedgerScanner
	logger *zap.Logger
}

// NewSummaryService builds service.
func NewSummaryService(ledger LedgerScanner, logger *zap.Logger) *SummaryService {
	return &SummaryService{ledger: ledger, logger: logger}
}

// SummarizeDay scans all payments and reduces those falling inside
// [dayStart, dayEnd] to a count and total. A record is placed in the window
// by its creation time, or its exit time when no creation time is usable.
// Records whose amount cannot be read as a number are skipped, never fatal.
func (s *SummaryService) SummarizeDay(ctx context.Context, dayStart, dayEnd time.Time) (models.DailySummary, error) {
	summary := models.DailySummary{Date: dayStart.UTC().Format("2006-01-02")}

	records, err := s.ledger.All(ctx)
	if err != nil {
		return summary, err
	}

	for _, rec := range records {
		when := recordInstant(rec)
		if when.IsZero() || when.Before(dayStart) || when.After(dayEnd) {
			continue
		}

		amount, ok := repository.Numeric(rec.Doc["amount"])
		if !ok {
			s.logger.Warn("skipping payment with unreadable amount",
				zap.String("entry_id", rec.EntryID),
			)
			continue
		}

		summary.Count++
		summary.Total += amount
	}
	return summary, nil
}

// recordInstant picks the instant that places a payment in a day window:
// the stored creation time if one parses, else the server write time, else
// the exit time.
func recordInstant(rec repository.PaymentDoc) time.Time {
	if t, ok := timeparse.Instant(rec.Doc["createdAt"]); ok {
		return t
	}
	if !rec.CreatedAt.IsZero() {
		return rec.CreatedAt
	}
	return timeparse.InstantOrZero(rec.Doc["exitAt"])
}
