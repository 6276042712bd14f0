package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/models"
	"parkgate/backend/services/parking-service/internal/service"
)

// SummaryService is the aggregation surface the summary endpoint needs.
type SummaryService interface {
	SummarizeDay(ctx context.Context, dayStart, dayEnd time.Time) (models.DailySummary, error)
}

// SummaryHandler serves the daily ledger summary.
type SummaryHandler struct {
	svc    SummaryService
	clock  service.Clock
	logger *zap.Logger
}

// NewSummaryHandler builds handler.
func NewSummaryHandler(svc SummaryService, clock service.Clock, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{svc: svc, clock: clock, logger: logger}
}

// HandleDaily handles GET /summary/daily?date=YYYY-MM-DD, defaulting to
// today.
func (h *SummaryHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	day := h.clock.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	summary, err := h.svc.SummarizeDay(r.Context(), dayStart, dayEnd)
	if err != nil {
		h.logger.Error("daily summary failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
