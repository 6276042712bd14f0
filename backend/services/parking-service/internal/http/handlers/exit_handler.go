package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/billing"
	"parkgate/backend/services/parking-service/internal/models"
	"parkgate/backend/services/parking-service/internal/repository"
	"parkgate/backend/services/parking-service/internal/service"
)

// CheckoutService is the exit-flow surface the exit endpoints need.
type CheckoutService interface {
	Preview(ctx context.Context, sessionID string, exitAt *time.Time) (service.Quote, error)
	Settle(ctx context.Context, sessionID string, exitAt *time.Time) (models.Payment, error)
}

// ExitHandler serves the fee preview and the settle flow.
type ExitHandler struct {
	svc    CheckoutService
	logger *zap.Logger
}

// NewExitHandler builds handler set.
func NewExitHandler(svc CheckoutService, logger *zap.Logger) *ExitHandler {
	return &ExitHandler{svc: svc, logger: logger}
}

type exitRequest struct {
	SessionID string     `json:"session_id"`
	ExitAt    *time.Time `json:"exit_at,omitempty"`
}

// HandlePreview handles POST /exit/preview.
func (h *ExitHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	quote, err := h.svc.Preview(r.Context(), req.SessionID, req.ExitAt)
	if err != nil {
		h.writeCheckoutError(w, err, "failed to preview exit")
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// HandleSettle handles POST /exit.
func (h *ExitHandler) HandleSettle(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	payment, err := h.svc.Settle(r.Context(), req.SessionID, req.ExitAt)
	if err != nil {
		h.writeCheckoutError(w, err, "failed to settle exit")
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *ExitHandler) decode(w http.ResponseWriter, r *http.Request) (exitRequest, bool) {
	var req exitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return exitRequest{}, false
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return exitRequest{}, false
	}
	return req, true
}

func (h *ExitHandler) writeCheckoutError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrSessionNotOpen):
		writeError(w, http.StatusConflict, "session is not open")
	case errors.Is(err, service.ErrRateNotConfigured):
		writeError(w, http.StatusConflict, "hourly rate not configured")
	case errors.Is(err, repository.ErrDuplicatePayment):
		writeError(w, http.StatusConflict, "payment already recorded")
	case errors.Is(err, billing.ErrExitBeforeEntry):
		writeError(w, http.StatusBadRequest, "exit instant precedes entry")
	default:
		h.logger.Error(fallback, zap.Error(err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
