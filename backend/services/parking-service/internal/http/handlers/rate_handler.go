package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/service"
)

// RateService is the rate surface the rate endpoints need.
type RateService interface {
	SetRate(ctx context.Context, value float64) error
	GetRate(ctx context.Context) (float64, error)
}

// RateHandler serves the current hourly rate.
type RateHandler struct {
	svc    RateService
	logger *zap.Logger
}

// NewRateHandler builds handler set.
func NewRateHandler(svc RateService, logger *zap.Logger) *RateHandler {
	return &RateHandler{svc: svc, logger: logger}
}

type setRateRequest struct {
	HourlyRate float64 `json:"hourly_rate"`
}

// HandleSet handles PUT /rates/current.
func (h *RateHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req setRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.svc.SetRate(r.Context(), req.HourlyRate); err != nil {
		if errors.Is(err, service.ErrInvalidRate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("set rate failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save rate")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"hourly_rate": req.HourlyRate})
}

// HandleGet handles GET /rates/current. A rate of 0 means no rate is
// configured yet.
func (h *RateHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.GetRate(r.Context())
	if err != nil {
		h.logger.Error("get rate failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch rate")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hourly_rate": rate,
		"configured":  rate > 0,
	})
}
