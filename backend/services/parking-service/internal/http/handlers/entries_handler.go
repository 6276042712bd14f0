package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/http/middleware"
	"parkgate/backend/services/parking-service/internal/models"
	"parkgate/backend/services/parking-service/internal/plate"
)

// EntriesService is the session lifecycle surface the entry endpoints need.
type EntriesService interface {
	OpenSession(ctx context.Context, plate string, entryAt *time.Time) (models.Session, error)
	ListActive(ctx context.Context) ([]models.Session, error)
}

// EntriesHandler serves vehicle entry registration and the active list.
type EntriesHandler struct {
	svc    EntriesService
	logger *zap.Logger
}

// NewEntriesHandler builds handler set.
func NewEntriesHandler(svc EntriesService, logger *zap.Logger) *EntriesHandler {
	return &EntriesHandler{svc: svc, logger: logger}
}

type openEntryRequest struct {
	Plate   string     `json:"plate"`
	EntryAt *time.Time `json:"entry_at,omitempty"`
}

// HandleOpen handles POST /entries.
func (h *EntriesHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	var req openEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Plate == "" {
		writeError(w, http.StatusBadRequest, "plate is required")
		return
	}

	session, err := h.svc.OpenSession(r.Context(), req.Plate, req.EntryAt)
	if err != nil {
		if errors.Is(err, plate.ErrInvalidPlate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("open session failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to register entry")
		return
	}
	if operator, ok := middleware.OperatorFromContext(r.Context()); ok {
		h.logger.Info("entry registered",
			zap.String("session_id", session.ID),
			zap.String("operator", operator))
	}
	writeJSON(w, http.StatusCreated, session)
}

// HandleActive handles GET /entries/active.
func (h *EntriesHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list active sessions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch active sessions")
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}
