package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"parkgate/backend/services/parking-service/internal/http/handlers"
	"parkgate/backend/services/parking-service/internal/models"
	"parkgate/backend/services/parking-service/internal/repository"
	"parkgate/backend/services/parking-service/internal/service"
)

type mockCheckoutService struct {
	preview func(ctx context.Context, sessionID string, exitAt *time.Time) (service.Quote, error)
	settle  func(ctx context.Context, sessionID string, exitAt *time.Time) (models.Payment, error)
}

func (m *mockCheckoutService) Preview(ctx context.Context, sessionID string, exitAt *time.Time) (service.Quote, error) {
	return m.preview(ctx, sessionID, exitAt)
}

func (m *mockCheckoutService) Settle(ctx context.Context, sessionID string, exitAt *time.Time) (models.Payment, error) {
	return m.settle(ctx, sessionID, exitAt)
}

var _ handlers.CheckoutService = (*mockCheckoutService)(nil)

func TestHandlePreviewOK(t *testing.T) {
	svc := &mockCheckoutService{
		preview: func(_ context.Context, sessionID string, _ *time.Time) (service.Quote, error) {
			assert.Equal(t, "sess-1", sessionID)
			return service.Quote{SessionID: sessionID, Amount: 20, BilledHours: 2, HourlyRate: 10}, nil
		},
	}
	handler := handlers.NewExitHandler(svc, zap.NewNop())

	body := bytes.NewBufferString(`{"session_id":"sess-1"}`)
	rec := httptest.NewRecorder()
	handler.HandlePreview(rec, httptest.NewRequest(http.MethodPost, "/exit/preview", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":20`)
}

func TestHandleSettleErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", repository.ErrSessionNotFound, http.StatusNotFound},
		{"not open", service.ErrSessionNotOpen, http.StatusConflict},
		{"rate unset", service.ErrRateNotConfigured, http.StatusConflict},
		{"duplicate payment", repository.ErrDuplicatePayment, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockCheckoutService{
				settle: func(context.Context, string, *time.Time) (models.Payment, error) {
					return models.Payment{}, tc.err
				},
			}
			handler := handlers.NewExitHandler(svc, zap.NewNop())

			body := bytes.NewBufferString(`{"session_id":"sess-1"}`)
			rec := httptest.NewRecorder()
			handler.HandleSettle(rec, httptest.NewRequest(http.MethodPost, "/exit", body))

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestHandleSettleRequiresSessionID(t *testing.T) {
	handler := handlers.NewExitHandler(&mockCheckoutService{}, zap.NewNop())

	body := bytes.NewBufferString(`{}`)
	rec := httptest.NewRecorder()
	handler.HandleSettle(rec, httptest.NewRequest(http.MethodPost, "/exit", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
