package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apppayment "github.com/clinicfin/backend/internal/application/payment"
	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const webhookBody = `{"id":"evt-1","type":"payment","data":{"id":"123"}}`

func newWebhookRouter(t *testing.T, maxBody int64) (*gin.Engine, *MockWebhookReconciler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reconciler := new(MockWebhookReconciler)
	router := gin.New()
	NewWebhookHandler(reconciler, maxBody, nil).RegisterRoutes(router.Group("/api/v1"))
	t.Cleanup(func() { reconciler.AssertExpectations(t) })
	return router, reconciler
}

func postWebhook(router *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(body))
	req.Header.Set(SignatureHeader, signature)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_Outcomes(t *testing.T) {
	tests := []struct {
		name   string
		result *apppayment.WebhookResult
		err    error
		status int
		body   string
	}{
		{
			name:   "ok",
			result: &apppayment.WebhookResult{Outcome: apppayment.OutcomeOK, EventID: "evt-1", Status: payment.StatusCompleted, Transitioned: true},
			status: http.StatusOK,
			body:   `{"status":"ok","event_id":"evt-1","payment_status":"completed"}`,
		},
		{
			name:   "already processed",
			result: &apppayment.WebhookResult{Outcome: apppayment.OutcomeAlreadyProcessed, EventID: "evt-1", Status: payment.StatusCompleted},
			status: http.StatusOK,
			body:   `{"status":"already_processed","event_id":"evt-1","payment_status":"completed"}`,
		},
		{
			name:   "ignored",
			result: &apppayment.WebhookResult{Outcome: apppayment.OutcomeIgnored, EventID: "evt-1"},
			status: http.StatusOK,
			body:   `{"status":"ok","event_id":"evt-1"}`,
		},
		{
			name:   "bad signature",
			err:    payment.ErrInvalidSignature,
			status: http.StatusUnauthorized,
			body:   `{"status":"bad_signature"}`,
		},
		{
			name:   "bad payload",
			err:    fmt.Errorf("decode: %w", payment.ErrInvalidPayload),
			status: http.StatusBadRequest,
			body:   `{"status":"bad_request"}`,
		},
		{
			name:   "provider down",
			err:    fmt.Errorf("%w: 502", payment.ErrProviderUnavailable),
			status: http.StatusServiceUnavailable,
			body:   `{"status":"internal_retryable"}`,
		},
		{
			name:   "lock busy",
			err:    payment.ErrPaymentBusy,
			status: http.StatusServiceUnavailable,
			body:   `{"status":"internal_retryable"}`,
		},
		{
			name:   "unexpected",
			err:    payment.ErrConcurrentUpdate,
			status: http.StatusServiceUnavailable,
			body:   `{"status":"internal_retryable"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, reconciler := newWebhookRouter(t, 0)
			reconciler.On("HandleWebhook", mock.Anything, []byte(webhookBody), "sha256=abc").
				Return(tt.result, tt.err).Once()

			w := postWebhook(router, webhookBody, "sha256=abc")

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestWebhookHandler_BodyTooLarge(t *testing.T) {
	router, _ := newWebhookRouter(t, 16)

	w := postWebhook(router, webhookBody, "sha256=abc")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"bad_request"}`, w.Body.String())
}
