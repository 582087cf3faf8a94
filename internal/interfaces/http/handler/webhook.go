package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	apppayment "github.com/clinicfin/backend/internal/application/payment"
	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/infrastructure/logger"
	"github.com/clinicfin/backend/internal/infrastructure/telemetry"
	"github.com/clinicfin/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignatureHeader carries the provider's webhook signature
const SignatureHeader = "X-Signature"

// WebhookReconciler applies one verified webhook delivery
type WebhookReconciler interface {
	HandleWebhook(ctx context.Context, body []byte, signature string) (*apppayment.WebhookResult, error)
}

// WebhookHandler receives payment provider notifications. It answers with
// a fixed set of statuses so the provider knows whether to retry.
type WebhookHandler struct {
	reconciler WebhookReconciler
	maxBody    int64
	metrics    *telemetry.FinanceMetrics
}

// NewWebhookHandler creates a WebhookHandler. maxBody <= 0 means 64KB.
func NewWebhookHandler(reconciler WebhookReconciler, maxBody int64, metrics *telemetry.FinanceMetrics) *WebhookHandler {
	if maxBody <= 0 {
		maxBody = 64 << 10
	}
	return &WebhookHandler{reconciler: reconciler, maxBody: maxBody, metrics: metrics}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/payments", h.Receive)
}

// Receive godoc
// @ID           receivePaymentWebhook
// @Summary      Payment provider webhook
// @Description  Verifies the HMAC-SHA256 signature over the raw body, fetches the payment from the provider and reconciles it.
// @Description  The provider retries on 5xx only.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Signature header string true "hex HMAC-SHA256 of the body, optionally prefixed with sha256="
// @Success      200 {object} dto.WebhookResponse
// @Failure      400 {object} dto.WebhookResponse
// @Failure      401 {object} dto.WebhookResponse
// @Failure      503 {object} dto.WebhookResponse
// @Router       /api/v1/webhooks/payments [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	log := logger.GetGinLogger(c)
	ctx, span := telemetry.StartSpan(c.Request.Context(), "payment.webhook")
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	var result *apppayment.WebhookResult
	if err != nil {
		log.Warn("Webhook body rejected", zap.Error(err))
		err = payment.ErrInvalidPayload
	} else {
		result, err = h.reconciler.HandleWebhook(ctx, body, c.GetHeader(SignatureHeader))
	}

	h.metrics.RecordDuration(ctx, "payment.webhook", time.Since(start), err)
	telemetry.EndSpan(span, err)

	if err != nil {
		status, resp := webhookFailure(err)
		if status >= http.StatusInternalServerError {
			log.Error("Webhook failed, provider will retry", zap.Error(err))
		}
		h.metrics.RecordWebhook(ctx, resp.Status)
		c.JSON(status, resp)
		return
	}

	resp := dto.NewWebhookResponse(result)
	h.metrics.RecordWebhook(ctx, string(result.Outcome))
	c.JSON(http.StatusOK, resp)
}

func webhookFailure(err error) (int, dto.WebhookResponse) {
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		return http.StatusUnauthorized, dto.WebhookResponse{Status: dto.WebhookStatusBadSignature}
	case shared.CodeOf(err) == dto.ErrCodeBadRequest:
		return http.StatusBadRequest, dto.WebhookResponse{Status: dto.WebhookStatusBadRequest}
	default:
		return http.StatusServiceUnavailable, dto.WebhookResponse{Status: dto.WebhookStatusInternalRetryable}
	}
}
