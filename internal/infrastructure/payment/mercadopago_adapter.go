package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/clinicfin/backend/internal/domain/payment"
)

const (
	mercadoPagoPaymentPath = "/v1/payments/%s"
	maxResponseBytes       = 1 << 20
)

// MercadoPagoAdapter fetches payment documents from Mercado Pago
type MercadoPagoAdapter struct {
	config     MercadoPagoConfig
	httpClient *http.Client
	logger     *zap.Logger
}

var _ payment.ProviderClient = (*MercadoPagoAdapter)(nil)

// NewMercadoPagoAdapter creates a provider client
func NewMercadoPagoAdapter(config MercadoPagoConfig, logger *zap.Logger) (*MercadoPagoAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MercadoPagoAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("mercadopago"),
	}, nil
}

// FetchPayment implements payment.ProviderClient.
// Every failure, including 4xx answers, is reported as ErrProviderUnavailable
// so the webhook is redelivered.
func (a *MercadoPagoAdapter) FetchPayment(ctx context.Context, providerPaymentID string) (*payment.ProviderPayment, error) {
	id := strings.TrimSpace(providerPaymentID)
	if id == "" {
		return nil, fmt.Errorf("%w: empty payment id", payment.ErrProviderUnavailable)
	}

	body, err := a.doRequest(ctx, http.MethodGet, fmt.Sprintf(mercadoPagoPaymentPath, url.PathEscape(id)))
	if err != nil {
		return nil, err
	}

	var doc mercadoPagoPayment
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode payment %s: %v", payment.ErrProviderUnavailable, id, err)
	}

	fetchedID := rawID(doc.ID)
	if fetchedID == "" {
		fetchedID = id
	}
	a.logger.Debug("Fetched payment",
		zap.String("payment_id", fetchedID),
		zap.String("status", doc.Status),
		zap.String("status_detail", doc.StatusDetail),
	)

	return &payment.ProviderPayment{
		ID:                fetchedID,
		Status:            doc.Status,
		ExternalReference: doc.ExternalReference,
		Amount:            doc.TransactionAmount,
		ApprovedAt:        doc.DateApproved,
	}, nil
}

func (a *MercadoPagoAdapter) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.config.BaseURL, "/")+path, nil)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", payment.ErrProviderUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp mercadoPagoError
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: HTTP %d %s - %s", payment.ErrProviderUnavailable, resp.StatusCode, errResp.Error, errResp.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrProviderUnavailable, resp.StatusCode)
	}
	return respBody, nil
}
