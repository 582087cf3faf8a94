package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicfin/backend/internal/domain/payment"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *MercadoPagoAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewMercadoPagoAdapter(MercadoPagoConfig{
		BaseURL:     server.URL,
		AccessToken: "TEST-token",
		Timeout:     200 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	return adapter
}

func TestMercadoPagoConfig_Validate(t *testing.T) {
	cfg := MercadoPagoConfig{}
	assert.ErrorIs(t, cfg.Validate(), ErrMercadoPagoMissingToken)

	cfg = MercadoPagoConfig{AccessToken: "t", BaseURL: "not a url"}
	assert.ErrorIs(t, cfg.Validate(), ErrMercadoPagoInvalidBaseURL)

	cfg = MercadoPagoConfig{AccessToken: "t"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultMercadoPagoBaseURL, cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestMercadoPagoAdapter_FetchPayment(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/123456", r.URL.Path)
		assert.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 123456,
			"status": "approved",
			"status_detail": "accredited",
			"external_reference": "order:8f14e45f-ceea-467f-a0c8-4b5e3d1a2c11",
			"transaction_amount": 150.5,
			"date_approved": "2024-05-10T12:30:00.000-03:00"
		}`))
	})

	doc, err := adapter.FetchPayment(context.Background(), "123456")
	require.NoError(t, err)

	assert.Equal(t, "123456", doc.ID)
	assert.Equal(t, "approved", doc.Status)
	assert.Equal(t, "order:8f14e45f-ceea-467f-a0c8-4b5e3d1a2c11", doc.ExternalReference)
	assert.True(t, decimal.RequireFromString("150.5").Equal(doc.Amount))
	require.NotNil(t, doc.ApprovedAt)
	assert.Equal(t, time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC), doc.ApprovedAt.UTC())
}

func TestMercadoPagoAdapter_PendingWithoutApproval(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"77","status":"in_process","external_reference":"budget:x","transaction_amount":"10.00","date_approved":null}`))
	})

	doc, err := adapter.FetchPayment(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "77", doc.ID)
	assert.Nil(t, doc.ApprovedAt)
	assert.Equal(t, payment.StatusPending, payment.MapProviderStatus(doc.Status))
}

func TestMercadoPagoAdapter_Failures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := adapter.FetchPayment(context.Background(), "1")
		assert.ErrorIs(t, err, payment.ErrProviderUnavailable)
		assert.ErrorContains(t, err, "502")
	})

	t.Run("not found with error body", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Payment not found","error":"not_found","status":404}`))
		})
		_, err := adapter.FetchPayment(context.Background(), "1")
		assert.ErrorIs(t, err, payment.ErrProviderUnavailable)
		assert.ErrorContains(t, err, "Payment not found")
	})

	t.Run("timeout", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		})
		_, err := adapter.FetchPayment(context.Background(), "1")
		assert.ErrorIs(t, err, payment.ErrProviderUnavailable)
	})

	t.Run("garbage body", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		_, err := adapter.FetchPayment(context.Background(), "1")
		assert.ErrorIs(t, err, payment.ErrProviderUnavailable)
	})

	t.Run("empty id", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := adapter.FetchPayment(context.Background(), " ")
		assert.ErrorIs(t, err, payment.ErrProviderUnavailable)
	})
}
