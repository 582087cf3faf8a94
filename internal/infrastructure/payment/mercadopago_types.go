package payment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// mercadoPagoPayment is the subset of GET /v1/payments/{id} that reconciliation reads
type mercadoPagoPayment struct {
	ID                json.RawMessage `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	DateApproved      *time.Time      `json:"date_approved"`
}

// mercadoPagoError is the error body returned with 4xx/5xx
type mercadoPagoError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

// rawID accepts both numeric and string ids
func rawID(raw json.RawMessage) string {
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}
