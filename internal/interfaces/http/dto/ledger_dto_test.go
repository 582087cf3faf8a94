package dto

import (
	"errors"
	"testing"
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	apppayment "github.com/clinicfin/backend/internal/application/payment"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var may2024 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestNewClassifyResponse_SplitsCreatedAndUpdated(t *testing.T) {
	clinicID := uuid.New()
	created := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	later := created.Add(48 * time.Hour)

	rows := []ledger.ClassifiedTransaction{
		{
			BaseEntity:  shared.BaseEntity{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
			ClinicID:    clinicID,
			RawID:       "service:1",
			OccurredOn:  time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
			Month:       may2024,
			Origin:      ledger.OriginService,
			Description: "consultation",
			Value:       decimal.RequireFromString("150"),
			Category:    ledger.CategoryRevenueService,
		},
		{
			BaseEntity:  shared.BaseEntity{ID: uuid.New(), CreatedAt: created, UpdatedAt: later},
			ClinicID:    clinicID,
			RawID:       "expense:9",
			OccurredOn:  time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
			Month:       may2024,
			Origin:      ledger.OriginExpense,
			Description: "vaccines",
			Value:       decimal.RequireFromString("80.5"),
			Category:    ledger.CategoryCostOfGoods,
			Subcategory: "inventory",
		},
	}

	resp := NewClassifyResponse(clinicID.String(), may2024, rows)

	assert.Equal(t, "2024-05", resp.Month)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Updated)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "150.00", resp.Transactions[0].Value)
	assert.Equal(t, "2024-05-03", resp.Transactions[0].OccurredOn)
	assert.Equal(t, "80.50", resp.Transactions[1].Value)
	assert.Equal(t, "cost_of_goods", resp.Transactions[1].Category)
}

func TestNewClassifyResponse_EmptyIsNotNil(t *testing.T) {
	resp := NewClassifyResponse(uuid.NewString(), may2024, nil)
	assert.NotNil(t, resp.Transactions)
	assert.Empty(t, resp.Transactions)
}

func TestNewBuildResponse(t *testing.T) {
	clinicID := uuid.New()
	now := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	idx := 1
	result := &appledger.BuildResult{
		Snapshot: ledger.NewMonthlySnapshot(clinicID, may2024,
			decimal.RequireFromString("1000"), decimal.RequireFromString("250.456"), now),
		Stats: appledger.ClassifyStats{Enumerated: 5, Created: 2, Updated: 1, Unchanged: 2},
		Figures: tax.NewFigures(clinicID, may2024, tax.Computation{
			ServiceTax:    decimal.RequireFromString("50"),
			EffectiveRate: decimal.RequireFromString("0.0612"),
			FatorR:        decimal.RequireFromString("0.3"),
			BracketIndex:  &idx,
			BracketTable:  "annex_iii",
		}, now),
	}

	resp := NewBuildResponse(result)

	assert.Equal(t, "1000.00", resp.Snapshot.ServiceRevenue)
	assert.Equal(t, "250.46", resp.Snapshot.ProductRevenue)
	assert.Equal(t, "1250.46", resp.Snapshot.TotalRevenue)
	assert.Equal(t, 5, resp.Enumerated)
	assert.Equal(t, 2, resp.Unchanged)
	require.NotNil(t, resp.Taxes)
	assert.Equal(t, "50.00", resp.Taxes.ServiceTax)
	assert.Equal(t, "0.0612", resp.Taxes.EffectiveRate)
	assert.Equal(t, "0.3000", resp.Taxes.FatorR)
	assert.Equal(t, &idx, resp.Taxes.BracketIndex)
}

func TestNewBackfillResultResponse(t *testing.T) {
	assert.Nil(t, NewBackfillResultResponse(nil))

	clinicID := uuid.New()
	r := &appledger.BackfillResult{
		Clinics:   2,
		Months:    []time.Time{may2024.AddDate(0, -1, 0), may2024},
		Processed: 1,
		Cells:     []appledger.Cell{{ClinicID: clinicID, Month: may2024.AddDate(0, -1, 0)}},
		Failures:  []appledger.CellFailure{{ClinicID: clinicID, Month: may2024, Err: errors.New("deadline exceeded")}},
	}

	resp := NewBackfillResultResponse(r)

	assert.Equal(t, []string{"2024-04", "2024-05"}, resp.Months)
	assert.Equal(t, 4, resp.Planned)
	assert.Equal(t, []CellResponse{{ClinicID: clinicID.String(), Month: "2024-04"}}, resp.Cells)
	assert.False(t, resp.Interrupted)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, clinicID.String(), resp.Failures[0].ClinicID)
	assert.Equal(t, "deadline exceeded", resp.Failures[0].Error)
}

func TestNewWebhookResponse(t *testing.T) {
	tests := []struct {
		name   string
		result apppayment.WebhookResult
		want   WebhookResponse
	}{
		{
			name:   "transitioned",
			result: apppayment.WebhookResult{Outcome: apppayment.OutcomeOK, EventID: "e1", Status: payment.StatusCompleted},
			want:   WebhookResponse{Status: "ok", EventID: "e1", PaymentStatus: "completed"},
		},
		{
			name:   "replay",
			result: apppayment.WebhookResult{Outcome: apppayment.OutcomeAlreadyProcessed, EventID: "e1", Status: payment.StatusCompleted},
			want:   WebhookResponse{Status: "already_processed", EventID: "e1", PaymentStatus: "completed"},
		},
		{
			name:   "ignored",
			result: apppayment.WebhookResult{Outcome: apppayment.OutcomeIgnored, EventID: "e2"},
			want:   WebhookResponse{Status: "ok", EventID: "e2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewWebhookResponse(&tt.result))
		})
	}
}
