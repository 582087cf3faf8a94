package dto

import (
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/tax"
)

const monthLayout = "2006-01"

// MonthPath binds the clinic month addressed by a URL
type MonthPath struct {
	ClinicID string `uri:"clinic_id" binding:"required,uuid"`
	Month    string `uri:"month" binding:"required"`
}

// TransactionResponse is one ledger row. Money is a fixed two-decimal string.
type TransactionResponse struct {
	ID          string    `json:"id"`
	RawID       string    `json:"raw_id" example:"service:6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"`
	Origin      string    `json:"origin" example:"service"`
	Category    string    `json:"category" example:"revenue_service"`
	Subcategory string    `json:"subcategory,omitempty"`
	Description string    `json:"description"`
	Value       string    `json:"value" example:"150.00"`
	OccurredOn  string    `json:"occurred_on"`
	Month       string    `json:"month" example:"2024-05"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClassifyResponse lists the rows one classification pass created or changed
type ClassifyResponse struct {
	ClinicID     string                `json:"clinic_id" example:"6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"`
	Month        string                `json:"month" example:"2024-05"`
	Created      int                   `json:"created"`
	Updated      int                   `json:"updated"`
	Transactions []TransactionResponse `json:"transactions"`
}

// TransactionListResponse lists every ledger row of a clinic month
type TransactionListResponse struct {
	ClinicID     string                `json:"clinic_id" example:"6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"`
	Month        string                `json:"month" example:"2024-05"`
	Total        int                   `json:"total"`
	Transactions []TransactionResponse `json:"transactions"`
}

// SnapshotResponse is a monthly revenue snapshot
type SnapshotResponse struct {
	ClinicID       string    `json:"clinic_id" example:"6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"`
	Month          string    `json:"month" example:"2024-05"`
	ServiceRevenue string    `json:"service_revenue" example:"150.00"`
	ProductRevenue string    `json:"product_revenue" example:"100.00"`
	TotalRevenue   string    `json:"total_revenue" example:"250.00"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// TaxFiguresResponse is the stored tax computation of a clinic month
type TaxFiguresResponse struct {
	ClinicID               string    `json:"clinic_id" example:"6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"`
	Month                  string    `json:"month" example:"2024-05"`
	ServiceTax             string    `json:"service_tax" example:"7.50"`
	SimplifiedTax          string    `json:"simplified_tax" example:"15.00"`
	Withholding            string    `json:"withholding"`
	FatorR                 string    `json:"fator_r" example:"0.2800"`
	EffectiveRate          string    `json:"effective_rate" example:"0.0600"`
	BracketIndex           *int      `json:"bracket_index"`
	BracketTable           string    `json:"bracket_table,omitempty" example:"annex_iii"`
	TrailingRevenue        string    `json:"trailing_revenue"`
	ProjectedAnnualRevenue string    `json:"projected_annual_revenue"`
	ComputedAt             time.Time `json:"computed_at"`
}

// BuildResponse is everything one snapshot refresh produced
type BuildResponse struct {
	Snapshot   SnapshotResponse    `json:"snapshot"`
	Taxes      *TaxFiguresResponse `json:"taxes,omitempty"`
	Enumerated int                 `json:"enumerated"`
	Created    int                 `json:"created"`
	Updated    int                 `json:"updated"`
	Unchanged  int                 `json:"unchanged"`
}

// NewTransactionResponse converts a ledger row
func NewTransactionResponse(t ledger.ClassifiedTransaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		RawID:       t.RawID,
		Origin:      string(t.Origin),
		Category:    string(t.Category),
		Subcategory: t.Subcategory,
		Description: t.Description,
		Value:       t.Value.StringFixed(2),
		OccurredOn:  t.OccurredOn.Format(time.DateOnly),
		Month:       t.Month.Format(monthLayout),
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewClassifyResponse converts the rows touched by a classification pass.
// A row created in this pass still has CreatedAt equal to UpdatedAt.
func NewClassifyResponse(clinicID string, month time.Time, touched []ledger.ClassifiedTransaction) ClassifyResponse {
	resp := ClassifyResponse{
		ClinicID:     clinicID,
		Month:        month.Format(monthLayout),
		Transactions: make([]TransactionResponse, 0, len(touched)),
	}
	for _, t := range touched {
		if t.CreatedAt.Equal(t.UpdatedAt) {
			resp.Created++
		} else {
			resp.Updated++
		}
		resp.Transactions = append(resp.Transactions, NewTransactionResponse(t))
	}
	return resp
}

// NewTransactionListResponse converts the rows of a clinic month
func NewTransactionListResponse(clinicID string, month time.Time, rows []ledger.ClassifiedTransaction) TransactionListResponse {
	resp := TransactionListResponse{
		ClinicID:     clinicID,
		Month:        month.Format(monthLayout),
		Total:        len(rows),
		Transactions: make([]TransactionResponse, 0, len(rows)),
	}
	for _, t := range rows {
		resp.Transactions = append(resp.Transactions, NewTransactionResponse(t))
	}
	return resp
}

// NewSnapshotResponse converts a snapshot
func NewSnapshotResponse(s *ledger.MonthlySnapshot) SnapshotResponse {
	return SnapshotResponse{
		ClinicID:       s.ClinicID.String(),
		Month:          s.Month.Format(monthLayout),
		ServiceRevenue: s.ServiceRevenue.StringFixed(2),
		ProductRevenue: s.ProductRevenue.StringFixed(2),
		TotalRevenue:   s.TotalRevenue.StringFixed(2),
		GeneratedAt:    s.GeneratedAt,
	}
}

// NewTaxFiguresResponse converts stored tax figures
func NewTaxFiguresResponse(f *tax.Figures) *TaxFiguresResponse {
	if f == nil {
		return nil
	}
	return &TaxFiguresResponse{
		ClinicID:               f.ClinicID.String(),
		Month:                  f.Month.Format(monthLayout),
		ServiceTax:             f.ServiceTax.StringFixed(2),
		SimplifiedTax:          f.SimplifiedTax.StringFixed(2),
		Withholding:            f.Withholding.StringFixed(2),
		FatorR:                 f.FatorR.StringFixed(4),
		EffectiveRate:          f.EffectiveRate.StringFixed(4),
		BracketIndex:           f.BracketIndex,
		BracketTable:           f.BracketTable,
		TrailingRevenue:        f.TrailingRevenue.StringFixed(2),
		ProjectedAnnualRevenue: f.ProjectedAnnualRevenue.StringFixed(2),
		ComputedAt:             f.ComputedAt,
	}
}

// NewBuildResponse converts a snapshot refresh
func NewBuildResponse(r *appledger.BuildResult) BuildResponse {
	return BuildResponse{
		Snapshot:   NewSnapshotResponse(r.Snapshot),
		Taxes:      NewTaxFiguresResponse(r.Figures),
		Enumerated: r.Stats.Enumerated,
		Created:    r.Stats.Created,
		Updated:    r.Stats.Updated,
		Unchanged:  r.Stats.Unchanged,
	}
}
