package dto

import (
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	apppayment "github.com/clinicfin/backend/internal/application/payment"
)

// BackfillRequest triggers an out-of-schedule backfill.
// Zero months uses the configured default; no clinic ids means every active clinic.
type BackfillRequest struct {
	Months    int      `json:"months" binding:"omitempty,min=1,max=36"`
	ClinicIDs []string `json:"clinic_ids" binding:"omitempty,dive,uuid"`
}

// CellFailureResponse is one (clinic, month) cell a backfill could not refresh
type CellFailureResponse struct {
	ClinicID string `json:"clinic_id" example:"6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"`
	Month    string `json:"month" example:"2024-05"`
	Error    string `json:"error"`
}

// CellResponse is one (clinic, month) cell a backfill refreshed
type CellResponse struct {
	ClinicID string `json:"clinic_id" example:"6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"`
	Month    string `json:"month" example:"2024-05"`
}

// BackfillResultResponse summarizes a finished backfill run
type BackfillResultResponse struct {
	Clinics     int                   `json:"clinics"`
	Months      []string              `json:"months"`
	Planned     int                   `json:"planned"`
	Processed   int                   `json:"processed"`
	Cells       []CellResponse        `json:"cells"`
	Failures    []CellFailureResponse `json:"failures"`
	Interrupted bool                  `json:"interrupted"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  time.Time             `json:"finished_at"`
}

// BackfillStatusResponse reports the schedule, whether a run is active and the last result.
// NextRun is only set while the schedule is active.
type BackfillStatusResponse struct {
	Scheduled bool                    `json:"scheduled"`
	NextRun   *time.Time              `json:"next_run,omitempty"`
	Running   bool                    `json:"running"`
	Last      *BackfillResultResponse `json:"last,omitempty"`
}

// NewBackfillResultResponse converts a backfill result; nil stays nil
func NewBackfillResultResponse(r *appledger.BackfillResult) *BackfillResultResponse {
	if r == nil {
		return nil
	}
	resp := &BackfillResultResponse{
		Clinics:     r.Clinics,
		Months:      make([]string, 0, len(r.Months)),
		Planned:     r.Planned(),
		Processed:   r.Processed,
		Cells:       make([]CellResponse, 0, len(r.Cells)),
		Failures:    make([]CellFailureResponse, 0, len(r.Failures)),
		Interrupted: r.Interrupted,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
	for _, m := range r.Months {
		resp.Months = append(resp.Months, m.Format(monthLayout))
	}
	for _, c := range r.Cells {
		resp.Cells = append(resp.Cells, CellResponse{ClinicID: c.ClinicID.String(), Month: c.Month.Format(monthLayout)})
	}
	for _, f := range r.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		resp.Failures = append(resp.Failures, CellFailureResponse{
			ClinicID: f.ClinicID.String(),
			Month:    f.Month.Format(monthLayout),
			Error:    msg,
		})
	}
	return resp
}

// Webhook acknowledgment statuses. The provider only sees these.
const (
	WebhookStatusOK                = "ok"
	WebhookStatusAlreadyProcessed  = "already_processed"
	WebhookStatusBadSignature      = "bad_signature"
	WebhookStatusBadRequest        = "bad_request"
	WebhookStatusInternalRetryable = "internal_retryable"
)

// WebhookResponse is the acknowledgment body of the payment webhook
type WebhookResponse struct {
	Status        string `json:"status" example:"ok"`
	EventID       string `json:"event_id,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty" example:"completed"`
}

// NewWebhookResponse converts an accepted delivery. An ignored delivery is
// acknowledged as ok so the provider stops retrying it.
func NewWebhookResponse(r *apppayment.WebhookResult) WebhookResponse {
	resp := WebhookResponse{Status: WebhookStatusOK, EventID: r.EventID}
	if r.Outcome == apppayment.OutcomeAlreadyProcessed {
		resp.Status = WebhookStatusAlreadyProcessed
	}
	if r.Status != "" {
		resp.PaymentStatus = string(r.Status)
	}
	return resp
}
