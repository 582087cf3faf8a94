package handler

import (
	"errors"
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	"github.com/clinicfin/backend/internal/infrastructure/scheduler"
	"github.com/clinicfin/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BackfillTrigger starts out-of-schedule backfill runs and reports on them
type BackfillTrigger interface {
	TriggerNow(months int, clinicIDs []uuid.UUID) error
	LastResult() *appledger.BackfillResult
	Busy() bool
	IsRunning() bool
	NextRun(now time.Time) time.Time
}

// BackfillHandler exposes the backfill scheduler
type BackfillHandler struct {
	BaseHandler
	trigger BackfillTrigger
}

// NewBackfillHandler creates a BackfillHandler
func NewBackfillHandler(trigger BackfillTrigger) *BackfillHandler {
	return &BackfillHandler{trigger: trigger}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *BackfillHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/backfill", h.Trigger)
	rg.GET("/backfill", h.Status)
}

// Trigger godoc
// @ID           triggerBackfill
// @Summary      Start a backfill run
// @Description  Rebuilds recent months in the background. 202 means accepted, 409 that another run is still in flight.
// @Tags         backfill
// @Accept       json
// @Produce      json
// @Param        request body dto.BackfillRequest false "Months and clinics; empty means the configured defaults"
// @Success      202 {object} dto.Response{data=dto.BackfillStatusResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /api/v1/backfill [post]
func (h *BackfillHandler) Trigger(c *gin.Context) {
	var req dto.BackfillRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "months must be between 1 and 36 and clinic_ids must be uuids")
			return
		}
	}

	clinicIDs := make([]uuid.UUID, 0, len(req.ClinicIDs))
	for _, raw := range req.ClinicIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "clinic_ids must be uuids")
			return
		}
		clinicIDs = append(clinicIDs, id)
	}
	if len(clinicIDs) == 0 {
		clinicIDs = nil
	}

	switch err := h.trigger.TriggerNow(req.Months, clinicIDs); {
	case errors.Is(err, scheduler.ErrRunInProgress):
		h.Error(c, dto.ErrCodeRunInProgress, "a backfill run is already in progress")
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.Error(c, dto.ErrCodeUnavailable, "backfill scheduler is not running")
	case err != nil:
		h.HandleError(c, err)
	default:
		h.Accepted(c, dto.BackfillStatusResponse{Running: true})
	}
}

// Status godoc
// @ID           getBackfillStatus
// @Summary      Backfill status
// @Description  Whether the monthly schedule is active and when it fires next, whether a run is in flight, plus the cells refreshed and failed by the last run
// @Tags         backfill
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.BackfillStatusResponse}
// @Router       /api/v1/backfill [get]
func (h *BackfillHandler) Status(c *gin.Context) {
	resp := dto.BackfillStatusResponse{
		Scheduled: h.trigger.IsRunning(),
		Running:   h.trigger.Busy(),
		Last:      dto.NewBackfillResultResponse(h.trigger.LastResult()),
	}
	if resp.Scheduled {
		next := h.trigger.NextRun(time.Now()).UTC()
		resp.NextRun = &next
	}
	h.Success(c, resp)
}
