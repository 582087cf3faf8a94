package handler

import (
	"context"
	"time"

	appledger "github.com/clinicfin/backend/internal/application/ledger"
	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/clinicfin/backend/internal/domain/tax"
	"github.com/clinicfin/backend/internal/infrastructure/logger"
	"github.com/clinicfin/backend/internal/infrastructure/telemetry"
	"github.com/clinicfin/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Classifier upserts a clinic month into the ledger and lists its rows
type Classifier interface {
	Classify(ctx context.Context, clinicID uuid.UUID, month time.Time) ([]ledger.ClassifiedTransaction, error)
	Transactions(ctx context.Context, clinicID uuid.UUID, month time.Time) ([]ledger.ClassifiedTransaction, error)
}

// SnapshotBuilder refreshes and reads monthly snapshots
type SnapshotBuilder interface {
	Build(ctx context.Context, clinicID uuid.UUID, month time.Time) (*appledger.BuildResult, error)
	Find(ctx context.Context, clinicID uuid.UUID, month time.Time) (*ledger.MonthlySnapshot, error)
}

// TaxCalculator computes and reads tax figures
type TaxCalculator interface {
	Compute(ctx context.Context, clinicID uuid.UUID, month time.Time) (*tax.Figures, error)
	Find(ctx context.Context, clinicID uuid.UUID, month time.Time) (*tax.Figures, error)
}

// LedgerHandler exposes classification, snapshot and tax operations per clinic month
type LedgerHandler struct {
	BaseHandler
	classifier Classifier
	snapshots  SnapshotBuilder
	taxes      TaxCalculator
	metrics    *telemetry.FinanceMetrics
}

// NewLedgerHandler creates a LedgerHandler. metrics may be nil.
func NewLedgerHandler(classifier Classifier, snapshots SnapshotBuilder, taxes TaxCalculator, metrics *telemetry.FinanceMetrics) *LedgerHandler {
	return &LedgerHandler{
		classifier: classifier,
		snapshots:  snapshots,
		taxes:      taxes,
		metrics:    metrics,
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	months := rg.Group("/clinics/:clinic_id/months/:month")
	months.POST("/classify", h.Classify)
	months.GET("/transactions", h.ListTransactions)
	months.POST("/snapshot", h.BuildSnapshot)
	months.GET("/snapshot", h.GetSnapshot)
	months.POST("/taxes", h.ComputeTaxes)
	months.GET("/taxes", h.GetTaxes)
}

// Classify godoc
// @ID           classifyClinicMonth
// @Summary      Classify a clinic month
// @Description  Upserts every source record of the month into the ledger and returns the rows created or changed
// @Tags         ledger
// @Produce      json
// @Param        clinic_id path string true "Clinic ID" format(uuid)
// @Param        month path string true "Month as YYYY-MM" example(2024-05)
// @Success      200 {object} dto.Response{data=dto.ClassifyResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/v1/clinics/{clinic_id}/months/{month}/classify [post]
func (h *LedgerHandler) Classify(c *gin.Context) {
	clinicID, month, ok := h.bindMonthPath(c)
	if !ok {
		return
	}
	ctx, span, done := h.begin(c, "ledger.classify", clinicID, month)

	touched, err := h.classifier.Classify(ctx, clinicID, month)
	done(err)
	telemetry.EndSpan(span, err)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.NewClassifyResponse(clinicID.String(), month, touched)
	h.metrics.RecordLedgerRows(ctx, resp.Created, resp.Updated, 0)
	h.Success(c, resp)
}

// ListTransactions godoc
// @ID           listClinicMonthTransactions
// @Summary      List ledger rows of a clinic month
// @Tags         ledger
// @Produce      json
// @Param        clinic_id path string true "Clinic ID" format(uuid)
// @Param        month path string true "Month as YYYY-MM" example(2024-05)
// @Success      200 {object} dto.Response{data=dto.TransactionListResponse}
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/v1/clinics/{clinic_id}/months/{month}/transactions [get]
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	clinicID, month, ok := h.bindMonthPath(c)
	if !ok {
		return
	}
	rows, err := h.classifier.Transactions(c.Request.Context(), clinicID, month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewTransactionListResponse(clinicID.String(), month, rows))
}

// BuildSnapshot godoc
// @ID           buildClinicMonthSnapshot
// @Summary      Refresh a clinic month
// @Description  Recomputes the monthly snapshot from the billing sources, then reclassifies the month and recomputes its taxes
// @Tags         ledger
// @Produce      json
// @Param        clinic_id path string true "Clinic ID" format(uuid)
// @Param        month path string true "Month as YYYY-MM" example(2024-05)
// @Success      200 {object} dto.Response{data=dto.BuildResponse}
// @Failure      400 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/v1/clinics/{clinic_id}/months/{month}/snapshot [post]
func (h *LedgerHandler) BuildSnapshot(c *gin.Context) {
	clinicID, month, ok := h.bindMonthPath(c)
	if !ok {
		return
	}
	ctx, span, done := h.begin(c, "ledger.build_snapshot", clinicID, month)

	result, err := h.snapshots.Build(ctx, clinicID, month)
	done(err)
	telemetry.EndSpan(span, err)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.metrics.RecordLedgerRows(ctx, result.Stats.Created, result.Stats.Updated, result.Stats.Unchanged)
	h.Success(c, dto.NewBuildResponse(result))
}

// GetSnapshot godoc
// @ID           getClinicMonthSnapshot
// @Summary      Get a monthly snapshot
// @Tags         ledger
// @Produce      json
// @Param        clinic_id path string true "Clinic ID" format(uuid)
// @Param        month path string true "Month as YYYY-MM" example(2024-05)
// @Success      200 {object} dto.Response{data=dto.SnapshotResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /api/v1/clinics/{clinic_id}/months/{month}/snapshot [get]
func (h *LedgerHandler) GetSnapshot(c *gin.Context) {
	clinicID, month, ok := h.bindMonthPath(c)
	if !ok {
		return
	}
	snapshot, err := h.snapshots.Find(c.Request.Context(), clinicID, month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSnapshotResponse(snapshot))
}

// ComputeTaxes godoc
// @ID           computeClinicMonthTaxes
// @Summary      Compute tax figures
// @Description  Service tax, Simples Nacional tax over the trailing twelve months, Fator R and contractor withholding
// @Tags         tax
// @Produce      json
// @Param        clinic_id path string true "Clinic ID" format(uuid)
// @Param        month path string true "Month as YYYY-MM" example(2024-05)
// @Success      200 {object} dto.Response{data=dto.TaxFiguresResponse}
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /api/v1/clinics/{clinic_id}/months/{month}/taxes [post]
func (h *LedgerHandler) ComputeTaxes(c *gin.Context) {
	clinicID, month, ok := h.bindMonthPath(c)
	if !ok {
		return
	}
	ctx, span, done := h.begin(c, "tax.compute", clinicID, month)

	figures, err := h.taxes.Compute(ctx, clinicID, month)
	done(err)
	telemetry.EndSpan(span, err)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewTaxFiguresResponse(figures))
}

// GetTaxes godoc
// @ID           getClinicMonthTaxes
// @Summary      Get stored tax figures
// @Tags         tax
// @Produce      json
// @Param        clinic_id path string true "Clinic ID" format(uuid)
// @Param        month path string true "Month as YYYY-MM" example(2024-05)
// @Success      200 {object} dto.Response{data=dto.TaxFiguresResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /api/v1/clinics/{clinic_id}/months/{month}/taxes [get]
func (h *LedgerHandler) GetTaxes(c *gin.Context) {
	clinicID, month, ok := h.bindMonthPath(c)
	if !ok {
		return
	}
	figures, err := h.taxes.Find(c.Request.Context(), clinicID, month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewTaxFiguresResponse(figures))
}

// begin scopes the request logger to the clinic and starts a span.
// The returned func records the operation duration.
func (h *LedgerHandler) begin(c *gin.Context, op string, clinicID uuid.UUID, month time.Time) (context.Context, trace.Span, func(error)) {
	ctx, _ := logger.WithClinicID(c.Request.Context(), logger.GetGinLogger(c), clinicID.String())
	ctx, span := telemetry.StartSpan(ctx, op,
		attribute.String("clinic_id", clinicID.String()),
		attribute.String("month", month.Format("2006-01")),
	)
	start := time.Now()
	return ctx, span, func(err error) {
		h.metrics.RecordDuration(ctx, op, time.Since(start), err)
	}
}
