package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FinanceMetrics counts ledger, webhook and backfill activity.
// A nil *FinanceMetrics records nothing.
type FinanceMetrics struct {
	ledgerRows    *Counter
	webhooks      *Counter
	backfillCells *Counter
	duration      *Histogram
}

// NewFinanceMetrics registers the instruments on meter
func NewFinanceMetrics(meter metric.Meter) (*FinanceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	fm := &FinanceMetrics{}
	var err error

	fm.ledgerRows, err = NewCounter(meter,
		"clinicfin_ledger_rows_total",
		"Classified transactions examined by the upsert, by result",
		"{rows}",
	)
	if err != nil {
		return nil, err
	}

	fm.webhooks, err = NewCounter(meter,
		"clinicfin_webhook_total",
		"Payment webhook deliveries, by outcome",
		"{deliveries}",
	)
	if err != nil {
		return nil, err
	}

	fm.backfillCells, err = NewCounter(meter,
		"clinicfin_backfill_cells_total",
		"Backfill (clinic, month) cells, by result",
		"{cells}",
	)
	if err != nil {
		return nil, err
	}

	fm.duration, err = NewHistogram(meter,
		"clinicfin_operation_duration_seconds",
		"Duration of ledger, tax and webhook operations",
		"s",
		0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 120,
	)
	if err != nil {
		return nil, err
	}
	return fm, nil
}

// RecordLedgerRows counts one classification pass
func (fm *FinanceMetrics) RecordLedgerRows(ctx context.Context, created, updated, unchanged int) {
	if fm == nil {
		return
	}
	fm.ledgerRows.Add(ctx, int64(created), attribute.String("result", "created"))
	fm.ledgerRows.Add(ctx, int64(updated), attribute.String("result", "updated"))
	fm.ledgerRows.Add(ctx, int64(unchanged), attribute.String("result", "unchanged"))
}

// RecordWebhook counts one delivery by its response outcome
func (fm *FinanceMetrics) RecordWebhook(ctx context.Context, outcome string) {
	if fm == nil {
		return
	}
	fm.webhooks.Inc(ctx, attribute.String("outcome", outcome))
}

// RecordBackfill counts the cells of one run
func (fm *FinanceMetrics) RecordBackfill(ctx context.Context, processed, failed int) {
	if fm == nil {
		return
	}
	fm.backfillCells.Add(ctx, int64(processed), attribute.String("result", "processed"))
	fm.backfillCells.Add(ctx, int64(failed), attribute.String("result", "failed"))
}

// RecordDuration records how long operation took and whether it failed
func (fm *FinanceMetrics) RecordDuration(ctx context.Context, operation string, d time.Duration, err error) {
	if fm == nil {
		return
	}
	fm.duration.RecordDuration(ctx, d,
		attribute.String("operation", operation),
		attribute.Bool("error", err != nil),
	)
}
