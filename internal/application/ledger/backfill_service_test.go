package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestBackfill(builder Builder, cfg BackfillConfig) *BackfillService {
	svc := NewBackfillService(nil, builder, nil, cfg)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestBackfill_IsolatesFailingCells(t *testing.T) {
	builder := new(MockBuilder)
	good, bad := uuid.New(), uuid.New()
	july := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	builder.On("Build", mock.Anything, good, mock.Anything).Return(&BuildResult{}, nil)
	builder.On("Build", mock.Anything, bad, july).Return(nil, errors.New("source table locked"))
	builder.On("Build", mock.Anything, bad, mock.Anything).Return(&BuildResult{}, nil)

	result, err := newTestBackfill(builder, BackfillConfig{Months: 3}).Run(context.Background(), 0, []uuid.UUID{bad, good})

	require.NoError(t, err)
	assert.Equal(t, 6, result.Planned())
	assert.Equal(t, 5, result.Processed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, bad, result.Failures[0].ClinicID)
	assert.True(t, result.Failures[0].Month.Equal(july))
	assert.False(t, result.Interrupted)

	// every refreshed cell is listed, the failed one is not
	require.Len(t, result.Cells, 5)
	assert.Equal(t, bad, result.Cells[0].ClinicID)
	assert.True(t, result.Cells[0].Month.Equal(july.AddDate(0, -1, 0)))
	for _, cell := range result.Cells {
		assert.False(t, cell.ClinicID == bad && cell.Month.Equal(july), "failed cell listed as refreshed")
	}
	assert.Equal(t, good, result.Cells[4].ClinicID)
	builder.AssertNumberOfCalls(t, "Build", 6)
}

func TestBackfill_MonthsIncludeCurrent(t *testing.T) {
	builder := new(MockBuilder)
	builder.On("Build", mock.Anything, mock.Anything, mock.Anything).Return(&BuildResult{}, nil)

	result, err := newTestBackfill(builder, DefaultBackfillConfig()).Run(context.Background(), 2, []uuid.UUID{uuid.New()})

	require.NoError(t, err)
	require.Len(t, result.Months, 2)
	assert.True(t, result.Months[0].Equal(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, result.Months[1].Equal(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBackfill_CellDeadline(t *testing.T) {
	builder := new(MockBuilder)
	builder.On("Build", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	result, err := newTestBackfill(builder, BackfillConfig{Months: 1, CellTimeout: 10 * time.Millisecond}).
		Run(context.Background(), 0, []uuid.UUID{uuid.New(), uuid.New()})

	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Len(t, result.Failures, 2)
}

func TestBackfill_StopsOnCancellation(t *testing.T) {
	builder := new(MockBuilder)
	ctx, cancel := context.WithCancel(context.Background())
	builder.On("Build", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled).Once()

	result, err := newTestBackfill(builder, BackfillConfig{Months: 2}).Run(ctx, 0, []uuid.UUID{uuid.New()})

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, result.Interrupted)
	assert.Empty(t, result.Cells)
	assert.Empty(t, result.Failures)
	builder.AssertNumberOfCalls(t, "Build", 1)
}
