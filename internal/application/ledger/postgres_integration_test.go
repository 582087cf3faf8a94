//go:build integration

package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/clinicfin/backend/internal/infrastructure/persistence/dbtest"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostgres_DetectFindsEverySource(t *testing.T) {
	db := dbtest.OpenPostgres(t)
	assert.Equal(t, source.AllCapabilities(), source.Detect(context.Background(), db, zap.NewNop()))
}

func TestPostgres_ConcurrentClassifyCreatesEachRowOnce(t *testing.T) {
	h := harnessOn(dbtest.OpenPostgres(t))
	clinicID := h.clinic(t)
	h.seedMonth(t, clinicID)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		touched int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := h.classifier.Classify(context.Background(), clinicID, h.month)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			touched += len(rows)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, touched)
	assert.Equal(t, int64(6), h.ledgerCount(t, clinicID))
}

func TestPostgres_BuildTwiceKeepsOneSnapshot(t *testing.T) {
	h := harnessOn(dbtest.OpenPostgres(t))
	clinicID := h.clinic(t)
	h.seedMonth(t, clinicID)
	ctx := context.Background()

	first, err := h.snapshots.Build(ctx, clinicID, h.month)
	require.NoError(t, err)
	second, err := h.snapshots.Build(ctx, clinicID, h.month)
	require.NoError(t, err)

	assert.True(t, first.Snapshot.TotalRevenue.Equal(second.Snapshot.TotalRevenue))
	assert.Equal(t, 6, second.Stats.Unchanged)

	var snapshots int64
	require.NoError(t, h.db.Model(&models.MonthlySnapshotModel{}).Where("clinic_id = ?", clinicID).Count(&snapshots).Error)
	assert.Equal(t, int64(1), snapshots)
}
