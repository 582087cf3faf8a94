// Package dbtest opens isolated in-memory SQLite databases for repository and service tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenEmpty returns a database with no tables.
// Each call gets its own named in-memory database pinned to a single connection.
func OpenEmpty(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Open returns a database with every model migrated
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db := OpenEmpty(t)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Insert creates each value, failing the test on error
func Insert(t testing.TB, db *gorm.DB, values ...interface{}) {
	t.Helper()
	for _, v := range values {
		require.NoError(t, db.Create(v).Error)
	}
}

// Base returns a BaseModel with a fresh ID
func Base() models.BaseModel {
	now := time.Now().UTC()
	return models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}
