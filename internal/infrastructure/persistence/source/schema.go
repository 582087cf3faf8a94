package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinicfin/backend/internal/domain/ledger"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// postgres SQLSTATEs for a missing table or column
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// IsMissingRelation reports whether err comes from querying a table or column that does not exist
func IsMissingRelation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable || pgErr.Code == pgUndefinedColumn
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}

// reader runs adapter queries under a savepoint so a missing relation cannot abort the caller's transaction
type reader struct {
	db     *gorm.DB
	origin ledger.Origin
	logger *zap.Logger
}

func (r reader) scan(ctx context.Context, dest interface{}, build func(db *gorm.DB) *gorm.DB) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return build(tx).Scan(dest).Error
	})
	if IsMissingRelation(err) {
		r.logger.Warn("source schema unavailable, skipping",
			zap.String("origin", string(r.origin)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ledger.ErrSchemaUnavailable, err)
	}
	return err
}

// tolerate turns a schema error into an empty result
func tolerate(records []ledger.NormalizedRecord, err error) ([]ledger.NormalizedRecord, error) {
	if errors.Is(err, ledger.ErrSchemaUnavailable) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}
