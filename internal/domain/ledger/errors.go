package ledger

import (
	"errors"

	"github.com/clinicfin/backend/internal/domain/shared"
)

var (
	// ErrInvalidMonth is returned for a missing, malformed or future month
	ErrInvalidMonth = shared.NewDomainError("VALIDATION_ERROR", "month is not a valid reporting period")

	// ErrUnknownClinic is returned when the clinic id does not resolve
	ErrUnknownClinic = shared.NewDomainError("VALIDATION_ERROR", "clinic does not exist")
)

var (
	// ErrSchemaUnavailable signals that a source table or column is missing.
	// Adapters swallow it and report no records.
	ErrSchemaUnavailable = errors.New("ledger: source schema unavailable")

	// ErrDuplicateRawID is returned by the repository when (clinic_id, raw_id) already exists
	ErrDuplicateRawID = errors.New("ledger: raw id already classified")

	// ErrUpsertConflict is returned when an insert conflict persists after the update retry
	ErrUpsertConflict = errors.New("ledger: upsert conflict persisted after retry")
)
