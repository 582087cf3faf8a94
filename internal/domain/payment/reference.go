package payment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TargetKind is the local entity a payment settles
type TargetKind string

const (
	TargetBudget TargetKind = "budget"
	TargetOrder  TargetKind = "order"
)

// Reference is the parsed form of an external reference such as "budget-<uuid>"
type Reference struct {
	Kind TargetKind
	ID   uuid.UUID
}

// String renders the reference as sent to the provider
func (r Reference) String() string {
	return string(r.Kind) + "-" + r.ID.String()
}

// BudgetReference builds the reference of a budget checkout
func BudgetReference(id uuid.UUID) Reference {
	return Reference{Kind: TargetBudget, ID: id}
}

// OrderReference builds the reference of a cart order checkout
func OrderReference(id uuid.UUID) Reference {
	return Reference{Kind: TargetOrder, ID: id}
}

// ParseReference parses "<kind>-<uuid>"
func ParseReference(s string) (Reference, error) {
	kind, rest, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	k := TargetKind(kind)
	if k != TargetBudget && k != TargetOrder {
		return Reference{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidReference, kind)
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return Reference{Kind: k, ID: id}, nil
}
