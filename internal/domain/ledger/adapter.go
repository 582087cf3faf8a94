package ledger

import (
	"context"

	"github.com/google/uuid"
)

// SourceAdapter enumerates one origin's records for a clinic and window.
// Implementations return an empty slice when their backing schema is missing.
type SourceAdapter interface {
	Origin() Origin
	Enumerate(ctx context.Context, clinicID uuid.UUID, window Window) ([]NormalizedRecord, error)
}

// AdapterSet is an immutable, origin-ordered collection of adapters
type AdapterSet struct {
	adapters []SourceAdapter
}

// NewAdapterSet builds a set; a later adapter for an origin already present is ignored
func NewAdapterSet(adapters ...SourceAdapter) AdapterSet {
	byOrigin := make(map[Origin]SourceAdapter, len(adapters))
	for _, a := range adapters {
		if a == nil {
			continue
		}
		if _, ok := byOrigin[a.Origin()]; !ok {
			byOrigin[a.Origin()] = a
		}
	}
	ordered := make([]SourceAdapter, 0, len(byOrigin))
	for _, o := range Origins() {
		if a, ok := byOrigin[o]; ok {
			ordered = append(ordered, a)
		}
	}
	return AdapterSet{adapters: ordered}
}

// All returns the adapters in origin order
func (s AdapterSet) All() []SourceAdapter {
	out := make([]SourceAdapter, len(s.adapters))
	copy(out, s.adapters)
	return out
}

// Get returns the adapter for origin if registered
func (s AdapterSet) Get(origin Origin) (SourceAdapter, bool) {
	for _, a := range s.adapters {
		if a.Origin() == origin {
			return a, true
		}
	}
	return nil, false
}

// Len returns the number of registered adapters
func (s AdapterSet) Len() int {
	return len(s.adapters)
}
