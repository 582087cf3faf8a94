package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubAdapter struct {
	origin Origin
	tag    string
}

func (s stubAdapter) Origin() Origin { return s.origin }

func (s stubAdapter) Enumerate(context.Context, uuid.UUID, Window) ([]NormalizedRecord, error) {
	return nil, nil
}

func TestNewAdapterSet(t *testing.T) {
	set := NewAdapterSet(
		stubAdapter{origin: OriginExpense},
		nil,
		stubAdapter{origin: OriginService, tag: "first"},
		stubAdapter{origin: OriginService, tag: "second"},
	)

	assert.Equal(t, 2, set.Len())

	all := set.All()
	assert.Equal(t, OriginService, all[0].Origin())
	assert.Equal(t, OriginExpense, all[1].Origin())

	svc, ok := set.Get(OriginService)
	assert.True(t, ok)
	assert.Equal(t, "first", svc.(stubAdapter).tag)

	_, ok = set.Get(OriginManual)
	assert.False(t, ok)
}

func TestAdapterSet_AllReturnsCopy(t *testing.T) {
	set := NewAdapterSet(stubAdapter{origin: OriginService})

	all := set.All()
	all[0] = stubAdapter{origin: OriginManual}

	_, ok := set.Get(OriginService)
	assert.True(t, ok)
}
