package bookingerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/bookingerr"
)

func TestKindOfDistinguishesKinds(t *testing.T) {
	assert.Equal(t, bookingerr.KindNotFound, bookingerr.KindOf(bookingerr.NotFound("client %s missing", "c1")))
	assert.Equal(t, bookingerr.KindInvalidTransition, bookingerr.KindOf(bookingerr.InvalidTransition("bad move")))
	assert.Equal(t, bookingerr.KindInternal, bookingerr.KindOf(errors.New("raw driver error")))
}

func TestIsMatchesOnKindAlone(t *testing.T) {
	a := bookingerr.PreconditionFailed("client not ACTIF")
	b := bookingerr.PreconditionFailed("vehicle not active")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, bookingerr.NotFound("x")))
}

func TestConflictCarriesConflictList(t *testing.T) {
	items := []bookingerr.ConflictItem{{Kind: "CONTRACT", Identifier: "CNT20250001", ClientName: "Marie Curie"}}
	err := bookingerr.Conflict(items, "vehicle unavailable")

	var e *bookingerr.Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, items, e.Conflicts)
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("constraint violated")
	err := bookingerr.DuplicateKey(cause, "duplicate key")

	assert.ErrorIs(t, err, cause)
}
