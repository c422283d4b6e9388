package bookingerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/bookingerr"
)

func TestListEmptyReturnsNil(t *testing.T) {
	var l bookingerr.List
	assert.True(t, l.Empty())
	assert.NoError(t, l.Err())
}

func TestListSingleErrorReturnedUnwrapped(t *testing.T) {
	var l bookingerr.List
	e := bookingerr.InvalidTransition("contract c1 is CANCELLED")
	l.Add(e)

	assert.Equal(t, e, l.Err())
}

func TestListMultipleErrorsJoined(t *testing.T) {
	var l bookingerr.List
	l.Add(bookingerr.InvalidTransition("contract c1 is CANCELLED"))
	l.Add(bookingerr.InvalidTransition("contract c2 is CANCELLED"))

	err := l.Err()
	assert.Error(t, err)
	assert.False(t, l.Empty())
}

func TestListAddOnceDedupesIdenticalMessages(t *testing.T) {
	var l bookingerr.List
	l.AddOnce(bookingerr.NotFound("client c1"))
	l.AddOnce(bookingerr.NotFound("client c1")) // exact duplicate, deduped

	assert.Len(t, l, 1)
}

func TestListAddOnceKeepsDistinctErrorsOfSameKind(t *testing.T) {
	var l bookingerr.List
	l.AddOnce(bookingerr.InvalidTransition("contract c1 in status CANCELLED cannot move to ACTIVE"))
	l.AddOnce(bookingerr.InvalidTransition("contract c2 in status CANCELLED cannot move to ACTIVE"))
	l.AddOnce(bookingerr.InvalidTransition("contract c3 in status CANCELLED cannot move to ACTIVE"))

	assert.Len(t, l, 3, "same-Kind errors about different candidates must not collapse into one")
}

func TestListAddIgnoresNil(t *testing.T) {
	var l bookingerr.List
	l.Add(nil)
	assert.True(t, l.Empty())
}
