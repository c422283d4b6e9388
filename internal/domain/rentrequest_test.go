package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

// TestCanTransitionRentRequestOpenQuestion2 pins down this spec's resolution
// of Open Question #2: APPROVED may move to CONFIRMED or CANCELLED, both of
// which are then terminal.
func TestCanTransitionRentRequestOpenQuestion2(t *testing.T) {
	assert.True(t, domain.CanTransitionRentRequest(domain.RentRequestApproved, domain.RentRequestConfirmed))
	assert.True(t, domain.CanTransitionRentRequest(domain.RentRequestApproved, domain.RentRequestCancelled))
	assert.False(t, domain.CanTransitionRentRequest(domain.RentRequestConfirmed, domain.RentRequestCancelled))
	assert.False(t, domain.CanTransitionRentRequest(domain.RentRequestCancelled, domain.RentRequestApproved))
}

func TestCanTransitionRentRequestFullTable(t *testing.T) {
	legal := map[domain.RentRequestStatus][]domain.RentRequestStatus{
		domain.RentRequestPending:   {domain.RentRequestReviewed, domain.RentRequestApproved, domain.RentRequestRejected, domain.RentRequestContacted},
		domain.RentRequestReviewed:  {domain.RentRequestApproved, domain.RentRequestRejected, domain.RentRequestContacted},
		domain.RentRequestContacted: {domain.RentRequestApproved, domain.RentRequestRejected},
	}
	for from, tos := range legal {
		for _, to := range tos {
			assert.True(t, domain.CanTransitionRentRequest(from, to), "%s -> %s should be legal", from, to)
		}
	}
}

func TestRentRequestStatusTerminal(t *testing.T) {
	assert.True(t, domain.RentRequestRejected.Terminal())
	assert.True(t, domain.RentRequestConfirmed.Terminal())
	assert.True(t, domain.RentRequestCancelled.Terminal())
	assert.False(t, domain.RentRequestPending.Terminal())
	assert.False(t, domain.RentRequestApproved.Terminal())
}

func TestRentRequestStatusBlockingMatchesUnifiedDetector(t *testing.T) {
	// Open Question #1: the unified detector's {APPROVED, CONFIRMED} set is
	// authoritative everywhere.
	assert.True(t, domain.RentRequestApproved.Blocking())
	assert.True(t, domain.RentRequestConfirmed.Blocking())
	assert.False(t, domain.RentRequestPending.Blocking())
	assert.False(t, domain.RentRequestReviewed.Blocking())
	assert.False(t, domain.RentRequestRejected.Blocking())
}
