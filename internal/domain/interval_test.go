package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlapsInclusiveOnSharedEndpoint(t *testing.T) {
	// spec §8 boundary behaviour: a contract ending on day D and another
	// starting on day D conflict.
	a := [2]time.Time{date(2025, 3, 10), date(2025, 3, 15)}
	b := [2]time.Time{date(2025, 3, 15), date(2025, 3, 20)}

	assert.True(t, domain.Overlaps(a[0], a[1], b[0], b[1]))
}

func TestOverlapsFalseWhenDisjoint(t *testing.T) {
	a := [2]time.Time{date(2025, 3, 10), date(2025, 3, 14)}
	b := [2]time.Time{date(2025, 3, 15), date(2025, 3, 20)}

	assert.False(t, domain.Overlaps(a[0], a[1], b[0], b[1]))
}

func TestOverlapsTrueWhenOneContainsOther(t *testing.T) {
	a := [2]time.Time{date(2025, 3, 1), date(2025, 3, 31)}
	b := [2]time.Time{date(2025, 3, 10), date(2025, 3, 15)}

	assert.True(t, domain.Overlaps(a[0], a[1], b[0], b[1]))
	assert.True(t, domain.Overlaps(b[0], b[1], a[0], a[1]))
}
