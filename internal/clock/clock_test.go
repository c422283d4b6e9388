package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/clock"
)

func TestFixedAdvance(t *testing.T) {
	start := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	fc := clock.NewFixed(start)

	assert.True(t, fc.Now().Equal(start))

	fc.Advance(48 * time.Hour)
	assert.True(t, fc.Now().Equal(start.Add(48*time.Hour)))
}

func TestDateOnlyTruncatesToLocalMidnight(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 23, 59, 59, 0, time.Local)
	got := clock.DateOnly(t0)
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 0, got.Minute())
	assert.Equal(t, 10, got.Day())
}

func TestFixedTodayMatchesDateOnly(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)
	fc := clock.NewFixed(at)
	assert.True(t, fc.Today().Equal(clock.DateOnly(at)))
}
