package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/money"
)

func TestRound2(t *testing.T) {
	got := money.Round2(decimal.RequireFromString("12.3456"))
	assert.Equal(t, "12.35", got.StringFixed(2))
}

func TestMul(t *testing.T) {
	got := money.Mul(decimal.RequireFromString("50.00"), 5)
	assert.True(t, got.Equal(decimal.RequireFromString("250.00")))
}

func TestSum(t *testing.T) {
	got := money.Sum(
		decimal.RequireFromString("10.005"),
		decimal.RequireFromString("5.005"),
	)
	assert.Equal(t, "15.01", got.StringFixed(2))
}
