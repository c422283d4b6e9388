package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

// TestContractRecomputeMatchesS1 exercises spec §8's scenario S1: a 5-day
// rental with no accessories and no discount.
func TestContractRecomputeMatchesS1(t *testing.T) {
	c := domain.Contract{
		StartDate:      date(2025, 3, 10),
		EndDate:        date(2025, 3, 15),
		DailyRate:      decimal.RequireFromString("50"),
		DiscountAmount: decimal.Zero,
		PaidAmount:     decimal.Zero,
	}
	totals := domain.ComputeTotals(c)

	assert.Equal(t, 5, totals.TotalDays)
	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("250")))
	assert.True(t, totals.TotalAmount.Equal(decimal.RequireFromString("250")))

	c.Recompute()
	assert.Equal(t, domain.PaymentPending, c.PaymentStatus)
}

func TestAccessoriesTotalSumsLines(t *testing.T) {
	accessories := []domain.Accessory{
		{Name: "GPS", UnitPrice: decimal.RequireFromString("5.00"), Qty: 2},
		{Name: "Child seat", UnitPrice: decimal.RequireFromString("3.50"), Qty: 1},
	}
	got := domain.AccessoriesTotal(accessories)
	assert.True(t, got.Equal(decimal.RequireFromString("13.50")))
}

func TestDerivePaymentStatusBoundaries(t *testing.T) {
	total := decimal.RequireFromString("250")

	assert.Equal(t, domain.PaymentPending, domain.DerivePaymentStatus(decimal.Zero, total))
	assert.Equal(t, domain.PaymentPaid, domain.DerivePaymentStatus(total, total))
	assert.Equal(t, domain.PaymentPartial, domain.DerivePaymentStatus(decimal.RequireFromString("100"), total))
}

func TestTotalDaysNeverLessThanOne(t *testing.T) {
	// endDate == startDate would otherwise be rejected upstream (BadRequest);
	// TotalDays itself is defensive and floors at 1.
	got := domain.TotalDays(date(2025, 3, 10), date(2025, 3, 10))
	assert.Equal(t, 1, got)
}

func TestCanTransitionContractExhaustiveTable(t *testing.T) {
	legal := map[domain.ContractStatus][]domain.ContractStatus{
		domain.ContractPending:   {domain.ContractConfirmed, domain.ContractCancelled},
		domain.ContractConfirmed: {domain.ContractActive, domain.ContractCancelled},
		domain.ContractActive:    {domain.ContractCompleted, domain.ContractCancelled},
	}
	for from, tos := range legal {
		for _, to := range tos {
			assert.True(t, domain.CanTransitionContract(from, to), "%s -> %s should be legal", from, to)
		}
	}

	assert.False(t, domain.CanTransitionContract(domain.ContractCompleted, domain.ContractActive))
	assert.False(t, domain.CanTransitionContract(domain.ContractCancelled, domain.ContractActive))
	assert.False(t, domain.CanTransitionContract(domain.ContractPending, domain.ContractActive))
}

func TestContractStatusTerminal(t *testing.T) {
	assert.True(t, domain.ContractCompleted.Terminal())
	assert.True(t, domain.ContractCancelled.Terminal())
	assert.False(t, domain.ContractPending.Terminal())
	assert.False(t, domain.ContractConfirmed.Terminal())
	assert.False(t, domain.ContractActive.Terminal())
}

func TestContractStatusBlocking(t *testing.T) {
	assert.True(t, domain.ContractConfirmed.Blocking())
	assert.True(t, domain.ContractActive.Blocking())
	assert.False(t, domain.ContractPending.Blocking(), "PENDING contracts do not block (spec §4.2)")
	assert.False(t, domain.ContractCompleted.Blocking())
	assert.False(t, domain.ContractCancelled.Blocking())
}
