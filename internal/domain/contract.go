package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/money"
)

// ContractStatus is the contract lifecycle state (spec §4.3.2).
type ContractStatus string

const (
	ContractPending   ContractStatus = "PENDING"
	ContractConfirmed ContractStatus = "CONFIRMED"
	ContractActive    ContractStatus = "ACTIVE"
	ContractCompleted ContractStatus = "COMPLETED"
	ContractCancelled ContractStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are legal from this
// status (GLOSSARY: terminal status).
func (s ContractStatus) Terminal() bool {
	return s == ContractCompleted || s == ContractCancelled
}

// Blocking reports whether a contract in this status occupies the vehicle's
// calendar for the Conflict Detector (spec §4.2).
func (s ContractStatus) Blocking() bool {
	return s == ContractConfirmed || s == ContractActive
}

// PaymentStatus is derived from paidAmount vs totalAmount (spec §3).
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// DerivePaymentStatus buckets paidAmount against totalAmount per spec §4.3.4
// and §8 boundary behaviour: 0 -> PENDING, full -> PAID, else PARTIAL.
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return PaymentPending
	case paid.GreaterThanOrEqual(total):
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

// Accessory is an add-on priced per unit and owned exclusively by its
// contract (spec §3: "Each contract exclusively owns its accessories").
type Accessory struct {
	Name     string
	UnitPrice decimal.Decimal
	Qty      int
}

// Total returns UnitPrice * Qty, rounded to money scale.
func (a Accessory) Total() decimal.Decimal {
	return money.Mul(a.UnitPrice, int64(a.Qty))
}

// Contract is the central booking artifact of the rental operation
// (spec §3).
type Contract struct {
	ID              string
	ContractNumber  string
	ClientID        string
	VehicleID       string
	AdminID         string
	StartDate       time.Time // date-only, local midnight
	EndDate         time.Time // date-only, local midnight
	ServiceType     ServiceType
	DailyRate       decimal.Decimal
	Accessories     []Accessory
	DiscountAmount  decimal.Decimal
	PaidAmount      decimal.Decimal
	PaymentStatus   PaymentStatus
	Status          ContractStatus
	Notes           string
	PickupLocation  string
	DropoffLocation string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TotalDays is the derived rental duration: the number of civil days
// between start and end (spec §3, §8.1: "ceil" of whole calendar days).
// start/end arrive as local midnights (clock.DateOnly); computing the
// difference on wall-clock Durations would undercount an interval that
// crosses a local DST spring-forward (a 23h calendar day divides out to 0
// full days), so the day components are re-anchored in UTC first, where
// every calendar day is exactly 24h.
func TotalDays(start, end time.Time) int {
	y1, m1, d1 := start.Date()
	y2, m2, d2 := end.Date()
	civilStart := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	civilEnd := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)

	days := int(civilEnd.Sub(civilStart).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}

// AccessoriesTotal sums every accessory's line total (spec §3).
func AccessoriesTotal(accessories []Accessory) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accessories {
		total = total.Add(a.Total())
	}
	return money.Round2(total)
}

// Subtotal is dailyRate * totalDays (spec §3).
func Subtotal(dailyRate decimal.Decimal, totalDays int) decimal.Decimal {
	return money.Mul(dailyRate, int64(totalDays))
}

// TotalAmount is subtotal + accessoriesTotal - discount (spec §3).
func TotalAmount(subtotal, accessoriesTotal, discount decimal.Decimal) decimal.Decimal {
	return money.Round2(subtotal.Add(accessoriesTotal).Sub(discount))
}

// Recompute refreshes every derived field on c from its current inputs
// (StartDate, EndDate, DailyRate, Accessories, DiscountAmount, PaidAmount).
// Callers must call this after any mutation touching those inputs
// (spec §3 invariant: "derived fields are recomputed on every mutating
// operation touching their inputs").
func (c *Contract) Recompute() {
	days := TotalDays(c.StartDate, c.EndDate)
	accTotal := AccessoriesTotal(c.Accessories)
	subtotal := Subtotal(c.DailyRate, days)
	total := TotalAmount(subtotal, accTotal, c.DiscountAmount)
	c.PaymentStatus = DerivePaymentStatus(c.PaidAmount, total)
}

// Totals is a read-only view of a contract's derived monetary fields,
// returned by services instead of forcing callers to recompute inline.
type Totals struct {
	TotalDays        int
	AccessoriesTotal decimal.Decimal
	Subtotal         decimal.Decimal
	TotalAmount      decimal.Decimal
}

// ComputeTotals derives the full Totals view for c without mutating it.
func ComputeTotals(c Contract) Totals {
	days := TotalDays(c.StartDate, c.EndDate)
	accTotal := AccessoriesTotal(c.Accessories)
	subtotal := Subtotal(c.DailyRate, days)
	total := TotalAmount(subtotal, accTotal, c.DiscountAmount)
	return Totals{
		TotalDays:        days,
		AccessoriesTotal: accTotal,
		Subtotal:         subtotal,
		TotalAmount:      total,
	}
}

// contractTransitions is the exhaustive legal-transition table of
// spec §4.3.2. It is the single source of truth both CreateContract-adjacent
// transition calls and BulkTransition consult.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractPending:   {ContractConfirmed, ContractCancelled},
	ContractConfirmed: {ContractActive, ContractCancelled},
	ContractActive:    {ContractCompleted, ContractCancelled},
	ContractCompleted: {},
	ContractCancelled: {},
}

// CanTransitionContract reports whether from -> to is a legal contract
// status transition.
func CanTransitionContract(from, to ContractStatus) bool {
	for _, allowed := range contractTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
