// Package stats implements the Reporting / Statistics surface of spec
// §4.5: revenue totals, status counts, period-over-period comparison, and
// the vehicle calendar. Revenue aggregation excludes CANCELLED contracts
// inside statsAsOf, where the totals are summed, not just by convention, so
// the §8.6 invariant holds regardless of caller discipline.
package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/clock"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/store"
)

// Store is the read surface Service needs. *store.Store satisfies it; tests
// substitute an in-memory fake so spec §8 scenario S6 (revenue/status
// aggregation excludes CANCELLED) is unit-testable without Postgres.
type Store interface {
	ListContractsCreatedBefore(ctx context.Context, windowEnd time.Time) ([]domain.Contract, error)
	ListContractsOverlapping(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Contract, error)
}

// Service implements spec §4.5.
type Service struct {
	store Store
	clk   clock.Clock
}

// New builds a Service.
func New(st *store.Store, clk clock.Clock) *Service {
	return &Service{store: st, clk: clk}
}

// Snapshot is the result of GetStats.
type Snapshot struct {
	TotalRevenue     decimal.Decimal
	PaidRevenue      decimal.Decimal
	ServiceBreakdown map[domain.ServiceType]decimal.Decimal
	StatusBreakdown  map[domain.ContractStatus]int
}

// GetStats aggregates current revenue and status counts (spec §4.5).
func (s *Service) GetStats(ctx context.Context) (Snapshot, error) {
	return s.statsAsOf(ctx, s.clk.Now())
}

func (s *Service) statsAsOf(ctx context.Context, windowEnd time.Time) (Snapshot, error) {
	rows, err := s.store.ListContractsCreatedBefore(ctx, windowEnd)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		TotalRevenue:     decimal.Zero,
		PaidRevenue:      decimal.Zero,
		ServiceBreakdown: map[domain.ServiceType]decimal.Decimal{},
		StatusBreakdown:  map[domain.ContractStatus]int{},
	}
	for _, c := range rows {
		snap.StatusBreakdown[c.Status]++
		if c.Status == domain.ContractCancelled {
			continue
		}
		totals := domain.ComputeTotals(c)
		snap.TotalRevenue = snap.TotalRevenue.Add(totals.TotalAmount)
		snap.PaidRevenue = snap.PaidRevenue.Add(c.PaidAmount)
		snap.ServiceBreakdown[c.ServiceType] = snap.ServiceBreakdown[c.ServiceType].Add(totals.TotalAmount)
	}
	return snap, nil
}

// Comparison is the result of GetStatsComparison.
type Comparison struct {
	Current  Snapshot
	Previous Snapshot
	// PercentChange maps a metric name ("totalRevenue", "paidRevenue") to its
	// percentage change, formatted per spec §4.5.
	PercentChange map[string]string
}

// GetStatsComparison implements spec §4.5's comparison: the current
// snapshot covers every contract with createdAt <= now and the previous
// snapshot every contract with createdAt <= now-P, computed independently.
// Neither snapshot has a lower createdAt bound, so a contract counted in
// Previous is also counted in Current.
func (s *Service) GetStatsComparison(ctx context.Context, periodDays int) (Comparison, error) {
	now := s.clk.Now()
	period := time.Duration(periodDays) * 24 * time.Hour

	current, err := s.statsAsOf(ctx, now)
	if err != nil {
		return Comparison{}, err
	}
	previous, err := s.statsAsOf(ctx, now.Add(-period))
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Current:  current,
		Previous: previous,
		PercentChange: map[string]string{
			"totalRevenue": percentChange(current.TotalRevenue, previous.TotalRevenue),
			"paidRevenue":  percentChange(current.PaidRevenue, previous.PaidRevenue),
		},
	}, nil
}

// percentChange implements spec §4.5: sign((cur-prev)/prev)*100, one
// decimal; when prev is 0, "+100.0%" if cur > 0 else "0%".
func percentChange(cur, prev decimal.Decimal) string {
	if prev.IsZero() {
		if cur.GreaterThan(decimal.Zero) {
			return "+100.0%"
		}
		return "0%"
	}
	change := cur.Sub(prev).DivRound(prev, 4).Mul(decimal.NewFromInt(100)).Round(1)
	if change.GreaterThanOrEqual(decimal.Zero) {
		return "+" + change.StringFixed(1) + "%"
	}
	return change.StringFixed(1) + "%"
}

// CalendarDay is one day's occupancy view (spec §4.5).
type CalendarDay struct {
	Date        time.Time
	Contracts   []domain.Contract
	IsAvailable bool
}

// GetCalendar implements spec §4.5: for each day of [year,month], the set
// of overlapping contracts (all statuses) and whether the vehicle is free.
// End date is inclusive.
func (s *Service) GetCalendar(ctx context.Context, vehicleID string, month time.Month, year int) ([]CalendarDay, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, -1)

	contracts, err := s.store.ListContractsOverlapping(ctx, vehicleID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	days := make([]CalendarDay, 0, monthEnd.Day())
	for d := monthStart; !d.After(monthEnd); d = d.AddDate(0, 0, 1) {
		var occupying []domain.Contract
		for _, c := range contracts {
			if domain.Overlaps(d, d, c.StartDate, c.EndDate) {
				occupying = append(occupying, c)
			}
		}
		days = append(days, CalendarDay{Date: d, Contracts: occupying, IsAvailable: len(occupying) == 0})
	}
	return days, nil
}
