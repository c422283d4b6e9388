package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/clock"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/jobs"
)

// fakeContractStore backs the auto-advance sweep with an in-memory set of
// contracts, so spec §8 scenario S5 runs without a real database.
type fakeContractStore struct {
	contracts map[string]*domain.Contract
}

func (f *fakeContractStore) ListDueForAdvance(_ context.Context, today time.Time, limit int) ([]domain.Contract, error) {
	var out []domain.Contract
	for _, c := range f.contracts {
		switch c.Status {
		case domain.ContractConfirmed:
			if !c.StartDate.After(today) {
				out = append(out, *c)
			}
		case domain.ContractActive:
			if c.EndDate.Before(today) {
				out = append(out, *c)
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeContractService struct {
	contracts map[string]*domain.Contract
}

func (f *fakeContractService) StartContract(_ context.Context, id string) (domain.Contract, error) {
	c := f.contracts[id]
	c.Status = domain.ContractActive
	return *c, nil
}

func (f *fakeContractService) CompleteContract(_ context.Context, id string) (domain.Contract, error) {
	c := f.contracts[id]
	c.Status = domain.ContractCompleted
	return *c, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestAutoAdvanceMovesContractThroughLifecycle covers spec §8 scenario S5:
// a CONFIRMED contract whose startDate has arrived becomes ACTIVE; once the
// clock passes its endDate a further sweep completes it; a third sweep is a
// no-op since nothing is due anymore.
func TestAutoAdvanceMovesContractThroughLifecycle(t *testing.T) {
	contracts := map[string]*domain.Contract{
		"c1": {ID: "c1", Status: domain.ContractConfirmed, StartDate: day(2025, 3, 1), EndDate: day(2025, 3, 5)},
	}
	st := &fakeContractStore{contracts: contracts}
	svc := &fakeContractService{contracts: contracts}
	log := zap.NewNop()

	clk := clock.NewFixed(day(2025, 3, 1))
	n, err := jobs.AutoAdvance(context.Background(), st, svc, clk, log, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.ContractActive, contracts["c1"].Status)

	clk2 := clock.NewFixed(day(2025, 3, 6))
	n, err = jobs.AutoAdvance(context.Background(), st, svc, clk2, log, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.ContractCompleted, contracts["c1"].Status)

	n, err = jobs.AutoAdvance(context.Background(), st, svc, clk2, log, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "a completed contract is no longer due for advance")
}

// fakeRentRequestService lets AutoExpire's delegation be exercised without
// rentrequestsvc's own dependencies.
type fakeRentRequestService struct {
	expired int
	err     error
}

func (f *fakeRentRequestService) AutoExpire(context.Context, int) (int, error) {
	return f.expired, f.err
}

func TestAutoExpireDelegatesToService(t *testing.T) {
	svc := &fakeRentRequestService{expired: 3}
	n, err := jobs.AutoExpire(context.Background(), svc, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
