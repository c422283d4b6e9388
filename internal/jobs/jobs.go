// Package jobs runs the two periodic background sweeps spec §4.3.5 and
// §4.4.3 describe: contract auto-advance and rent-request auto-expiry.
// Both are batched and interruptible between batches (spec §5).
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/clock"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

// ContractStore is the read surface AutoAdvance needs beyond contractsvc's
// single-contract transitions — listing candidates is a store concern, not
// a service one, since contractsvc has no "list due" method of its own.
type ContractStore interface {
	ListDueForAdvance(ctx context.Context, today time.Time, limit int) ([]domain.Contract, error)
}

// ContractService is the subset of contractsvc.Service AutoAdvance drives.
// Depending on this narrow interface instead of *contractsvc.Service lets
// the sweep's batching/early-stop logic (spec §8 scenario S5) run against
// an in-memory fake.
type ContractService interface {
	StartContract(ctx context.Context, contractID string) (domain.Contract, error)
	CompleteContract(ctx context.Context, contractID string) (domain.Contract, error)
}

// RentRequestService is the subset of rentrequestsvc.Service AutoExpire
// drives.
type RentRequestService interface {
	AutoExpire(ctx context.Context, batchSize int) (int, error)
}

// AutoAdvance implements spec §4.3.5: advances CONFIRMED contracts whose
// startDate has arrived to ACTIVE, and ACTIVE contracts whose endDate has
// passed to COMPLETED, in batches of batchSize, stopping early if ctx is
// cancelled between batches.
func AutoAdvance(ctx context.Context, st ContractStore, svc ContractService, clk clock.Clock, log *zap.Logger, batchSize int) (int, error) {
	advanced := 0
	for {
		if err := ctx.Err(); err != nil {
			return advanced, err
		}

		due, err := st.ListDueForAdvance(ctx, clk.Today(), batchSize)
		if err != nil {
			return advanced, err
		}
		if len(due) == 0 {
			return advanced, nil
		}

		for _, c := range due {
			var moveErr error
			switch c.Status {
			case domain.ContractConfirmed:
				_, moveErr = svc.StartContract(ctx, c.ID)
			case domain.ContractActive:
				_, moveErr = svc.CompleteContract(ctx, c.ID)
			}
			if moveErr != nil {
				log.Warn("auto-advance failed for contract", zap.String("contractId", c.ID), zap.Error(moveErr))
				continue
			}
			advanced++
		}

		if len(due) < batchSize {
			return advanced, nil
		}
	}
}

// AutoExpire implements spec §4.4.3, delegating the actual sweep to
// rentrequestsvc so the status-history append and the fixed
// note/reviewedBy pair stay co-located with the rest of the transition
// logic.
func AutoExpire(ctx context.Context, svc RentRequestService, batchSize int) (int, error) {
	return svc.AutoExpire(ctx, batchSize)
}
