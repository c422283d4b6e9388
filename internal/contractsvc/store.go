package contractsvc

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/store"
)

// Store is the persistence seam Service depends on instead of a concrete
// *store.Store, so the contract lifecycle's business rules (spec §8
// scenarios S2, S3) are unit-testable behind an in-memory fake. storeAdapter
// is the only production implementation.
type Store interface {
	WithTx(ctx context.Context, iso store.IsoLevel, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the transaction-scoped repository surface the Contract Lifecycle
// Service needs. *store.Tx satisfies it.
type Tx interface {
	store.Querier
	GetClient(ctx context.Context, id string) (domain.Client, error)
	GetVehicle(ctx context.Context, id string) (domain.Vehicle, error)
	NextContractNumber(ctx context.Context, year int) (string, int, error)
	CreateContract(ctx context.Context, in store.CreateContractInput) (domain.Contract, error)
	GetContract(ctx context.Context, id string) (domain.Contract, error)
	UpdateContractFields(ctx context.Context, c domain.Contract) error
	UpdateContractPayment(ctx context.Context, id string, paidAmount decimal.Decimal, paymentStatus domain.PaymentStatus) error
	UpdateContractStatus(ctx context.Context, id string, expected, newStatus domain.ContractStatus) error
	UpdateStatusMany(ctx context.Context, contractIDs []string, newStatus domain.ContractStatus) error
}

// storeAdapter wraps *store.Store so it satisfies Store: WithTx's callback
// takes a concrete *store.Tx, which already implements Tx structurally, so
// the adapter is a pure type-narrowing shim.
type storeAdapter struct{ st *store.Store }

func (a storeAdapter) WithTx(ctx context.Context, iso store.IsoLevel, fn func(ctx context.Context, tx Tx) error) error {
	return a.st.WithTx(ctx, iso, func(ctx context.Context, tx *store.Tx) error {
		return fn(ctx, tx)
	})
}
