package rentrequestsvc

import (
	"context"
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/store"
)

// Store is the persistence seam Service depends on instead of a concrete
// *store.Store, so the rent-request lifecycle's business rules (spec §8
// scenario S4) are unit-testable behind an in-memory fake. storeAdapter is
// the only production implementation.
type Store interface {
	WithTx(ctx context.Context, iso store.IsoLevel, fn func(ctx context.Context, tx Tx) error) error
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.RentRequest, error)
	ListPending(ctx context.Context, limit, offset int) ([]domain.RentRequest, error)
}

// Tx is the transaction-scoped repository surface the Rent-Request Service
// needs. *store.Tx satisfies it.
type Tx interface {
	store.Querier
	GetVehicle(ctx context.Context, id string) (domain.Vehicle, error)
	CountRecentDuplicate(ctx context.Context, emailLower, vehicleID string, start, end, since time.Time) (int, error)
	CreateRentRequest(ctx context.Context, in store.CreateRentRequestInput) (domain.RentRequest, error)
	GetRentRequest(ctx context.Context, id string) (domain.RentRequest, error)
	UpdateRentRequestStatus(ctx context.Context, id string, oldStatus, newStatus domain.RentRequestStatus, changedBy, notes string, at time.Time) error
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

func (a storeAdapter) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.RentRequest, error) {
	return a.st.ListPendingOlderThan(ctx, cutoff, limit)
}

func (a storeAdapter) ListPending(ctx context.Context, limit, offset int) ([]domain.RentRequest, error) {
	return a.st.ListPending(ctx, limit, offset)
}
