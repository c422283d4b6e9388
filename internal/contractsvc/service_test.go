package contractsvc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/bookingerr"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/clock"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/conflict"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/store"
)

// fakeDB backs fakeStore/fakeTx: an in-memory stand-in for Postgres so the
// Contract Lifecycle Service's business rules (spec §8 scenarios S2, S3)
// run without a real database.
type fakeDB struct {
	clients   map[string]domain.Client
	vehicles  map[string]domain.Vehicle
	contracts map[string]domain.Contract
	seq       int
	writes    int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		clients:   map[string]domain.Client{},
		vehicles:  map[string]domain.Vehicle{},
		contracts: map[string]domain.Contract{},
	}
}

type fakeStore struct{ db *fakeDB }

func (f *fakeStore) WithTx(ctx context.Context, _ store.IsoLevel, fn func(ctx context.Context, tx Tx) error) error {
	return fn(ctx, &fakeTx{db: f.db})
}

type fakeTx struct{ db *fakeDB }

func (t *fakeTx) GetClient(_ context.Context, id string) (domain.Client, error) {
	c, ok := t.db.clients[id]
	if !ok {
		return domain.Client{}, bookingerr.NotFound("client %s", id)
	}
	return c, nil
}

func (t *fakeTx) GetVehicle(_ context.Context, id string) (domain.Vehicle, error) {
	v, ok := t.db.vehicles[id]
	if !ok {
		return domain.Vehicle{}, bookingerr.NotFound("vehicle %s", id)
	}
	return v, nil
}

func (t *fakeTx) NextContractNumber(_ context.Context, year int) (string, int, error) {
	t.db.seq++
	return fmt.Sprintf("CNT%04d%04d", year, t.db.seq), t.db.seq, nil
}

func (t *fakeTx) CreateContract(_ context.Context, in store.CreateContractInput) (domain.Contract, error) {
	id := fmt.Sprintf("c%d", len(t.db.contracts)+1)
	c := domain.Contract{
		ID:              id,
		ContractNumber:  in.ContractNumber,
		ClientID:        in.ClientID,
		VehicleID:       in.VehicleID,
		AdminID:         in.AdminID,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		ServiceType:     in.ServiceType,
		DailyRate:       in.DailyRate,
		Accessories:     in.Accessories,
		DiscountAmount:  in.DiscountAmount,
		PaidAmount:      decimal.Zero,
		PaymentStatus:   domain.PaymentPending,
		Status:          domain.ContractPending,
		Notes:           in.Notes,
		PickupLocation:  in.PickupLocation,
		DropoffLocation: in.DropoffLocation,
	}
	t.db.contracts[id] = c
	t.db.writes++
	return c, nil
}

func (t *fakeTx) GetContract(_ context.Context, id string) (domain.Contract, error) {
	c, ok := t.db.contracts[id]
	if !ok {
		return domain.Contract{}, bookingerr.NotFound("contract %s", id)
	}
	return c, nil
}

func (t *fakeTx) UpdateContractFields(_ context.Context, c domain.Contract) error {
	t.db.contracts[c.ID] = c
	t.db.writes++
	return nil
}

func (t *fakeTx) UpdateContractPayment(_ context.Context, id string, paid decimal.Decimal, status domain.PaymentStatus) error {
	c := t.db.contracts[id]
	c.PaidAmount = paid
	c.PaymentStatus = status
	t.db.contracts[id] = c
	t.db.writes++
	return nil
}

func (t *fakeTx) UpdateContractStatus(_ context.Context, id string, expected, newStatus domain.ContractStatus) error {
	c, ok := t.db.contracts[id]
	if !ok || c.Status != expected {
		return bookingerr.InvalidTransition("contract %s is not in status %s", id, expected)
	}
	c.Status = newStatus
	t.db.contracts[id] = c
	t.db.writes++
	return nil
}

func (t *fakeTx) UpdateStatusMany(_ context.Context, ids []string, newStatus domain.ContractStatus) error {
	for _, id := range ids {
		c := t.db.contracts[id]
		c.Status = newStatus
		t.db.contracts[id] = c
	}
	t.db.writes++
	return nil
}

func (t *fakeTx) FindConflictingContracts(_ context.Context, vehicleID string, start, end time.Time, excludeContractID string) ([]store.ConflictingContract, error) {
	var out []store.ConflictingContract
	for _, c := range t.db.contracts {
		if c.VehicleID != vehicleID || c.ID == excludeContractID || !c.Status.Blocking() {
			continue
		}
		if domain.Overlaps(start, end, c.StartDate, c.EndDate) {
			out = append(out, store.ConflictingContract{
				ID: c.ID, ContractNumber: c.ContractNumber, VehicleID: c.VehicleID,
				StartDate: c.StartDate, EndDate: c.EndDate, Status: c.Status,
			})
		}
	}
	return out, nil
}

func (t *fakeTx) FindConflictingRequests(_ context.Context, vehicleID string, start, end time.Time, excludeRequestID string) ([]store.ConflictingRequest, error) {
	return nil, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(db *fakeDB) *Service {
	det := conflict.New(nil, zap.NewNop())
	clk := clock.NewFixed(day(2025, 3, 1))
	return newService(&fakeStore{db: db}, det, clk, zap.NewNop())
}

func seedBookable(db *fakeDB) (clientID, vehicleID string) {
	db.clients["cl1"] = domain.Client{ID: "cl1", Nom: "Curie", Prenom: "Marie", Status: domain.ClientActif, IsActive: true}
	db.vehicles["v1"] = domain.Vehicle{
		ID: "v1", Make: "Peugeot", Model: "208", Available: true, IsActive: true,
		PricePerDay:           decimal.RequireFromString("50"),
		SupportedServiceTypes: []domain.ServiceType{domain.ServiceIndividual},
	}
	return "cl1", "v1"
}

// TestConfirmContractDetectsConflict covers spec §8 scenario S2: a second
// PENDING contract overlapping a just-confirmed one is accepted at create
// time (PENDING doesn't block) but rejected with Conflict on confirm.
func TestConfirmContractDetectsConflict(t *testing.T) {
	db := newFakeDB()
	clientID, vehicleID := seedBookable(db)
	svc := newTestService(db)
	ctx := context.Background()

	first, err := svc.CreateContract(ctx, CreateContractInput{
		ClientID: clientID, VehicleID: vehicleID, AdminID: "admin1",
		StartDate: day(2025, 3, 10), EndDate: day(2025, 3, 15),
		ServiceType: domain.ServiceIndividual, DailyRate: decimal.RequireFromString("50"),
	})
	require.NoError(t, err)

	second, err := svc.CreateContract(ctx, CreateContractInput{
		ClientID: clientID, VehicleID: vehicleID, AdminID: "admin1",
		StartDate: day(2025, 3, 15), EndDate: day(2025, 3, 20),
		ServiceType: domain.ServiceIndividual, DailyRate: decimal.RequireFromString("50"),
	})
	require.NoError(t, err, "a second PENDING contract over the same window must be accepted")

	_, err = svc.ConfirmContract(ctx, first.ID)
	require.NoError(t, err)

	_, err = svc.ConfirmContract(ctx, second.ID)
	require.Error(t, err)
	var bErr *bookingerr.Error
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, bookingerr.KindConflict, bErr.Kind)
	require.Len(t, bErr.Conflicts, 1)
	assert.Equal(t, first.ContractNumber, bErr.Conflicts[0].Identifier)
}

// TestCancelledContractIsFrozen covers spec §8 scenario S3: a cancelled
// contract rejects payment updates and poisons a bulk transition without
// mutating any other candidate.
func TestCancelledContractIsFrozen(t *testing.T) {
	db := newFakeDB()
	clientID, vehicleID := seedBookable(db)
	svc := newTestService(db)
	ctx := context.Background()

	c, err := svc.CreateContract(ctx, CreateContractInput{
		ClientID: clientID, VehicleID: vehicleID, AdminID: "admin1",
		StartDate: day(2025, 3, 10), EndDate: day(2025, 3, 15),
		ServiceType: domain.ServiceIndividual, DailyRate: decimal.RequireFromString("50"),
	})
	require.NoError(t, err)

	other, err := svc.CreateContract(ctx, CreateContractInput{
		ClientID: clientID, VehicleID: vehicleID, AdminID: "admin1",
		StartDate: day(2025, 4, 1), EndDate: day(2025, 4, 5),
		ServiceType: domain.ServiceIndividual, DailyRate: decimal.RequireFromString("50"),
	})
	require.NoError(t, err)

	_, err = svc.CancelContract(ctx, c.ID)
	require.NoError(t, err)

	_, err = svc.UpdatePayment(ctx, c.ID, decimal.RequireFromString("100"))
	require.Error(t, err)
	assert.Equal(t, bookingerr.KindPreconditionFailed, bookingerr.KindOf(err))

	writesBefore := db.writes
	err = svc.BulkTransition(ctx, []string{c.ID, other.ID}, domain.ContractActive)
	require.Error(t, err)
	assert.Equal(t, bookingerr.KindInvalidTransition, bookingerr.KindOf(err))
	assert.Equal(t, writesBefore, db.writes, "an aggregated bulk-transition failure must perform no writes")
	assert.Equal(t, domain.ContractCancelled, db.contracts[c.ID].Status)
	assert.Equal(t, domain.ContractPending, db.contracts[other.ID].Status, "other candidates must also be left untouched")
}
