// Package contractsvc implements the Contract Lifecycle Service of spec
// §4.3: creation, update, the five-state transition machine, payment
// updates, and bulk transitions. Every operation that both checks
// availability and writes runs inside a single store.Tx so the
// check-then-write pair stays atomic (spec §5's booking-race invariant).
package contractsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/bookingerr"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/clock"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/conflict"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/store"
)

// Service implements spec §4.3. It depends on the Conflict Detector rather
// than re-implementing the overlap predicate (spec §4.2), and on the Store
// seam rather than a concrete *store.Store so its business rules are
// unit-testable (spec §8 scenarios S2, S3).
type Service struct {
	store    Store
	detector *conflict.Detector
	clk      clock.Clock
	log      *zap.Logger
}

// New builds a Service over a real *store.Store.
func New(st *store.Store, detector *conflict.Detector, clk clock.Clock, log *zap.Logger) *Service {
	return newService(storeAdapter{st: st}, detector, clk, log)
}

func newService(st Store, detector *conflict.Detector, clk clock.Clock, log *zap.Logger) *Service {
	return &Service{store: st, detector: detector, clk: clk, log: log.Named("contractsvc")}
}

// CreateContractInput is the CreateContract request shape (spec §4.3.1).
type CreateContractInput struct {
	ClientID        string
	VehicleID       string
	AdminID         string
	StartDate       time.Time
	EndDate         time.Time
	ServiceType     domain.ServiceType
	DailyRate       decimal.Decimal
	DiscountAmount  decimal.Decimal
	Accessories     []domain.Accessory
	Notes           string
	PickupLocation  string
	DropoffLocation string
}

// CreateContract implements spec §4.3.1's eight-step sequence, all inside
// one serializable transaction.
func (s *Service) CreateContract(ctx context.Context, in CreateContractInput) (domain.Contract, error) {
	var out domain.Contract

	err := s.store.WithTx(ctx, store.Serializable, func(ctx context.Context, tx Tx) error {
		client, err := tx.GetClient(ctx, in.ClientID)
		if err != nil {
			return err
		}
		if !client.Bookable() {
			return bookingerr.PreconditionFailed("client %s is not ACTIF", in.ClientID)
		}

		vehicle, err := tx.GetVehicle(ctx, in.VehicleID)
		if err != nil {
			return err
		}
		if !vehicle.Bookable() {
			return bookingerr.PreconditionFailed("vehicle %s is not active/available", in.VehicleID)
		}
		if !vehicle.SupportsServiceType(in.ServiceType) {
			return bookingerr.PreconditionFailed("vehicle %s does not support service type %s", in.VehicleID, in.ServiceType)
		}

		start := clock.DateOnly(in.StartDate)
		end := clock.DateOnly(in.EndDate)
		today := s.clk.Today()
		if !end.After(start) {
			return bookingerr.BadRequest("endDate must be after startDate")
		}
		if start.Before(today) {
			return bookingerr.BadRequest("startDate must not be in the past")
		}

		avail, err := s.detector.IsAvailable(ctx, tx, in.VehicleID, start, end, "", "")
		if err != nil {
			return fmt.Errorf("contractsvc: availability check: %w", err)
		}
		if !avail.Available {
			return bookingerr.Conflict(toConflictItems(avail.Conflicts), "vehicle %s is unavailable for the requested interval: %s",
				in.VehicleID, conflict.Summary(avail.Conflicts))
		}

		number, seq, err := tx.NextContractNumber(ctx, start.Year())
		if err != nil {
			return fmt.Errorf("contractsvc: allocate contract number: %w", err)
		}

		created, err := tx.CreateContract(ctx, store.CreateContractInput{
			ClientID:        in.ClientID,
			VehicleID:       in.VehicleID,
			AdminID:         in.AdminID,
			ContractNumber:  number,
			ContractYear:    start.Year(),
			SequenceInYear:  seq,
			StartDate:       start,
			EndDate:         end,
			ServiceType:     in.ServiceType,
			DailyRate:       in.DailyRate,
			Accessories:     in.Accessories,
			DiscountAmount:  in.DiscountAmount,
			Notes:           in.Notes,
			PickupLocation:  in.PickupLocation,
			DropoffLocation: in.DropoffLocation,
		})
		if err != nil {
			return err
		}

		created.Recompute()
		out = created
		return nil
	})
	if err != nil {
		return domain.Contract{}, err
	}

	s.log.Info("contract created", zap.String("contractNumber", out.ContractNumber), zap.String("vehicleId", out.VehicleID))
	return out, nil
}

// UpdateContractInput carries the mutable fields UpdateContract may change;
// Accessories replaces the prior set only when AccessoriesSet is true (a nil
// Accessories with AccessoriesSet clears them), and is ignored otherwise,
// matching the "if supplied" clause of spec §4.3.3.
type UpdateContractInput struct {
	StartDate       *time.Time
	EndDate         *time.Time
	ServiceType     *domain.ServiceType
	DailyRate       *decimal.Decimal
	DiscountAmount  *decimal.Decimal
	Accessories     []domain.Accessory
	AccessoriesSet  bool
	Notes           *string
	PickupLocation  *string
	DropoffLocation *string
}

// UpdateContract implements spec §4.3.3: if dates or pricing change,
// re-normalise, re-run the Conflict Detector excluding this contract, and
// recompute derived fields. Accessories, when supplied, fully replace the
// prior set.
func (s *Service) UpdateContract(ctx context.Context, contractID string, in UpdateContractInput) (domain.Contract, error) {
	var out domain.Contract

	err := s.store.WithTx(ctx, store.RepeatableRead, func(ctx context.Context, tx Tx) error {
		c, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if c.Status.Terminal() {
			return bookingerr.PreconditionFailed("contract %s is %s and cannot be updated", contractID, c.Status)
		}

		datesOrPricingChanged := false
		if in.StartDate != nil {
			c.StartDate = clock.DateOnly(*in.StartDate)
			datesOrPricingChanged = true
		}
		if in.EndDate != nil {
			c.EndDate = clock.DateOnly(*in.EndDate)
			datesOrPricingChanged = true
		}
		if in.ServiceType != nil {
			c.ServiceType = *in.ServiceType
		}
		if in.DailyRate != nil {
			c.DailyRate = *in.DailyRate
			datesOrPricingChanged = true
		}
		if in.DiscountAmount != nil {
			c.DiscountAmount = *in.DiscountAmount
			datesOrPricingChanged = true
		}
		if in.AccessoriesSet {
			c.Accessories = in.Accessories
			datesOrPricingChanged = true
		}
		if in.Notes != nil {
			c.Notes = *in.Notes
		}
		if in.PickupLocation != nil {
			c.PickupLocation = *in.PickupLocation
		}
		if in.DropoffLocation != nil {
			c.DropoffLocation = *in.DropoffLocation
		}

		if !c.EndDate.After(c.StartDate) {
			return bookingerr.BadRequest("endDate must be after startDate")
		}

		if datesOrPricingChanged {
			avail, err := s.detector.IsAvailable(ctx, tx, c.VehicleID, c.StartDate, c.EndDate, contractID, "")
			if err != nil {
				return fmt.Errorf("contractsvc: availability check: %w", err)
			}
			if !avail.Available {
				return bookingerr.Conflict(toConflictItems(avail.Conflicts), "vehicle %s is unavailable for the requested interval: %s",
					c.VehicleID, conflict.Summary(avail.Conflicts))
			}
		}

		if err := tx.UpdateContractFields(ctx, c); err != nil {
			return err
		}

		c.Recompute()
		if err := tx.UpdateContractPayment(ctx, c.ID, c.PaidAmount, c.PaymentStatus); err != nil {
			return err
		}

		out = c
		return nil
	})
	return out, err
}

// ConfirmContract moves PENDING -> CONFIRMED, re-running availability
// (spec §4.3.2: "admin confirm (re-runs availability check)").
func (s *Service) ConfirmContract(ctx context.Context, contractID string) (domain.Contract, error) {
	return s.transition(ctx, contractID, domain.ContractPending, domain.ContractConfirmed, true)
}

// StartContract moves CONFIRMED -> ACTIVE; requires today >= startDate.
func (s *Service) StartContract(ctx context.Context, contractID string) (domain.Contract, error) {
	var out domain.Contract
	err := s.store.WithTx(ctx, store.RepeatableRead, func(ctx context.Context, tx Tx) error {
		c, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if c.Status != domain.ContractConfirmed {
			return bookingerr.InvalidTransition("contract %s is %s, expected CONFIRMED", contractID, c.Status)
		}
		if s.clk.Today().Before(c.StartDate) {
			return bookingerr.PreconditionFailed("contract %s cannot start before its start date", contractID)
		}
		if err := tx.UpdateContractStatus(ctx, contractID, domain.ContractConfirmed, domain.ContractActive); err != nil {
			return err
		}
		c.Status = domain.ContractActive
		out = c
		return nil
	})
	return out, err
}

// CompleteContract moves ACTIVE -> COMPLETED.
func (s *Service) CompleteContract(ctx context.Context, contractID string) (domain.Contract, error) {
	return s.transition(ctx, contractID, domain.ContractActive, domain.ContractCompleted, false)
}

// CancelContract moves any non-terminal status -> CANCELLED
// (spec §4.3.2: allowed from PENDING, CONFIRMED, or ACTIVE).
func (s *Service) CancelContract(ctx context.Context, contractID string) (domain.Contract, error) {
	var out domain.Contract
	err := s.store.WithTx(ctx, store.RepeatableRead, func(ctx context.Context, tx Tx) error {
		c, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if !domain.CanTransitionContract(c.Status, domain.ContractCancelled) {
			return bookingerr.InvalidTransition("contract %s in status %s cannot be cancelled", contractID, c.Status)
		}
		if err := tx.UpdateContractStatus(ctx, contractID, c.Status, domain.ContractCancelled); err != nil {
			return err
		}
		c.Status = domain.ContractCancelled
		out = c
		return nil
	})
	return out, err
}

// transition is the shared body for the simple from->to moves that don't
// need their own special-case precondition, optionally re-checking
// availability when recheckAvailability is set (ConfirmContract).
func (s *Service) transition(ctx context.Context, contractID string, from, to domain.ContractStatus, recheckAvailability bool) (domain.Contract, error) {
	var out domain.Contract
	err := s.store.WithTx(ctx, store.RepeatableRead, func(ctx context.Context, tx Tx) error {
		c, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if c.Status != from || !domain.CanTransitionContract(c.Status, to) {
			return bookingerr.InvalidTransition("contract %s is %s, cannot move to %s", contractID, c.Status, to)
		}

		if recheckAvailability {
			avail, err := s.detector.IsAvailable(ctx, tx, c.VehicleID, c.StartDate, c.EndDate, contractID, "")
			if err != nil {
				return fmt.Errorf("contractsvc: availability check: %w", err)
			}
			if !avail.Available {
				return bookingerr.Conflict(toConflictItems(avail.Conflicts), "vehicle %s is unavailable for the requested interval: %s",
					c.VehicleID, conflict.Summary(avail.Conflicts))
			}
		}

		if err := tx.UpdateContractStatus(ctx, contractID, from, to); err != nil {
			return err
		}
		c.Status = to
		out = c
		return nil
	})
	return out, err
}

// UpdatePayment implements spec §4.3.4: rejects CANCELLED contracts,
// validates 0 <= paidAmount <= totalAmount, and derives paymentStatus.
func (s *Service) UpdatePayment(ctx context.Context, contractID string, paidAmount decimal.Decimal) (domain.Contract, error) {
	var out domain.Contract
	err := s.store.WithTx(ctx, store.RepeatableRead, func(ctx context.Context, tx Tx) error {
		c, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if c.Status == domain.ContractCancelled {
			return bookingerr.PreconditionFailed("contract %s is cancelled; payments are frozen", contractID)
		}

		totals := domain.ComputeTotals(c)
		if paidAmount.IsNegative() || paidAmount.GreaterThan(totals.TotalAmount) {
			return bookingerr.BadRequest("paidAmount must be between 0 and %s", totals.TotalAmount)
		}

		paymentStatus := domain.DerivePaymentStatus(paidAmount, totals.TotalAmount)
		if err := tx.UpdateContractPayment(ctx, contractID, paidAmount, paymentStatus); err != nil {
			return err
		}
		c.PaidAmount = paidAmount
		c.PaymentStatus = paymentStatus
		out = c
		return nil
	})
	return out, err
}

// BulkTransition implements spec §4.3.6: validate every candidate's current
// status against target via the transition table; on any invalid
// transition, return an aggregated error and perform no writes.
func (s *Service) BulkTransition(ctx context.Context, contractIDs []string, newStatus domain.ContractStatus) error {
	return s.store.WithTx(ctx, store.RepeatableRead, func(ctx context.Context, tx Tx) error {
		var errs bookingerr.List
		for _, id := range contractIDs {
			c, err := tx.GetContract(ctx, id)
			if err != nil {
				errs.AddOnce(err)
				continue
			}
			if !domain.CanTransitionContract(c.Status, newStatus) {
				errs.AddOnce(bookingerr.InvalidTransition("contract %s in status %s cannot move to %s", id, c.Status, newStatus))
			}
		}
		if !errs.Empty() {
			return errs.Err()
		}
		return tx.UpdateStatusMany(ctx, contractIDs, newStatus)
	})
}

func toConflictItems(cs []conflict.Conflict) []bookingerr.ConflictItem {
	items := make([]bookingerr.ConflictItem, 0, len(cs))
	for _, c := range cs {
		items = append(items, bookingerr.ConflictItem{
			Kind:       c.Kind,
			ID:         c.ID,
			Identifier: c.Identifier,
			Start:      c.Start.Format("2006-01-02"),
			End:        c.End.Format("2006-01-02"),
			Status:     c.Status,
			ClientName: c.ClientName,
		})
	}
	return items
}
