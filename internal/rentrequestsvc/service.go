// Package rentrequestsvc implements the Rent-Request Service of spec §4.4:
// public intake, the status-transition table (resolving Open Question #2
// per SPEC_FULL.md), bulk approvability, and the auto-expiry sweep.
package rentrequestsvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/bookingerr"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/clock"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/conflict"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/notify"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/store"
)

// minLeadTime and maxDuration bound spec §4.4.1's business validation.
const (
	minLeadTime = 24 * time.Hour
	maxDuration = 90 * 24 * time.Hour
	duplicateWindow = time.Hour
	expiryAge       = 7 * 24 * time.Hour
	expiryNote      = "Demande expirée automatiquement"
	expiryReviewer  = "System"
)

// recheckOnEntry is the set of target statuses that re-run the Conflict
// Detector before committing (spec §4.4.2: "On transition into APPROVED or
// CONFIRMED, re-run Conflict Detector").
func recheckOnEntry(to domain.RentRequestStatus) bool {
	return to == domain.RentRequestApproved || to == domain.RentRequestConfirmed
}

// Service implements spec §4.4. It depends on the Store seam rather than a
// concrete *store.Store so its business rules are unit-testable
// (spec §8 scenario S4).
type Service struct {
	store    Store
	detector *conflict.Detector
	clk      clock.Clock
	notifier notify.Notifier
	log      *zap.Logger
}

// New builds a Service over a real *store.Store.
func New(st *store.Store, detector *conflict.Detector, clk clock.Clock, notifier notify.Notifier, log *zap.Logger) *Service {
	return newService(storeAdapter{st: st}, detector, clk, notifier, log)
}

func newService(st Store, detector *conflict.Detector, clk clock.Clock, notifier notify.Notifier, log *zap.Logger) *Service {
	return &Service{store: st, detector: detector, clk: clk, notifier: notifier, log: log.Named("rentrequestsvc")}
}

// CreateRentRequestInput is the public intake request shape (spec §4.4.1).
type CreateRentRequestInput struct {
	ClientName  string
	ClientEmail string
	ClientPhone string
	VehicleID   string
	StartDate   time.Time
	EndDate     time.Time
	Message     string
}

// CreateRentRequest implements spec §4.4.1's six-step intake sequence.
func (s *Service) CreateRentRequest(ctx context.Context, in CreateRentRequestInput) (domain.RentRequest, error) {
	start := clock.DateOnly(in.StartDate)
	end := clock.DateOnly(in.EndDate)
	now := s.clk.Now()

	if start.Before(now.Add(minLeadTime)) {
		return domain.RentRequest{}, bookingerr.BadRequest("startDate must be at least 24h from now")
	}
	if !end.After(start) {
		return domain.RentRequest{}, bookingerr.BadRequest("endDate must be after startDate")
	}
	if end.Sub(start) > maxDuration {
		return domain.RentRequest{}, bookingerr.BadRequest("rental duration must not exceed 90 days")
	}

	var out domain.RentRequest
	err := s.store.WithTx(ctx, store.Serializable, func(ctx context.Context, tx Tx) error {
		vehicle, err := tx.GetVehicle(ctx, in.VehicleID)
		if err != nil {
			return err
		}
		if !vehicle.Bookable() {
			return bookingerr.NotFound("vehicle %s is not active/available", in.VehicleID)
		}

		emailLower := strings.ToLower(in.ClientEmail)
		dupCount, err := tx.CountRecentDuplicate(ctx, emailLower, in.VehicleID, start, end, now.Add(-duplicateWindow))
		if err != nil {
			return err
		}
		if dupCount > 0 {
			return bookingerr.BadRequest("a similar request was already submitted in the last hour")
		}

		avail, err := s.detector.IsAvailable(ctx, tx, in.VehicleID, start, end, "", "")
		if err != nil {
			return fmt.Errorf("rentrequestsvc: availability check: %w", err)
		}
		if !avail.Available {
			return bookingerr.Conflict(toConflictItems(avail.Conflicts), "vehicle %s is unavailable for the requested interval: %s",
				in.VehicleID, conflict.Summary(avail.Conflicts))
		}

		requestID := fmt.Sprintf("REQ_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
		created, err := tx.CreateRentRequest(ctx, store.CreateRentRequestInput{
			RequestID:   requestID,
			ClientName:  in.ClientName,
			ClientEmail: in.ClientEmail,
			ClientPhone: in.ClientPhone,
			VehicleID:   in.VehicleID,
			Vehicle: domain.VehicleSnapshot{
				Make:        vehicle.Make,
				Model:       vehicle.Model,
				Year:        vehicle.Year,
				PricePerDay: vehicle.PricePerDay,
				Currency:    vehicle.Currency,
			},
			StartDate: start,
			EndDate:   end,
			Message:   in.Message,
		})
		if err != nil {
			return err
		}

		out = created
		return nil
	})
	if err != nil {
		return domain.RentRequest{}, err
	}

	notify.Fire(ctx, s.log, "client-confirmation", func(ctx context.Context) error {
		return s.notifier.SendClientConfirmation(ctx, out)
	})
	notify.Fire(ctx, s.log, "admin-notification", func(ctx context.Context) error {
		return s.notifier.SendAdminNotification(ctx, out)
	})

	return out, nil
}

// Transition implements spec §4.4.2: table-driven status change, re-running
// the Conflict Detector on entry into APPROVED/CONFIRMED, and appending one
// history row.
func (s *Service) Transition(ctx context.Context, requestID string, to domain.RentRequestStatus, changedBy, notes string) (domain.RentRequest, error) {
	var out domain.RentRequest
	err := s.store.WithTx(ctx, store.Serializable, func(ctx context.Context, tx Tx) error {
		r, err := tx.GetRentRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if !domain.CanTransitionRentRequest(r.Status, to) {
			return bookingerr.InvalidTransition("rent request %s is %s, cannot move to %s", requestID, r.Status, to)
		}

		if recheckOnEntry(to) {
			avail, err := s.detector.IsAvailable(ctx, tx, r.VehicleID, r.StartDate, r.EndDate, "", requestID)
			if err != nil {
				return fmt.Errorf("rentrequestsvc: availability check: %w", err)
			}
			if !avail.Available {
				return bookingerr.Conflict(toConflictItems(avail.Conflicts), "vehicle %s is unavailable for the requested interval: %s",
					r.VehicleID, conflict.Summary(avail.Conflicts))
			}
		}

		at := s.clk.Now()
		if err := tx.UpdateRentRequestStatus(ctx, requestID, r.Status, to, changedBy, notes, at); err != nil {
			return err
		}
		r.Status = to
		out = r
		return nil
	})
	if err != nil {
		return domain.RentRequest{}, err
	}

	notify.Fire(ctx, s.log, "status-update", func(ctx context.Context) error {
		return s.notifier.SendStatusUpdate(ctx, out)
	})
	return out, nil
}

// AutoExpire implements spec §4.4.3: marks PENDING requests older than 7
// days as REJECTED with a fixed note and reviewedBy="System". Idempotent —
// a request already moved out of PENDING by the time this runs is simply
// absent from the next batch.
func (s *Service) AutoExpire(ctx context.Context, batchSize int) (int, error) {
	cutoff := s.clk.Now().Add(-expiryAge)
	pending, err := s.store.ListPendingOlderThan(ctx, cutoff, batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, r := range pending {
		err := s.store.WithTx(ctx, store.RepeatableRead, func(ctx context.Context, tx Tx) error {
			return tx.UpdateRentRequestStatus(ctx, r.ID, domain.RentRequestPending, domain.RentRequestRejected, expiryReviewer, expiryNote, s.clk.Now())
		})
		if err != nil {
			s.log.Warn("auto-expire failed for request", zap.String("requestId", r.RequestID), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

// BulkApprovability implements spec §4.4.4 on top of the Conflict
// Detector's bulk variant.
func (s *Service) BulkApprovability(ctx context.Context, limit, offset int) (map[string]conflict.Approvability, error) {
	pending, err := s.store.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	reqs := make([]conflict.PendingRequest, 0, len(pending))
	for _, r := range pending {
		reqs = append(reqs, conflict.PendingRequest{
			ID:        r.ID,
			VehicleID: r.VehicleID,
			Status:    r.Status,
			StartDate: r.StartDate,
			EndDate:   r.EndDate,
		})
	}
	return s.detector.ApprovabilityOf(ctx, reqs)
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
