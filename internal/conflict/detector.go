// Package conflict is the single source of truth for "is vehicle V free
// during [s,e]?" (spec §4.2). Both the Contract Lifecycle Service and the
// Rent-Request Service depend on this package and never re-implement the
// overlap predicate or the blocking-status sets themselves.
package conflict

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/store"
)

// Conflict describes one booking that blocks a candidate interval.
type Conflict struct {
	Kind       string // "CONTRACT" or "RENT_REQUEST"
	ID         string
	Identifier string
	Start      time.Time
	End        time.Time
	Status     string
	ClientName string
}

const (
	KindContract    = "CONTRACT"
	KindRentRequest = "RENT_REQUEST"
)

// Availability is the result of IsAvailable.
type Availability struct {
	Available bool
	Conflicts []Conflict
}

// Store is the non-transactional read surface the Detector needs: the
// fallback querier IsAvailable uses when called outside a transaction, and
// the bulk lookup ApprovabilityOf uses directly. *store.Store satisfies
// this; tests substitute an in-memory fake so both entry points spec §4.2
// names are exercisable without Postgres.
type Store interface {
	store.Querier
	BulkFindConflicts(ctx context.Context, vehicleIDs []string, minStart, maxEnd time.Time) ([]store.ConflictingContract, []store.ConflictingRequest, error)
}

// Detector implements spec §4.2.
type Detector struct {
	store Store
	log   *zap.Logger
}

// New builds a Detector over st, logging via log.
func New(st Store, log *zap.Logger) *Detector {
	return &Detector{store: st, log: log.Named("conflict")}
}

// IsAvailable checks whether vehicleId is free during [start,end], optionally
// excluding one contract or rent-request from consideration (so an entity
// can be re-checked against everything except itself). When tx is non-nil
// the query runs inside it, so a caller doing check-then-write can make the
// pair atomic (spec §5's booking-race invariant).
func (d *Detector) IsAvailable(
	ctx context.Context,
	tx store.Querier,
	vehicleID string,
	start, end time.Time,
	excludeContractID, excludeRentRequestID string,
) (Availability, error) {
	q := d.querier(tx)

	contracts, err := q.FindConflictingContracts(ctx, vehicleID, start, end, excludeContractID)
	if err != nil {
		return Availability{}, fmt.Errorf("conflict: find conflicting contracts: %w", err)
	}
	requests, err := q.FindConflictingRequests(ctx, vehicleID, start, end, excludeRentRequestID)
	if err != nil {
		return Availability{}, fmt.Errorf("conflict: find conflicting requests: %w", err)
	}

	var conflicts []Conflict
	for _, c := range contracts {
		conflicts = append(conflicts, fromContractRow(c))
	}
	for _, r := range requests {
		conflicts = append(conflicts, fromRequestRow(r))
	}

	return Availability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

func (d *Detector) querier(tx store.Querier) store.Querier {
	if tx != nil {
		return tx
	}
	return d.store
}

// Summary renders the human-readable conflict list spec §4.2 describes for
// UI/email surfaces: "<KIND> <identifier> (<client full name>)", joined by
// ", ".
func Summary(conflicts []Conflict) string {
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", c.Kind, c.Identifier, c.ClientName))
	}
	return strings.Join(parts, ", ")
}

func fromContractRow(c store.ConflictingContract) Conflict {
	return Conflict{
		Kind:       KindContract,
		ID:         c.ID,
		Identifier: c.ContractNumber,
		Start:      c.StartDate,
		End:        c.EndDate,
		Status:     string(c.Status),
		ClientName: c.ClientName,
	}
}

func fromRequestRow(r store.ConflictingRequest) Conflict {
	return Conflict{
		Kind:       KindRentRequest,
		ID:         r.ID,
		Identifier: r.RequestID,
		Start:      r.StartDate,
		End:        r.EndDate,
		Status:     string(r.Status),
		ClientName: r.ClientName,
	}
}
