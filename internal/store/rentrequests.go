package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/bookingerr"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

// FindConflictingRequests returns rent-requests blocking vehicleID's
// calendar over [start,end]: status in {APPROVED, CONFIRMED}, overlap
// inclusive on both endpoints (spec §4.1, resolving Open Question #1 in
// favour of the unified detector's set).
func (s *Store) FindConflictingRequests(ctx context.Context, vehicleID string, start, end time.Time, excludeRequestID string) ([]ConflictingRequest, error) {
	return findConflictingRequests(ctx, s.conn(), vehicleID, start, end, excludeRequestID)
}

func (t *Tx) FindConflictingRequests(ctx context.Context, vehicleID string, start, end time.Time, excludeRequestID string) ([]ConflictingRequest, error) {
	return findConflictingRequests(ctx, t.conn(), vehicleID, start, end, excludeRequestID)
}

func findConflictingRequests(ctx context.Context, c conn, vehicleID string, start, end time.Time, excludeRequestID string) ([]ConflictingRequest, error) {
	rows, err := c.Query(ctx, `
		SELECT id, request_id, vehicle_id, start_date, end_date, status, client_name
		FROM rent_requests
		WHERE vehicle_id = $1
		  AND status IN ('APPROVED', 'CONFIRMED')
		  AND start_date <= $3
		  AND end_date >= $2
		  AND ($4 = '' OR id <> $4)
		ORDER BY start_date
	`, vehicleID, start, end, excludeRequestID)
	if err != nil {
		return nil, mapErr(err, "find conflicting requests")
	}
	defer rows.Close()

	var out []ConflictingRequest
	for rows.Next() {
		var row ConflictingRequest
		if err := rows.Scan(&row.ID, &row.RequestID, &row.VehicleID, &row.StartDate, &row.EndDate, &row.Status, &row.ClientName); err != nil {
			return nil, mapErr(err, "scan conflicting request")
		}
		out = append(out, row)
	}
	return out, mapErr(rows.Err(), "iterate conflicting requests")
}

// CreateRentRequestInput carries everything CreateRentRequest persists.
type CreateRentRequestInput struct {
	RequestID   string
	ClientName  string
	ClientEmail string
	ClientPhone string
	VehicleID   string
	Vehicle     domain.VehicleSnapshot
	StartDate   time.Time
	EndDate     time.Time
	Message     string
}

// CreateRentRequest inserts a new PENDING rent-request (spec §4.4.1 step 6).
func (t *Tx) CreateRentRequest(ctx context.Context, in CreateRentRequestInput) (domain.RentRequest, error) {
	var id string
	var createdAt time.Time
	err := t.conn().QueryRow(ctx, `
		INSERT INTO rent_requests (
			request_id, client_name, client_email, client_phone, vehicle_id,
			vehicle_make, vehicle_model, vehicle_year, vehicle_price_per_day, vehicle_currency,
			start_date, end_date, message, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,'PENDING')
		RETURNING id, created_at
	`, in.RequestID, in.ClientName, in.ClientEmail, in.ClientPhone, in.VehicleID,
		in.Vehicle.Make, in.Vehicle.Model, in.Vehicle.Year, in.Vehicle.PricePerDay, in.Vehicle.Currency,
		in.StartDate, in.EndDate, in.Message).Scan(&id, &createdAt)
	if err != nil {
		return domain.RentRequest{}, mapErr(err, "insert rent request")
	}

	return domain.RentRequest{
		ID:          id,
		RequestID:   in.RequestID,
		ClientName:  in.ClientName,
		ClientEmail: in.ClientEmail,
		ClientPhone: in.ClientPhone,
		VehicleID:   in.VehicleID,
		Vehicle:     in.Vehicle,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Message:     in.Message,
		Status:      domain.RentRequestPending,
		CreatedAt:   createdAt,
	}, nil
}

// CountRecentDuplicate counts non-REJECTED requests for the same
// (email-lowercased, vehicleId, startDate, endDate) created within the
// last hour (spec §4.4.1 step 3).
func (s *Store) CountRecentDuplicate(ctx context.Context, emailLower, vehicleID string, start, end time.Time, since time.Time) (int, error) {
	return countRecentDuplicate(ctx, s.conn(), emailLower, vehicleID, start, end, since)
}

func (t *Tx) CountRecentDuplicate(ctx context.Context, emailLower, vehicleID string, start, end time.Time, since time.Time) (int, error) {
	return countRecentDuplicate(ctx, t.conn(), emailLower, vehicleID, start, end, since)
}

func countRecentDuplicate(ctx context.Context, c conn, emailLower, vehicleID string, start, end time.Time, since time.Time) (int, error) {
	var count int
	err := c.QueryRow(ctx, `
		SELECT COUNT(*) FROM rent_requests
		WHERE lower(client_email) = $1
		  AND vehicle_id = $2
		  AND start_date = $3
		  AND end_date = $4
		  AND status <> 'REJECTED'
		  AND created_at >= $5
	`, emailLower, vehicleID, start, end, since).Scan(&count)
	return count, mapErr(err, "count recent duplicate rent request")
}

// GetRentRequest loads a rent-request by internal id.
func (s *Store) GetRentRequest(ctx context.Context, id string) (domain.RentRequest, error) {
	return getRentRequest(ctx, s.conn(), id)
}

func (t *Tx) GetRentRequest(ctx context.Context, id string) (domain.RentRequest, error) {
	return getRentRequest(ctx, t.conn(), id)
}

func getRentRequest(ctx context.Context, c conn, id string) (domain.RentRequest, error) {
	var r domain.RentRequest
	var status string
	err := c.QueryRow(ctx, `
		SELECT id, request_id, client_name, client_email, client_phone, vehicle_id,
		       vehicle_make, vehicle_model, vehicle_year, vehicle_price_per_day, vehicle_currency,
		       start_date, end_date, message, status, admin_notes, reviewed_by, reviewed_at, created_at
		FROM rent_requests WHERE id = $1
	`, id).Scan(&r.ID, &r.RequestID, &r.ClientName, &r.ClientEmail, &r.ClientPhone, &r.VehicleID,
		&r.Vehicle.Make, &r.Vehicle.Model, &r.Vehicle.Year, &r.Vehicle.PricePerDay, &r.Vehicle.Currency,
		&r.StartDate, &r.EndDate, &r.Message, &status, &r.AdminNotes, &r.ReviewedBy, &r.ReviewedAt, &r.CreatedAt)
	if err != nil {
		return domain.RentRequest{}, mapErr(err, fmt.Sprintf("get rent request %s", id))
	}
	r.Status = domain.RentRequestStatus(status)
	return r, nil
}

// UpdateRentRequestStatus transitions a rent-request and appends one
// history row in the same call (spec §4.4.2: "A status change appends one
// history row").
func (t *Tx) UpdateRentRequestStatus(ctx context.Context, id string, oldStatus, newStatus domain.RentRequestStatus, changedBy, notes string, at time.Time) error {
	tag, err := t.conn().Exec(ctx, `
		UPDATE rent_requests
		SET status = $3, admin_notes = COALESCE(NULLIF($4, ''), admin_notes),
		    reviewed_by = $5, reviewed_at = $6
		WHERE id = $1 AND status = $2
	`, id, oldStatus, newStatus, notes, changedBy, at)
	if err != nil {
		return mapErr(err, "update rent request status")
	}
	if tag.RowsAffected() == 0 {
		return bookingerr.InvalidTransition("rent request %s is not in status %s", id, oldStatus)
	}

	_, err = t.conn().Exec(ctx, `
		INSERT INTO rent_request_status_history (request_id, old_status, new_status, changed_by, notes, changed_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, id, oldStatus, newStatus, changedBy, notes, at)
	return mapErr(err, "insert rent request status history")
}

// ListPendingOlderThan returns up to limit PENDING rent-requests created
// before cutoff, for the auto-expiry job (spec §4.4.3).
func (s *Store) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.RentRequest, error) {
	rows, err := s.conn().Query(ctx, `
		SELECT id FROM rent_requests
		WHERE status = 'PENDING' AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, mapErr(err, "list pending rent requests older than cutoff")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr(err, "scan pending rent request id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err, "iterate pending rent requests")
	}

	out := make([]domain.RentRequest, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetRentRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ListPending returns a page of PENDING rent-requests, for bulk
// approvability (spec §4.4.4).
func (s *Store) ListPending(ctx context.Context, limit, offset int) ([]domain.RentRequest, error) {
	rows, err := s.conn().Query(ctx, `
		SELECT id FROM rent_requests WHERE status = 'PENDING'
		ORDER BY created_at LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, mapErr(err, "list pending rent requests")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr(err, "scan pending rent request id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err, "iterate pending rent requests")
	}

	out := make([]domain.RentRequest, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetRentRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
