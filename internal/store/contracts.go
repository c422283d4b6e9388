package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/bookingerr"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/domain"
)

// FindConflictingContracts returns contracts blocking vehicleID's calendar
// over [start,end] (spec §4.1): status in {CONFIRMED, ACTIVE}, overlap
// inclusive on both endpoints, excluding excludeContractID when non-empty.
func (s *Store) FindConflictingContracts(ctx context.Context, vehicleID string, start, end time.Time, excludeContractID string) ([]ConflictingContract, error) {
	return findConflictingContracts(ctx, s.conn(), vehicleID, start, end, excludeContractID)
}

func (t *Tx) FindConflictingContracts(ctx context.Context, vehicleID string, start, end time.Time, excludeContractID string) ([]ConflictingContract, error) {
	return findConflictingContracts(ctx, t.conn(), vehicleID, start, end, excludeContractID)
}

func findConflictingContracts(ctx context.Context, c conn, vehicleID string, start, end time.Time, excludeContractID string) ([]ConflictingContract, error) {
	rows, err := c.Query(ctx, `
		SELECT ct.id, ct.contract_number, ct.vehicle_id, ct.start_date, ct.end_date,
		       ct.status, cl.prenom || ' ' || cl.nom
		FROM contracts ct
		JOIN clients cl ON cl.id = ct.client_id
		WHERE ct.vehicle_id = $1
		  AND ct.status IN ('CONFIRMED', 'ACTIVE')
		  AND ct.start_date <= $3
		  AND ct.end_date >= $2
		  AND ($4 = '' OR ct.id <> $4)
		ORDER BY ct.start_date
	`, vehicleID, start, end, excludeContractID)
	if err != nil {
		return nil, mapErr(err, "find conflicting contracts")
	}
	defer rows.Close()

	var out []ConflictingContract
	for rows.Next() {
		var row ConflictingContract
		if err := rows.Scan(&row.ID, &row.ContractNumber, &row.VehicleID, &row.StartDate, &row.EndDate, &row.Status, &row.ClientName); err != nil {
			return nil, mapErr(err, "scan conflicting contract")
		}
		out = append(out, row)
	}
	return out, mapErr(rows.Err(), "iterate conflicting contracts")
}

// BulkFindConflicts fetches every contract/rent-request that could conflict
// with any of vehicleIDs over [minStart,maxEnd] in two queries, for the
// bulk approvability check (spec §4.2).
func (s *Store) BulkFindConflicts(ctx context.Context, vehicleIDs []string, minStart, maxEnd time.Time) ([]ConflictingContract, []ConflictingRequest, error) {
	if len(vehicleIDs) == 0 {
		return nil, nil, nil
	}

	contractRows, err := s.conn().Query(ctx, `
		SELECT ct.id, ct.contract_number, ct.vehicle_id, ct.start_date, ct.end_date,
		       ct.status, cl.prenom || ' ' || cl.nom
		FROM contracts ct
		JOIN clients cl ON cl.id = ct.client_id
		WHERE ct.vehicle_id = ANY($1)
		  AND ct.status IN ('CONFIRMED', 'ACTIVE')
		  AND ct.start_date <= $3
		  AND ct.end_date >= $2
	`, vehicleIDs, minStart, maxEnd)
	if err != nil {
		return nil, nil, mapErr(err, "bulk find conflicting contracts")
	}
	defer contractRows.Close()

	var contracts []ConflictingContract
	for contractRows.Next() {
		var row ConflictingContract
		if err := contractRows.Scan(&row.ID, &row.ContractNumber, &row.VehicleID, &row.StartDate, &row.EndDate, &row.Status, &row.ClientName); err != nil {
			return nil, nil, mapErr(err, "scan bulk conflicting contract")
		}
		contracts = append(contracts, row)
	}
	if err := contractRows.Err(); err != nil {
		return nil, nil, mapErr(err, "iterate bulk conflicting contracts")
	}

	requestRows, err := s.conn().Query(ctx, `
		SELECT id, request_id, vehicle_id, start_date, end_date, status, client_name
		FROM rent_requests
		WHERE vehicle_id = ANY($1)
		  AND status IN ('APPROVED', 'CONFIRMED')
		  AND start_date <= $3
		  AND end_date >= $2
	`, vehicleIDs, minStart, maxEnd)
	if err != nil {
		return nil, nil, mapErr(err, "bulk find conflicting requests")
	}
	defer requestRows.Close()

	var requests []ConflictingRequest
	for requestRows.Next() {
		var row ConflictingRequest
		if err := requestRows.Scan(&row.ID, &row.RequestID, &row.VehicleID, &row.StartDate, &row.EndDate, &row.Status, &row.ClientName); err != nil {
			return nil, nil, mapErr(err, "scan bulk conflicting request")
		}
		requests = append(requests, row)
	}
	return contracts, requests, mapErr(requestRows.Err(), "iterate bulk conflicting requests")
}

// NextContractNumber allocates the next sequential contract number for
// year, formatted CNT<YYYY><NNNN> (spec §4.1). It must run inside tx so the
// read-max-then-insert stays atomic with the contract insert; the unique
// constraint on contract_number is the correctness backstop.
func (t *Tx) NextContractNumber(ctx context.Context, year int) (string, int, error) {
	var maxSeq int
	err := t.conn().QueryRow(ctx, `
		SELECT COALESCE(MAX(sequence_in_year), 0)
		FROM (
			SELECT sequence_in_year FROM contracts
			WHERE contract_year = $1
			FOR UPDATE
		) locked
	`, year).Scan(&maxSeq)
	if err != nil {
		return "", 0, mapErr(err, "next contract number")
	}
	next := maxSeq + 1
	return fmt.Sprintf("CNT%04d%04d", year, next), next, nil
}

// CreateContractInput carries everything CreateContract persists.
type CreateContractInput struct {
	ClientID        string
	VehicleID       string
	AdminID         string
	ContractNumber  string
	ContractYear    int
	SequenceInYear  int
	StartDate       time.Time
	EndDate         time.Time
	ServiceType     domain.ServiceType
	DailyRate       decimal.Decimal
	Accessories     []domain.Accessory
	DiscountAmount  decimal.Decimal
	Notes           string
	PickupLocation  string
	DropoffLocation string
}

// CreateContract inserts a new PENDING contract and its accessories in one
// transaction (spec §4.3.1 step 8).
func (t *Tx) CreateContract(ctx context.Context, in CreateContractInput) (domain.Contract, error) {
	var id string
	var createdAt time.Time
	err := t.conn().QueryRow(ctx, `
		INSERT INTO contracts (
			contract_number, contract_year, sequence_in_year, client_id, vehicle_id, admin_id,
			start_date, end_date, service_type, daily_rate, discount_amount,
			paid_amount, payment_status, status, notes, pickup_location, dropoff_location
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, 'PENDING', 'PENDING', $12, $13, $14
		)
		RETURNING id, created_at
	`, in.ContractNumber, in.ContractYear, in.SequenceInYear, in.ClientID, in.VehicleID, in.AdminID,
		in.StartDate, in.EndDate, in.ServiceType, in.DailyRate, in.DiscountAmount,
		in.Notes, in.PickupLocation, in.DropoffLocation).Scan(&id, &createdAt)
	if err != nil {
		return domain.Contract{}, mapErr(err, "insert contract")
	}

	for _, acc := range in.Accessories {
		if _, err := t.conn().Exec(ctx, `
			INSERT INTO contract_accessories (contract_id, name, unit_price, qty)
			VALUES ($1, $2, $3, $4)
		`, id, acc.Name, acc.UnitPrice, acc.Qty); err != nil {
			return domain.Contract{}, mapErr(err, "insert contract accessory")
		}
	}

	return domain.Contract{
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
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// GetContract loads a contract and its accessories by id.
func (s *Store) GetContract(ctx context.Context, id string) (domain.Contract, error) {
	return getContract(ctx, s.conn(), id)
}

func (t *Tx) GetContract(ctx context.Context, id string) (domain.Contract, error) {
	return getContract(ctx, t.conn(), id)
}

func getContract(ctx context.Context, c conn, id string) (domain.Contract, error) {
	var ct domain.Contract
	var serviceType, status, paymentStatus string
	err := c.QueryRow(ctx, `
		SELECT id, contract_number, client_id, vehicle_id, admin_id, start_date, end_date,
		       service_type, daily_rate, discount_amount, paid_amount, payment_status,
		       status, notes, pickup_location, dropoff_location, created_at, updated_at
		FROM contracts WHERE id = $1
	`, id).Scan(&ct.ID, &ct.ContractNumber, &ct.ClientID, &ct.VehicleID, &ct.AdminID,
		&ct.StartDate, &ct.EndDate, &serviceType, &ct.DailyRate, &ct.DiscountAmount,
		&ct.PaidAmount, &paymentStatus, &status, &ct.Notes, &ct.PickupLocation,
		&ct.DropoffLocation, &ct.CreatedAt, &ct.UpdatedAt)
	if err != nil {
		return domain.Contract{}, mapErr(err, fmt.Sprintf("get contract %s", id))
	}
	ct.ServiceType = domain.ServiceType(serviceType)
	ct.Status = domain.ContractStatus(status)
	ct.PaymentStatus = domain.PaymentStatus(paymentStatus)

	rows, err := c.Query(ctx, `SELECT name, unit_price, qty FROM contract_accessories WHERE contract_id = $1`, id)
	if err != nil {
		return domain.Contract{}, mapErr(err, "load accessories")
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.Accessory
		if err := rows.Scan(&a.Name, &a.UnitPrice, &a.Qty); err != nil {
			return domain.Contract{}, mapErr(err, "scan accessory")
		}
		ct.Accessories = append(ct.Accessories, a)
	}
	return ct, mapErr(rows.Err(), "iterate accessories")
}

// UpdateContractFields persists the mutable fields of an existing contract
// and fully replaces its accessories (spec §4.3.3).
func (t *Tx) UpdateContractFields(ctx context.Context, c domain.Contract) error {
	_, err := t.conn().Exec(ctx, `
		UPDATE contracts SET
			start_date = $2, end_date = $3, service_type = $4, daily_rate = $5,
			discount_amount = $6, notes = $7, pickup_location = $8, dropoff_location = $9,
			updated_at = now()
		WHERE id = $1
	`, c.ID, c.StartDate, c.EndDate, c.ServiceType, c.DailyRate, c.DiscountAmount,
		c.Notes, c.PickupLocation, c.DropoffLocation)
	if err != nil {
		return mapErr(err, "update contract")
	}

	if _, err := t.conn().Exec(ctx, `DELETE FROM contract_accessories WHERE contract_id = $1`, c.ID); err != nil {
		return mapErr(err, "replace accessories")
	}
	for _, acc := range c.Accessories {
		if _, err := t.conn().Exec(ctx, `
			INSERT INTO contract_accessories (contract_id, name, unit_price, qty)
			VALUES ($1, $2, $3, $4)
		`, c.ID, acc.Name, acc.UnitPrice, acc.Qty); err != nil {
			return mapErr(err, "insert replacement accessory")
		}
	}
	return nil
}

// UpdateContractStatus moves a contract to newStatus, guarded by its
// expected current status (spec §4.3.5: "updates guarded by WHERE
// status = :expected"). Returns bookingerr.InvalidTransition if no row
// matched, i.e. the contract is missing or no longer in expected.
func (t *Tx) UpdateContractStatus(ctx context.Context, id string, expected, newStatus domain.ContractStatus) error {
	tag, err := t.conn().Exec(ctx, `
		UPDATE contracts SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`, id, expected, newStatus)
	if err != nil {
		return mapErr(err, "update contract status")
	}
	if tag.RowsAffected() == 0 {
		return bookingerr.InvalidTransition("contract %s is not in status %s", id, expected)
	}
	return nil
}

// UpdateContractPayment persists a payment update (spec §4.3.4).
func (t *Tx) UpdateContractPayment(ctx context.Context, id string, paidAmount decimal.Decimal, paymentStatus domain.PaymentStatus) error {
	_, err := t.conn().Exec(ctx, `
		UPDATE contracts SET paid_amount = $2, payment_status = $3, updated_at = now()
		WHERE id = $1
	`, id, paidAmount, paymentStatus)
	return mapErr(err, "update contract payment")
}

// UpdateStatusMany transitions many contracts to newStatus in a single
// statement (spec §4.1's UpdateStatusMany primitive); callers are
// responsible for having already validated every transition.
func (t *Tx) UpdateStatusMany(ctx context.Context, contractIDs []string, newStatus domain.ContractStatus) error {
	_, err := t.conn().Exec(ctx, `
		UPDATE contracts SET status = $2, updated_at = now()
		WHERE id = ANY($1)
	`, contractIDs, newStatus)
	return mapErr(err, "bulk update contract status")
}

// ListDueForAdvance returns up to limit contracts eligible to auto-advance
// per spec §4.3.5: CONFIRMED with startDate <= today, or ACTIVE with
// endDate < today.
func (s *Store) ListDueForAdvance(ctx context.Context, today time.Time, limit int) ([]domain.Contract, error) {
	rows, err := s.conn().Query(ctx, `
		SELECT id, status FROM contracts
		WHERE (status = 'CONFIRMED' AND start_date <= $1)
		   OR (status = 'ACTIVE' AND end_date < $1)
		ORDER BY updated_at
		LIMIT $2
	`, today, limit)
	if err != nil {
		return nil, mapErr(err, "list contracts due for advance")
	}
	defer rows.Close()

	var out []domain.Contract
	for rows.Next() {
		var c domain.Contract
		var status string
		if err := rows.Scan(&c.ID, &status); err != nil {
			return nil, mapErr(err, "scan contract due for advance")
		}
		c.Status = domain.ContractStatus(status)
		out = append(out, c)
	}
	return out, mapErr(rows.Err(), "iterate contracts due for advance")
}

// ListContracts supports the filtered GET contracts?… surface; it filters
// only by status and vehicleID (an empty value disables that filter), since
// the HTTP query-string shape is an external collaborator's concern
// (spec §1).
func (s *Store) ListContracts(ctx context.Context, status domain.ContractStatus, vehicleID string, limit, offset int) ([]domain.Contract, error) {
	rows, err := s.conn().Query(ctx, `
		SELECT id FROM contracts
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR vehicle_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, status, vehicleID, limit, offset)
	if err != nil {
		return nil, mapErr(err, "list contracts")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr(err, "scan contract id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err, "iterate contract ids")
	}

	out := make([]domain.Contract, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetContract(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ListContractsCreatedBefore returns every contract created at or before
// windowEnd, for the reporting windows of spec §4.5's GetStatsComparison.
func (s *Store) ListContractsCreatedBefore(ctx context.Context, windowEnd time.Time) ([]domain.Contract, error) {
	rows, err := s.conn().Query(ctx, `
		SELECT id FROM contracts WHERE created_at <= $1
	`, windowEnd)
	if err != nil {
		return nil, mapErr(err, "list contracts created before")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr(err, "scan contract id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err, "iterate contract ids")
	}

	out := make([]domain.Contract, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetContract(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ListContractsOverlapping returns every contract on vehicleID (any status)
// whose interval overlaps [start,end], for the vehicle calendar of
// spec §4.5's GetCalendar.
func (s *Store) ListContractsOverlapping(ctx context.Context, vehicleID string, start, end time.Time) ([]domain.Contract, error) {
	rows, err := s.conn().Query(ctx, `
		SELECT id FROM contracts
		WHERE vehicle_id = $1 AND start_date <= $3 AND end_date >= $2
	`, vehicleID, start, end)
	if err != nil {
		return nil, mapErr(err, "list contracts overlapping")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapErr(err, "scan contract id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err, "iterate contract ids")
	}

	out := make([]domain.Contract, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetContract(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
