// Package store is the booking core's repository layer: strongly-typed CRUD
// plus the domain-specific primitives spec §4.1 names, backed by Postgres
// via pgx. It owns unique-key enforcement and transactional scoping; no
// other package issues SQL.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// conn is the minimal surface both *pgxpool.Pool and pgx.Tx implement,
// letting every repository method be written once and run either against
// the pool directly or against an open transaction.
type conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier is the subset of the repository layer the Conflict Detector
// depends on; *Store and *Tx both satisfy it, so a caller can pass either
// (or nil, meaning "run outside any transaction") to
// conflict.Detector.IsAvailable per spec §4.2.
type Querier interface {
	FindConflictingContracts(ctx context.Context, vehicleID string, start, end time.Time, excludeContractID string) ([]ConflictingContract, error)
	FindConflictingRequests(ctx context.Context, vehicleID string, start, end time.Time, excludeRequestID string) ([]ConflictingRequest, error)
}
