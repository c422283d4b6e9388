package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/bookingerr"
)

// Store is the top-level repository handle. It is constructed once at
// process start and passed by dependency injection to every service —
// there is no global singleton (spec §9).
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// Open builds a Store around a pgxpool.Pool connected to databaseURL.
func Open(ctx context.Context, databaseURL string, maxConns int32, log *zap.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse database url: %w", err)
	}
	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: open pool: %w", err)
	}
	return &Store{pool: pool, log: log.Named("store")}, nil
}

// NewWithPool wraps an already-constructed pool, for callers that build
// and configure the pool themselves.
func NewWithPool(pool *pgxpool.Pool, log *zap.Logger) *Store {
	return &Store{pool: pool, log: log.Named("store")}
}

// Close releases the underlying pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) conn() conn { return s.pool }

// Tx is a transaction-scoped handle. The conflict queries, entity reads and
// every write are defined on *Tx (the list and bulk reads exist only on
// *Store), so a caller doing a check-then-write sequence passes the same Tx
// to both the Conflict Detector and the repository write, making the pair
// atomic per spec §5's booking-race invariant.
type Tx struct {
	pgxTx pgx.Tx
}

func (t *Tx) conn() conn { return t.pgxTx }

// IsoLevel selects the transaction isolation level WithTx opens.
type IsoLevel = pgx.TxIsoLevel

const (
	// RepeatableRead is the minimum isolation spec §5 requires for the
	// availability-check-then-write pair.
	RepeatableRead = pgx.RepeatableRead
	Serializable   = pgx.Serializable
)

// WithTx runs fn inside a Postgres transaction at the given isolation
// level. On a serialization failure (SQLSTATE 40001/40P01) it retries fn up
// to two more times with jittered backoff before giving up (spec §7:
// "Serialization failures ... may be retried at most twice at the service
// boundary before surfacing as Conflict or Internal"). fn must not retain
// the *Tx beyond its own call.
func (s *Store) WithTx(ctx context.Context, iso IsoLevel, fn func(ctx context.Context, tx *Tx) error) error {
	const maxRetries = 2

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)

	attempt := 0
	operation := func() error {
		attempt++
		pgxTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: iso})
		if err != nil {
			return backoff.Permanent(fmt.Errorf("store: begin tx: %w", err))
		}

		tx := &Tx{pgxTx: pgxTx}
		runErr := fn(ctx, tx)
		if runErr != nil {
			_ = pgxTx.Rollback(ctx)
			if isRetriable(runErr) {
				return runErr // eligible for backoff retry
			}
			return backoff.Permanent(runErr)
		}

		if commitErr := pgxTx.Commit(ctx); commitErr != nil {
			if isRetriable(mapErr(commitErr, "commit")) {
				return mapErr(commitErr, "commit")
			}
			return backoff.Permanent(fmt.Errorf("store: commit: %w", commitErr))
		}
		return nil
	}

	err := backoff.Retry(operation, policy)
	if err == nil {
		return nil
	}
	if isRetriable(err) {
		s.log.Warn("transaction exhausted retries on serialization failure", zap.Int("attempts", attempt))
		return bookingerr.Conflict(nil, "booking conflicted with a concurrent write, please retry")
	}
	return err
}

// WithTxTimeout wraps WithTx with a deadline, so a request's cancellation
// rolls back the in-flight operation (spec §5: "on deadline expiry, the
// in-flight store operation is cancelled and its transaction rolled back").
func (s *Store) WithTxTimeout(ctx context.Context, iso IsoLevel, timeout time.Duration, fn func(ctx context.Context, tx *Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.WithTx(ctx, iso, fn)
}
