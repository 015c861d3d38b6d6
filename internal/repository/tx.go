package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultLockTimeout = 5 * time.Second

type Option func(*options)

type options struct {
	lockTimeout time.Duration
}

// WithLockTimeout bounds how long a ledger transaction waits for a row lock
// before failing with a transient store error.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{lockTimeout: defaultLockTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// beginLedgerTx opens a READ COMMITTED transaction with a local lock timeout.
// Ledger methods serialize per flight by taking FOR UPDATE on the flight row first.
func beginLedgerTx(ctx context.Context, db *pgxpool.Pool, lockTimeout time.Duration) (pgx.Tx, error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, mapError("begin tx", err)
	}

	setting := fmt.Sprintf("%dms", lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, setting); err != nil {
		_ = tx.Rollback(ctx)
		return nil, mapError("set lock timeout", err)
	}
	return tx, nil
}
