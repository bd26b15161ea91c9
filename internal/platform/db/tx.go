package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx, letting
// repositories run against the pool or inside a caller-owned transaction.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Beginner opens transactions. *pgxpool.Pool implements it.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// ErrRollback marks an error returned by WithTx whose rollback failed.
// Such errors also wrap the error returned by fn.
var ErrRollback = errors.New("rollback tx")

// WithTx executes fn within a transaction using the given options.
// The transaction commits when fn returns nil and rolls back otherwise.
// When the rollback itself fails, the returned error wraps both the
// rollback failure and the error returned by fn.
func WithTx(ctx context.Context, b Beginner, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := b.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if fnErr := fn(tx); fnErr != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("platform/db: %w: %w (cause: %w)", ErrRollback, rbErr, fnErr)
		}
		return fnErr
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}
	committed = true

	return nil
}
