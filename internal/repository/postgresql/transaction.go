package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// payrollTxOptions applies to every payroll write. Concurrent writers are
// excluded by the run status guards in the statements.
var payrollTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// WithTransaction executes fn inside a database transaction. The transaction
// is also placed on the context passed to fn so repositories called from it
// pick it up through GetQuerier.
func WithTransaction(ctx context.Context, db *database.DB, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, payrollTxOptions)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Roll back even when the caller's context is already cancelled.
	rollbackCtx := context.WithoutCancel(ctx)
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(rollbackCtx); rbErr != nil {
				slog.Error("Rollback failed during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx), tx); err != nil {
		if rbErr := tx.Rollback(rollbackCtx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetQuerier returns the transaction on ctx, or the pool outside one.
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}
