package repository

import (
	"context"
	"database/sql"

	"catalog-backend/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var readOnlyTx = &sql.TxOptions{ReadOnly: true}

// withTx runs fn inside a transaction. The transaction is committed only when
// fn returns nil; any error, panic or context cancellation rolls it back.
func withTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return domain.NewStorageError("commit transaction", err)
	}
	return nil
}
