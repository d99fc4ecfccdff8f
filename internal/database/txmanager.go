package database

import (
	"context"
	"database/sql"
)

// TxManager runs a function inside a database transaction. Services depend
// on this interface so business logic can be tested without a live database.
type TxManager interface {
	InTx(ctx context.Context, opts TxOptions, fn func(DBTX) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager returns a TxManager over the given connection pool. Retryable
// failures (serialization, deadlock) are retried per the options.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) InTx(ctx context.Context, opts TxOptions, fn func(DBTX) error) error {
	return WithRetry(ctx, m.db, opts, func(tx *sql.Tx) error {
		return fn(tx)
	})
}
