package postgres

import (
	"context"
	"database/sql"

	"taxi/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// UnitOfWork implements repository.UnitOfWork on top of *sql.DB.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTx starts a transaction, hands transaction-scoped repositories to fn,
// and commits if fn returns nil. Any error rolls the transaction back.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.Repos{
		Users:         NewUserRepositoryWithTx(tx),
		Drivers:       NewDriverRepositoryWithTx(tx),
		Orders:        NewOrderRepositoryWithTx(tx),
		Notifications: NewNotificationRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
