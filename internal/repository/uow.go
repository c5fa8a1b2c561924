package repository

import "context"

// Repos bundles repositories bound to a single transaction.
type Repos struct {
	Users         UserRepository
	Drivers       DriverRepository
	Orders        OrderRepository
	Notifications NotificationRepository
}

// UnitOfWork runs a function against transaction-scoped repositories.
// The transaction commits when fn returns nil and rolls back otherwise,
// so a lifecycle transition and its fan-out either fully apply or not
// at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
