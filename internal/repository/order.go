package repository

import (
	"context"
	"time"

	"taxi/internal/domain"
)

// OrderRepository defines the persistence operations for orders.
//
// The transition methods are conditional updates keyed on the expected
// current status. They return false, without error, when the order exists
// but is not in the expected state; concurrent callers therefore serialize
// on the database row and at most one of them observes true.
type OrderRepository interface {
	// Create persists a new order in status searching.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListActive retrieves all orders not yet completed, newest first.
	ListActive(ctx context.Context) ([]*domain.Order, error)

	// ListByPassenger retrieves a passenger's orders, newest first,
	// capped at limit.
	ListByPassenger(ctx context.Context, passengerID string, limit int) ([]*domain.Order, error)

	// Accept transitions searching -> accepted, assigning the driver and
	// setting accepted_at.
	Accept(ctx context.Context, id, driverID string, at time.Time) (bool, error)

	// MarkArriving transitions accepted -> arriving.
	MarkArriving(ctx context.Context, id string) (bool, error)

	// MarkRiding transitions arriving -> riding, setting started_at.
	MarkRiding(ctx context.Context, id string, at time.Time) (bool, error)

	// Complete transitions riding -> completed, setting completed_at and
	// the final price.
	Complete(ctx context.Context, id string, price float64, at time.Time) (bool, error)
}
