package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

const orderColumns = `id, passenger_id, driver_id, pickup_lat, pickup_lon, destination_lat, destination_lon, tariff, status, price, created_at, accepted_at, started_at, completed_at`

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

// Create persists a new order in status searching.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, passenger_id, pickup_lat, pickup_lon, destination_lat, destination_lon, tariff, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.ExecContext(ctx, query,
		order.ID,
		order.PassengerID,
		order.PickupLat,
		order.PickupLon,
		order.DestinationLat,
		order.DestinationLon,
		order.Tariff,
		order.Status,
		order.CreatedAt,
	)
	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// ListActive retrieves all orders not yet completed, newest first.
func (r *OrderRepository) ListActive(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE status IN ('searching', 'accepted', 'arriving', 'riding')
		ORDER BY created_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListByPassenger retrieves a passenger's orders, newest first, capped at limit.
func (r *OrderRepository) ListByPassenger(ctx context.Context, passengerID string, limit int) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE passenger_id = $1
		ORDER BY created_at DESC LIMIT $2
	`
	rows, err := r.q.QueryContext(ctx, query, passengerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

// Accept transitions searching -> accepted. The WHERE clause on the current
// status is the serialization point: of two concurrent accepts exactly one
// update matches the row.
func (r *OrderRepository) Accept(ctx context.Context, id, driverID string, at time.Time) (bool, error) {
	query := `
		UPDATE orders SET status = $1, driver_id = $2, accepted_at = $3
		WHERE id = $4 AND status = $5
	`
	return r.execConditional(ctx, query,
		domain.OrderStatusAccepted, driverID, at, id, domain.OrderStatusSearching)
}

// MarkArriving transitions accepted -> arriving.
func (r *OrderRepository) MarkArriving(ctx context.Context, id string) (bool, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`
	return r.execConditional(ctx, query,
		domain.OrderStatusArriving, id, domain.OrderStatusAccepted)
}

// MarkRiding transitions arriving -> riding, setting started_at.
func (r *OrderRepository) MarkRiding(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE orders SET status = $1, started_at = $2
		WHERE id = $3 AND status = $4
	`
	return r.execConditional(ctx, query,
		domain.OrderStatusRiding, at, id, domain.OrderStatusArriving)
}

// Complete transitions riding -> completed, setting completed_at and price.
func (r *OrderRepository) Complete(ctx context.Context, id string, price float64, at time.Time) (bool, error) {
	query := `
		UPDATE orders SET status = $1, completed_at = $2, price = $3
		WHERE id = $4 AND status = $5
	`
	return r.execConditional(ctx, query,
		domain.OrderStatusCompleted, at, price, id, domain.OrderStatusRiding)
}

func (r *OrderRepository) execConditional(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var driverID sql.NullString
	var price sql.NullFloat64
	var acceptedAt, startedAt, completedAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.PassengerID,
		&driverID,
		&order.PickupLat,
		&order.PickupLon,
		&order.DestinationLat,
		&order.DestinationLon,
		&order.Tariff,
		&order.Status,
		&price,
		&order.CreatedAt,
		&acceptedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		order.DriverID = driverID.String
	}
	if price.Valid {
		order.Price = price.Float64
	}
	if acceptedAt.Valid {
		order.AcceptedAt = acceptedAt.Time
	}
	if startedAt.Valid {
		order.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		order.CompletedAt = completedAt.Time
	}

	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
