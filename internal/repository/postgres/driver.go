package postgres

import (
	"context"
	"database/sql"
	"errors"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a driver profile for a user.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (user_id, car_brand, car_model, car_color, license_plate, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.UserID, driver.CarBrand, driver.CarModel, driver.CarColor,
		driver.LicensePlate, driver.Status)
	return err
}

// GetByUserID retrieves the driver profile attached to a user.
func (r *DriverRepository) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	query := `
		SELECT user_id, COALESCE(car_brand, ''), COALESCE(car_model, ''), COALESCE(car_color, ''), COALESCE(license_plate, ''), status
		FROM drivers WHERE user_id = $1
	`

	var driver domain.Driver
	err := r.q.QueryRowContext(ctx, query, userID).Scan(
		&driver.UserID,
		&driver.CarBrand,
		&driver.CarModel,
		&driver.CarColor,
		&driver.LicensePlate,
		&driver.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}

// UpdateStatus updates the availability status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, userID string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1 WHERE user_id = $2`

	result, err := r.q.ExecContext(ctx, query, status, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
