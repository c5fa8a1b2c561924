package repository

import (
	"context"

	"taxi/internal/domain"
)

// DriverRepository defines the persistence operations for driver profiles.
type DriverRepository interface {
	// Create adds a driver profile for a user.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByUserID retrieves the driver profile attached to a user.
	GetByUserID(ctx context.Context, userID string) (*domain.Driver, error)

	// UpdateStatus updates the availability status of a driver.
	UpdateStatus(ctx context.Context, userID string, status domain.DriverStatus) error
}
