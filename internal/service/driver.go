package service

import (
	"context"

	"taxi/internal/domain"
	"taxi/internal/redis"
	"taxi/internal/repository"
)

// DriverService handles driver availability changes made by the driver
// directly (online/offline toggles). Busy/online flips driven by the order
// lifecycle live in OrderService.
type DriverService struct {
	drivers     repository.DriverRepository
	driverCache redis.DriverCacheInterface
}

// NewDriverService creates a new DriverService. driverCache may be nil.
func NewDriverService(drivers repository.DriverRepository, driverCache redis.DriverCacheInterface) *DriverService {
	return &DriverService{drivers: drivers, driverCache: driverCache}
}

// SetStatus updates a driver's availability status.
func (s *DriverService) SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	switch status {
	case domain.DriverStatusOffline, domain.DriverStatusOnline, domain.DriverStatusBusy:
	default:
		return ErrInvalidDriverStatus
	}

	if err := s.drivers.UpdateStatus(ctx, driverID, status); err != nil {
		return err
	}

	if s.driverCache != nil {
		_ = s.driverCache.InvalidateDriver(ctx, driverID)
	}

	return nil
}

// GetProfile retrieves a driver's vehicle profile.
func (s *DriverService) GetProfile(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.drivers.GetByUserID(ctx, driverID)
}
