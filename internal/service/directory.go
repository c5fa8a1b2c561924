package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// Default vehicle profile assigned on first driver registration. Drivers
// update these through their profile later; registration only needs a
// placeholder the passenger view can render.
const (
	defaultCarBrand     = "Toyota"
	defaultCarModel     = "Camry"
	defaultCarColor     = "White"
	defaultLicensePlate = "A123BV777"
)

// DirectoryService resolves user identity by phone number, creating the
// user (and driver profile, for role=driver) on first contact.
type DirectoryService struct {
	users repository.UserRepository
	uow   repository.UnitOfWork
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(users repository.UserRepository, uow repository.UnitOfWork) *DirectoryService {
	return &DirectoryService{users: users, uow: uow}
}

// IdentifyRequest contains the parameters for identifying or registering a user.
type IdentifyRequest struct {
	Phone string
	Name  string
	Role  domain.Role // empty defaults to passenger
}

// IdentifyOrRegister looks a user up by phone and returns it, or registers a
// new one. On a repeat call the supplied name and role are ignored: the first
// registration wins and role never changes afterwards.
func (s *DirectoryService) IdentifyOrRegister(ctx context.Context, req IdentifyRequest) (*domain.User, error) {
	if req.Phone == "" {
		return nil, ErrPhoneRequired
	}

	role := req.Role
	if role == "" {
		role = domain.RolePassenger
	}
	if role != domain.RolePassenger && role != domain.RoleDriver {
		return nil, ErrInvalidRole
	}

	existing, err := s.users.GetByPhone(ctx, req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Phone:     req.Phone,
		Name:      req.Name,
		Role:      role,
		Rating:    domain.DefaultRating,
		CreatedAt: time.Now(),
	}

	err = s.uow.WithinTx(ctx, func(r repository.Repos) error {
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}

		if role == domain.RoleDriver {
			driver := &domain.Driver{
				UserID:       user.ID,
				CarBrand:     defaultCarBrand,
				CarModel:     defaultCarModel,
				CarColor:     defaultCarColor,
				LicensePlate: defaultLicensePlate,
				Status:       domain.DriverStatusOffline,
			}
			if err := r.Drivers.Create(ctx, driver); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
