package tests

import (
	"context"
	"testing"

	"taxi/internal/domain"
	"taxi/internal/repository"
	"taxi/internal/service"
)

func newDirectoryService() (*service.DirectoryService, *MockUserRepository, *MockDriverRepository) {
	users := NewMockUserRepository()
	drivers := NewMockDriverRepository()
	uow := NewMockUnitOfWork(repository.Repos{
		Users:         users,
		Drivers:       drivers,
		Orders:        NewMockOrderRepository(),
		Notifications: NewMockNotificationRepository(users),
	})
	return service.NewDirectoryService(users, uow), users, drivers
}

// ──────────────────────────────────────────────
// REGISTRATION
// ──────────────────────────────────────────────

func TestIdentifyRegistersNewPassenger(t *testing.T) {
	t.Parallel()

	svc, users, drivers := newDirectoryService()

	user, err := svc.IdentifyOrRegister(context.Background(), service.IdentifyRequest{
		Phone: "+79990001122",
		Name:  "Anna",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.ID == "" {
		t.Error("expected generated user ID")
	}
	if user.Role != domain.RolePassenger {
		t.Errorf("expected default role passenger, got %s", user.Role)
	}
	if user.Rating != domain.DefaultRating {
		t.Errorf("expected default rating %.1f, got %.1f", domain.DefaultRating, user.Rating)
	}
	if users.CreateCallCount != 1 {
		t.Errorf("expected 1 user create, got %d", users.CreateCallCount)
	}
	if drivers.CreateCallCount != 0 {
		t.Errorf("expected no driver profile for a passenger, got %d", drivers.CreateCallCount)
	}
}

func TestIdentifyRegistersDriverWithDefaultVehicle(t *testing.T) {
	t.Parallel()

	svc, _, drivers := newDirectoryService()

	user, err := svc.IdentifyOrRegister(context.Background(), service.IdentifyRequest{
		Phone: "+79990003344",
		Name:  "Boris",
		Role:  domain.RoleDriver,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile := drivers.GetDriver(user.ID)
	if profile == nil {
		t.Fatal("expected driver profile to be created")
	}
	if profile.CarBrand != "Toyota" || profile.CarModel != "Camry" {
		t.Errorf("expected default vehicle Toyota Camry, got %s %s", profile.CarBrand, profile.CarModel)
	}
	if profile.CarColor != "White" || profile.LicensePlate != "A123BV777" {
		t.Errorf("unexpected default vehicle details: %s %s", profile.CarColor, profile.LicensePlate)
	}
	if profile.Status != domain.DriverStatusOffline {
		t.Errorf("expected new driver to start offline, got %s", profile.Status)
	}
}

// ──────────────────────────────────────────────
// IDEMPOTENCE
// ──────────────────────────────────────────────

func TestIdentifyIsIdempotentByPhone(t *testing.T) {
	t.Parallel()

	svc, users, _ := newDirectoryService()

	first, err := svc.IdentifyOrRegister(context.Background(), service.IdentifyRequest{
		Phone: "+79990005566",
		Name:  "Carol",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same phone, different name and role: the first registration wins.
	second, err := svc.IdentifyOrRegister(context.Background(), service.IdentifyRequest{
		Phone: "+79990005566",
		Name:  "Someone Else",
		Role:  domain.RoleDriver,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected same user, got %s and %s", first.ID, second.ID)
	}
	if second.Name != "Carol" {
		t.Errorf("expected original name kept, got %s", second.Name)
	}
	if second.Role != domain.RolePassenger {
		t.Errorf("expected role unchanged, got %s", second.Role)
	}
	if users.CreateCallCount != 1 {
		t.Errorf("expected exactly 1 user create across both calls, got %d", users.CreateCallCount)
	}
}

// ──────────────────────────────────────────────
// VALIDATION
// ──────────────────────────────────────────────

func TestIdentifyRequiresPhone(t *testing.T) {
	t.Parallel()

	svc, _, _ := newDirectoryService()

	_, err := svc.IdentifyOrRegister(context.Background(), service.IdentifyRequest{Name: "No Phone"})
	if err != service.ErrPhoneRequired {
		t.Errorf("expected ErrPhoneRequired, got %v", err)
	}
}

func TestIdentifyRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	svc, _, _ := newDirectoryService()

	_, err := svc.IdentifyOrRegister(context.Background(), service.IdentifyRequest{
		Phone: "+79990007788",
		Role:  domain.Role("admin"),
	})
	if err != service.ErrInvalidRole {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}
