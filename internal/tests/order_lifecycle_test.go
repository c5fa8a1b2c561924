package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"taxi/internal/domain"
	"taxi/internal/repository"
	"taxi/internal/service"
)

// orderEnv bundles the order lifecycle engine with the mocks behind it.
type orderEnv struct {
	svc     *service.OrderService
	users   *MockUserRepository
	drivers *MockDriverRepository
	orders  *MockOrderRepository
	notifs  *MockNotificationRepository
	locks   *MockLockStore
	cache   *MockDriverCache
}

func newOrderEnv() *orderEnv {
	users := NewMockUserRepository()
	drivers := NewMockDriverRepository()
	orders := NewMockOrderRepository()
	notifs := NewMockNotificationRepository(users)
	uow := NewMockUnitOfWork(repository.Repos{
		Users:         users,
		Drivers:       drivers,
		Orders:        orders,
		Notifications: notifs,
	})
	locks := NewMockLockStore()
	cache := NewMockDriverCache()

	svc := service.NewOrderService(
		uow, orders, users, drivers, service.NewNotifier(),
		locks, cache, 380,
	)

	return &orderEnv{
		svc:     svc,
		users:   users,
		drivers: drivers,
		orders:  orders,
		notifs:  notifs,
		locks:   locks,
		cache:   cache,
	}
}

func (e *orderEnv) seedPassenger() *domain.User {
	user := &domain.User{
		ID:        uuid.New().String(),
		Phone:     "+7999" + uuid.New().String()[:7],
		Name:      "Passenger",
		Role:      domain.RolePassenger,
		Rating:    domain.DefaultRating,
		CreatedAt: time.Now(),
	}
	e.users.AddUser(user)
	return user
}

func (e *orderEnv) seedDriver() *domain.User {
	user := &domain.User{
		ID:        uuid.New().String(),
		Phone:     "+7888" + uuid.New().String()[:7],
		Name:      "Driver",
		Role:      domain.RoleDriver,
		Rating:    domain.DefaultRating,
		CreatedAt: time.Now(),
	}
	e.users.AddUser(user)
	e.drivers.AddDriver(&domain.Driver{
		UserID:       user.ID,
		CarBrand:     "Toyota",
		CarModel:     "Camry",
		CarColor:     "White",
		LicensePlate: "A123BV777",
		Status:       domain.DriverStatusOnline,
	})
	return user
}

func (e *orderEnv) createOrder(t *testing.T, passengerID string) *domain.Order {
	t.Helper()
	order, err := e.svc.Create(context.Background(), service.CreateOrderRequest{
		PassengerID:    passengerID,
		PickupLat:      55.751,
		PickupLon:      37.618,
		DestinationLat: 55.760,
		DestinationLon: 37.640,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

// ──────────────────────────────────────────────
// CREATE
// ──────────────────────────────────────────────

func TestCreateOrderStartsSearching(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()

	order := env.createOrder(t, passenger.ID)

	if order.Status != domain.OrderStatusSearching {
		t.Errorf("expected status searching, got %s", order.Status)
	}
	if order.Tariff != domain.TariffEconomy {
		t.Errorf("expected default tariff economy, got %s", order.Tariff)
	}
	if order.DriverID != "" {
		t.Errorf("expected no driver on a new order, got %s", order.DriverID)
	}
	if order.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	ctx := context.Background()

	cases := []struct {
		name string
		req  service.CreateOrderRequest
		want error
	}{
		{
			name: "missing passenger",
			req:  service.CreateOrderRequest{PickupLat: 55, PickupLon: 37, DestinationLat: 56, DestinationLon: 38},
			want: service.ErrInvalidPassengerID,
		},
		{
			name: "pickup latitude out of range",
			req:  service.CreateOrderRequest{PassengerID: passenger.ID, PickupLat: 91, PickupLon: 37, DestinationLat: 56, DestinationLon: 38},
			want: service.ErrInvalidPickupLocation,
		},
		{
			name: "destination longitude out of range",
			req:  service.CreateOrderRequest{PassengerID: passenger.ID, PickupLat: 55, PickupLon: 37, DestinationLat: 56, DestinationLon: 181},
			want: service.ErrInvalidDestinationLocation,
		},
		{
			name: "unknown tariff",
			req:  service.CreateOrderRequest{PassengerID: passenger.ID, PickupLat: 55, PickupLon: 37, DestinationLat: 56, DestinationLon: 38, Tariff: domain.Tariff("luxury")},
			want: service.ErrInvalidTariff,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, tc.req)
			if err != tc.want {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateOrderUnknownPassenger(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()

	_, err := env.svc.Create(context.Background(), service.CreateOrderRequest{
		PassengerID:    uuid.New().String(),
		PickupLat:      55,
		PickupLon:      37,
		DestinationLat: 56,
		DestinationLon: 38,
	})
	if err != repository.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────
// FULL LIFECYCLE
// ──────────────────────────────────────────────

func TestOrderFullLifecycle(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()
	ctx := context.Background()

	order := env.createOrder(t, passenger.ID)

	accepted, err := env.svc.Accept(ctx, order.ID, driver.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != domain.OrderStatusAccepted {
		t.Errorf("expected status accepted, got %s", accepted.Status)
	}
	if accepted.DriverID != driver.ID {
		t.Errorf("expected driver %s, got %s", driver.ID, accepted.DriverID)
	}

	arriving, err := env.svc.Arrive(ctx, order.ID)
	if err != nil {
		t.Fatalf("arrive: %v", err)
	}
	if arriving.Status != domain.OrderStatusArriving {
		t.Errorf("expected status arriving, got %s", arriving.Status)
	}

	riding, err := env.svc.Start(ctx, order.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if riding.Status != domain.OrderStatusRiding {
		t.Errorf("expected status riding, got %s", riding.Status)
	}

	completed, err := env.svc.Complete(ctx, order.ID, 500)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != domain.OrderStatusCompleted {
		t.Errorf("expected status completed, got %s", completed.Status)
	}
	if completed.Price != 500 {
		t.Errorf("expected price 500, got %.2f", completed.Price)
	}

	// Timestamps advance with the lifecycle.
	if completed.AcceptedAt.Before(completed.CreatedAt) {
		t.Error("accepted_at precedes created_at")
	}
	if completed.StartedAt.Before(completed.AcceptedAt) {
		t.Error("started_at precedes accepted_at")
	}
	if completed.CompletedAt.Before(completed.StartedAt) {
		t.Error("completed_at precedes started_at")
	}
}

func TestCompleteFallsBackToDefaultPrice(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()
	ctx := context.Background()

	order := env.createOrder(t, passenger.ID)
	mustAdvance(t, env, order.ID, driver.ID, domain.OrderStatusRiding)

	completed, err := env.svc.Complete(ctx, order.ID, 0)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Price != 380 {
		t.Errorf("expected default price 380, got %.2f", completed.Price)
	}
}

func TestCompleteRejectsNegativePrice(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()

	_, err := env.svc.Complete(context.Background(), uuid.New().String(), -10)
	if err != service.ErrInvalidPrice {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
}

// mustAdvance drives an order through the lifecycle up to the target status.
func mustAdvance(t *testing.T, env *orderEnv, orderID, driverID string, target domain.OrderStatus) {
	t.Helper()
	ctx := context.Background()

	steps := []struct {
		status domain.OrderStatus
		step   func() error
	}{
		{domain.OrderStatusAccepted, func() error { _, err := env.svc.Accept(ctx, orderID, driverID); return err }},
		{domain.OrderStatusArriving, func() error { _, err := env.svc.Arrive(ctx, orderID); return err }},
		{domain.OrderStatusRiding, func() error { _, err := env.svc.Start(ctx, orderID); return err }},
		{domain.OrderStatusCompleted, func() error { _, err := env.svc.Complete(ctx, orderID, 0); return err }},
	}

	for _, s := range steps {
		if err := s.step(); err != nil {
			t.Fatalf("advance to %s: %v", s.status, err)
		}
		if s.status == target {
			return
		}
	}
}

// ──────────────────────────────────────────────
// INVALID AND DUPLICATE TRANSITIONS
// ──────────────────────────────────────────────

func TestOutOfOrderTransitionsRejected(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	ctx := context.Background()

	order := env.createOrder(t, passenger.ID)

	// The order is still searching: nothing past accept may run.
	if _, err := env.svc.Arrive(ctx, order.ID); err != service.ErrInvalidTransition {
		t.Errorf("arrive on searching: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := env.svc.Start(ctx, order.ID); err != service.ErrInvalidTransition {
		t.Errorf("start on searching: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := env.svc.Complete(ctx, order.ID, 100); err != service.ErrInvalidTransition {
		t.Errorf("complete on searching: expected ErrInvalidTransition, got %v", err)
	}
}

func TestDuplicateAcceptKeepsFirstDriver(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	first := env.seedDriver()
	second := env.seedDriver()
	ctx := context.Background()

	order := env.createOrder(t, passenger.ID)

	if _, err := env.svc.Accept(ctx, order.ID, first.ID); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	// The second accept is late, not wrong: it no-ops against the current state.
	result, err := env.svc.Accept(ctx, order.ID, second.ID)
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if result.DriverID != first.ID {
		t.Errorf("expected first driver kept, got %s", result.DriverID)
	}
	if env.notifs.CountByType(domain.NotificationDriverAssigned) != 1 {
		t.Errorf("expected exactly 1 driver_assigned notification, got %d",
			env.notifs.CountByType(domain.NotificationDriverAssigned))
	}
	if d := env.drivers.GetDriver(second.ID); d.Status != domain.DriverStatusOnline {
		t.Errorf("expected losing driver untouched, got status %s", d.Status)
	}
}

func TestAcceptCompletedOrderRejected(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()
	late := env.seedDriver()

	order := env.createOrder(t, passenger.ID)
	mustAdvance(t, env, order.ID, driver.ID, domain.OrderStatusCompleted)

	_, err := env.svc.Accept(context.Background(), order.ID, late.ID)
	if err != service.ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDuplicateCompleteIsNoOp(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()
	ctx := context.Background()

	order := env.createOrder(t, passenger.ID)
	mustAdvance(t, env, order.ID, driver.ID, domain.OrderStatusRiding)

	if _, err := env.svc.Complete(ctx, order.ID, 450); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Replay with a different price: state and price stay as first recorded.
	result, err := env.svc.Complete(ctx, order.ID, 999)
	if err != nil {
		t.Fatalf("duplicate complete: %v", err)
	}
	if result.Price != 450 {
		t.Errorf("expected original price kept, got %.2f", result.Price)
	}
	if env.notifs.CountByType(domain.NotificationTripCompleted) != 1 {
		t.Errorf("expected exactly 1 trip_completed notification, got %d",
			env.notifs.CountByType(domain.NotificationTripCompleted))
	}
}

// ──────────────────────────────────────────────
// ACCEPT GUARDS
// ──────────────────────────────────────────────

func TestAcceptRequiresDriverRole(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	impostor := env.seedPassenger()

	order := env.createOrder(t, passenger.ID)

	_, err := env.svc.Accept(context.Background(), order.ID, impostor.ID)
	if err != service.ErrNotADriver {
		t.Errorf("expected ErrNotADriver, got %v", err)
	}
}

func TestAcceptUnknownDriver(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()

	order := env.createOrder(t, passenger.ID)

	_, err := env.svc.Accept(context.Background(), order.ID, uuid.New().String())
	if err != repository.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAcceptBlockedWhileLockHeld(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()
	ctx := context.Background()

	order := env.createOrder(t, passenger.ID)

	// Simulate another accept holding the order lock.
	if ok, _ := env.locks.AcquireOrderLock(ctx, order.ID, time.Second); !ok {
		t.Fatal("failed to pre-acquire lock")
	}

	_, err := env.svc.Accept(ctx, order.ID, driver.ID)
	if err != service.ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition while locked, got %v", err)
	}
	if got := env.orders.GetOrder(order.ID).Status; got != domain.OrderStatusSearching {
		t.Errorf("expected order untouched, got status %s", got)
	}
}
