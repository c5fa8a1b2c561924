package tests

import (
	"context"
	"sync"
	"testing"

	"taxi/internal/domain"
	"taxi/internal/repository"
	"taxi/internal/service"
)

// TestConcurrentAcceptSingleWinner races two drivers for the same order with
// the Redis lock disabled, so the conditional status update alone has to
// serialize them. Exactly one assignment must land, with exactly one fan-out.
func TestConcurrentAcceptSingleWinner(t *testing.T) {
	t.Parallel()

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

	svc := service.NewOrderService(
		uow, orders, users, drivers, service.NewNotifier(),
		nil, nil, 380,
	)

	env := &orderEnv{svc: svc, users: users, drivers: drivers, orders: orders, notifs: notifs}
	passenger := env.seedPassenger()
	driverA := env.seedDriver()
	driverB := env.seedDriver()

	order := env.createOrder(t, passenger.ID)

	ctx := context.Background()
	results := make([]*domain.Order, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	for i, driverID := range []string{driverA.ID, driverB.ID} {
		go func(i int, driverID string) {
			defer wg.Done()
			results[i], errs[i] = svc.Accept(ctx, order.ID, driverID)
		}(i, driverID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("accept %d: %v", i, err)
		}
	}

	// Both calls return the same final state.
	winner := orders.GetOrder(order.ID).DriverID
	if winner != driverA.ID && winner != driverB.ID {
		t.Fatalf("unexpected winning driver %s", winner)
	}
	for i, result := range results {
		if result.DriverID != winner {
			t.Errorf("accept %d returned driver %s, want %s", i, result.DriverID, winner)
		}
		if result.Status != domain.OrderStatusAccepted {
			t.Errorf("accept %d returned status %s", i, result.Status)
		}
	}

	// Exactly one conditional update succeeded: one busy driver, one fan-out.
	busy := 0
	for _, id := range []string{driverA.ID, driverB.ID} {
		if drivers.GetDriver(id).Status == domain.DriverStatusBusy {
			busy++
		}
	}
	if busy != 1 {
		t.Errorf("expected exactly 1 busy driver, got %d", busy)
	}
	if got := notifs.CountByType(domain.NotificationDriverAssigned); got != 1 {
		t.Errorf("expected exactly 1 driver_assigned notification, got %d", got)
	}
	if got := notifs.CountForUser(passenger.ID); got != 1 {
		t.Errorf("expected 1 passenger notification, got %d", got)
	}
}
