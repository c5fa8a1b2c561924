package tests

import (
	"context"
	"testing"

	"taxi/internal/domain"
)

// ──────────────────────────────────────────────
// NOTIFICATION FAN-OUT PER TRANSITION
// ──────────────────────────────────────────────

func TestCreateBroadcastsToAllDrivers(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driverIDs := []string{
		env.seedDriver().ID,
		env.seedDriver().ID,
		env.seedDriver().ID,
	}

	order := env.createOrder(t, passenger.ID)

	if got := env.notifs.CountByType(domain.NotificationNewOrder); got != len(driverIDs) {
		t.Errorf("expected %d new_order notifications, got %d", len(driverIDs), got)
	}
	for _, id := range driverIDs {
		if env.notifs.CountForUser(id) != 1 {
			t.Errorf("expected driver %s to receive 1 notification, got %d", id, env.notifs.CountForUser(id))
		}
	}
	if env.notifs.CountForUser(passenger.ID) != 0 {
		t.Errorf("expected no passenger notifications on create, got %d", env.notifs.CountForUser(passenger.ID))
	}

	last := env.notifs.LastForUser(driverIDs[0])
	if last.Title != "New order" {
		t.Errorf("unexpected notification title %q", last.Title)
	}
	if last.OrderID != order.ID {
		t.Errorf("notification references order %s, want %s", last.OrderID, order.ID)
	}
}

func TestAcceptNotifiesPassengerAndMarksDriverBusy(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()
	ctx := context.Background()

	order := env.createOrder(t, passenger.ID)

	if _, err := env.svc.Accept(ctx, order.ID, driver.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if got := env.notifs.CountForUser(passenger.ID); got != 1 {
		t.Fatalf("expected 1 passenger notification, got %d", got)
	}
	n := env.notifs.LastForUser(passenger.ID)
	if n.Type != domain.NotificationDriverAssigned {
		t.Errorf("expected driver_assigned, got %s", n.Type)
	}
	if n.Title != "Driver found" {
		t.Errorf("unexpected title %q", n.Title)
	}

	if d := env.drivers.GetDriver(driver.ID); d.Status != domain.DriverStatusBusy {
		t.Errorf("expected driver busy after accept, got %s", d.Status)
	}
	if env.cache.InvalidateCallCount == 0 {
		t.Error("expected driver cache invalidation after accept")
	}
}

func TestArriveNotifiesPassenger(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()

	order := env.createOrder(t, passenger.ID)
	mustAdvance(t, env, order.ID, driver.ID, domain.OrderStatusArriving)

	if got := env.notifs.CountByType(domain.NotificationDriverArrived); got != 1 {
		t.Errorf("expected 1 driver_arrived notification, got %d", got)
	}
	n := env.notifs.LastForUser(passenger.ID)
	if n.Type != domain.NotificationDriverArrived {
		t.Errorf("expected driver_arrived last, got %s", n.Type)
	}
}

func TestStartHasNoFanOut(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()

	order := env.createOrder(t, passenger.ID)
	mustAdvance(t, env, order.ID, driver.ID, domain.OrderStatusArriving)

	before := env.notifs.CountForUser(passenger.ID)
	if _, err := env.svc.Start(context.Background(), order.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if after := env.notifs.CountForUser(passenger.ID); after != before {
		t.Errorf("expected no notifications on start, count went %d -> %d", before, after)
	}

	// Driver stays busy through the ride.
	if d := env.drivers.GetDriver(driver.ID); d.Status != domain.DriverStatusBusy {
		t.Errorf("expected driver still busy, got %s", d.Status)
	}
}

func TestCompleteNotifiesPassengerAndFreesDriver(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()

	order := env.createOrder(t, passenger.ID)
	mustAdvance(t, env, order.ID, driver.ID, domain.OrderStatusCompleted)

	if got := env.notifs.CountByType(domain.NotificationTripCompleted); got != 1 {
		t.Errorf("expected 1 trip_completed notification, got %d", got)
	}
	n := env.notifs.LastForUser(passenger.ID)
	if n.Type != domain.NotificationTripCompleted {
		t.Errorf("expected trip_completed last, got %s", n.Type)
	}

	if d := env.drivers.GetDriver(driver.ID); d.Status != domain.DriverStatusOnline {
		t.Errorf("expected driver back online after complete, got %s", d.Status)
	}
}

// A failing fan-out write aborts the whole transition: the conditional update
// and the notification are one unit.
func TestFanOutFailureAbortsTransition(t *testing.T) {
	t.Parallel()

	env := newOrderEnv()
	passenger := env.seedPassenger()
	driver := env.seedDriver()
	ctx := context.Background()

	order := env.createOrder(t, passenger.ID)

	env.notifs.CreateError = errInjected
	_, err := env.svc.Accept(ctx, order.ID, driver.ID)
	if err != errInjected {
		t.Fatalf("expected injected error, got %v", err)
	}
}
