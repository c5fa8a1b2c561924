package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"taxi/internal/domain"
	"taxi/internal/repository"
)

// notificationListLimit caps how many notifications a listing returns.
const notificationListLimit = 20

// Notifier builds and persists notification records for lifecycle events.
// It writes through the repository handed to it by the caller, so emissions
// land in the same transaction as the state change that caused them.
type Notifier struct{}

// NewNotifier creates a new Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// OrderCreated fans a new-order notification out to every driver.
func (n *Notifier) OrderCreated(ctx context.Context, notifications repository.NotificationRepository, order *domain.Order) error {
	count, err := notifications.CreateForRole(ctx, domain.RoleDriver, &domain.Notification{
		OrderID:   order.ID,
		Title:     "New order",
		Message:   fmt.Sprintf("Order %s is waiting to be accepted", order.ID),
		Type:      domain.NotificationNewOrder,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	log.Printf("[NOTIFICATION] type=%s order=%s recipients=%d", domain.NotificationNewOrder, order.ID, count)
	return nil
}

// DriverAssigned notifies the passenger that a driver accepted the order.
func (n *Notifier) DriverAssigned(ctx context.Context, notifications repository.NotificationRepository, order *domain.Order, driverName string) error {
	return n.emit(ctx, notifications, order.PassengerID, order.ID,
		"Driver found",
		fmt.Sprintf("Driver %s accepted your order", driverName),
		domain.NotificationDriverAssigned)
}

// DriverArrived notifies the passenger that the driver is waiting.
func (n *Notifier) DriverArrived(ctx context.Context, notifications repository.NotificationRepository, order *domain.Order) error {
	return n.emit(ctx, notifications, order.PassengerID, order.ID,
		"Driver arrived",
		"Your driver is waiting for you",
		domain.NotificationDriverArrived)
}

// TripCompleted notifies the passenger that the trip has ended.
func (n *Notifier) TripCompleted(ctx context.Context, notifications repository.NotificationRepository, order *domain.Order) error {
	return n.emit(ctx, notifications, order.PassengerID, order.ID,
		"Trip completed",
		"Thank you for riding with us!",
		domain.NotificationTripCompleted)
}

func (n *Notifier) emit(ctx context.Context, notifications repository.NotificationRepository, userID, orderID, title, message string, typ domain.NotificationType) error {
	err := notifications.Create(ctx, &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		OrderID:   orderID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	log.Printf("[NOTIFICATION] type=%s order=%s recipient=%s", typ, orderID, userID)
	return nil
}

// NotificationService handles notification queries.
type NotificationService struct {
	notifications repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListForUser retrieves a user's most recent notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.notifications.ListByUser(ctx, userID, notificationListLimit)
}
