package repository

import (
	"context"

	"taxi/internal/domain"
)

// NotificationRepository defines the persistence operations for notifications.
type NotificationRepository interface {
	// Create persists a single notification.
	Create(ctx context.Context, n *domain.Notification) error

	// CreateForRole fans the notification out to every user with the given
	// role, one row per recipient. Returns the number of recipients.
	CreateForRole(ctx context.Context, role domain.Role, n *domain.Notification) (int64, error)

	// ListByUser retrieves a user's notifications, newest first, capped
	// at limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}
