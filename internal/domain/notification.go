package domain

import "time"

// NotificationType represents the lifecycle event a notification describes.
type NotificationType string

const (
	NotificationNewOrder       NotificationType = "new_order"
	NotificationDriverAssigned NotificationType = "driver_assigned"
	NotificationDriverArrived  NotificationType = "driver_arrived"
	NotificationTripCompleted  NotificationType = "trip_completed"
)

// Notification is an append-only record addressed to a single user.
// The core only ever creates notifications; read-state is toggled elsewhere.
type Notification struct {
	ID        string
	UserID    string
	OrderID   string
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	CreatedAt time.Time
}
