package postgres

import (
	"context"
	"database/sql"

	"taxi/internal/domain"
)

// NotificationRepository is a PostgreSQL implementation of
// repository.NotificationRepository.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

// NewNotificationRepositoryWithTx creates a notification repository using a transaction.
func NewNotificationRepositoryWithTx(tx *sql.Tx) *NotificationRepository {
	return &NotificationRepository{q: tx}
}

// Create persists a single notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, order_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.ExecContext(ctx, query,
		n.ID, n.UserID, n.OrderID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt)
	return err
}

// CreateForRole fans the notification out to every user with the given role
// in a single statement. Row-per-recipient grows linearly with the role's
// population; fine at current scale.
func (r *NotificationRepository) CreateForRole(ctx context.Context, role domain.Role, n *domain.Notification) (int64, error) {
	query := `
		INSERT INTO notifications (id, user_id, order_id, title, message, type, is_read, created_at)
		SELECT gen_random_uuid(), id, $1, $2, $3, $4, FALSE, $5
		FROM users WHERE role = $6
	`
	result, err := r.q.ExecContext(ctx, query,
		n.OrderID, n.Title, n.Message, n.Type, n.CreatedAt, role)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListByUser retrieves a user's notifications, newest first, capped at limit.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, order_id, title, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2
	`
	rows, err := r.q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.OrderID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}
