package domain

import "time"

// NotificationType distinguishes a per-user notification from an
// admin-broadcast one.
type NotificationType string

const (
	NotificationUser  NotificationType = "user"
	NotificationAdmin NotificationType = "admin"
)

// Notification is an append-only entry in the notification sink.
// RecipientID is nil for an admin-broadcast notification.
type Notification struct {
	ID          int64            `json:"id"`
	RecipientID *int64           `json:"recipient_id,omitempty"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	IsRead      bool             `json:"is_read"`
	Type        NotificationType `json:"type"`
	CreatedAt   time.Time        `json:"created_at"`
}

// AdminLog is an append-only audit entry recorded for every admin wallet
// mutation and other privileged action.
type AdminLog struct {
	ID          int64     `json:"id"`
	ActorID     int64     `json:"actor_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
