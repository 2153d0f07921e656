// Package notify is the append-only notification sink: per-user
// notices, admin broadcasts, and the privileged admin audit log.
package notify

import (
	"context"

	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// Service writes and lists notifications. No retry or ordering
// guarantee beyond creation order, and no daily cap or quiet hours —
// every call that reaches here is assumed already policy-approved by
// its caller.
type Service struct {
	db *sqlite.DB
}

// NewService creates a notification sink.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// NotifyUser appends a notice for a single recipient.
func (s *Service) NotifyUser(ctx context.Context, recipientID int64, title, body string) error {
	return s.db.UserNotify(ctx, recipientID, title, body)
}

// NotifyUserTx is NotifyUser run within an open transaction, for
// notices that must commit atomically with the state change that
// triggered them.
func (s *Service) NotifyUserTx(ctx context.Context, tx *sqlite.Tx, recipientID int64, title, body string) error {
	return s.db.UserNotifyTx(ctx, tx, recipientID, title, body)
}

// NotifyAdmin appends a broadcast notice visible to every admin.
func (s *Service) NotifyAdmin(ctx context.Context, title, body string) error {
	return s.db.AdminNotify(ctx, title, body)
}

// NotifyAdminTx is NotifyAdmin run within an open transaction.
func (s *Service) NotifyAdminTx(ctx context.Context, tx *sqlite.Tx, title, body string) error {
	return s.db.AdminNotifyTx(ctx, tx, title, body)
}

// LogAdminAction appends an audit entry for a privileged action, e.g.
// a wallet adjustment after the admin's transactional password has
// been re-verified.
func (s *Service) LogAdminAction(ctx context.Context, actorID int64, description string) error {
	return s.db.AdminLog(ctx, actorID, description)
}

// LogAdminActionTx is LogAdminAction run within an open transaction.
func (s *Service) LogAdminActionTx(ctx context.Context, tx *sqlite.Tx, actorID int64, description string) error {
	return s.db.AdminLogTx(ctx, tx, actorID, description)
}

// Pending returns a recipient's most recent notifications, newest
// first.
func (s *Service) Pending(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	return s.db.ListNotificationsForUser(ctx, userID, limit)
}

// MarkRead flips is_read for a single notification owned by userID.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.db.MarkNotificationRead(ctx, userID, notificationID)
}
