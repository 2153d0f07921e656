package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/reviewforge/reviewforge/internal/domain"
)

const notificationCols = `id, recipient_id, title, body, is_read, type, created_at`

func scanNotification(s scanner) (*domain.Notification, error) {
	var n domain.Notification
	var recipientID sql.NullInt64
	var typ string
	var createdAt int64

	err := s.Scan(&n.ID, &recipientID, &n.Title, &n.Body, &n.IsRead, &typ, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n.RecipientID = int64Ptr(recipientID)
	n.Type = domain.NotificationType(typ)
	n.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &n, nil
}

// UserNotify appends a per-recipient notification. Called outside any
// wallet transaction; failures are logged by the caller, never
// propagated into the triggering operation.
func (d *DB) UserNotify(ctx context.Context, recipientID int64, title, body string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO notifications (recipient_id, title, body, is_read, type, created_at) VALUES (?, ?, ?, 0, ?, ?)`,
		recipientID, title, body, domain.NotificationUser, time.Now().Unix(),
	)
	return err
}

// AdminNotify appends an admin-broadcast notification (recipient_id is
// NULL).
func (d *DB) AdminNotify(ctx context.Context, title, body string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO notifications (recipient_id, title, body, is_read, type, created_at) VALUES (NULL, ?, ?, 0, ?, ?)`,
		title, body, domain.NotificationAdmin, time.Now().Unix(),
	)
	return err
}

// UserNotifyTx is UserNotify run within an open transaction, for
// notifications that must commit atomically with the state change that
// triggered them.
func (d *DB) UserNotifyTx(ctx context.Context, tx *Tx, recipientID int64, title, body string) error {
	_, err := tx.exec(ctx,
		`INSERT INTO notifications (recipient_id, title, body, is_read, type, created_at) VALUES (?, ?, ?, 0, ?, ?)`,
		recipientID, title, body, domain.NotificationUser, time.Now().Unix(),
	)
	return err
}

// AdminNotifyTx is AdminNotify run within an open transaction.
func (d *DB) AdminNotifyTx(ctx context.Context, tx *Tx, title, body string) error {
	_, err := tx.exec(ctx,
		`INSERT INTO notifications (recipient_id, title, body, is_read, type, created_at) VALUES (NULL, ?, ?, 0, ?, ?)`,
		title, body, domain.NotificationAdmin, time.Now().Unix(),
	)
	return err
}

// ListNotificationsForUser returns a recipient's notifications newest
// first.
func (d *DB) ListNotificationsForUser(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+notificationCols+` FROM notifications WHERE recipient_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flips is_read for a single notification owned by
// userID.
func (d *DB) MarkNotificationRead(ctx context.Context, userID, notificationID int64) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?`, notificationID, userID)
	return err
}
