package sqlite

import (
	"context"
	"time"
)

// AdminLog appends an audit entry for a privileged admin action, e.g.
// a wallet adjustment after the admin's transactional password has
// been re-verified.
func (d *DB) AdminLog(ctx context.Context, actorID int64, description string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO admin_logs (actor_id, description, created_at) VALUES (?, ?, ?)`,
		actorID, description, time.Now().Unix(),
	)
	return err
}

// AdminLogTx is the same write, scoped to an open transaction so the
// audit entry commits atomically with the wallet mutation it records.
func (d *DB) AdminLogTx(ctx context.Context, tx *Tx, actorID int64, description string) error {
	_, err := tx.exec(ctx,
		`INSERT INTO admin_logs (actor_id, description, created_at) VALUES (?, ?, ?)`,
		actorID, description, time.Now().Unix(),
	)
	return err
}
