package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx is a live transaction handed to a WithTx callback. It exposes only
// the methods repository code needs, so call sites cannot accidentally
// escape the transaction boundary by reaching for the pool directly.
type Tx struct {
	conn *sql.Conn
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.conn.ExecContext(ctx, query, args...)
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.conn.QueryRowContext(ctx, query, args...)
}

func (t *Tx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.conn.QueryContext(ctx, query, args...)
}

// WithTx runs fn inside a BEGIN IMMEDIATE transaction, committing on a
// nil return and rolling back otherwise. BEGIN IMMEDIATE takes the
// write lock up front, which is how a single-writer sqlite database
// emulates SELECT ... FOR UPDATE for wallet and tracker mutations.
func (d *DB) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin immediate: %w", err)
	}

	if err := fn(ctx, &Tx{conn: conn}); err != nil {
		if _, rbErr := conn.ExecContext(ctx, "ROLLBACK"); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
