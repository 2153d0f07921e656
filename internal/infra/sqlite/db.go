// Package sqlite provides SQLite-based persistent storage for reviewforge.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/shopspring/decimal"
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer; a pool of one connection turns every
	// BEGIN IMMEDIATE transaction into the row-level lock this domain
	// needs for wallet and tracker mutations.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                      INTEGER PRIMARY KEY AUTOINCREMENT,
			username                TEXT NOT NULL UNIQUE,
			email                   TEXT NOT NULL DEFAULT '',
			phone                   TEXT NOT NULL DEFAULT '',
			password_hash           TEXT NOT NULL,
			transact_password_hash  TEXT NOT NULL DEFAULT '',
			submissions_today       INTEGER NOT NULL DEFAULT 0,
			sets_today              INTEGER NOT NULL DEFAULT 0,
			today_profit            TEXT NOT NULL DEFAULT '0',
			current_referral_bonus  TEXT NOT NULL DEFAULT '0',
			is_active               BOOLEAN NOT NULL DEFAULT 1,
			is_staff                BOOLEAN NOT NULL DEFAULT 0,
			is_reg_bonus_credited   BOOLEAN NOT NULL DEFAULT 0,
			is_min_balance_waived   BOOLEAN NOT NULL DEFAULT 0,
			reg_bonus_amount        TEXT NOT NULL DEFAULT '0',
			last_connection         INTEGER,
			session_id_user         TEXT NOT NULL DEFAULT '',
			session_id_admin        TEXT NOT NULL DEFAULT '',
			referrer_id             INTEGER,
			created_at              INTEGER NOT NULL,
			updated_at              INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS packs (
			id                               INTEGER PRIMARY KEY AUTOINCREMENT,
			name                             TEXT NOT NULL,
			usd_value                        TEXT NOT NULL,
			daily_missions                   INTEGER NOT NULL,
			number_of_set                    INTEGER NOT NULL,
			profit_percentage                TEXT NOT NULL,
			special_product_percentage       TEXT NOT NULL DEFAULT '0',
			minimum_balance_for_submissions  TEXT NOT NULL DEFAULT '0',
			payment_limit_to_trigger_bonus   TEXT NOT NULL DEFAULT '0',
			payment_bonus                    TEXT NOT NULL DEFAULT '0',
			is_active                        BOOLEAN NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       INTEGER NOT NULL UNIQUE REFERENCES users(id),
			balance       TEXT NOT NULL DEFAULT '0',
			on_hold       TEXT NOT NULL DEFAULT '0',
			commission    TEXT NOT NULL DEFAULT '0',
			salary        TEXT NOT NULL DEFAULT '0',
			credit_score  TEXT NOT NULL DEFAULT '0',
			pack_id       INTEGER REFERENCES packs(id),
			created_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			price       TEXT NOT NULL,
			image_ref   TEXT NOT NULL DEFAULT '',
			rating_no   TEXT NOT NULL DEFAULT '',
			created_at  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS hold_bands (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			min_amount  TEXT NOT NULL,
			max_amount  TEXT NOT NULL,
			is_active   BOOLEAN NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id                      INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id                 INTEGER NOT NULL REFERENCES users(id),
			amount                  TEXT NOT NULL DEFAULT '0',
			commission              TEXT NOT NULL DEFAULT '0',
			commission_percentage   TEXT NOT NULL DEFAULT '0',
			rating_no               TEXT NOT NULL DEFAULT '',
			game_number             INTEGER NOT NULL DEFAULT 0,
			special_product         BOOLEAN NOT NULL DEFAULT 0,
			played                  BOOLEAN NOT NULL DEFAULT 0,
			pending                 BOOLEAN NOT NULL DEFAULT 0,
			is_active               BOOLEAN NOT NULL DEFAULT 1,
			hold_band_id            INTEGER REFERENCES hold_bands(id),
			rating_score            INTEGER NOT NULL DEFAULT 0,
			comment                 TEXT NOT NULL DEFAULT '',
			created_at              INTEGER NOT NULL,
			updated_at              INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id)`,
		`CREATE TABLE IF NOT EXISTS task_products (
			task_id     INTEGER NOT NULL REFERENCES tasks(id),
			product_id  INTEGER NOT NULL REFERENCES products(id),
			PRIMARY KEY (task_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS invitations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      INTEGER NOT NULL UNIQUE REFERENCES users(id),
			referrer_id  INTEGER NOT NULL REFERENCES users(id),
			created_at   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS invitation_codes (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			code         TEXT NOT NULL UNIQUE,
			referrer_id  INTEGER NOT NULL REFERENCES users(id),
			used_by_id   INTEGER REFERENCES users(id),
			used_at      INTEGER,
			created_at   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			recipient_id  INTEGER REFERENCES users(id),
			title         TEXT NOT NULL,
			body          TEXT NOT NULL,
			is_read       BOOLEAN NOT NULL DEFAULT 0,
			type          TEXT NOT NULL,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS admin_logs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			actor_id     INTEGER NOT NULL REFERENCES users(id),
			description  TEXT NOT NULL,
			created_at   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS daily_reset_tracker (
			id                INTEGER PRIMARY KEY CHECK (id = 1),
			last_reset_time   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id                                  INTEGER PRIMARY KEY CHECK (id = 1),
			percentage_of_sponsors              TEXT NOT NULL DEFAULT '0',
			bonus_when_registering              TEXT NOT NULL DEFAULT '0',
			minimum_balance_for_submissions     TEXT NOT NULL DEFAULT '0',
			service_availability_start_time     TEXT NOT NULL DEFAULT '',
			service_availability_end_time       TEXT NOT NULL DEFAULT '',
			timezone                            TEXT NOT NULL DEFAULT 'UTC',
			token_validity_period_hours         INTEGER NOT NULL DEFAULT 24,
			contact_email                       TEXT NOT NULL DEFAULT '',
			contact_phone                       TEXT NOT NULL DEFAULT '',
			blockchain_address                  TEXT NOT NULL DEFAULT '',
			video_url                           TEXT NOT NULL DEFAULT '',
			updated_at                          INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// decStr renders d for storage; sqlite has no native decimal type so every
// monetary column is TEXT holding the canonical decimal string.
func decStr(d decimal.Decimal) string {
	return d.String()
}

func parseDec(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timeFromNullUnix(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(n.Int64, 0).UTC()
}

func nullableInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
