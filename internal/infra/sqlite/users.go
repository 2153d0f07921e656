package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/domain"
)

const userCols = `id, username, email, phone, password_hash, transact_password_hash,
	submissions_today, sets_today, today_profit, current_referral_bonus,
	is_active, is_staff, is_reg_bonus_credited, is_min_balance_waived,
	reg_bonus_amount, last_connection, session_id_user, session_id_admin,
	referrer_id, created_at, updated_at`

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var todayProfit, referralBonus, regBonus string
	var lastConnection sql.NullInt64
	var referrerID sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.TransactPasswordHash,
		&u.SubmissionsToday, &u.SetsToday, &todayProfit, &referralBonus,
		&u.IsActive, &u.IsStaff, &u.IsRegBonusCredited, &u.IsMinBalanceWaived,
		&regBonus, &lastConnection, &u.SessionIDUser, &u.SessionIDAdmin,
		&referrerID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if u.TodayProfit, err = parseDec(todayProfit); err != nil {
		return nil, fmt.Errorf("parse today_profit: %w", err)
	}
	if u.CurrentReferralBonus, err = parseDec(referralBonus); err != nil {
		return nil, fmt.Errorf("parse current_referral_bonus: %w", err)
	}
	if u.RegBonusAmount, err = parseDec(regBonus); err != nil {
		return nil, fmt.Errorf("parse reg_bonus_amount: %w", err)
	}
	u.LastConnection = timeFromNullUnix(lastConnection)
	u.ReferrerID = int64Ptr(referrerID)
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	u.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &u, nil
}

// GetUser loads a user by id.
func (d *DB) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserTx loads a user by id within an open transaction.
func (d *DB) GetUserTx(ctx context.Context, tx *Tx, id int64) (*domain.User, error) {
	row := tx.queryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername loads a user by username, used at login.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// CreateUser inserts a new user and returns its assigned id.
func (d *DB) CreateUser(ctx context.Context, u *domain.User) (int64, error) {
	now := time.Now()
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO users (username, email, phone, password_hash, transact_password_hash,
			submissions_today, sets_today, today_profit, current_referral_bonus,
			is_active, is_staff, is_reg_bonus_credited, is_min_balance_waived,
			reg_bonus_amount, last_connection, session_id_user, session_id_admin,
			referrer_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.Phone, u.PasswordHash, u.TransactPasswordHash,
		u.SubmissionsToday, u.SetsToday, decStr(u.TodayProfit), decStr(u.CurrentReferralBonus),
		u.IsActive, u.IsStaff, u.IsRegBonusCredited, u.IsMinBalanceWaived,
		decStr(u.RegBonusAmount), nullableUnix(u.LastConnection), u.SessionIDUser, u.SessionIDAdmin,
		nullableInt64(u.ReferrerID), now.Unix(), now.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateUserSession stamps a fresh session id for the given surface
// ("user" or "admin"), invalidating every previously issued token on
// that surface only.
func (d *DB) UpdateUserSession(ctx context.Context, userID int64, surface, sessionID string) error {
	col := "session_id_user"
	if surface == "admin" {
		col = "session_id_admin"
	}
	_, err := d.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = ?, updated_at = ? WHERE id = ?`, col),
		sessionID, time.Now().Unix(), userID,
	)
	return err
}

// TouchLastConnection stamps last_connection for an authenticated request.
func (d *DB) TouchLastConnection(ctx context.Context, userID int64) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE users SET last_connection = ? WHERE id = ?`, time.Now().Unix(), userID)
	return err
}

// UpdateUserCounters persists submissions_today/sets_today/today_profit
// after a task is marked played, and for admin counter adjustments.
func (d *DB) UpdateUserCounters(ctx context.Context, tx *Tx, userID int64, submissionsToday, setsToday int, todayProfit decimal.Decimal) error {
	_, err := tx.exec(ctx,
		`UPDATE users SET submissions_today = ?, sets_today = ?, today_profit = ?, updated_at = ? WHERE id = ?`,
		submissionsToday, setsToday, decStr(todayProfit), time.Now().Unix(), userID,
	)
	return err
}

// UpdateUserReferralBonus persists current_referral_bonus, used when a
// referral credit pushes the running total past (or under) the $10
// milestone threshold.
func (d *DB) UpdateUserReferralBonus(ctx context.Context, tx *Tx, userID int64, bonus decimal.Decimal) error {
	_, err := tx.exec(ctx,
		`UPDATE users SET current_referral_bonus = ?, updated_at = ? WHERE id = ?`,
		decStr(bonus), time.Now().Unix(), userID)
	return err
}

// ResetDailyCounters zeroes submissions_today/sets_today/today_profit for
// every user, with a carve-out for ids in keepIDs (users holding a
// pending special task).
func (d *DB) ResetDailyCounters(ctx context.Context, tx *Tx, keepIDs []int64) error {
	keep := make(map[int64]bool, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = true
	}
	rows, err := tx.query(ctx, `SELECT id FROM users`)
	if err != nil {
		return err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, id := range ids {
		if keep[id] {
			continue
		}
		if _, err := tx.exec(ctx,
			`UPDATE users SET submissions_today = 0, sets_today = 0, today_profit = '0', updated_at = ? WHERE id = ?`,
			now, id); err != nil {
			return err
		}
	}
	return nil
}

// ResetSetsOnlyTx zeroes sets_today for exactly the given ids, leaving
// submissions_today and today_profit untouched. Used during the daily
// reset pass for users holding a pending special task, who keep their
// progress toward that task across the reset.
func (d *DB) ResetSetsOnlyTx(ctx context.Context, tx *Tx, userIDs []int64) error {
	now := time.Now().Unix()
	for _, id := range userIDs {
		if _, err := tx.exec(ctx,
			`UPDATE users SET sets_today = 0, updated_at = ? WHERE id = ?`, now, id); err != nil {
			return err
		}
	}
	return nil
}

// SetReferrer records userID's referrer, used at signup.
func (d *DB) SetReferrer(ctx context.Context, userID, referrerID int64) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE users SET referrer_id = ?, updated_at = ? WHERE id = ?`,
		referrerID, time.Now().Unix(), userID)
	return err
}

// SetRegBonusCredited flips the one-shot registration bonus flag.
func (d *DB) SetRegBonusCredited(ctx context.Context, tx *Tx, userID int64, credited bool) error {
	_, err := tx.exec(ctx,
		`UPDATE users SET is_reg_bonus_credited = ?, updated_at = ? WHERE id = ?`,
		credited, time.Now().Unix(), userID)
	return err
}
