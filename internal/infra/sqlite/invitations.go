package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/reviewforge/reviewforge/internal/domain"
)

// GetInvitationByUserID loads the Invitation row linking userID to its
// referrer, if any.
func (d *DB) GetInvitationByUserID(ctx context.Context, userID int64) (*domain.Invitation, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, user_id, referrer_id, created_at FROM invitations WHERE user_id = ?`, userID)
	var inv domain.Invitation
	var createdAt int64
	err := row.Scan(&inv.ID, &inv.UserID, &inv.ReferrerID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	inv.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &inv, nil
}

// GetInvitationByUserIDTx is GetInvitationByUserID run within an open
// transaction, required wherever it's called while the single-writer
// connection is already checked out.
func (d *DB) GetInvitationByUserIDTx(ctx context.Context, tx *Tx, userID int64) (*domain.Invitation, error) {
	row := tx.queryRow(ctx,
		`SELECT id, user_id, referrer_id, created_at FROM invitations WHERE user_id = ?`, userID)
	var inv domain.Invitation
	var createdAt int64
	err := row.Scan(&inv.ID, &inv.UserID, &inv.ReferrerID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	inv.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &inv, nil
}

// CreateInvitation links userID to referrerID at signup.
func (d *DB) CreateInvitation(ctx context.Context, userID, referrerID int64) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO invitations (user_id, referrer_id, created_at) VALUES (?, ?, ?)`,
		userID, referrerID, time.Now().Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetInvitationCodeByCode loads an invitation code by its code string.
func (d *DB) GetInvitationCodeByCode(ctx context.Context, code string) (*domain.InvitationCode, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, code, referrer_id, used_by_id, used_at, created_at FROM invitation_codes WHERE code = ?`, code)
	return scanInvitationCode(row)
}

func scanInvitationCode(s scanner) (*domain.InvitationCode, error) {
	var ic domain.InvitationCode
	var usedByID sql.NullInt64
	var usedAt sql.NullInt64
	var createdAt int64

	err := s.Scan(&ic.ID, &ic.Code, &ic.ReferrerID, &usedByID, &usedAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ic.UsedByID = int64Ptr(usedByID)
	if usedAt.Valid {
		t := time.Unix(usedAt.Int64, 0).UTC()
		ic.UsedAt = &t
	}
	ic.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &ic, nil
}

// CreateInvitationCode inserts a fresh one-shot referral code.
func (d *DB) CreateInvitationCode(ctx context.Context, code string, referrerID int64) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO invitation_codes (code, referrer_id, created_at) VALUES (?, ?, ?)`,
		code, referrerID, time.Now().Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ConsumeInvitationCode marks a code used by userID, failing if it was
// already consumed.
func (d *DB) ConsumeInvitationCode(ctx context.Context, code string, userID int64) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE invitation_codes SET used_by_id = ?, used_at = ? WHERE code = ? AND used_by_id IS NULL`,
		userID, time.Now().Unix(), code,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.Conflict(domain.ErrInvalidArgument, "invitation code already used or does not exist")
	}
	return nil
}
