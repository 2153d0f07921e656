package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reviewforge/reviewforge/internal/domain"
)

const walletCols = `id, user_id, balance, on_hold, commission, salary, credit_score, pack_id, created_at, updated_at`

func scanWallet(s scanner) (*domain.Wallet, error) {
	var w domain.Wallet
	var balance, onHold, commission, salary, creditScore string
	var packID sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(&w.ID, &w.UserID, &balance, &onHold, &commission, &salary, &creditScore,
		&packID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if w.Balance, err = parseDec(balance); err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	if w.OnHold, err = parseDec(onHold); err != nil {
		return nil, fmt.Errorf("parse on_hold: %w", err)
	}
	if w.Commission, err = parseDec(commission); err != nil {
		return nil, fmt.Errorf("parse commission: %w", err)
	}
	if w.Salary, err = parseDec(salary); err != nil {
		return nil, fmt.Errorf("parse salary: %w", err)
	}
	if w.CreditScore, err = parseDec(creditScore); err != nil {
		return nil, fmt.Errorf("parse credit_score: %w", err)
	}
	w.PackID = int64Ptr(packID)
	w.CreatedAt = time.Unix(createdAt, 0).UTC()
	w.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &w, nil
}

// GetWalletByUserID loads a wallet outside of any transaction, for
// read-only display.
func (d *DB) GetWalletByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+walletCols+` FROM wallets WHERE user_id = ?`, userID)
	return scanWallet(row)
}

// GetWalletByUserIDTx loads a wallet for update within an open
// transaction. Callers must hold the transaction for the whole
// read-modify-write cycle; BEGIN IMMEDIATE already serializes writers.
func (d *DB) GetWalletByUserIDTx(ctx context.Context, tx *Tx, userID int64) (*domain.Wallet, error) {
	row := tx.queryRow(ctx, `SELECT `+walletCols+` FROM wallets WHERE user_id = ?`, userID)
	return scanWallet(row)
}

// CreateWallet inserts the initial wallet row for a new user.
func (d *DB) CreateWallet(ctx context.Context, w *domain.Wallet) (int64, error) {
	now := time.Now()
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO wallets (user_id, balance, on_hold, commission, salary, credit_score, pack_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.UserID, decStr(w.Balance), decStr(w.OnHold), decStr(w.Commission), decStr(w.Salary),
		decStr(w.CreditScore), nullableInt64(w.PackID), now.Unix(), now.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SaveWalletTx persists the full wallet state within an open
// transaction, the single write path every ledger mutation funnels
// through.
func (d *DB) SaveWalletTx(ctx context.Context, tx *Tx, w *domain.Wallet) error {
	_, err := tx.exec(ctx,
		`UPDATE wallets SET balance = ?, on_hold = ?, commission = ?, salary = ?, credit_score = ?, pack_id = ?, updated_at = ?
		 WHERE id = ?`,
		decStr(w.Balance), decStr(w.OnHold), decStr(w.Commission), decStr(w.Salary),
		decStr(w.CreditScore), nullableInt64(w.PackID), time.Now().Unix(), w.ID,
	)
	return err
}

// ZeroAllSalariesTx zeroes the salary field on every wallet, part of
// the daily reset pass that applies to every user regardless of
// whether their counters are fully or partially reset.
func (d *DB) ZeroAllSalariesTx(ctx context.Context, tx *Tx) error {
	_, err := tx.exec(ctx, `UPDATE wallets SET salary = '0', updated_at = ? WHERE salary != '0'`, time.Now().Unix())
	return err
}

// ReassignWalletsForPack clears pack_id on every wallet pointing at
// packID, used when a pack is deleted or deactivated so affected
// wallets fall back to auto-assignment on their next save.
func (d *DB) ReassignWalletsForPack(ctx context.Context, packID int64) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE wallets SET pack_id = NULL, updated_at = ? WHERE pack_id = ?`,
		time.Now().Unix(), packID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
