package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reviewforge/reviewforge/internal/domain"
)

const packCols = `id, name, usd_value, daily_missions, number_of_set, profit_percentage,
	special_product_percentage, minimum_balance_for_submissions,
	payment_limit_to_trigger_bonus, payment_bonus, is_active`

func scanPack(s scanner) (*domain.Pack, error) {
	var p domain.Pack
	var usdValue, profitPct, specialPct, minBalance, bonusLimit, bonus string

	err := s.Scan(&p.ID, &p.Name, &usdValue, &p.DailyMissions, &p.NumberOfSet, &profitPct,
		&specialPct, &minBalance, &bonusLimit, &bonus, &p.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if p.UsdValue, err = parseDec(usdValue); err != nil {
		return nil, fmt.Errorf("parse usd_value: %w", err)
	}
	if p.ProfitPercentage, err = parseDec(profitPct); err != nil {
		return nil, fmt.Errorf("parse profit_percentage: %w", err)
	}
	if p.SpecialProductPercentage, err = parseDec(specialPct); err != nil {
		return nil, fmt.Errorf("parse special_product_percentage: %w", err)
	}
	if p.MinimumBalanceForSubmissions, err = parseDec(minBalance); err != nil {
		return nil, fmt.Errorf("parse minimum_balance_for_submissions: %w", err)
	}
	if p.PaymentLimitToTriggerBonus, err = parseDec(bonusLimit); err != nil {
		return nil, fmt.Errorf("parse payment_limit_to_trigger_bonus: %w", err)
	}
	if p.PaymentBonus, err = parseDec(bonus); err != nil {
		return nil, fmt.Errorf("parse payment_bonus: %w", err)
	}
	return &p, nil
}

// GetPack loads a pack by id.
func (d *DB) GetPack(ctx context.Context, id int64) (*domain.Pack, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+packCols+` FROM packs WHERE id = ?`, id)
	return scanPack(row)
}

// GetPackTx is GetPack run within an open transaction.
func (d *DB) GetPackTx(ctx context.Context, tx *Tx, id int64) (*domain.Pack, error) {
	row := tx.queryRow(ctx, `SELECT `+packCols+` FROM packs WHERE id = ?`, id)
	return scanPack(row)
}

// ListActivePacksByUsdValueDesc returns every active pack ordered from
// highest to lowest usd_value, the order auto-assignment walks.
func (d *DB) ListActivePacksByUsdValueDesc(ctx context.Context) ([]domain.Pack, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+packCols+` FROM packs WHERE is_active = 1 ORDER BY CAST(usd_value AS REAL) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []domain.Pack
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, err
		}
		packs = append(packs, *p)
	}
	return packs, rows.Err()
}

// ListActivePacksByUsdValueDescTx is ListActivePacksByUsdValueDesc run
// within an open transaction, required by pack auto-assignment, which
// runs under the wallet write lock.
func (d *DB) ListActivePacksByUsdValueDescTx(ctx context.Context, tx *Tx) ([]domain.Pack, error) {
	rows, err := tx.query(ctx,
		`SELECT `+packCols+` FROM packs WHERE is_active = 1 ORDER BY CAST(usd_value AS REAL) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []domain.Pack
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, err
		}
		packs = append(packs, *p)
	}
	return packs, rows.Err()
}

// CreatePack inserts a new pack.
func (d *DB) CreatePack(ctx context.Context, p *domain.Pack) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO packs (name, usd_value, daily_missions, number_of_set, profit_percentage,
			special_product_percentage, minimum_balance_for_submissions,
			payment_limit_to_trigger_bonus, payment_bonus, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, decStr(p.UsdValue), p.DailyMissions, p.NumberOfSet, decStr(p.ProfitPercentage),
		decStr(p.SpecialProductPercentage), decStr(p.MinimumBalanceForSubmissions),
		decStr(p.PaymentLimitToTriggerBonus), decStr(p.PaymentBonus), p.IsActive,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeactivatePack flips is_active off; callers must also call
// ReassignWalletsForPack to detach wallets pointing at it.
func (d *DB) DeactivatePack(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, `UPDATE packs SET is_active = 0 WHERE id = ?`, id)
	return err
}

// DeletePack removes a pack row; callers must also call
// ReassignWalletsForPack first.
func (d *DB) DeletePack(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM packs WHERE id = ?`, id)
	return err
}

// BackfillSpecialPercentage sets special_product_percentage to
// 5x profit_percentage for every pack that has not defined one.
func (d *DB) BackfillSpecialPercentage(ctx context.Context) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE packs SET special_product_percentage = CAST(CAST(profit_percentage AS REAL) * 5 AS TEXT)
		 WHERE special_product_percentage = '0' OR special_product_percentage = ''`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
