package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reviewforge/reviewforge/internal/domain"
)

const holdBandCols = `id, name, min_amount, max_amount, is_active`

func scanHoldBand(s scanner) (*domain.HoldBand, error) {
	var h domain.HoldBand
	var minAmount, maxAmount string

	err := s.Scan(&h.ID, &h.Name, &minAmount, &maxAmount, &h.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if h.MinAmount, err = parseDec(minAmount); err != nil {
		return nil, fmt.Errorf("parse min_amount: %w", err)
	}
	if h.MaxAmount, err = parseDec(maxAmount); err != nil {
		return nil, fmt.Errorf("parse max_amount: %w", err)
	}
	return &h, nil
}

// GetHoldBand loads a hold band by id.
func (d *DB) GetHoldBand(ctx context.Context, id int64) (*domain.HoldBand, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+holdBandCols+` FROM hold_bands WHERE id = ?`, id)
	return scanHoldBand(row)
}

// GetHoldBandTx is GetHoldBand run within an open transaction.
func (d *DB) GetHoldBandTx(ctx context.Context, tx *Tx, id int64) (*domain.HoldBand, error) {
	row := tx.queryRow(ctx, `SELECT `+holdBandCols+` FROM hold_bands WHERE id = ?`, id)
	return scanHoldBand(row)
}

// ListActiveHoldBandsTx is ListActiveHoldBands run within an open
// transaction.
func (d *DB) ListActiveHoldBandsTx(ctx context.Context, tx *Tx) ([]domain.HoldBand, error) {
	rows, err := tx.query(ctx,
		`SELECT `+holdBandCols+` FROM hold_bands WHERE is_active = 1 ORDER BY CAST(min_amount AS REAL) ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bands []domain.HoldBand
	for rows.Next() {
		h, err := scanHoldBand(rows)
		if err != nil {
			return nil, err
		}
		bands = append(bands, *h)
	}
	return bands, rows.Err()
}

// ListActiveHoldBands returns every active hold band ordered by
// min_amount ascending, the order balance-band matching walks.
func (d *DB) ListActiveHoldBands(ctx context.Context) ([]domain.HoldBand, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+holdBandCols+` FROM hold_bands WHERE is_active = 1 ORDER BY CAST(min_amount AS REAL) ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bands []domain.HoldBand
	for rows.Next() {
		h, err := scanHoldBand(rows)
		if err != nil {
			return nil, err
		}
		bands = append(bands, *h)
	}
	return bands, rows.Err()
}

// CreateHoldBand inserts a new hold band.
func (d *DB) CreateHoldBand(ctx context.Context, h *domain.HoldBand) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO hold_bands (name, min_amount, max_amount, is_active) VALUES (?, ?, ?, ?)`,
		h.Name, decStr(h.MinAmount), decStr(h.MaxAmount), h.IsActive,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
