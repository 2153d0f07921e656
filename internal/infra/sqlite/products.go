package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reviewforge/reviewforge/internal/domain"
)

const productCols = `id, name, price, image_ref, rating_no, created_at`

func scanProduct(s scanner) (*domain.Product, error) {
	var p domain.Product
	var price string
	var createdAt int64

	err := s.Scan(&p.ID, &p.Name, &price, &p.ImageRef, &p.RatingNo, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Price, err = parseDec(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

// GetProduct loads a product by id.
func (d *DB) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// ListProducts returns every product ordered by price ascending, the
// order the balance-band selection algorithm walks.
func (d *DB) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+productCols+` FROM products ORDER BY CAST(price AS REAL) ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// ListProductsTx is ListProducts run within an open transaction,
// required wherever fresh task assignment runs under the wallet lock.
func (d *DB) ListProductsTx(ctx context.Context, tx *Tx) ([]domain.Product, error) {
	rows, err := tx.query(ctx, `SELECT `+productCols+` FROM products ORDER BY CAST(price AS REAL) ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// ListProductsUpTo returns every product priced at or below hi, the
// candidate pool a special task's product combination is drawn from.
func (d *DB) ListProductsUpTo(ctx context.Context, hi string) ([]domain.Product, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+productCols+` FROM products WHERE CAST(price AS REAL) <= CAST(? AS REAL)`, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// ListProductsInRange returns every product with price in [lo, hi],
// ordered by price descending (most expensive first).
func (d *DB) ListProductsInRange(ctx context.Context, lo, hi string) ([]domain.Product, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+productCols+` FROM products
		 WHERE CAST(price AS REAL) >= CAST(? AS REAL) AND CAST(price AS REAL) <= CAST(? AS REAL)
		 ORDER BY CAST(price AS REAL) DESC`, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// CreateProduct inserts a new product.
func (d *DB) CreateProduct(ctx context.Context, p *domain.Product) (int64, error) {
	now := time.Now()
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO products (name, price, image_ref, rating_no, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.Name, decStr(p.Price), p.ImageRef, p.RatingNo, now.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
