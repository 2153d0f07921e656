package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reviewforge/reviewforge/internal/domain"
)

const taskCols = `id, user_id, amount, commission, commission_percentage, rating_no, game_number,
	special_product, played, pending, is_active, hold_band_id, rating_score, comment, created_at, updated_at`

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var amount, commission, commissionPct string
	var holdBandID sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(&t.ID, &t.UserID, &amount, &commission, &commissionPct, &t.RatingNo, &t.GameNumber,
		&t.SpecialProduct, &t.Played, &t.Pending, &t.IsActive, &holdBandID,
		&t.RatingScore, &t.Comment, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if t.Amount, err = parseDec(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	if t.Commission, err = parseDec(commission); err != nil {
		return nil, fmt.Errorf("parse commission: %w", err)
	}
	if t.CommissionPercentage, err = parseDec(commissionPct); err != nil {
		return nil, fmt.Errorf("parse commission_percentage: %w", err)
	}
	t.HoldBandID = int64Ptr(holdBandID)
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &t, nil
}

func (d *DB) loadTaskProducts(ctx context.Context, tx *Tx, taskID int64) ([]domain.Product, error) {
	const q = `SELECT p.id, p.name, p.price, p.image_ref, p.rating_no, p.created_at
		FROM task_products tp JOIN products p ON p.id = tp.product_id
		WHERE tp.task_id = ? ORDER BY p.id ASC`

	var rows *sql.Rows
	var err error
	if tx != nil {
		rows, err = tx.query(ctx, q, taskID)
	} else {
		rows, err = d.db.QueryContext(ctx, q, taskID)
	}
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

// GetTask loads a task with its products by id.
func (d *DB) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil || t == nil {
		return t, err
	}
	t.Products, err = d.loadTaskProducts(ctx, nil, t.ID)
	return t, err
}

// GetTaskTx loads a task with its products within an open transaction.
func (d *DB) GetTaskTx(ctx context.Context, tx *Tx, id int64) (*domain.Task, error) {
	row := tx.queryRow(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil || t == nil {
		return t, err
	}
	t.Products, err = d.loadTaskProducts(ctx, tx, t.ID)
	return t, err
}

// GetActiveSpecialPendingTx finds a task matching priority step 1:
// played=false, pending=true, is_active=true, special_product=true.
func (d *DB) GetActiveSpecialPendingTx(ctx context.Context, tx *Tx, userID int64) (*domain.Task, error) {
	row := tx.queryRow(ctx,
		`SELECT `+taskCols+` FROM tasks
		 WHERE user_id = ? AND played = 0 AND pending = 1 AND is_active = 1 AND special_product = 1
		 ORDER BY created_at ASC LIMIT 1`, userID)
	t, err := scanTask(row)
	if err != nil || t == nil {
		return t, err
	}
	t.Products, err = d.loadTaskProducts(ctx, tx, t.ID)
	return t, err
}

// GetNextSpecialForRankTx finds a task matching priority step 2: the
// earliest unplayed, not-yet-pending special task at the given
// game_number.
func (d *DB) GetNextSpecialForRankTx(ctx context.Context, tx *Tx, userID int64, gameNumber int) (*domain.Task, error) {
	row := tx.queryRow(ctx,
		`SELECT `+taskCols+` FROM tasks
		 WHERE user_id = ? AND played = 0 AND is_active = 1 AND special_product = 1
		   AND pending = 0 AND game_number = ?
		 ORDER BY created_at ASC LIMIT 1`, userID, gameNumber)
	t, err := scanTask(row)
	if err != nil || t == nil {
		return t, err
	}
	t.Products, err = d.loadTaskProducts(ctx, tx, t.ID)
	return t, err
}

// GetRegularPendingTx finds a task matching priority step 3: a
// non-special task already marked pending.
func (d *DB) GetRegularPendingTx(ctx context.Context, tx *Tx, userID int64) (*domain.Task, error) {
	row := tx.queryRow(ctx,
		`SELECT `+taskCols+` FROM tasks
		 WHERE user_id = ? AND played = 0 AND pending = 1 AND is_active = 1 AND special_product = 0
		 ORDER BY created_at ASC LIMIT 1`, userID)
	t, err := scanTask(row)
	if err != nil || t == nil {
		return t, err
	}
	t.Products, err = d.loadTaskProducts(ctx, tx, t.ID)
	return t, err
}

// GetRegularUnplayedTx finds a task matching priority step 4: any
// unplayed, not-yet-pending non-special task.
func (d *DB) GetRegularUnplayedTx(ctx context.Context, tx *Tx, userID int64) (*domain.Task, error) {
	row := tx.queryRow(ctx,
		`SELECT `+taskCols+` FROM tasks
		 WHERE user_id = ? AND played = 0 AND is_active = 1 AND special_product = 0 AND pending = 0
		 ORDER BY created_at ASC LIMIT 1`, userID)
	t, err := scanTask(row)
	if err != nil || t == nil {
		return t, err
	}
	t.Products, err = d.loadTaskProducts(ctx, tx, t.ID)
	return t, err
}

// CountUnplayedAtRankTx counts this user's unplayed special tasks at
// gameNumber, used to detect the rank-stability rule for shared
// special-task ranks.
func (d *DB) CountUnplayedAtRankTx(ctx context.Context, tx *Tx, userID int64, gameNumber int) (int, error) {
	var n int
	err := tx.queryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = ? AND game_number = ? AND played = 0 AND special_product = 1`,
		userID, gameNumber).Scan(&n)
	return n, err
}

// CreateTaskTx inserts a new task and its product links within an open
// transaction, returning the assigned id.
func (d *DB) CreateTaskTx(ctx context.Context, tx *Tx, t *domain.Task) (int64, error) {
	now := time.Now()
	res, err := tx.exec(ctx,
		`INSERT INTO tasks (user_id, amount, commission, commission_percentage, rating_no, game_number,
			special_product, played, pending, is_active, hold_band_id, rating_score, comment, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, decStr(t.Amount), decStr(t.Commission), decStr(t.CommissionPercentage), t.RatingNo, t.GameNumber,
		t.SpecialProduct, t.Played, t.Pending, t.IsActive, nullableInt64(t.HoldBandID),
		t.RatingScore, t.Comment, now.Unix(), now.Unix(),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, p := range t.Products {
		if _, err := tx.exec(ctx, `INSERT INTO task_products (task_id, product_id) VALUES (?, ?)`, id, p.ID); err != nil {
			return 0, fmt.Errorf("link product %d: %w", p.ID, err)
		}
	}
	return id, nil
}

// SaveTaskTx persists task state changes (pending/played/amount/commission/
// rating/comment) within an open transaction.
func (d *DB) SaveTaskTx(ctx context.Context, tx *Tx, t *domain.Task) error {
	_, err := tx.exec(ctx,
		`UPDATE tasks SET amount = ?, commission = ?, commission_percentage = ?, pending = ?, played = ?,
			rating_score = ?, comment = ?, updated_at = ? WHERE id = ?`,
		decStr(t.Amount), decStr(t.Commission), decStr(t.CommissionPercentage), t.Pending, t.Played,
		t.RatingScore, t.Comment, time.Now().Unix(), t.ID,
	)
	return err
}

// ListSeenProductIDsTodayTx returns the ids of every product this user
// has already been assigned today, excluded from fresh assignment.
func (d *DB) ListSeenProductIDsTodayTx(ctx context.Context, tx *Tx, userID int64, since time.Time) (map[int64]bool, error) {
	rows, err := tx.query(ctx,
		`SELECT DISTINCT tp.product_id FROM task_products tp
		 JOIN tasks t ON t.id = tp.task_id
		 WHERE t.user_id = ? AND t.created_at >= ?`, userID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

// ListPendingSpecialUserIDsTx returns the ids of every user holding an
// unplayed, pending special task, the daily-reset carve-out set.
func (d *DB) ListPendingSpecialUserIDsTx(ctx context.Context, tx *Tx) ([]int64, error) {
	rows, err := tx.query(ctx,
		`SELECT DISTINCT user_id FROM tasks WHERE played = 0 AND pending = 1 AND is_active = 1 AND special_product = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
