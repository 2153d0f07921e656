package reset

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func createUserWithWallet(t *testing.T, db *sqlite.DB, submissions, sets int, profit, salary string) int64 {
	t.Helper()
	ctx := context.Background()
	userID, err := db.CreateUser(ctx, &domain.User{
		Username:         "worker",
		PasswordHash:     "x",
		SubmissionsToday: submissions,
		SetsToday:        sets,
		TodayProfit:      dec(profit),
	})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if _, err := db.CreateWallet(ctx, &domain.Wallet{UserID: userID, Salary: dec(salary)}); err != nil {
		t.Fatalf("CreateWallet() error: %v", err)
	}
	return userID
}

func givePendingSpecialTask(t *testing.T, db *sqlite.DB, userID int64) {
	t.Helper()
	ctx := context.Background()
	err := db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		_, err := db.CreateTaskTx(ctx, tx, &domain.Task{
			UserID:         userID,
			Amount:         dec("10"),
			Commission:     dec("1"),
			SpecialProduct: true,
			Pending:        true,
			Played:         false,
			IsActive:       true,
			GameNumber:     1,
		})
		return err
	})
	if err != nil {
		t.Fatalf("create pending special task: %v", err)
	}
}

func TestCheckAndReset_PartialResetForPendingSpecialHolder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	specialUserID := createUserWithWallet(t, db, 3, 1, "5.00", "2.00")
	givePendingSpecialTask(t, db, specialUserID)

	svc := NewService(db)
	if err := svc.CheckAndReset(ctx); err != nil {
		t.Fatalf("CheckAndReset() error: %v", err)
	}

	user, err := db.GetUser(ctx, specialUserID)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if user.SubmissionsToday != 3 {
		t.Errorf("submissions_today = %d, want 3 (preserved)", user.SubmissionsToday)
	}
	if user.SetsToday != 0 {
		t.Errorf("sets_today = %d, want 0", user.SetsToday)
	}
	if !user.TodayProfit.Equal(dec("5.00")) {
		t.Errorf("today_profit = %s, want 5.00 (preserved)", user.TodayProfit)
	}

	w, err := db.GetWalletByUserID(ctx, specialUserID)
	if err != nil {
		t.Fatalf("GetWalletByUserID() error: %v", err)
	}
	if !w.Salary.IsZero() {
		t.Errorf("salary = %s, want 0", w.Salary)
	}
}

func TestCheckAndReset_FullResetForOtherUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	userID := createUserWithWallet(t, db, 3, 1, "5.00", "2.00")

	svc := NewService(db)
	if err := svc.CheckAndReset(ctx); err != nil {
		t.Fatalf("CheckAndReset() error: %v", err)
	}

	user, err := db.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if user.SubmissionsToday != 0 {
		t.Errorf("submissions_today = %d, want 0", user.SubmissionsToday)
	}
	if user.SetsToday != 0 {
		t.Errorf("sets_today = %d, want 0", user.SetsToday)
	}
	if !user.TodayProfit.IsZero() {
		t.Errorf("today_profit = %s, want 0", user.TodayProfit)
	}

	w, err := db.GetWalletByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetWalletByUserID() error: %v", err)
	}
	if !w.Salary.IsZero() {
		t.Errorf("salary = %s, want 0", w.Salary)
	}
}

func TestCheckAndReset_IdempotentBeforeNextMidnight(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	userID := createUserWithWallet(t, db, 3, 1, "5.00", "2.00")

	svc := NewService(db)
	if err := svc.CheckAndReset(ctx); err != nil {
		t.Fatalf("first CheckAndReset() error: %v", err)
	}

	// Bump the counters back up as if a play happened after the reset.
	if err := db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		return db.UpdateUserCounters(ctx, tx, userID, 1, 0, dec("0.50"))
	}); err != nil {
		t.Fatalf("bump counters: %v", err)
	}

	if err := svc.CheckAndReset(ctx); err != nil {
		t.Fatalf("second CheckAndReset() error: %v", err)
	}

	user, err := db.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if user.SubmissionsToday != 1 {
		t.Errorf("submissions_today = %d, want 1 (second reset should be a no-op)", user.SubmissionsToday)
	}
}
