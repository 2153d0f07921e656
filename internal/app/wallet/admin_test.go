package wallet

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

func setupUserWithWallet(t *testing.T, svc *Service, ctx context.Context, db *sqlite.DB) int64 {
	t.Helper()
	userID, err := db.CreateUser(ctx, &domain.User{Username: "u1", PasswordHash: "x", RegBonusAmount: dec("10")})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if _, err := svc.GetOrCreate(ctx, userID); err != nil {
		t.Fatalf("GetOrCreate() error: %v", err)
	}
	return userID
}

func seedWalletState(t *testing.T, svc *Service, ctx context.Context, userID int64, balance, onHold decimal.Decimal) {
	t.Helper()
	err := svc.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		_, err := svc.MutateTx(ctx, tx, userID, func(w *domain.Wallet) error {
			w.Balance = balance
			w.OnHold = onHold
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed wallet state error: %v", err)
	}
}

func TestAdminSetBalance_CreditClearsNegativeAndReleasesOnHold(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)
	seedWalletState(t, svc, ctx, userID, dec("-50"), dec("150"))

	w, err := svc.AdminSetBalance(ctx, userID, dec("60"))
	if err != nil {
		t.Fatalf("AdminSetBalance() error: %v", err)
	}
	// 60 clears the -50 balance (leaving 10 remaining), then the
	// now-non-negative balance pulls the 150 on_hold back in.
	if !w.Balance.Equal(dec("160")) {
		t.Errorf("balance = %s, want 160", w.Balance)
	}
	if !w.OnHold.IsZero() {
		t.Errorf("on_hold = %s, want 0", w.OnHold)
	}
}

func TestAdminSetBalance_NegativeAmountIsDirectSubtraction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)

	w, err := svc.AdminSetBalance(ctx, userID, dec("-25"))
	if err != nil {
		t.Fatalf("AdminSetBalance() error: %v", err)
	}
	if !w.Balance.Equal(dec("-25")) {
		t.Errorf("balance = %s, want -25", w.Balance)
	}
}

func TestAdminSetTodayProfit_AdjustsCommissionByDelta(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)

	if err := svc.AdminSetTodayProfit(ctx, userID, dec("25")); err != nil {
		t.Fatalf("AdminSetTodayProfit() error: %v", err)
	}

	user, err := db.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if !user.TodayProfit.Equal(dec("25")) {
		t.Errorf("today_profit = %s, want 25", user.TodayProfit)
	}
	w, err := db.GetWalletByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetWalletByUserID() error: %v", err)
	}
	if !w.Commission.Equal(dec("25")) {
		t.Errorf("commission = %s, want 25", w.Commission)
	}
}

func TestAdminSetSalary_MovesBalanceByDelta(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)

	w, err := svc.AdminSetSalary(ctx, userID, dec("100"))
	if err != nil {
		t.Fatalf("AdminSetSalary() error: %v", err)
	}
	if !w.Salary.Equal(dec("100")) {
		t.Errorf("salary = %s, want 100", w.Salary)
	}
	if !w.Balance.Equal(dec("100")) {
		t.Errorf("balance = %s, want 100", w.Balance)
	}
}

func TestAdminSetRegBonusCredited_CreditThenRevoke(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)

	w, err := svc.AdminSetRegBonusCredited(ctx, userID, true)
	if err != nil {
		t.Fatalf("AdminSetRegBonusCredited(true) error: %v", err)
	}
	if !w.Balance.Equal(dec("10")) {
		t.Errorf("balance = %s, want 10 after crediting reg bonus", w.Balance)
	}
	user, _ := db.GetUser(ctx, userID)
	if !user.IsRegBonusCredited {
		t.Error("IsRegBonusCredited = false, want true")
	}

	w, err = svc.AdminSetRegBonusCredited(ctx, userID, false)
	if err != nil {
		t.Fatalf("AdminSetRegBonusCredited(false) error: %v", err)
	}
	if !w.Balance.IsZero() {
		t.Errorf("balance = %s, want 0 after revoking reg bonus", w.Balance)
	}
}

func TestAdminSetRegBonusCredited_NoOpWhenAlreadySet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)

	if _, err := svc.AdminSetRegBonusCredited(ctx, userID, false); err != nil {
		t.Fatalf("AdminSetRegBonusCredited(false) error: %v", err)
	}
	w, err := db.GetWalletByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetWalletByUserID() error: %v", err)
	}
	if !w.Balance.IsZero() {
		t.Errorf("balance = %s, want unchanged at 0 (already not credited)", w.Balance)
	}
}

func TestAdminSetCreditScore_ValidatesRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)

	if _, err := svc.AdminSetCreditScore(ctx, userID, dec("101")); err == nil {
		t.Fatal("expected error for credit_score > 100")
	}
	if _, err := svc.AdminSetCreditScore(ctx, userID, dec("-1")); err == nil {
		t.Fatal("expected error for credit_score < 0")
	}
	w, err := svc.AdminSetCreditScore(ctx, userID, dec("42"))
	if err != nil {
		t.Fatalf("AdminSetCreditScore() error: %v", err)
	}
	if !w.CreditScore.Equal(dec("42")) {
		t.Errorf("credit_score = %s, want 42", w.CreditScore)
	}
}

func TestAdminSetPack_RejectsInactivePack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)

	inactiveID, _ := db.CreatePack(ctx, &domain.Pack{Name: "retired", UsdValue: dec("0"), IsActive: false})
	if _, err := svc.AdminSetPack(ctx, userID, inactiveID); err == nil {
		t.Fatal("expected error assigning an inactive pack")
	}

	activeID, _ := db.CreatePack(ctx, &domain.Pack{Name: "pro", UsdValue: dec("500"), IsActive: true})
	w, err := svc.AdminSetPack(ctx, userID, activeID)
	if err != nil {
		t.Fatalf("AdminSetPack() error: %v", err)
	}
	if w.PackID == nil || *w.PackID != activeID {
		t.Errorf("pack_id = %v, want %d", w.PackID, activeID)
	}
}

func TestAdminResetAccount_ClampsToPackLimits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)

	packID, _ := db.CreatePack(ctx, &domain.Pack{Name: "starter", UsdValue: dec("0"), IsActive: true, DailyMissions: 5, NumberOfSet: 2})
	if _, err := svc.AdminSetPack(ctx, userID, packID); err != nil {
		t.Fatalf("AdminSetPack() error: %v", err)
	}

	subs, sets := 99, 99
	if err := svc.AdminResetAccount(ctx, userID, &subs, &sets); err != nil {
		t.Fatalf("AdminResetAccount() error: %v", err)
	}

	user, err := db.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if user.SubmissionsToday != 5 {
		t.Errorf("submissions_today = %d, want clamped to 5", user.SubmissionsToday)
	}
	if user.SetsToday != 2 {
		t.Errorf("sets_today = %d, want clamped to 2", user.SetsToday)
	}
}

func TestAdminResetAccount_NilArgumentsResetToZero(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)
	userID := setupUserWithWallet(t, svc, ctx, db)

	subs, sets := 3, 1
	if err := svc.AdminResetAccount(ctx, userID, &subs, &sets); err != nil {
		t.Fatalf("seed AdminResetAccount() error: %v", err)
	}
	if err := svc.AdminResetAccount(ctx, userID, nil, nil); err != nil {
		t.Fatalf("AdminResetAccount() error: %v", err)
	}
	user, err := db.GetUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if user.SubmissionsToday != 0 || user.SetsToday != 0 {
		t.Errorf("counters = (%d, %d), want (0, 0)", user.SubmissionsToday, user.SetsToday)
	}
}
