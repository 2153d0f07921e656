package wallet

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

func TestCredit_ClearsNegativeBalanceThenMergesOnHold(t *testing.T) {
	w := &domain.Wallet{Balance: dec("-50"), OnHold: dec("150")}
	Credit(w, dec("60"))

	// 60 clears the -50 (leaving 10), then the 150 on_hold merges in.
	if !w.Balance.Equal(dec("160")) {
		t.Errorf("balance = %s, want 160", w.Balance)
	}
	if !w.OnHold.IsZero() {
		t.Errorf("on_hold = %s, want 0", w.OnHold)
	}
}

func TestCredit_PartialClearDoesNotMergeOnHold(t *testing.T) {
	w := &domain.Wallet{Balance: dec("-50"), OnHold: dec("150")}
	Credit(w, dec("20"))

	if !w.Balance.Equal(dec("-30")) {
		t.Errorf("balance = %s, want -30", w.Balance)
	}
	if !w.OnHold.Equal(dec("150")) {
		t.Errorf("on_hold = %s, want 150 (balance still negative)", w.OnHold)
	}
}

func TestCredit_OrdinaryCreditWithNoHold(t *testing.T) {
	w := &domain.Wallet{Balance: dec("100")}
	Credit(w, dec("25"))

	if !w.Balance.Equal(dec("125")) {
		t.Errorf("balance = %s, want 125", w.Balance)
	}
}

func TestDebit_SufficientBalance(t *testing.T) {
	w := &domain.Wallet{Balance: dec("100")}
	if err := Debit(w, dec("40")); err != nil {
		t.Fatalf("Debit() error: %v", err)
	}
	if !w.Balance.Equal(dec("60")) {
		t.Errorf("balance = %s, want 60", w.Balance)
	}
	if !w.OnHold.IsZero() {
		t.Errorf("on_hold = %s, want 0", w.OnHold)
	}
}

func TestDebit_InsufficientBalanceReservesOnHold(t *testing.T) {
	// Spec example: wallet (100, 0), special task amount 150.
	w := &domain.Wallet{Balance: dec("100")}
	if err := Debit(w, dec("150")); err != nil {
		t.Fatalf("Debit() error: %v", err)
	}
	if !w.Balance.Equal(dec("-50")) {
		t.Errorf("balance = %s, want -50", w.Balance)
	}
	if !w.OnHold.Equal(dec("150")) {
		t.Errorf("on_hold = %s, want 150", w.OnHold)
	}
}

func TestDebit_RejectsWhenOnHoldAlreadyReserved(t *testing.T) {
	w := &domain.Wallet{Balance: dec("100"), OnHold: dec("1")}
	err := Debit(w, dec("10"))
	if err == nil {
		t.Fatal("expected error when on_hold already reserved")
	}
	if domain.KindOf(err) != domain.KindInternal {
		t.Errorf("kind = %v, want internal", domain.KindOf(err))
	}
}

func TestSpecialTaskReservationExample(t *testing.T) {
	// Spec §9 example 2: wallet (100, 0), hold band [50, 50], special
	// product priced 145. amount = balance + r = 150.
	w := &domain.Wallet{Balance: dec("100")}
	if err := Debit(w, dec("150")); err != nil {
		t.Fatalf("Debit() error: %v", err)
	}
	CreditCommission(w, dec("3.75"))

	if !w.Balance.Equal(dec("-50")) {
		t.Errorf("balance = %s, want -50", w.Balance)
	}
	if !w.OnHold.Equal(dec("150")) {
		t.Errorf("on_hold = %s, want 150", w.OnHold)
	}
	if !w.Commission.Equal(dec("3.75")) {
		t.Errorf("commission = %s, want 3.75", w.Commission)
	}

	// A later external credit of 60 clears the negative balance and
	// merges on_hold: (160, 0).
	Credit(w, dec("60"))
	if !w.Balance.Equal(dec("160")) {
		t.Errorf("balance after recovery = %s, want 160", w.Balance)
	}
	if !w.OnHold.IsZero() {
		t.Errorf("on_hold after recovery = %s, want 0", w.OnHold)
	}
}

func TestGetOrCreate_AssignsPackOnCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	if _, err := db.CreatePack(ctx, &domain.Pack{Name: "starter", UsdValue: dec("0"), IsActive: true}); err != nil {
		t.Fatalf("CreatePack() error: %v", err)
	}
	if _, err := db.CreatePack(ctx, &domain.Pack{Name: "pro", UsdValue: dec("500"), IsActive: true}); err != nil {
		t.Fatalf("CreatePack() error: %v", err)
	}
	if _, err := db.CreateUser(ctx, &domain.User{Username: "u1", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	w, err := svc.GetOrCreate(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrCreate() error: %v", err)
	}
	if w.PackID == nil || *w.PackID != 1 {
		t.Errorf("pack_id = %v, want 1 (starter, only pack at/below balance 0)", w.PackID)
	}
}

func TestReassignForPack_DetachesWallets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	packID, _ := db.CreatePack(ctx, &domain.Pack{Name: "starter", UsdValue: dec("0"), IsActive: true})
	db.CreateUser(ctx, &domain.User{Username: "u1", PasswordHash: "x"})
	db.CreateWallet(ctx, &domain.Wallet{UserID: 1, PackID: &packID})

	svc := NewService(db)
	if err := svc.ReassignForPack(ctx, packID); err != nil {
		t.Fatalf("ReassignForPack() error: %v", err)
	}

	w, err := db.GetWalletByUserID(ctx, 1)
	if err != nil {
		t.Fatalf("GetWalletByUserID() error: %v", err)
	}
	if w.PackID != nil {
		t.Errorf("pack_id = %v, want nil after reassignment", w.PackID)
	}
}
