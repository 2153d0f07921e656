package special

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/app/catalog"
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

func setupUser(t *testing.T, db *sqlite.DB, balance decimal.Decimal) int64 {
	t.Helper()
	ctx := context.Background()

	packID, err := db.CreatePack(ctx, &domain.Pack{
		Name: "starter", UsdValue: dec("0"), DailyMissions: 5, NumberOfSet: 2,
		ProfitPercentage: dec("5"), SpecialProductPercentage: dec("25"), IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreatePack() error: %v", err)
	}
	userID, err := db.CreateUser(ctx, &domain.User{Username: "worker1", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if _, err := db.CreateWallet(ctx, &domain.Wallet{UserID: userID, PackID: &packID, Balance: balance}); err != nil {
		t.Fatalf("CreateWallet() error: %v", err)
	}
	return userID
}

func TestCreate_SelectsComboWithinRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := setupUser(t, db, dec("100"))

	bandID, err := db.CreateHoldBand(ctx, &domain.HoldBand{Name: "mid", MinAmount: dec("40"), MaxAmount: dec("60"), IsActive: true})
	if err != nil {
		t.Fatalf("CreateHoldBand() error: %v", err)
	}
	db.CreateProduct(ctx, &domain.Product{Name: "a", Price: dec("70")})
	db.CreateProduct(ctx, &domain.Product{Name: "b", Price: dec("75")})
	db.CreateProduct(ctx, &domain.Product{Name: "c", Price: dec("500")})

	svc := NewService(db, catalog.NewService(db))
	task, err := svc.Create(ctx, userID, bandID, 2, 3)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(task.Products) != 2 {
		t.Fatalf("products = %d, want 2", len(task.Products))
	}
	sum := task.Products[0].Price.Add(task.Products[1].Price)
	// balance 100 + band [40,60] => total must land in [140, 160].
	if sum.LessThan(dec("140")) || sum.GreaterThan(dec("160")) {
		t.Errorf("combo sum = %s, want within [140, 160]", sum)
	}
	if !task.SpecialProduct || task.Pending || task.Played {
		t.Errorf("task = %+v, want special_product=true, pending=false, played=false", task)
	}
	if task.GameNumber != 3 {
		t.Errorf("game_number = %d, want 3", task.GameNumber)
	}
}

func TestCreate_NoComboFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := setupUser(t, db, dec("100"))

	bandID, _ := db.CreateHoldBand(ctx, &domain.HoldBand{Name: "tight", MinAmount: dec("1"), MaxAmount: dec("2"), IsActive: true})
	db.CreateProduct(ctx, &domain.Product{Name: "too expensive", Price: dec("500")})

	svc := NewService(db, catalog.NewService(db))
	_, err := svc.Create(ctx, userID, bandID, 1, 1)
	if err == nil {
		t.Fatal("expected no-combination error")
	}
	if domain.KindOf(err) != domain.KindEligibility {
		t.Errorf("kind = %v, want eligibility", domain.KindOf(err))
	}
}

func TestCreate_RejectsInvalidProductCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := setupUser(t, db, dec("100"))
	bandID, _ := db.CreateHoldBand(ctx, &domain.HoldBand{Name: "mid", MinAmount: dec("1"), MaxAmount: dec("2"), IsActive: true})

	svc := NewService(db, catalog.NewService(db))
	if _, err := svc.Create(ctx, userID, bandID, 4, 1); err == nil {
		t.Fatal("expected validation error for numProducts=4")
	}
}

func TestCreate_ZeroProductsWhenRangeIncludesZero(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := setupUser(t, db, dec("100"))

	// balance 100 + band [-150, 50] => total range [-50, 150], includes 0.
	bandID, _ := db.CreateHoldBand(ctx, &domain.HoldBand{Name: "spans-zero", MinAmount: dec("-150"), MaxAmount: dec("50"), IsActive: true})

	svc := NewService(db, catalog.NewService(db))
	task, err := svc.Create(ctx, userID, bandID, 0, 1)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(task.Products) != 0 {
		t.Errorf("products = %d, want 0", len(task.Products))
	}
}
