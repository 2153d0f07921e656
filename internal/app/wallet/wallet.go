// Package wallet implements the per-user ledger state machine: the
// balance/on_hold pair, commission accounting, and pack auto-assignment.
package wallet

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// Service manages wallet state for every user.
type Service struct {
	db *sqlite.DB
}

// NewService creates a wallet service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// GetOrCreate returns userID's wallet, creating one with a zero balance
// and auto-assigned pack if it does not already exist.
func (s *Service) GetOrCreate(ctx context.Context, userID int64) (*domain.Wallet, error) {
	w, err := s.db.GetWalletByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w != nil {
		return w, nil
	}

	w = &domain.Wallet{UserID: userID, CreditScore: decimal.NewFromInt(100)}
	if err := s.assignPack(ctx, nil, w); err != nil {
		return nil, err
	}
	id, err := s.db.CreateWallet(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	w.ID = id
	return w, nil
}

// Credit applies a non-negative credit to balance, clearing a negative
// balance first and then merging on_hold back in once solvent.
//
// credit(amount >= 0): if balance < 0, let d = min(|balance|, amount);
// balance += d; amount -= d. Then balance += amount. Finally, if
// balance >= 0 and on_hold > 0: balance += on_hold; on_hold = 0.
func Credit(w *domain.Wallet, amount decimal.Decimal) {
	if amount.IsNegative() {
		panic("wallet: credit amount must be non-negative")
	}
	if w.Balance.IsNegative() {
		d := decimal.Min(w.Balance.Abs(), amount)
		w.Balance = w.Balance.Add(d)
		amount = amount.Sub(d)
	}
	w.Balance = round2(w.Balance.Add(amount))
	if !w.Balance.IsNegative() && w.OnHold.IsPositive() {
		w.Balance = round2(w.Balance.Add(w.OnHold))
		w.OnHold = decimal.Zero
	}
}

// Debit reserves amount > 0 against balance. If balance covers it,
// balance is simply reduced; otherwise balance goes negative by the
// shortfall and on_hold records the full reserved amount.
//
// Precondition: on_hold must be zero on entry — callers only debit
// when no special task already holds funds.
func Debit(w *domain.Wallet, amount decimal.Decimal) error {
	if amount.IsNegative() || amount.IsZero() {
		return domain.Validation(domain.ErrInvalidArgument, "debit amount must be positive")
	}
	if w.OnHold.IsPositive() {
		return domain.InternalErr(domain.ErrOnHoldNotClear, "debit invoked with on_hold already reserved")
	}
	if w.Balance.GreaterThanOrEqual(amount) {
		w.Balance = round2(w.Balance.Sub(amount))
		return nil
	}
	w.Balance = round2(amount.Sub(w.Balance).Neg())
	w.OnHold = round2(amount)
	return nil
}

// CreditCommission adds amount to the commission ledger.
func CreditCommission(w *domain.Wallet, amount decimal.Decimal) {
	w.Commission = round2(w.Commission.Add(amount))
}

// DebitCommission subtracts amount from the commission ledger.
func DebitCommission(w *domain.Wallet, amount decimal.Decimal) {
	w.Commission = round2(w.Commission.Sub(amount))
}

// ReleaseOnHold transfers on_hold to balance in full. Reserved for
// legacy call sites; the sequential Debit above supersedes it for the
// special-task flow.
func ReleaseOnHold(w *domain.Wallet) {
	w.Balance = round2(w.Balance.Add(w.OnHold))
	w.OnHold = decimal.Zero
}

// AddOnHold adds amount directly to on_hold. Reserved for legacy call
// sites; see ReleaseOnHold.
func AddOnHold(w *domain.Wallet, amount decimal.Decimal) {
	w.OnHold = round2(w.OnHold.Add(amount))
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MutateTx loads userID's wallet under the write lock, applies fn, and
// persists the result within the same transaction. Every ledger
// mutation funnels through this to guarantee linearizable updates to a
// single wallet.
func (s *Service) MutateTx(ctx context.Context, tx *sqlite.Tx, userID int64, fn func(w *domain.Wallet) error) (*domain.Wallet, error) {
	w, err := s.db.GetWalletByUserIDTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NotFoundErr(domain.ErrNotFound, "wallet not found")
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := s.assignPack(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := s.db.SaveWalletTx(ctx, tx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// assignPack applies pack auto-assignment: on create, or when pack is
// null, or when the current pack is inactive, choose the active pack
// with the greatest usd_value <= balance; if none qualifies, the
// active pack with the smallest usd_value.
//
// tx may be nil only for the one-off GetOrCreate path that runs
// outside any transaction; every other caller holds the wallet write
// lock and must pass it through so this reads the same connection
// instead of contending with it (the pool holds exactly one
// connection, so a non-tx read while a transaction is open on it would
// block forever).
func (s *Service) assignPack(ctx context.Context, tx *sqlite.Tx, w *domain.Wallet) error {
	needsAssignment := w.PackID == nil
	if !needsAssignment {
		var p *domain.Pack
		var err error
		if tx != nil {
			p, err = s.db.GetPackTx(ctx, tx, *w.PackID)
		} else {
			p, err = s.db.GetPack(ctx, *w.PackID)
		}
		if err != nil {
			return err
		}
		needsAssignment = p == nil || !p.IsActive
	}
	if !needsAssignment {
		return nil
	}

	var packs []domain.Pack
	var err error
	if tx != nil {
		packs, err = s.db.ListActivePacksByUsdValueDescTx(ctx, tx)
	} else {
		packs, err = s.db.ListActivePacksByUsdValueDesc(ctx)
	}
	if err != nil {
		return err
	}
	if len(packs) == 0 {
		w.PackID = nil
		return nil
	}

	var best *domain.Pack
	var cheapest *domain.Pack
	for i := range packs {
		p := &packs[i]
		if cheapest == nil || p.UsdValue.LessThan(cheapest.UsdValue) {
			cheapest = p
		}
		if p.UsdValue.LessThanOrEqual(w.Balance) && (best == nil || p.UsdValue.GreaterThan(best.UsdValue)) {
			best = p
		}
	}
	if best == nil {
		best = cheapest
	}
	w.PackID = &best.ID
	return nil
}

// ReassignForPack clears pack_id on every wallet referencing packID.
// It does not assign a new pack itself: each affected wallet is
// auto-assigned one the next time it passes through MutateTx, and until
// then it has no pack.
func (s *Service) ReassignForPack(ctx context.Context, packID int64) error {
	_, err := s.db.ReassignWalletsForPack(ctx, packID)
	return err
}
