package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// AdminSetBalance credits amount to a wallet's balance, clearing a
// negative balance and releasing on_hold the same way an ordinary
// commission credit would. amount is a signed adjustment, not a target
// value: crediting is the only admin-balance operation, matching
// UserBalance.save()'s wallet.credit(new_balance) in the source this
// was distilled from. A negative amount is applied directly, since
// Credit only ever moves balance upward.
func (s *Service) AdminSetBalance(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		w, err := s.MutateTx(ctx, tx, userID, func(w *domain.Wallet) error {
			if amount.IsPositive() {
				Credit(w, amount)
			} else if amount.IsNegative() {
				w.Balance = round2(w.Balance.Add(amount))
			}
			return nil
		})
		out = w
		return err
	})
	return out, err
}

// AdminSetTodayProfit sets the user's today_profit counter to
// newTodayProfit, adjusting the wallet's commission ledger by the same
// delta so the two stay consistent with how ordinary task play credits
// both together.
func (s *Service) AdminSetTodayProfit(ctx context.Context, userID int64, newTodayProfit decimal.Decimal) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		user, err := s.db.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.NotFoundErr(domain.ErrNotFound, "user not found")
		}
		delta := newTodayProfit.Sub(user.TodayProfit).Round(2)

		_, err = s.MutateTx(ctx, tx, userID, func(w *domain.Wallet) error {
			if delta.IsPositive() {
				CreditCommission(w, delta)
			} else if delta.IsNegative() {
				DebitCommission(w, delta.Neg())
			}
			return nil
		})
		if err != nil {
			return err
		}

		return s.db.UpdateUserCounters(ctx, tx, userID, user.SubmissionsToday, user.SetsToday, round2(newTodayProfit))
	})
}

// AdminSetSalary sets the wallet's salary field to newSalary. The
// balance delta from the change routes through Credit on an increase,
// so it clears a negative balance and releases on_hold the same way a
// regular credit would; a decrease is a direct subtraction.
func (s *Service) AdminSetSalary(ctx context.Context, userID int64, newSalary decimal.Decimal) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		w, err := s.MutateTx(ctx, tx, userID, func(w *domain.Wallet) error {
			delta := newSalary.Sub(w.Salary).Round(2)
			w.Salary = round2(newSalary)
			if delta.IsPositive() {
				Credit(w, delta)
			} else if delta.IsNegative() {
				w.Balance = round2(w.Balance.Add(delta))
			}
			return nil
		})
		out = w
		return err
	})
	return out, err
}

// AdminSetRegBonusCredited flips whether the registration bonus has
// been credited. Crediting routes reg_bonus_amount through Credit;
// revoking subtracts it directly from balance. A no-op if the flag
// already matches credited.
func (s *Service) AdminSetRegBonusCredited(ctx context.Context, userID int64, credited bool) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		user, err := s.db.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.NotFoundErr(domain.ErrNotFound, "user not found")
		}
		if user.IsRegBonusCredited == credited {
			out, err = s.db.GetWalletByUserIDTx(ctx, tx, userID)
			return err
		}

		w, err := s.MutateTx(ctx, tx, userID, func(w *domain.Wallet) error {
			if credited {
				Credit(w, user.RegBonusAmount)
			} else {
				w.Balance = round2(w.Balance.Sub(user.RegBonusAmount))
			}
			return nil
		})
		if err != nil {
			return err
		}
		out = w
		return s.db.SetRegBonusCredited(ctx, tx, userID, credited)
	})
	return out, err
}

// AdminSetCreditScore sets a wallet's credit_score, validated to
// [0, 100].
func (s *Service) AdminSetCreditScore(ctx context.Context, userID int64, score decimal.Decimal) (*domain.Wallet, error) {
	if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(100)) {
		return nil, domain.Validation(domain.ErrInvalidCreditScore, "")
	}
	var out *domain.Wallet
	err := s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		w, err := s.MutateTx(ctx, tx, userID, func(w *domain.Wallet) error {
			w.CreditScore = round2(score)
			return nil
		})
		out = w
		return err
	})
	return out, err
}

// AdminSetPack reassigns a wallet to packID directly, bypassing the
// balance-threshold auto-assignment rule. packID must reference an
// active pack.
func (s *Service) AdminSetPack(ctx context.Context, userID, packID int64) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		pack, err := s.db.GetPackTx(ctx, tx, packID)
		if err != nil {
			return err
		}
		if pack == nil {
			return domain.NotFoundErr(domain.ErrNotFound, "pack not found")
		}
		if !pack.IsActive {
			return domain.Validation(domain.ErrPackNotActive, "")
		}
		w, err := s.MutateTx(ctx, tx, userID, func(w *domain.Wallet) error {
			w.PackID = &packID
			return nil
		})
		out = w
		return err
	})
	return out, err
}

// AdminResetAccount resets a user's submissions_today/sets_today
// counters. nil arguments reset that counter to zero; explicit values
// are clamped to the user's current pack limits
// (daily_missions/number_of_set) rather than rejected outright.
func (s *Service) AdminResetAccount(ctx context.Context, userID int64, submissionsToday, setsToday *int) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		user, err := s.db.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.NotFoundErr(domain.ErrNotFound, "user not found")
		}
		w, err := s.db.GetWalletByUserIDTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.NotFoundErr(domain.ErrNotFound, "wallet not found")
		}

		dailyMissions, numberOfSet := 0, 0
		if w.PackID != nil {
			pack, err := s.db.GetPackTx(ctx, tx, *w.PackID)
			if err != nil {
				return err
			}
			if pack != nil {
				dailyMissions, numberOfSet = pack.DailyMissions, pack.NumberOfSet
			}
		}

		subs := 0
		if submissionsToday != nil {
			subs = clamp(*submissionsToday, 0, dailyMissions)
		}
		sets := 0
		if setsToday != nil {
			sets = clamp(*setsToday, 0, numberOfSet)
		}

		return s.db.UpdateUserCounters(ctx, tx, userID, subs, sets, user.TodayProfit)
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
