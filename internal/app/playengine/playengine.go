// Package playengine implements the task assignment and play engine:
// eligibility checks, the five-priority task selection order, fresh
// task assignment via the balance-band catalog, and referral bonus
// propagation on commission credit.
package playengine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/app/catalog"
	"github.com/reviewforge/reviewforge/internal/app/wallet"
	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/metrics"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// startOfLocalDay returns midnight of the current local day, the
// lower bound for "seen today" product lookups.
func startOfLocalDay() time.Time {
	now := time.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Service drives task assignment and play for a single user at a time.
type Service struct {
	db      *sqlite.DB
	wallets *wallet.Service
	catalog *catalog.Service
}

// NewService creates a play engine service.
func NewService(db *sqlite.DB, wallets *wallet.Service, cat *catalog.Service) *Service {
	return &Service{db: db, wallets: wallets, catalog: cat}
}

// checkEligibility implements §4.2's eligibility checks: non-negative
// balance, minimum balance unless waived, and set-completion status.
func checkEligibility(user *domain.User, w *domain.Wallet, pack *domain.Pack) error {
	if w.Balance.IsNegative() {
		return domain.Eligibility(domain.ErrNegativeBalance, "")
	}
	if !user.IsMinBalanceWaived {
		if w.Balance.LessThan(pack.MinimumBalanceForSubmissions) {
			return domain.Eligibility(domain.ErrBelowMinBalance, fmt.Sprintf(
				"you need a minimum of %s USD balance for your current pack to review albums", pack.MinimumBalanceForSubmissions))
		}
	}
	if user.SubmissionsToday >= pack.DailyMissions {
		setNumber := domain.Ordinal(user.SetsToday)
		if pack.NumberOfSet > user.SetsToday {
			return domain.Eligibility(domain.ErrSetCompleted, fmt.Sprintf(
				"the %s set of album reviews has been completed, request the next set", setNumber))
		}
		return domain.Eligibility(domain.ErrAllSetsCompleted, fmt.Sprintf(
			"you have completed all %d album review sets for today", user.SetsToday))
	}
	return nil
}

// loadContext fetches the user, wallet and pack within tx, the trio
// every selection and play operation needs.
func (s *Service) loadContext(ctx context.Context, tx *sqlite.Tx, userID int64) (*domain.User, *domain.Wallet, *domain.Pack, error) {
	user, err := s.db.GetUserTx(ctx, tx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if user == nil {
		return nil, nil, nil, domain.NotFoundErr(domain.ErrNotFound, "user not found")
	}
	w, err := s.db.GetWalletByUserIDTx(ctx, tx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if w == nil {
		return nil, nil, nil, domain.NotFoundErr(domain.ErrNotFound, "wallet not found")
	}
	if w.PackID == nil {
		return nil, nil, nil, domain.Eligibility(domain.ErrNoActivePack, "no pack assigned to wallet")
	}
	pack, err := s.catalog.GetPackTx(ctx, tx, *w.PackID)
	if err != nil {
		return nil, nil, nil, err
	}
	if pack == nil {
		return nil, nil, nil, domain.Eligibility(domain.ErrNoActivePack, "assigned pack not found")
	}
	return user, w, pack, nil
}

// SelectActiveTask resolves the task presented to the user, walking
// the five-priority order. It may mutate state (activating a special
// task, promoting a regular one, or assigning a fresh one).
func (s *Service) SelectActiveTask(ctx context.Context, userID int64) (*domain.Task, error) {
	metrics.ActiveTaskLookups.Inc()
	var result *domain.Task
	err := s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		t, err := s.selectActiveTaskTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		user, _, pack, err := s.loadContext(ctx, tx, userID)
		if err != nil {
			return err
		}
		t.TotalNumberCanPlay = pack.DailyMissions
		t.CurrentNumberCount = user.SubmissionsToday
		result = t
		return nil
	})
	return result, err
}

func (s *Service) selectActiveTaskTx(ctx context.Context, tx *sqlite.Tx, userID int64) (*domain.Task, error) {
	// Priority 1: a pending special task already activated.
	if t, err := s.db.GetActiveSpecialPendingTx(ctx, tx, userID); err != nil {
		return nil, err
	} else if t != nil {
		return t, nil
	}

	user, w, _, err := s.loadContext(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// Priority 2: a special task queued for the rank the user is about
	// to play next. Activating it reserves funds via debit, which may
	// drive the balance negative.
	targetRank := user.SubmissionsToday + 1
	if t, err := s.db.GetNextSpecialForRankTx(ctx, tx, userID, targetRank); err != nil {
		return nil, err
	} else if t != nil {
		if t.HoldBandID != nil {
			band, err := s.db.GetHoldBandTx(ctx, tx, *t.HoldBandID)
			if err != nil {
				return nil, err
			}
			if band != nil {
				r, err := catalog.RandomInBand(band)
				if err != nil {
					return nil, err
				}
				t.Amount = w.Balance.Add(r).Round(2)
			}
		}
		t.Pending = true
		if err := wallet.Debit(w, t.Amount); err != nil {
			return nil, err
		}
		if err := s.db.SaveWalletTx(ctx, tx, w); err != nil {
			return nil, err
		}
		if err := s.db.SaveTaskTx(ctx, tx, t); err != nil {
			return nil, err
		}
		return t, nil
	}

	// Priority 3: a regular task already pending.
	if t, err := s.db.GetRegularPendingTx(ctx, tx, userID); err != nil {
		return nil, err
	} else if t != nil {
		return t, nil
	}

	// Priority 4: a regular task not yet promoted to pending.
	if t, err := s.db.GetRegularUnplayedTx(ctx, tx, userID); err != nil {
		return nil, err
	} else if t != nil {
		t.Pending = true
		if err := s.db.SaveTaskTx(ctx, tx, t); err != nil {
			return nil, err
		}
		return t, nil
	}

	// Priority 5: assign a fresh regular task.
	return s.assignFreshTaskTx(ctx, tx, userID)
}

func (s *Service) assignFreshTaskTx(ctx context.Context, tx *sqlite.Tx, userID int64) (*domain.Task, error) {
	user, w, pack, err := s.loadContext(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	seen, err := s.db.ListSeenProductIDsTodayTx(ctx, tx, userID, startOfLocalDay())
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.SelectForBalanceTx(ctx, tx, w.Balance, seen)
	if err != nil {
		return nil, err
	}

	commission := product.Price.Mul(pack.ProfitPercentage).Div(decimal.NewFromInt(100)).Round(2)
	t := &domain.Task{
		UserID:               userID,
		Products:             []domain.Product{*product},
		Amount:               product.Price,
		Commission:           commission,
		CommissionPercentage: pack.ProfitPercentage,
		RatingNo:             product.RatingNo,
		GameNumber:           user.SubmissionsToday + 1,
		Played:               false,
		Pending:              true,
		IsActive:             true,
	}
	id, err := s.db.CreateTaskTx(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return t, nil
}

// Play marks the currently presented task played, crediting commission
// and propagating the referral bonus. Returns the played task and a
// human-readable status message.
func (s *Service) Play(ctx context.Context, userID int64, ratingScore int, comment string) (*domain.Task, string, error) {
	if ratingScore < 1 || ratingScore > 5 {
		return nil, "", domain.Validation(domain.ErrInvalidRating, "")
	}

	start := time.Now()
	var result *domain.Task
	var message string

	err := s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		t, err := s.selectActiveTaskTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if t.Played {
			return domain.Conflict(domain.ErrTaskAlreadyPlayed, "")
		}

		user, w, pack, err := s.loadContext(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := checkEligibility(user, w, pack); err != nil {
			return err
		}

		amount := t.Amount
		commission := t.Commission

		if !t.Pending {
			// A task played without a prior reservation: if it is
			// special and the balance no longer covers it,
			// re-enter the reservation state instead of crediting.
			if w.Balance.LessThan(amount) && t.SpecialProduct {
				t.Pending = true
				if err := wallet.Debit(w, amount); err != nil {
					return err
				}
				if err := s.db.SaveWalletTx(ctx, tx, w); err != nil {
					return err
				}
				if err := s.db.SaveTaskTx(ctx, tx, t); err != nil {
					return err
				}
				message = "insufficient balance to review this album"
				t.TotalNumberCanPlay = pack.DailyMissions
				t.CurrentNumberCount = user.SubmissionsToday
				result = t
				return nil
			}
		}

		wallet.Credit(w, commission)
		wallet.CreditCommission(w, commission)
		if err := s.db.SaveWalletTx(ctx, tx, w); err != nil {
			return err
		}

		t.RatingScore = ratingScore
		t.Comment = comment
		t.Played = true
		t.Pending = false

		shouldAdvance := true
		if t.SpecialProduct {
			n, err := s.db.CountUnplayedAtRankTx(ctx, tx, userID, t.GameNumber)
			if err != nil {
				return err
			}
			// n includes this task itself, still unplayed at this point.
			if n > 1 {
				shouldAdvance = false
			}
		}
		if err := s.db.SaveTaskTx(ctx, tx, t); err != nil {
			return err
		}

		user.TodayProfit = user.TodayProfit.Add(commission).Round(2)
		if shouldAdvance {
			user.SubmissionsToday++
		}
		if err := s.db.UpdateUserCounters(ctx, tx, userID, user.SubmissionsToday, user.SetsToday, user.TodayProfit); err != nil {
			return err
		}

		if shouldAdvance && user.SubmissionsToday >= pack.DailyMissions {
			user.SetsToday++
			if err := s.db.UpdateUserCounters(ctx, tx, userID, user.SubmissionsToday, user.SetsToday, user.TodayProfit); err != nil {
				return err
			}
			setNumber := domain.Ordinal(user.SetsToday)
			if err := s.db.AdminNotifyTx(ctx, tx, "Worker Set Completed",
				fmt.Sprintf("%s has completed the %s album review set", user.Username, setNumber)); err != nil {
				log.Printf("playengine: admin notify failed: %v", err)
			}
			if user.SetsToday < pack.NumberOfSet {
				if err := s.db.UserNotifyTx(ctx, tx, userID, "Album Review Set Completed",
					fmt.Sprintf("good job, the %s set of album reviews has been completed, request the next set", setNumber)); err != nil {
					log.Printf("playengine: user notify failed: %v", err)
				}
			} else {
				if err := s.db.UserNotifyTx(ctx, tx, userID, "Album Review Set Completed",
					fmt.Sprintf("you have completed all %d album review sets for today", user.SetsToday)); err != nil {
					log.Printf("playengine: user notify failed: %v", err)
				}
			}
		}

		s.propagateReferralTx(ctx, tx, userID, commission)

		message = "album reviewed successfully"
		t.TotalNumberCanPlay = pack.DailyMissions
		t.CurrentNumberCount = user.SubmissionsToday
		result = t
		return nil
	})
	metrics.PlayLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TasksPlayed.WithLabelValues("error").Inc()
		return nil, "", err
	}
	metrics.TasksPlayed.WithLabelValues("ok").Inc()
	return result, message, nil
}

// propagateReferralTx credits the referrer's wallet with its share of
// commission. Failures are caught and logged, never surfaced, matching
// the concurrency model's referral-propagation policy.
func (s *Service) propagateReferralTx(ctx context.Context, tx *sqlite.Tx, userID int64, commission decimal.Decimal) {
	inv, err := s.db.GetInvitationByUserIDTx(ctx, tx, userID)
	if err != nil {
		log.Printf("playengine: referral lookup failed for user %d: %v", userID, err)
		return
	}
	if inv == nil {
		return
	}

	settings, err := s.db.GetSettingsTx(ctx, tx)
	if err != nil {
		log.Printf("playengine: referral settings load failed: %v", err)
		return
	}

	bonus := commission.Mul(settings.PercentageOfSponsors).Div(decimal.NewFromInt(100)).Round(2)

	referrerUser, err := s.db.GetUserTx(ctx, tx, inv.ReferrerID)
	if err != nil || referrerUser == nil {
		log.Printf("playengine: referrer %d not found: %v", inv.ReferrerID, err)
		return
	}

	// Referral bonus is a plain addition to balance, not routed through
	// the ledger-clearing Credit (it never pays down a negative balance
	// or releases on_hold on its own).
	if _, err := s.wallets.MutateTx(ctx, tx, inv.ReferrerID, func(w *domain.Wallet) error {
		w.Balance = w.Balance.Add(bonus).Round(2)
		return nil
	}); err != nil {
		log.Printf("playengine: referral credit failed for referrer %d: %v", inv.ReferrerID, err)
		return
	}

	referrerUser.CurrentReferralBonus = referrerUser.CurrentReferralBonus.Add(bonus).Round(2)
	milestone := decimal.NewFromInt(10)
	if referrerUser.CurrentReferralBonus.GreaterThanOrEqual(milestone) {
		referrerUser.CurrentReferralBonus = referrerUser.CurrentReferralBonus.Sub(milestone)
		if err := s.db.UserNotifyTx(ctx, tx, inv.ReferrerID, "Referral Bonus",
			"you have received a total of 10 USD for referral bonus"); err != nil {
			log.Printf("playengine: referral milestone notify failed: %v", err)
		}
	}
	if err := s.db.UpdateUserReferralBonus(ctx, tx, inv.ReferrerID, referrerUser.CurrentReferralBonus); err != nil {
		log.Printf("playengine: referral bonus persist failed for referrer %d: %v", inv.ReferrerID, err)
	}
}
