// Package special implements admin-triggered special task injection:
// picking a product combination that sums into a hold band's range
// around a user's current balance, and queuing it for a future rank.
package special

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/app/catalog"
	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/metrics"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// Service injects special tasks for users.
type Service struct {
	db      *sqlite.DB
	catalog *catalog.Service
}

// NewService creates a special task injection service.
func NewService(db *sqlite.DB, cat *catalog.Service) *Service {
	return &Service{db: db, catalog: cat}
}

// Create injects a special task for userID: numProducts products (0 to
// 3) whose combined price falls within balance+[band.min, band.max],
// queued to activate at gameNumber. The amount stored here is replaced
// by a fresh draw from the band when the task is later activated; the
// products and the commission fixed here are kept.
func (s *Service) Create(ctx context.Context, userID, holdBandID int64, numProducts, gameNumber int) (*domain.Task, error) {
	if numProducts < 0 || numProducts > 3 {
		return nil, domain.Validation(domain.ErrInvalidProductCount, "")
	}

	band, err := s.db.GetHoldBand(ctx, holdBandID)
	if err != nil {
		return nil, err
	}
	if band == nil {
		return nil, domain.NotFoundErr(domain.ErrNotFound, "hold band not found")
	}

	w, err := s.db.GetWalletByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NotFoundErr(domain.ErrNotFound, "wallet not found")
	}
	if w.PackID == nil {
		return nil, domain.Eligibility(domain.ErrNoActivePack, "no pack assigned to wallet")
	}
	pack, err := s.catalog.GetPack(ctx, *w.PackID)
	if err != nil {
		return nil, err
	}
	if pack == nil {
		return nil, domain.Eligibility(domain.ErrNoActivePack, "assigned pack not found")
	}

	minTotal := w.Balance.Add(band.MinAmount)
	maxTotal := w.Balance.Add(band.MaxAmount)

	candidates, err := s.db.ListProductsUpTo(ctx, maxTotal.String())
	if err != nil {
		return nil, err
	}
	shuffle(candidates)

	combo := selectCombination(candidates, numProducts, minTotal, maxTotal)
	if combo == nil {
		return nil, domain.Eligibility(domain.ErrNoHoldBandMatch, "no albums match the hold range for current balance")
	}

	specialPct := pack.SpecialProductPercentage
	if specialPct.IsZero() {
		specialPct = pack.ProfitPercentage.Mul(decimal.NewFromInt(5))
	}

	r, err := catalog.RandomInBand(band)
	if err != nil {
		return nil, err
	}
	amount := w.Balance.Add(r).Round(2)
	commission := amount.Mul(specialPct).Div(decimal.NewFromInt(100)).Round(2)

	ratingNo := ""
	if len(combo) > 0 {
		ratingNo = combo[0].RatingNo
	}

	t := &domain.Task{
		UserID:               userID,
		Products:             combo,
		Amount:               amount,
		Commission:           commission,
		CommissionPercentage: specialPct,
		RatingNo:             ratingNo,
		GameNumber:           gameNumber,
		SpecialProduct:       true,
		Played:               false,
		Pending:              false,
		IsActive:             true,
		HoldBandID:           &holdBandID,
	}

	var id int64
	err = s.db.WithTx(ctx, func(ctx context.Context, tx *sqlite.Tx) error {
		existing, err := s.db.GetActiveSpecialPendingTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflict(domain.ErrSpecialAlreadyPending, "user already has a pending special task")
		}
		id, err = s.db.CreateTaskTx(ctx, tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	t.ID = id
	metrics.SpecialTasksCreated.Inc()
	return t, nil
}

// selectCombination searches products (already in a randomized order)
// for the first subset of exactly k whose summed price lies in
// [lo, hi]. k == 0 matches the empty subset when 0 is itself in range.
func selectCombination(products []domain.Product, k int, lo, hi decimal.Decimal) []domain.Product {
	if k == 0 {
		zero := decimal.Zero
		if !zero.LessThan(lo) && !zero.GreaterThan(hi) {
			return []domain.Product{}
		}
		return nil
	}
	if k > len(products) {
		return nil
	}

	chosen := make([]domain.Product, 0, k)
	var walk func(start int, sum decimal.Decimal) []domain.Product
	walk = func(start int, sum decimal.Decimal) []domain.Product {
		if len(chosen) == k {
			if !sum.LessThan(lo) && !sum.GreaterThan(hi) {
				out := make([]domain.Product, k)
				copy(out, chosen)
				return out
			}
			return nil
		}
		for i := start; i < len(products); i++ {
			p := products[i]
			if sum.Add(p.Price).GreaterThan(hi) {
				continue
			}
			chosen = append(chosen, p)
			if out := walk(i+1, sum.Add(p.Price)); out != nil {
				return out
			}
			chosen = chosen[:len(chosen)-1]
		}
		return nil
	}
	return walk(0, decimal.Zero)
}

// shuffle randomizes products in place using a cryptographically
// random Fisher-Yates pass, matching the unpredictability the original
// gets from shuffling before a first-match search.
func shuffle(products []domain.Product) {
	for i := len(products) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			continue
		}
		products[i], products[j.Int64()] = products[j.Int64()], products[i]
	}
}
