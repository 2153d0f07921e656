// Package catalog provides read-side lookups over packs, products, and
// hold bands, including the balance-band product selection algorithm
// fresh task assignment uses.
package catalog

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// Service provides read-only access to the pack/product/hold-band
// catalogs.
type Service struct {
	db *sqlite.DB
}

// NewService creates a catalog service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// balanceBandThresholds descends from 100% of balance to 1%, matching
// the eight priority tiers fresh task assignment ranks products into.
var balanceBandThresholds = []float64{1.0, 0.8, 0.6, 0.4, 0.2, 0.1, 0.05, 0.01}

// SelectForBalance picks exactly one product for a fresh task,
// preferring products priced closest to the user's full balance and
// excluding anything in seen. Falls back to the highest-priced
// affordable product across the whole catalog, then to the cheapest
// product overall, when every band is empty.
func (s *Service) SelectForBalance(ctx context.Context, balance decimal.Decimal, seen map[int64]bool) (*domain.Product, error) {
	all, err := s.db.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, domain.Eligibility(domain.ErrNoProductsLeft, "no products exist in the catalog")
	}

	var available []domain.Product
	for _, p := range all {
		if !seen[p.ID] {
			available = append(available, p)
		}
	}

	if p := pickFromBands(available, balance); p != nil {
		return p, nil
	}

	// All bands empty: fall back to the affordable product with the
	// greatest price across the entire catalog (including seen ones).
	var bestAffordable *domain.Product
	for i := range all {
		p := &all[i]
		if p.Price.LessThanOrEqual(balance) {
			if bestAffordable == nil || p.Price.GreaterThan(bestAffordable.Price) {
				bestAffordable = p
			}
		}
	}
	if bestAffordable != nil {
		return bestAffordable, nil
	}

	// Nothing affordable at all: the catalog's cheapest product. all is
	// already ordered by price ascending.
	return &all[0], nil
}

// SelectForBalanceTx is SelectForBalance run within an open transaction,
// required by fresh task assignment, which runs under the wallet write
// lock alongside the task it creates.
func (s *Service) SelectForBalanceTx(ctx context.Context, tx *sqlite.Tx, balance decimal.Decimal, seen map[int64]bool) (*domain.Product, error) {
	all, err := s.db.ListProductsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, domain.Eligibility(domain.ErrNoProductsLeft, "no products exist in the catalog")
	}

	var available []domain.Product
	for _, p := range all {
		if !seen[p.ID] {
			available = append(available, p)
		}
	}

	if p := pickFromBands(available, balance); p != nil {
		return p, nil
	}

	var bestAffordable *domain.Product
	for i := range all {
		p := &all[i]
		if p.Price.LessThanOrEqual(balance) {
			if bestAffordable == nil || p.Price.GreaterThan(bestAffordable.Price) {
				bestAffordable = p
			}
		}
	}
	if bestAffordable != nil {
		return bestAffordable, nil
	}

	return &all[0], nil
}

func pickFromBands(products []domain.Product, balance decimal.Decimal) *domain.Product {
	if balance.IsZero() || balance.IsNegative() {
		return nil
	}

	for i, threshold := range balanceBandThresholds {
		lo := balance.Mul(decimal.NewFromFloat(threshold))
		var band []domain.Product
		if i == 0 {
			// Top tier: products priced at exactly the full balance.
			for _, p := range products {
				if p.Price.Equal(balance) {
					band = append(band, p)
				}
			}
		} else {
			hi := balance.Mul(decimal.NewFromFloat(balanceBandThresholds[i-1]))
			for _, p := range products {
				if p.Price.GreaterThanOrEqual(lo) && p.Price.LessThan(hi) {
					band = append(band, p)
				}
			}
		}
		if len(band) > 0 {
			return pickRandom(band)
		}
	}
	return nil
}

func pickRandom(products []domain.Product) *domain.Product {
	if len(products) == 1 {
		return &products[0]
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(products))))
	if err != nil {
		return &products[0]
	}
	return &products[n.Int64()]
}

// GetPack loads a pack by id.
func (s *Service) GetPack(ctx context.Context, id int64) (*domain.Pack, error) {
	return s.db.GetPack(ctx, id)
}

// GetPackTx is GetPack run within an open transaction.
func (s *Service) GetPackTx(ctx context.Context, tx *sqlite.Tx, id int64) (*domain.Pack, error) {
	return s.db.GetPackTx(ctx, tx, id)
}

// BestHoldBandFor chooses a hold band for a special task. The original
// leaves the choice to the admin request; here the admin-supplied band
// id is used directly, exposed for callers that need a sane default.
func (s *Service) BestHoldBandFor(ctx context.Context, balance decimal.Decimal) (*domain.HoldBand, error) {
	bands, err := s.db.ListActiveHoldBands(ctx)
	if err != nil {
		return nil, err
	}
	if len(bands) == 0 {
		return nil, domain.Eligibility(domain.ErrNoHoldBandMatch, "no active hold bands configured")
	}
	for i := range bands {
		b := &bands[i]
		if balance.GreaterThanOrEqual(b.MinAmount) && balance.LessThanOrEqual(b.MaxAmount) {
			return b, nil
		}
	}
	return &bands[0], nil
}

// RandomInBand returns a uniformly random two-decimal amount in
// [band.MinAmount, band.MaxAmount].
func RandomInBand(band *domain.HoldBand) (decimal.Decimal, error) {
	span := band.MaxAmount.Sub(band.MinAmount)
	if span.IsNegative() {
		return decimal.Zero, domain.Validation(domain.ErrInvalidArgument, "hold band max must be >= min")
	}
	cents := span.Mul(decimal.NewFromInt(100)).IntPart()
	if cents <= 0 {
		return band.MinAmount.Round(2), nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(cents+1))
	if err != nil {
		return decimal.Zero, err
	}
	offset := decimal.NewFromInt(n.Int64()).Div(decimal.NewFromInt(100))
	return band.MinAmount.Add(offset).Round(2), nil
}
