package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a priced review item a Task asks the user to rate.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageRef  string          `json:"image_ref"`
	RatingNo  string          `json:"rating_no"`
	CreatedAt time.Time       `json:"date_created"`
}

// HoldBand is a named [min, max] interval that bounds the random slice
// added to a user's balance when a special task is sized.
type HoldBand struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	MinAmount decimal.Decimal `json:"min_amount"`
	MaxAmount decimal.Decimal `json:"max_amount"`
	IsActive  bool            `json:"is_active"`
}
