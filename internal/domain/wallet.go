package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the 1:1 financial state attached to a User.
//
// Invariant I1: OnHold >= 0.
// Invariant I2: NOT (Balance > 0 AND OnHold > 0) — at most one side positive.
// Invariant I3: if Balance < 0, OnHold equals the amount reserved by the
// task(s) that drove it negative.
// Invariant I4: Pack is non-null whenever an active Pack exists.
type Wallet struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	Balance      decimal.Decimal `json:"balance"`
	OnHold       decimal.Decimal `json:"on_hold"`
	Commission   decimal.Decimal `json:"commission"`
	Salary       decimal.Decimal `json:"salary"`
	CreditScore  decimal.Decimal `json:"credit_score"` // [0, 100]
	PackID       *int64          `json:"pack_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// round2 rounds d to two decimal places, the precision every monetary
// field in this system is stored and compared at.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
