package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Task (a.k.a. Game) is a unit of work presented to a user: one or more
// products to review for a commission.
type Task struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	Products []Product `json:"products"`

	Amount               decimal.Decimal `json:"amount"`
	Commission           decimal.Decimal `json:"commission"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`

	RatingNo   string `json:"rating_no"`
	GameNumber int    `json:"game_number"` // rank-of-day this task represents

	SpecialProduct bool `json:"special_product"`
	Played         bool `json:"played"`
	Pending        bool `json:"pending"`
	IsActive       bool `json:"is_active"`

	// TotalNumberCanPlay and CurrentNumberCount describe the user's
	// daily mission quota (pack.daily_missions and
	// user.submissions_today) at the moment this task was presented;
	// neither is a column on the tasks table, both are filled in by the
	// play engine just before a task is handed to the API layer.
	TotalNumberCanPlay int `json:"total_number_can_play"`
	CurrentNumberCount int `json:"current_number_count"`

	HoldBandID *int64 `json:"hold_band_id,omitempty"`

	RatingScore int    `json:"rating_score"`
	Comment     string `json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ordinal renders n as "1st", "2nd", "3rd", "4th", ... matching the
// worker-facing set-completion messages.
func Ordinal(n int) string {
	s := strconv.Itoa(n)
	if m := n % 100; m >= 10 && m <= 20 {
		return s + "th"
	}
	switch n % 10 {
	case 1:
		return s + "st"
	case 2:
		return s + "nd"
	case 3:
		return s + "rd"
	default:
		return s + "th"
	}
}
