package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an authenticated worker or an administrator.
// Administrators are regular users with IsStaff set.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`

	PasswordHash        string `json:"-"`
	TransactPasswordHash string `json:"-"` // 4-character transactional password

	SubmissionsToday     int             `json:"submissions_today"`
	SetsToday            int             `json:"sets_today"`
	TodayProfit          decimal.Decimal `json:"today_profit"`
	CurrentReferralBonus decimal.Decimal `json:"current_referral_bonus"`

	IsActive           bool `json:"is_active"`
	IsStaff            bool `json:"is_staff"`
	IsRegBonusCredited bool `json:"is_reg_bonus_credited"`
	IsMinBalanceWaived bool `json:"is_min_balance_waived"`

	RegBonusAmount decimal.Decimal `json:"reg_bonus_amount"`

	LastConnection time.Time `json:"last_connection"`

	SessionIDUser  string `json:"-"`
	SessionIDAdmin string `json:"-"`

	ReferrerID *int64 `json:"referrer_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
