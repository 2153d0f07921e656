package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the process-wide configuration singleton (row id=1).
type Settings struct {
	ID int64 `json:"id"`

	PercentageOfSponsors         decimal.Decimal `json:"percentage_of_sponsors"`
	BonusWhenRegistering         decimal.Decimal `json:"bonus_when_registering"`
	MinimumBalanceForSubmissions decimal.Decimal `json:"minimum_balance_for_submissions"`

	ServiceAvailabilityStartTime string `json:"service_availability_start_time"`
	ServiceAvailabilityEndTime   string `json:"service_availability_end_time"`
	Timezone                     string `json:"timezone"`

	TokenValidityPeriodHours int `json:"token_validity_period_hours"`

	ContactEmail        string `json:"contact_email"`
	ContactPhone        string `json:"contact_phone"`
	BlockchainAddress   string `json:"blockchain_address"`
	VideoURL            string `json:"video_url"`

	UpdatedAt time.Time `json:"updated_at"`
}

// DailyResetTracker is the process-wide singleton (row id=1) recording
// when the daily reset scheduler last ran to completion.
type DailyResetTracker struct {
	ID            int64     `json:"id"`
	LastResetTime time.Time `json:"last_reset_time"`
}
