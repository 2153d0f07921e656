package domain

import "github.com/shopspring/decimal"

// Pack is a membership tier: it caps how much a user can play per day and
// sets the commission percentages applied to their tasks.
type Pack struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	UsdValue decimal.Decimal `json:"usd_value"` // threshold for auto-assignment

	DailyMissions  int             `json:"daily_missions"`
	NumberOfSet    int             `json:"number_of_set"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
	SpecialProductPercentage decimal.Decimal `json:"special_product_percentage"`
	MinimumBalanceForSubmissions decimal.Decimal `json:"minimum_balance_for_submissions"`
	PaymentLimitToTriggerBonus decimal.Decimal `json:"payment_limit_to_trigger_bonus"`
	PaymentBonus decimal.Decimal `json:"payment_bonus"`

	IsActive bool `json:"is_active"`
}
