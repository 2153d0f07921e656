package domain

import "time"

// Invitation links an invited user to the user that referred them.
type Invitation struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ReferrerID int64     `json:"referrer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// InvitationCode is a one-shot referral code used when no referrer user
// account is known at signup time.
type InvitationCode struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	ReferrerID int64      `json:"referrer_id"`
	UsedByID   *int64     `json:"used_by_id,omitempty"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
