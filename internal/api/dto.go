package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/reviewforge/reviewforge/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type playTaskRequest struct {
	RatingScore int    `json:"rating_score"`
	Comment     string `json:"comment"`
}

type playTaskResponse struct {
	Task    *domain.Task `json:"task"`
	Message string       `json:"message"`
}

type createSpecialTaskRequest struct {
	UserID                  int64 `json:"user_id"`
	HoldBandID              int64 `json:"hold_band_id"`
	NumberOfNegativeProduct int   `json:"number_of_negative_product"`
	RankAppearance          int   `json:"rank_appearance"`
}

// adminWalletRequest is the shared envelope for every admin wallet
// adjustment: each one re-verifies the admin's transactional password
// before the mutation runs. Value means different things per endpoint:
// a signed credit amount for balance, a target value for today_profit,
// salary, and credit_score.
type adminWalletRequest struct {
	UserID                int64           `json:"user_id"`
	TransactionalPassword string          `json:"transactional_password"`
	Value                 decimal.Decimal `json:"value"`
}

type adminSetPackRequest struct {
	UserID                int64  `json:"user_id"`
	TransactionalPassword string `json:"transactional_password"`
	PackID                int64  `json:"pack_id"`
}

type adminToggleRegBonusRequest struct {
	UserID                int64  `json:"user_id"`
	TransactionalPassword string `json:"transactional_password"`
	Credited              bool   `json:"credited"`
}

type adminResetAccountRequest struct {
	UserID                int64  `json:"user_id"`
	TransactionalPassword string `json:"transactional_password"`
	SubmissionsToday      *int   `json:"submissions_today"`
	SetsToday             *int   `json:"sets_today"`
}

// statusForError maps a domain error Kind to the HTTP status the API
// surfaces it as.
func statusForError(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindEligibility:
		return http.StatusUnprocessableEntity
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
