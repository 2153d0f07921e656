// Package domain holds the pure types and sentinel errors of the
// album-review platform. Nothing here imports infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way the API layer needs to respond to it.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindEligibility Kind = "eligibility"
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindInternal    Kind = "internal"
)

// Error wraps a sentinel with a Kind so callers can both errors.Is it and
// switch on how it should surface to a caller.
type Error struct {
	K        Kind
	Sentinel error
	Detail   string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Sentinel, e.Detail)
	}
	return e.Sentinel.Error()
}

func (e *Error) Unwrap() error { return e.Sentinel }

// Kind reports the classification attached to this error.
func (e *Error) Kind() Kind { return e.K }

func newErr(k Kind, sentinel error, detail string) *Error {
	return &Error{K: k, Sentinel: sentinel, Detail: detail}
}

// Validation wraps a sentinel as a field-level validation failure.
func Validation(sentinel error, detail string) *Error {
	return newErr(KindValidation, sentinel, detail)
}

// Eligibility wraps a sentinel as a human-readable reason the user cannot play.
func Eligibility(sentinel error, detail string) *Error {
	return newErr(KindEligibility, sentinel, detail)
}

// Auth wraps a sentinel as an authentication failure.
func Auth(sentinel error, detail string) *Error { return newErr(KindAuth, sentinel, detail) }

// NotFoundErr wraps a sentinel as a missing-entity failure.
func NotFoundErr(sentinel error, detail string) *Error {
	return newErr(KindNotFound, sentinel, detail)
}

// Conflict wraps a sentinel as a state-conflict failure.
func Conflict(sentinel error, detail string) *Error { return newErr(KindConflict, sentinel, detail) }

// InternalErr wraps a sentinel as an opaque infrastructure failure.
func InternalErr(sentinel error, detail string) *Error {
	return newErr(KindInternal, sentinel, detail)
}

// KindOf extracts the Kind of err, defaulting to KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.K
	}
	return KindInternal
}

// ─── Sentinel errors ────────────────────────────────────────────────────────

var (
	// Wallet / ledger (§4.1)
	ErrOnHoldNotClear    = errors.New("debit invoked while on_hold already reserved")
	ErrNoActivePack      = errors.New("no active pack available for assignment")
	ErrInsufficientFunds = errors.New("insufficient balance")

	// Eligibility (§4.2)
	ErrNegativeBalance  = errors.New("you have a negative balance, please add funds to proceed")
	ErrBelowMinBalance  = errors.New("balance below pack minimum for submissions")
	ErrSetCompleted     = errors.New("set completed — request next set")
	ErrAllSetsCompleted = errors.New("all sets completed today")
	ErrNoProductsLeft   = errors.New("no suitable albums available for your current balance")

	// Special task injection (§4.3)
	ErrNoHoldBandMatch       = errors.New("no albums match the hold range for current balance")
	ErrSpecialAlreadyPending = errors.New("a special task is already pending for this user")
	ErrInvalidProductCount   = errors.New("number_of_negative_product must be between 0 and 3")

	// Task play
	ErrInvalidRating     = errors.New("rating_score must be between 1 and 5")
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskAlreadyPlayed = errors.New("task already played")

	// Auth (§4.5)
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account is not active")
	ErrNotStaff           = errors.New("account is not staff")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrMalformedToken     = errors.New("malformed or expired token")

	// Admin wallet adjustments (§6)
	ErrInvalidCreditScore = errors.New("credit_score must be between 0 and 100")
	ErrPackNotActive      = errors.New("pack is not active")

	// Generic
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
