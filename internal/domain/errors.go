package domain

import "errors"

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrObligationNotFound = errors.New("obligation not found")
	ErrObligationSettled  = errors.New("obligation already settled")
	ErrAmountNotPositive  = errors.New("expected amount must be positive")
	ErrEmailRequired      = errors.New("email is required")

	// Feed errors. Both abort the current reconciliation pass; the next
	// pass starts over from store state.
	ErrFeedUnavailable = errors.New("transfer feed unavailable")
	ErrFeedDecode      = errors.New("malformed transfer feed response")
)
