package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ObligationState string

const (
	ObligationStateUnsettled ObligationState = "unsettled"
	ObligationStateSettled   ObligationState = "settled"
)

// PaymentObligation is one expected incoming payment. It transitions
// unsettled -> settled exactly once and is never reversed.
type PaymentObligation struct {
	ID                   int64            `json:"id"`
	UserID               uuid.UUID        `json:"userId"`
	ExpectedAmount       decimal.Decimal  `json:"expectedAmount"`
	State                ObligationState  `json:"state"`
	SettlementTransferID *string          `json:"settlementTransferId,omitempty"`
	BalanceBefore        *decimal.Decimal `json:"balanceBefore,omitempty"`
	BalanceAfter         *decimal.Decimal `json:"balanceAfter,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
	SettledAt            *time.Time       `json:"settledAt,omitempty"`
}

// SettleObligationParams carries everything the store needs to settle one
// obligation. Amount is the observed transfer amount, which may fall short
// of the expected amount by the fee tolerance; the balance is credited with
// the observed amount.
type SettleObligationParams struct {
	ObligationID int64
	TransferID   string
	Amount       decimal.Decimal
}

// ObligationRepository defines the interface for obligation persistence.
// ListUnsettled must return obligations in ascending id order; the matcher
// relies on that order for its first-match tie-break.
type ObligationRepository interface {
	Create(obligation *PaymentObligation) (*PaymentObligation, error)
	GetByID(id int64) (*PaymentObligation, error)
	ListAll() ([]*PaymentObligation, error)
	ListByState(state ObligationState) ([]*PaymentObligation, error)
	ListUnsettled() ([]*PaymentObligation, error)
	// LastSettledBefore returns the most recent settled obligation with an id
	// below the given id, or ErrObligationNotFound if none exists.
	LastSettledBefore(id int64) (*PaymentObligation, error)
	// Settle marks the obligation settled, records the transfer id and
	// pre/post balance snapshots, and credits the user's balance, all in one
	// database transaction. Returns ErrObligationSettled if the obligation is
	// no longer unsettled.
	Settle(params SettleObligationParams) (*PaymentObligation, error)
}
