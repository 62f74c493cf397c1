package service

import (
	"time"

	"github.com/paywatch/paywatch-backend/internal/domain"
)

// Window bounds one reconciliation pass over the feed.
type Window struct {
	// Since is the creation time of the oldest unsettled obligation; the
	// first feed query starts there.
	Since time.Time

	// StopTransferID marks the newest previously reconciled transfer.
	// Scanning newest-first, the pass ends as soon as this id is seen:
	// everything at or before it has already been settled. Empty when no
	// prior settlement exists, in which case the pass scans to the feed's
	// natural end.
	StopTransferID string
}

// ComputeWindow derives the feed query window for a pass. pending must be
// non-empty and in ascending id order; lastSettled is the most recent
// settled obligation below the smallest unsettled id, or nil.
func ComputeWindow(pending []*domain.PaymentObligation, lastSettled *domain.PaymentObligation) Window {
	w := Window{Since: pending[0].CreatedAt}
	if lastSettled != nil && lastSettled.SettlementTransferID != nil {
		w.StopTransferID = *lastSettled.SettlementTransferID
	}
	return w
}
