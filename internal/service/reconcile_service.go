package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/paywatch/paywatch-backend/internal/feed"
	"github.com/rs/zerolog"
)

// TransferFeed is the paginated source of confirmed transfers for the
// watched address, newest-first.
type TransferFeed interface {
	FirstPage(ctx context.Context, since time.Time) (*feed.Page, error)
	NextPage(ctx context.Context, next string) (*feed.Page, error)
}

// PassReason describes how a reconciliation pass ended.
type PassReason string

const (
	// PassIdle means there were no unsettled obligations; the feed was not
	// queried at all.
	PassIdle PassReason = "idle"
	// PassBoundary means the scan reached the newest previously reconciled
	// transfer.
	PassBoundary PassReason = "boundary"
	// PassDrained means every pending obligation was settled.
	PassDrained PassReason = "drained"
	// PassExhausted means the feed ran out of pages first.
	PassExhausted PassReason = "exhausted"
)

// PassResult summarizes one reconciliation pass
type PassResult struct {
	Reason    PassReason
	Settled   int
	Unmatched int
	Pages     int
	Remaining int
}

// ReconcileService runs a single reconciliation pass: load the unsettled
// obligations, derive the feed window, then page through the feed matching
// and settling until a stop condition is hit. All pass state is scoped to
// the call; a failed pass leaves nothing behind and the next pass
// recomputes everything from the store.
type ReconcileService struct {
	obligationRepo domain.ObligationRepository
	settlement     *SettlementService
	feed           TransferFeed
	filter         *TransferFilter
	matcher        *Matcher
	logger         zerolog.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(
	obligationRepo domain.ObligationRepository,
	settlement *SettlementService,
	transferFeed TransferFeed,
	filter *TransferFilter,
	matcher *Matcher,
	logger zerolog.Logger,
) *ReconcileService {
	return &ReconcileService{
		obligationRepo: obligationRepo,
		settlement:     settlement,
		feed:           transferFeed,
		filter:         filter,
		matcher:        matcher,
		logger:         logger.With().Str("component", "reconcile").Logger(),
	}
}

// RunPass executes one pass. It returns an error when the pass could not
// complete (store read failure, feed failure, cancellation); the caller
// retries by running a fresh pass later.
func (s *ReconcileService) RunPass(ctx context.Context) (*PassResult, error) {
	pending, err := s.obligationRepo.ListUnsettled()
	if err != nil {
		return nil, fmt.Errorf("load unsettled obligations: %w", err)
	}
	if len(pending) == 0 {
		return &PassResult{Reason: PassIdle}, nil
	}

	window, err := s.window(pending)
	if err != nil {
		return nil, err
	}

	set := NewPendingSet(pending)
	result := &PassResult{}

	page, err := s.feed.FirstPage(ctx, window.Since)
	for {
		if err != nil {
			return nil, fmt.Errorf("fetch feed page %d: %w", result.Pages+1, err)
		}
		result.Pages++

		for i := range page.Records {
			raw := &page.Records[i]

			if window.StopTransferID != "" && raw.TransferID == window.StopTransferID {
				// Everything at or before this transfer is already
				// reconciled; do not reprocess it or anything older.
				result.Reason = PassBoundary
				result.Remaining = set.Len()
				return result, nil
			}

			observed := s.filter.Normalize(raw)
			if observed == nil {
				continue
			}

			matched := s.matcher.Match(observed, set)
			if matched == nil {
				result.Unmatched++
				continue
			}

			if _, err := s.settlement.Settle(matched, observed); err != nil {
				// Record-scoped failure: the obligation stays unsettled in
				// the store and is retried on the next full pass.
				s.logger.Error().
					Err(err).
					Int64("obligation_id", matched.ID).
					Str("transfer_id", observed.TransferID).
					Int("page", result.Pages).
					Msg("Settlement failed")
				continue
			}
			result.Settled++

			if set.Empty() {
				result.Reason = PassDrained
				return result, nil
			}
		}

		if page.Next == "" {
			result.Reason = PassExhausted
			result.Remaining = set.Len()
			return result, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err = s.feed.NextPage(ctx, page.Next)
	}
}

// window derives the pass window from the current pending set. The stop
// boundary comes from the most recent settled obligation below the
// smallest unsettled id; absence of one just means scanning to the feed's
// end.
func (s *ReconcileService) window(pending []*domain.PaymentObligation) (Window, error) {
	lastSettled, err := s.obligationRepo.LastSettledBefore(pending[0].ID)
	if err != nil {
		if errors.Is(err, domain.ErrObligationNotFound) {
			return ComputeWindow(pending, nil), nil
		}
		return Window{}, fmt.Errorf("load stop boundary: %w", err)
	}
	return ComputeWindow(pending, lastSettled), nil
}
