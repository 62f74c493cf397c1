package service

import (
	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// matchTruncatePlaces is the precision at which an observed amount and an
// expected amount are compared for equality. Dust beyond three decimals is
// ignored there.
const matchTruncatePlaces = 3

// Matcher selects at most one pending obligation for an observed transfer.
//
// An obligation is a candidate when the observed amount falls inside the
// fee-tolerance window [expected - tolerance, expected), which absorbs the
// fee an intermediate relay deducts before crediting, or when it equals the
// expected amount once both are truncated to three decimal places, which
// covers payments arriving in full. When several obligations qualify, the
// first one in load order (ascending id) wins and leaves the working set so
// it cannot match twice in the same pass. A transfer with no candidate is
// unrelated volume, not an error.
type Matcher struct {
	tolerance decimal.Decimal
}

// NewMatcher creates a matcher with the given fee tolerance, expressed in
// whole units of the asset.
func NewMatcher(tolerance decimal.Decimal) *Matcher {
	return &Matcher{tolerance: tolerance}
}

// Match returns the matched obligation, removed from the pending set, or
// nil when no obligation qualifies.
func (m *Matcher) Match(observed *domain.ObservedTransfer, pending *PendingSet) *domain.PaymentObligation {
	for _, o := range pending.Obligations() {
		if m.candidate(observed.Amount, o.ExpectedAmount) {
			pending.Remove(o.ID)
			return o
		}
	}
	return nil
}

func (m *Matcher) candidate(observed, expected decimal.Decimal) bool {
	lower := expected.Sub(m.tolerance)
	if observed.Cmp(lower) >= 0 && observed.Cmp(expected) < 0 {
		return true
	}
	return observed.Truncate(matchTruncatePlaces).Equal(expected.Truncate(matchTruncatePlaces))
}
