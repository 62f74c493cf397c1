package service

import "github.com/paywatch/paywatch-backend/internal/domain"

// PendingSet is the pass-scoped working set of unsettled obligations.
// It preserves load order (ascending id) and is discarded when the pass
// ends; the store remains the only authoritative state between passes.
type PendingSet struct {
	obligations []*domain.PaymentObligation
}

// NewPendingSet creates a pending set from obligations in load order
func NewPendingSet(obligations []*domain.PaymentObligation) *PendingSet {
	return &PendingSet{obligations: obligations}
}

// Obligations returns the remaining obligations in load order
func (s *PendingSet) Obligations() []*domain.PaymentObligation {
	return s.obligations
}

// Remove drops the obligation with the given id from the set
func (s *PendingSet) Remove(id int64) {
	for i, o := range s.obligations {
		if o.ID == id {
			s.obligations = append(s.obligations[:i], s.obligations[i+1:]...)
			return
		}
	}
}

// Len returns the number of remaining obligations
func (s *PendingSet) Len() int {
	return len(s.obligations)
}

// Empty reports whether all obligations in the set have been matched
func (s *PendingSet) Empty() bool {
	return len(s.obligations) == 0
}
