package service

import (
	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/paywatch/paywatch-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// SettlementService applies a matched transfer as a single atomic state
// transition: obligation marked settled, transfer id recorded, balance
// snapshots written, user balance credited with the observed amount. The
// store transaction either commits fully or leaves the obligation
// unsettled and eligible for retry on a later pass.
type SettlementService struct {
	obligationRepo domain.ObligationRepository
	eventPublisher websocket.EventPublisher
	logger         zerolog.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(obligationRepo domain.ObligationRepository, logger zerolog.Logger) *SettlementService {
	return &SettlementService{
		obligationRepo: obligationRepo,
		logger:         logger.With().Str("component", "settlement").Logger(),
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *SettlementService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// Settle commits the match between an obligation and an observed transfer.
// The balance moves by the observed amount, not the expected amount.
func (s *SettlementService) Settle(obligation *domain.PaymentObligation, observed *domain.ObservedTransfer) (*domain.PaymentObligation, error) {
	settled, err := s.obligationRepo.Settle(domain.SettleObligationParams{
		ObligationID: obligation.ID,
		TransferID:   observed.TransferID,
		Amount:       observed.Amount,
	})
	if err != nil {
		return nil, err
	}

	// Human-readable settlement record
	s.logger.Info().
		Int64("obligation_id", settled.ID).
		Str("user_id", settled.UserID.String()).
		Str("transfer_id", observed.TransferID).
		Str("payer", observed.FromAddress).
		Str("payee", observed.ToAddress).
		Str("amount", observed.Amount.String()).
		Str("expected", settled.ExpectedAmount.String()).
		Msg("Obligation settled")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.SettlementCreated(settled))
	}

	return settled, nil
}
