package service

import (
	"github.com/google/uuid"
	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/paywatch/paywatch-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// ObligationService handles obligation intake and queries
type ObligationService struct {
	obligationRepo domain.ObligationRepository
	userRepo       domain.UserRepository
	eventPublisher websocket.EventPublisher
}

// NewObligationService creates a new ObligationService
func NewObligationService(obligationRepo domain.ObligationRepository, userRepo domain.UserRepository) *ObligationService {
	return &ObligationService{
		obligationRepo: obligationRepo,
		userRepo:       userRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ObligationService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateObligationInput is the input for creating an obligation
type CreateObligationInput struct {
	UserID         uuid.UUID
	ExpectedAmount decimal.Decimal
}

// CreateObligation records a new expected payment for a user. The
// reconciliation worker picks it up on its next pass.
func (s *ObligationService) CreateObligation(input CreateObligationInput) (*domain.PaymentObligation, error) {
	if !input.ExpectedAmount.IsPositive() {
		return nil, domain.ErrAmountNotPositive
	}
	if _, err := s.userRepo.GetByID(input.UserID); err != nil {
		return nil, err
	}

	obligation, err := s.obligationRepo.Create(&domain.PaymentObligation{
		UserID:         input.UserID,
		ExpectedAmount: input.ExpectedAmount,
		State:          domain.ObligationStateUnsettled,
	})
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.ObligationCreated(obligation))
	}

	return obligation, nil
}

// GetObligation retrieves one obligation by id
func (s *ObligationService) GetObligation(id int64) (*domain.PaymentObligation, error) {
	return s.obligationRepo.GetByID(id)
}

// ListObligations returns obligations, optionally filtered by state, in
// ascending id order.
func (s *ObligationService) ListObligations(state *domain.ObligationState) ([]*domain.PaymentObligation, error) {
	if state != nil {
		return s.obligationRepo.ListByState(*state)
	}
	return s.obligationRepo.ListAll()
}
