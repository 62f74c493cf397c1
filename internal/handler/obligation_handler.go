package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/paywatch/paywatch-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ObligationHandler handles obligation-related HTTP requests
type ObligationHandler struct {
	obligationService *service.ObligationService
}

// NewObligationHandler creates a new ObligationHandler
func NewObligationHandler(obligationService *service.ObligationService) *ObligationHandler {
	return &ObligationHandler{obligationService: obligationService}
}

// CreateObligationRequest represents the create obligation request body
type CreateObligationRequest struct {
	UserID         string `json:"userId"`
	ExpectedAmount string `json:"expectedAmount"`
}

// ObligationResponse represents an obligation in API responses
type ObligationResponse struct {
	ID                   int64   `json:"id"`
	UserID               string  `json:"userId"`
	ExpectedAmount       string  `json:"expectedAmount"`
	State                string  `json:"state"`
	SettlementTransferID *string `json:"settlementTransferId,omitempty"`
	BalanceBefore        *string `json:"balanceBefore,omitempty"`
	BalanceAfter         *string `json:"balanceAfter,omitempty"`
	CreatedAt            string  `json:"createdAt"`
	SettledAt            *string `json:"settledAt,omitempty"`
}

// CreateObligation handles POST /api/v1/obligations
func (h *ObligationHandler) CreateObligation(c echo.Context) error {
	var req CreateObligationRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "userId", Message: "Must be a valid UUID"},
		})
	}

	amount, err := decimal.NewFromString(req.ExpectedAmount)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "expectedAmount", Message: "Must be a valid decimal number"},
		})
	}

	obligation, err := h.obligationService.CreateObligation(service.CreateObligationInput{
		UserID:         userID,
		ExpectedAmount: amount,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAmountNotPositive) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "expectedAmount", Message: "Must be positive"},
			})
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to create obligation")
		return NewInternalError(c, "Failed to create obligation")
	}

	return c.JSON(http.StatusCreated, obligationToResponse(obligation))
}

// GetObligation handles GET /api/v1/obligations/:id
func (h *ObligationHandler) GetObligation(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid obligation id", nil)
	}

	obligation, err := h.obligationService.GetObligation(id)
	if err != nil {
		if errors.Is(err, domain.ErrObligationNotFound) {
			return NewNotFoundError(c, "Obligation not found")
		}
		log.Error().Err(err).Int64("obligation_id", id).Msg("Failed to get obligation")
		return NewInternalError(c, "Failed to get obligation")
	}

	return c.JSON(http.StatusOK, obligationToResponse(obligation))
}

// GetObligations handles GET /api/v1/obligations
func (h *ObligationHandler) GetObligations(c echo.Context) error {
	var state *domain.ObligationState
	if s := c.QueryParam("state"); s != "" {
		os := domain.ObligationState(s)
		if os != domain.ObligationStateUnsettled && os != domain.ObligationStateSettled {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "state", Message: "Must be one of: unsettled, settled"},
			})
		}
		state = &os
	}

	obligations, err := h.obligationService.ListObligations(state)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list obligations")
		return NewInternalError(c, "Failed to list obligations")
	}

	response := make([]ObligationResponse, len(obligations))
	for i, o := range obligations {
		response[i] = obligationToResponse(o)
	}
	return c.JSON(http.StatusOK, response)
}

func obligationToResponse(o *domain.PaymentObligation) ObligationResponse {
	resp := ObligationResponse{
		ID:                   o.ID,
		UserID:               o.UserID.String(),
		ExpectedAmount:       o.ExpectedAmount.String(),
		State:                string(o.State),
		SettlementTransferID: o.SettlementTransferID,
		CreatedAt:            o.CreatedAt.Format(time.RFC3339),
	}
	if o.BalanceBefore != nil {
		s := o.BalanceBefore.String()
		resp.BalanceBefore = &s
	}
	if o.BalanceAfter != nil {
		s := o.BalanceAfter.String()
		resp.BalanceAfter = &s
	}
	if o.SettledAt != nil {
		s := o.SettledAt.Format(time.RFC3339)
		resp.SettledAt = &s
	}
	return resp
}
