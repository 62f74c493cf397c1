package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/paywatch/paywatch-backend/internal/testutil"
	"github.com/paywatch/paywatch-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type capturingPublisher struct {
	events []websocket.Event
}

func (p *capturingPublisher) Publish(event websocket.Event) {
	p.events = append(p.events, event)
}

func TestSettlementService_Settle(t *testing.T) {
	users := testutil.NewMockUserRepository()
	obligations := testutil.NewMockObligationRepository()
	obligations.UserRepo = users

	user := &domain.User{ID: uuid.New(), Email: "payer@example.com", Balance: decimal.NewFromInt(10)}
	users.AddUser(user)
	obligation, _ := obligations.Create(&domain.PaymentObligation{
		UserID:         user.ID,
		ExpectedAmount: decimal.NewFromInt(100),
	})

	publisher := &capturingPublisher{}
	svc := NewSettlementService(obligations, zerolog.Nop())
	svc.SetEventPublisher(publisher)

	observed := &domain.ObservedTransfer{
		TransferID:  "tx-1",
		FromAddress: "TPayer",
		ToAddress:   "TWatchedAddr",
		Amount:      decimal.NewFromFloat(98.5),
		AssetSymbol: "USDT",
	}

	settled, err := svc.Settle(obligation, observed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settled.State != domain.ObligationStateSettled {
		t.Errorf("expected settled state, got %s", settled.State)
	}
	if settled.SettlementTransferID == nil || *settled.SettlementTransferID != "tx-1" {
		t.Error("expected transfer id recorded on the obligation")
	}
	if len(obligations.SettleCalls) != 1 {
		t.Fatalf("expected 1 settle call, got %d", len(obligations.SettleCalls))
	}
	if got := obligations.SettleCalls[0].Amount.String(); got != "98.5" {
		t.Errorf("expected observed amount 98.5 applied, got %s", got)
	}
	if got := user.Balance.String(); got != "108.5" {
		t.Errorf("expected balance 108.5, got %s", got)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.events))
	}
	if publisher.events[0].Type != "settlement.created" {
		t.Errorf("expected settlement.created event, got %s", publisher.events[0].Type)
	}
}

func TestSettlementService_Settle_AlreadySettled(t *testing.T) {
	obligations := testutil.NewMockObligationRepository()
	obligations.SettleErr = domain.ErrObligationSettled

	svc := NewSettlementService(obligations, zerolog.Nop())

	obligation := &domain.PaymentObligation{ID: 1, UserID: uuid.New(), ExpectedAmount: decimal.NewFromInt(100)}
	observed := &domain.ObservedTransfer{TransferID: "tx-1", Amount: decimal.NewFromInt(99)}

	_, err := svc.Settle(obligation, observed)
	if !errors.Is(err, domain.ErrObligationSettled) {
		t.Errorf("expected ErrObligationSettled, got %v", err)
	}
}

func TestSettlementService_Settle_NoPublisher(t *testing.T) {
	users := testutil.NewMockUserRepository()
	obligations := testutil.NewMockObligationRepository()
	obligations.UserRepo = users

	user := &domain.User{ID: uuid.New(), Email: "payer@example.com", Balance: decimal.Zero}
	users.AddUser(user)
	obligation, _ := obligations.Create(&domain.PaymentObligation{
		UserID:         user.ID,
		ExpectedAmount: decimal.NewFromInt(100),
	})

	svc := NewSettlementService(obligations, zerolog.Nop())

	if _, err := svc.Settle(obligation, &domain.ObservedTransfer{
		TransferID: "tx-1",
		Amount:     decimal.NewFromInt(99),
	}); err != nil {
		t.Fatalf("expected settlement without a publisher to succeed, got %v", err)
	}
}
