package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/paywatch/paywatch-backend/internal/feed"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.ID] = user
}

// MockObligationRepository is a mock implementation of domain.ObligationRepository
type MockObligationRepository struct {
	Obligations map[int64]*domain.PaymentObligation
	NextID      int64
	// UserRepo, when set, supplies and receives balances during Settle
	UserRepo *MockUserRepository
	// SettleErr, when set, is returned by every Settle call
	SettleErr   error
	SettleCalls []domain.SettleObligationParams
}

// NewMockObligationRepository creates a new MockObligationRepository
func NewMockObligationRepository() *MockObligationRepository {
	return &MockObligationRepository{
		Obligations: make(map[int64]*domain.PaymentObligation),
		NextID:      1,
	}
}

// Create creates a new obligation
func (m *MockObligationRepository) Create(obligation *domain.PaymentObligation) (*domain.PaymentObligation, error) {
	obligation.ID = m.NextID
	m.NextID++
	obligation.State = domain.ObligationStateUnsettled
	if obligation.CreatedAt.IsZero() {
		obligation.CreatedAt = time.Now()
	}
	obligation.UpdatedAt = obligation.CreatedAt
	m.Obligations[obligation.ID] = obligation
	return obligation, nil
}

// GetByID retrieves an obligation by ID
func (m *MockObligationRepository) GetByID(id int64) (*domain.PaymentObligation, error) {
	if o, ok := m.Obligations[id]; ok {
		return o, nil
	}
	return nil, domain.ErrObligationNotFound
}

// ListAll retrieves all obligations in ascending id order
func (m *MockObligationRepository) ListAll() ([]*domain.PaymentObligation, error) {
	var result []*domain.PaymentObligation
	for _, o := range m.Obligations {
		result = append(result, o)
	}
	sortByID(result)
	return result, nil
}

// ListByState retrieves obligations in the given state in ascending id order
func (m *MockObligationRepository) ListByState(state domain.ObligationState) ([]*domain.PaymentObligation, error) {
	var result []*domain.PaymentObligation
	for _, o := range m.Obligations {
		if o.State == state {
			result = append(result, o)
		}
	}
	sortByID(result)
	return result, nil
}

// ListUnsettled retrieves all unsettled obligations in ascending id order
func (m *MockObligationRepository) ListUnsettled() ([]*domain.PaymentObligation, error) {
	return m.ListByState(domain.ObligationStateUnsettled)
}

// LastSettledBefore retrieves the most recent settled obligation below the given id
func (m *MockObligationRepository) LastSettledBefore(id int64) (*domain.PaymentObligation, error) {
	var best *domain.PaymentObligation
	for _, o := range m.Obligations {
		if o.State != domain.ObligationStateSettled || o.ID >= id {
			continue
		}
		if best == nil || o.ID > best.ID {
			best = o
		}
	}
	if best == nil {
		return nil, domain.ErrObligationNotFound
	}
	return best, nil
}

// Settle marks an obligation settled and credits the user's balance
func (m *MockObligationRepository) Settle(params domain.SettleObligationParams) (*domain.PaymentObligation, error) {
	m.SettleCalls = append(m.SettleCalls, params)

	if m.SettleErr != nil {
		return nil, m.SettleErr
	}

	o, ok := m.Obligations[params.ObligationID]
	if !ok || o.State != domain.ObligationStateUnsettled {
		return nil, domain.ErrObligationSettled
	}

	before := decimal.Zero
	var user *domain.User
	if m.UserRepo != nil {
		if u, ok := m.UserRepo.Users[o.UserID]; ok {
			user = u
			before = u.Balance
		}
	}
	after := before.Add(params.Amount)

	now := time.Now()
	o.State = domain.ObligationStateSettled
	o.SettlementTransferID = &params.TransferID
	o.BalanceBefore = &before
	o.BalanceAfter = &after
	o.SettledAt = &now
	o.UpdatedAt = now

	if user != nil {
		user.Balance = after
	}
	return o, nil
}

func sortByID(obligations []*domain.PaymentObligation) {
	sort.Slice(obligations, func(i, j int) bool {
		return obligations[i].ID < obligations[j].ID
	})
}

// MockTransferFeed is a mock implementation of service.TransferFeed
type MockTransferFeed struct {
	// First is returned by FirstPage; ByToken maps continuation tokens to
	// subsequent pages.
	First   *feed.Page
	ByToken map[string]*feed.Page

	FirstErr error
	NextErr  error

	FirstCalls int
	NextCalls  int
}

// NewMockTransferFeed creates a new MockTransferFeed
func NewMockTransferFeed() *MockTransferFeed {
	return &MockTransferFeed{
		ByToken: make(map[string]*feed.Page),
	}
}

// FirstPage returns the configured first page
func (m *MockTransferFeed) FirstPage(ctx context.Context, since time.Time) (*feed.Page, error) {
	m.FirstCalls++
	if m.FirstErr != nil {
		return nil, m.FirstErr
	}
	if m.First == nil {
		return &feed.Page{}, nil
	}
	return m.First, nil
}

// NextPage returns the page behind a continuation token
func (m *MockTransferFeed) NextPage(ctx context.Context, next string) (*feed.Page, error) {
	m.NextCalls++
	if m.NextErr != nil {
		return nil, m.NextErr
	}
	page, ok := m.ByToken[next]
	if !ok {
		return nil, fmt.Errorf("%w: unknown continuation %q", domain.ErrFeedUnavailable, next)
	}
	return page, nil
}
