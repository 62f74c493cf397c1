package service

import (
	"github.com/google/uuid"
	"github.com/paywatch/paywatch-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// UserService handles user registration and lookups
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser registers a new user with a zero balance
func (s *UserService) CreateUser(email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	return s.userRepo.Create(&domain.User{
		Email:   email,
		Balance: decimal.Zero,
	})
}

// GetUser retrieves a user by id
func (s *UserService) GetUser(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}
