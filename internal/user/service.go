package user

import (
	"collaborative-annotation-engine/internal/document"
	"collaborative-annotation-engine/internal/errors"
	"collaborative-annotation-engine/internal/middleware"
	"context"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service defines the interface for user business logic. It also backs the
// session middleware and the document service's owner lookups.
type Service interface {
	Register(ctx context.Context, user *User) error
	Login(ctx context.Context, email, password string) (*User, error)
	GetUserByID(ctx context.Context, id uint64) (*User, error)
	IncreaseTokenVersion(ctx context.Context, id uint64) error
	GetSessionUser(ctx context.Context, id uint64) (*middleware.SessionUser, error)
	GetOwner(ctx context.Context, id uint64) (*document.Owner, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
}

// NewService creates a new user service
func NewService(repository UserRepository) Service {
	return &DefaultService{repository: repository}
}

// Register registers a new user
func (s *DefaultService) Register(ctx context.Context, user *User) error {
	// Check if user with email already exists
	_, err := s.repository.FindByEmail(ctx, user.Email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return errors.StorageUnavailable(err)
	}
	if err == nil {
		return errors.UnprocessableEntity("User already registered", nil)
	}

	// Hash the password before saving
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.UnprocessableEntity("Can't hash password", err)
	}
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true

	return s.repository.Create(ctx, user)
}

// Login authenticates a user
func (s *DefaultService) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repository.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.Unauthorized("User not found", err)
	}

	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.UnprocessableEntity("Wrong password", err)
	}

	return user, nil
}

// GetUserByID gets a user by ID
func (s *DefaultService) GetUserByID(ctx context.Context, id uint64) (*User, error) {
	return s.repository.FindByID(ctx, id)
}

// IncreaseTokenVersion logs the user out everywhere
func (s *DefaultService) IncreaseTokenVersion(ctx context.Context, id uint64) error {
	return s.repository.IncreaseTokenVersion(ctx, id)
}

// GetSessionUser backs the auth middleware
func (s *DefaultService) GetSessionUser(ctx context.Context, id uint64) (*middleware.SessionUser, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.Unauthorized("User is not active", nil)
	}

	return &middleware.SessionUser{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		TokenVersion: user.TokenVersion,
	}, nil
}

// GetOwner backs the document service's owner lookups
func (s *DefaultService) GetOwner(ctx context.Context, id uint64) (*document.Owner, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &document.Owner{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}, nil
}
