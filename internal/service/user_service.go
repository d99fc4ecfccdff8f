package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing.
const BcryptCost = 10

var ErrInvalidCredentials = errors.New("invalid username or password")

// UserService defines the interface for account and session logic. Sessions
// are opaque tokens stored on the user row: login replaces the active token,
// logout clears it, and the identity gate resolves requests by exact match.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (token string, user *domain.User, err error)
	Logout(ctx context.Context, userID uuid.UUID) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Register creates a new account with a hashed password. The plaintext is
// never stored.
func (s *userService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil && err != repository.ErrUserNotFound {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the password and mints a fresh opaque session token,
// replacing any previous one.
func (s *userService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.New().String()
	if err := s.users.UpdateToken(ctx, user.ID, token); err != nil {
		return "", nil, fmt.Errorf("store session token: %w", err)
	}

	user.Token = token
	return token, user, nil
}

// Logout clears the active token, invalidating the session immediately.
func (s *userService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.ClearToken(ctx, userID); err != nil {
		if err == repository.ErrUserNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}
