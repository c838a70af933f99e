package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wanderlust/internal/domains/user"
	"wanderlust/internal/shared"
)

const bcryptCost = 12

type userService struct {
	repo user.Repository
	cost int
}

func NewUserService(repo user.Repository) user.Service {
	return &userService{repo: repo, cost: bcryptCost}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.User, error) {
	// STEP 1: VALIDATE
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// STEP 2: HASH PASSWORD (the raw password is never stored)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// STEP 3: PERSIST
	u := &user.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}
	return u, nil
}

// ========================================
// LOOKUP
// ========================================

func (s *userService) FindActor(ctx context.Context, id uuid.UUID) (*shared.Actor, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Actor(), nil
}
