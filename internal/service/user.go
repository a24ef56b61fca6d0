package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contaflow/contaflow/internal/domain"
	"github.com/contaflow/contaflow/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserService struct {
	users userRepo
}

func NewUserService(users userRepo) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("Register: hash: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	logging.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Update replaces the user's attributes, keyed by the path id. The
// password is rehashed on every update, matching the register flow.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, email, name, password string) (*domain.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Update: %w", domain.ErrUserNotFound)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("Update: hash: %w", err)
	}

	user := &domain.User{
		ID:           existing.ID,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Status:       existing.Status,
		CreatedAt:    existing.CreatedAt,
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Update: %w", domain.ErrUserNotFound)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if !exists {
		return fmt.Errorf("Delete: %w", domain.ErrUserNotFound)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	logging.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Get: %w", domain.ErrUserNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	users, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return users, total, nil
}
