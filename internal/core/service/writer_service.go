package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// WriterService manages writer accounts. Accounts referenced by assignments
// are never hard-deleted, only deactivated.
type WriterService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewWriterService(repo ports.UserRepository, logger zerolog.Logger) *WriterService {
	return &WriterService{repo: repo, logger: logger}
}

func (s *WriterService) Create(ctx context.Context, name, email, password, domains string, ratePerWord float64) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("create writer: %w: name, email and password required", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleWriter,
		Status:       domain.UserActive,
		Domains:      domains,
		RatePerWord:  ratePerWord,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("writer_id", created.ID).Str("email", email).Msg("writer created")
	return created, nil
}

func (s *WriterService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *WriterService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx, domain.RoleWriter)
}

func (s *WriterService) Update(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// ChangePassword verifies the current password before re-hashing.
func (s *WriterService) ChangePassword(ctx context.Context, id, current, next string) error {
	if len(next) < 8 {
		return fmt.Errorf("change password: %w: new password too short", domain.ErrValidation)
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, id, string(hash))
}

// Ping refreshes presence; called by the client on an interval.
func (s *WriterService) Ping(ctx context.Context, id string) error {
	return s.repo.SetPresence(ctx, id, true, time.Now().UTC())
}

func (s *WriterService) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("writer_id", id).Msg("writer deactivated")
	return nil
}
