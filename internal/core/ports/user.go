package ports

import (
	"context"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// UserRepository defines persistence operations for admins and writers.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, role string) ([]*domain.User, error)
	// ListActiveWriters returns active writers covering the given subject
	// domain (all active writers when domain is empty).
	ListActiveWriters(ctx context.Context, domain string) ([]*domain.User, error)
	ListAdmins(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, patch UserPatch) error
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetPresence(ctx context.Context, id string, online bool, seenAt time.Time) error
	SetTelegramChat(ctx context.Context, id, chatID string) error
	// Deactivate soft-disables an account; referenced writers are never
	// hard-deleted.
	Deactivate(ctx context.Context, id string) error
}

// UserPatch updates profile fields. Nil fields are left untouched.
type UserPatch struct {
	Name        *string
	Email       *string
	Domains     *string
	RatePerWord *float64
	Status      *string
}

// WriterService manages writer accounts and presence.
type WriterService interface {
	Create(ctx context.Context, name, email, password, domains string, ratePerWord float64) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	ChangePassword(ctx context.Context, id, current, next string) error
	Ping(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}
