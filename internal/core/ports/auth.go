package ports

import (
	"context"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// AuthService issues and honours bearer tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Authenticate resolves a token's subject against the current database
	// state, so role or status edits invalidate stale tokens immediately.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
