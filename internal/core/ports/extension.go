package ports

import (
	"context"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// ExtensionRepository persists deadline extension requests.
type ExtensionRepository interface {
	Create(ctx context.Context, r *domain.ExtensionRequest) error
	FindByID(ctx context.Context, id string) (*domain.ExtensionRequest, error)
	ListPending(ctx context.Context) ([]*domain.ExtensionRequest, error)
	// Resolve matches only while the request is still pending, so concurrent
	// admin responses cannot double-apply.
	Resolve(ctx context.Context, id string, status domain.ExtensionStatus, adminResponse string, at time.Time) error
}
