package ports

import (
	"context"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// OrderRepository persists client-portal orders.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.ClientOrder) error
	FindByID(ctx context.Context, id string) (*domain.ClientOrder, error)
	FindByReference(ctx context.Context, reference string) (*domain.ClientOrder, error)
	List(ctx context.Context, page, limit int) ([]*domain.ClientOrder, int64, error)
	MarkPaid(ctx context.Context, id string, at time.Time) error
}

// CreateOrderInput is the client intake form.
type CreateOrderInput struct {
	ClientName  string
	ClientEmail string
	Quote       QuoteInput
	Deadline    time.Time
	Description string
}

// OrderService handles client order intake and reconciliation.
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*domain.ClientOrder, error)
	Get(ctx context.Context, reference string) (*domain.ClientOrder, error)
	List(ctx context.Context, page, limit int) ([]*domain.ClientOrder, int64, error)
	// MarkPaid is driven by the payment webhook cascade.
	MarkPaid(ctx context.Context, orderID string, at time.Time) error
}
