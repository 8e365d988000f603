package ports

import (
	"context"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// NotificationInput is one notification addressed to one recipient. Services
// fan out to multiple recipients by emitting one input per user, which keeps
// per-user delivery ordering intact in the dispatcher.
type NotificationInput struct {
	UserID  string
	Title   string
	Message string
	Type    domain.NotificationType
	Link    string
}

// Notifier is the fire-and-forget dispatch interface lifecycle services call
// after a successful state transition. Implementations must never block the
// caller or surface delivery failures.
type Notifier interface {
	Notify(inputs ...NotificationInput)
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead flips read state; matches only when userID owns the row.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// SubscriptionRepository stores Web Push subscriptions.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, s *domain.PushSubscription) error
	ListByUser(ctx context.Context, userID string) ([]*domain.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) error
}

// NotificationService is the user-facing notification inbox.
type NotificationService interface {
	List(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, sub *domain.PushSubscription) error
	Unsubscribe(ctx context.Context, userID, endpoint string) error
}
