package service

import (
	"context"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// NotificationService is the user-facing inbox. Read state is owner-gated at
// the repository filter, so a foreign id simply matches nothing.
type NotificationService struct {
	repo ports.NotificationRepository
	subs ports.SubscriptionRepository
}

func NewNotificationService(repo ports.NotificationRepository, subs ports.SubscriptionRepository) *NotificationService {
	return &NotificationService{repo: repo, subs: subs}
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Subscribe(ctx context.Context, sub *domain.PushSubscription) error {
	sub.CreatedAt = time.Now().UTC()
	return s.subs.Upsert(ctx, sub)
}

func (s *NotificationService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	return s.subs.DeleteByEndpoint(ctx, userID, endpoint)
}
