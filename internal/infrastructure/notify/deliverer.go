package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/scribehub/writing-marketplace/internal/api/metrics"
	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// EmailSender delivers one plain-text email.
type EmailSender interface {
	Send(ctx context.Context, toName, toEmail, subject, body string) error
}

// TelegramSender delivers one Telegram message to a chat.
type TelegramSender interface {
	Send(ctx context.Context, chatID, text string) error
}

// PushSender delivers one Web Push payload to a browser subscription.
// It reports whether the subscription is gone and should be dropped.
type PushSender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, title, message, link string) (gone bool, err error)
}

// Deliverer fans one notification out to every channel the recipient has.
// The in-app row is the source of truth; the other transports are best
// effort and their failures are logged, never propagated.
type Deliverer struct {
	notifications ports.NotificationRepository
	subscriptions ports.SubscriptionRepository
	users         ports.UserRepository
	email         EmailSender
	telegram      TelegramSender
	push          PushSender
	adminChatID   string
	log           zerolog.Logger
}

// NewDeliverer wires the transports. adminChatID is the shared ops chat:
// admin recipients who never linked a personal chat still get their Telegram
// copy there. Empty disables the fallback.
func NewDeliverer(
	notifications ports.NotificationRepository,
	subscriptions ports.SubscriptionRepository,
	users ports.UserRepository,
	email EmailSender,
	telegram TelegramSender,
	push PushSender,
	adminChatID string,
	log zerolog.Logger,
) *Deliverer {
	return &Deliverer{
		notifications: notifications,
		subscriptions: subscriptions,
		users:         users,
		email:         email,
		telegram:      telegram,
		push:          push,
		adminChatID:   adminChatID,
		log:           log,
	}
}

// Deliver persists the in-app notification, then pushes it over every
// transport the recipient is reachable on. Only the in-app insert can fail
// the delivery.
func (d *Deliverer) Deliver(ctx context.Context, in ports.NotificationInput) error {
	n := &domain.Notification{
		UserID:    in.UserID,
		Title:     in.Title,
		Message:   in.Message,
		Type:      in.Type,
		Link:      in.Link,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.notifications.Create(ctx, n); err != nil {
		metrics.NotificationsSentTotal.WithLabelValues("inapp", "error").Inc()
		return err
	}
	metrics.NotificationsSentTotal.WithLabelValues("inapp", "ok").Inc()

	user, err := d.users.FindByID(ctx, in.UserID)
	if err != nil {
		d.log.Warn().Err(err).Str("user_id", in.UserID).Msg("recipient lookup failed, in-app only")
		return nil
	}

	d.sendPush(ctx, in)
	d.sendTelegram(ctx, user, in)
	d.sendEmail(ctx, user, in)
	return nil
}

func (d *Deliverer) sendPush(ctx context.Context, in ports.NotificationInput) {
	if d.push == nil {
		return
	}
	subs, err := d.subscriptions.ListByUser(ctx, in.UserID)
	if err != nil {
		d.log.Warn().Err(err).Str("user_id", in.UserID).Msg("push subscription lookup failed")
		return
	}
	for _, sub := range subs {
		gone, err := d.push.Send(ctx, sub, in.Title, in.Message, in.Link)
		if err != nil {
			metrics.NotificationsSentTotal.WithLabelValues("push", "error").Inc()
			d.log.Warn().Err(err).Str("user_id", in.UserID).Msg("push delivery failed")
			if gone {
				// Endpoint expired or unsubscribed; stop retrying it.
				if dErr := d.subscriptions.DeleteByEndpoint(ctx, sub.UserID, sub.Endpoint); dErr != nil {
					d.log.Warn().Err(dErr).Str("user_id", in.UserID).Msg("stale subscription cleanup failed")
				}
			}
			continue
		}
		metrics.NotificationsSentTotal.WithLabelValues("push", "ok").Inc()
	}
}

func (d *Deliverer) sendTelegram(ctx context.Context, user *domain.User, in ports.NotificationInput) {
	if d.telegram == nil {
		return
	}
	chatID := user.TelegramChatID
	if chatID == "" {
		// Admins without a linked chat fall back to the shared ops chat.
		if user.Role != domain.RoleAdmin || d.adminChatID == "" {
			return
		}
		chatID = d.adminChatID
	}
	text := in.Title + "\n" + in.Message
	if err := d.telegram.Send(ctx, chatID, text); err != nil {
		metrics.NotificationsSentTotal.WithLabelValues("telegram", "error").Inc()
		d.log.Warn().Err(err).Str("user_id", in.UserID).Msg("telegram delivery failed")
		return
	}
	metrics.NotificationsSentTotal.WithLabelValues("telegram", "ok").Inc()
}

func (d *Deliverer) sendEmail(ctx context.Context, user *domain.User, in ports.NotificationInput) {
	if d.email == nil || user.Email == "" {
		return
	}
	if err := d.email.Send(ctx, user.Name, user.Email, in.Title, in.Message); err != nil {
		metrics.NotificationsSentTotal.WithLabelValues("email", "error").Inc()
		d.log.Warn().Err(err).Str("user_id", in.UserID).Msg("email delivery failed")
		return
	}
	metrics.NotificationsSentTotal.WithLabelValues("email", "ok").Inc()
}
