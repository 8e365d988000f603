package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// WebPushSender delivers browser notifications over the Web Push protocol
// using VAPID keys.
type WebPushSender struct {
	opts *webpush.Options
}

func NewWebPushSender(subscriber, vapidPublicKey, vapidPrivateKey string) *WebPushSender {
	return &WebPushSender{opts: &webpush.Options{
		Subscriber:      subscriber,
		VAPIDPublicKey:  vapidPublicKey,
		VAPIDPrivateKey: vapidPrivateKey,
		TTL:             3600,
	}}
}

type pushPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

// Send pushes one payload. gone is true when the endpoint answered 404 or
// 410, meaning the subscription should be removed.
func (s *WebPushSender) Send(ctx context.Context, sub *domain.PushSubscription, title, message, link string) (gone bool, err error) {
	payload, err := json.Marshal(pushPayload{Title: title, Message: message, Link: link})
	if err != nil {
		return false, err
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	res, err := webpush.SendNotificationWithContext(ctx, payload, target, s.opts)
	if err != nil {
		return false, fmt.Errorf("webpush send: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusGone {
		return true, fmt.Errorf("webpush endpoint gone: %d", res.StatusCode)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return false, fmt.Errorf("webpush status %d", res.StatusCode)
	}
	return false, nil
}
