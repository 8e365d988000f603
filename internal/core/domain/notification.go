package domain

import (
	"errors"
	"time"
)

// NotificationType categorises in-app notifications for client-side display.
type NotificationType string

const (
	NotifyAssignment NotificationType = "assignment"
	NotifyExtension  NotificationType = "extension"
	NotifyPayment    NotificationType = "payment"
	NotifySystem     NotificationType = "system"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is an in-app message. Read state is mutable by the owner only;
// everything else is append-only.
type Notification struct {
	ID        string           `json:"id" bson:"_id,omitempty"`
	UserID    string           `json:"user_id" bson:"user_id"`
	Title     string           `json:"title" bson:"title"`
	Message   string           `json:"message" bson:"message"`
	Type      NotificationType `json:"type" bson:"type"`
	Link      string           `json:"link,omitempty" bson:"link,omitempty"`
	Read      bool             `json:"read" bson:"read"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// PushSubscription is a Web Push endpoint registered by a user's browser.
type PushSubscription struct {
	ID       string `json:"id" bson:"_id,omitempty"`
	UserID   string `json:"user_id" bson:"user_id"`
	Endpoint string `json:"endpoint" bson:"endpoint"`
	P256dh   string `json:"p256dh" bson:"p256dh"`
	Auth     string `json:"auth" bson:"auth"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
