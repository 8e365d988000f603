package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleWriter = "writer"
)

const (
	UserActive   = "active"
	UserInactive = "inactive"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
)

// User models an authenticated actor: an admin or a writer.
type User struct {
	ID           string `json:"id" bson:"_id,omitempty"`
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"-" bson:"password_hash"`
	Role         string `json:"role" bson:"role"`
	Status       string `json:"status" bson:"status"`

	// Domains is the comma-separated list of subject areas the writer covers.
	// An empty list means the writer takes work from any domain.
	Domains     string  `json:"domains,omitempty" bson:"domains,omitempty"`
	RatePerWord float64 `json:"rate_per_word,omitempty" bson:"rate_per_word,omitempty"`

	// TelegramChatID is set once the writer links the bot via /start.
	TelegramChatID string `json:"-" bson:"telegram_chat_id,omitempty"`

	Online    bool       `json:"online" bson:"online"`
	LastSeen  *time.Time `json:"last_seen,omitempty" bson:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// DomainList splits the writer's declared domains, trimming whitespace.
func (u *User) DomainList() []string {
	if strings.TrimSpace(u.Domains) == "" {
		return nil
	}
	parts := strings.Split(u.Domains, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CoversDomain reports whether the writer may see assignments in the given
// subject domain. Assignments without a domain are visible to everyone, and
// writers without declared domains see everything.
func (u *User) CoversDomain(domain string) bool {
	if domain == "" {
		return true
	}
	list := u.DomainList()
	if len(list) == 0 {
		return true
	}
	for _, d := range list {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}
