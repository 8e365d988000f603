package ports

import (
	"context"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// MessageRepository persists assignment chat turns.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.Message, error)
}

// FileRepository persists attachment metadata; bytes live on disk.
type FileRepository interface {
	Create(ctx context.Context, f *domain.File) error
	FindByID(ctx context.Context, id string) (*domain.File, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.File, error)
}

// MessageService guards assignment chat access: only the assigned writer and
// admins may read or post.
type MessageService interface {
	Post(ctx context.Context, assignmentID string, sender *domain.User, body string) (*domain.Message, error)
	List(ctx context.Context, assignmentID string, actor *domain.User) ([]*domain.Message, error)
}

// FileService guards attachment access with the same ownership rules.
type FileService interface {
	Record(ctx context.Context, f *domain.File) (*domain.File, error)
	Get(ctx context.Context, id string, actor *domain.User) (*domain.File, error)
	ListByAssignment(ctx context.Context, assignmentID string, actor *domain.User) ([]*domain.File, error)
}
