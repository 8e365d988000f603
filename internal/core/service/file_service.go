package service

import (
	"context"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// FileService guards attachment metadata with the chat ownership rules.
// Bytes live on local disk; only paths are persisted.
type FileService struct {
	repo        ports.FileRepository
	assignments ports.AssignmentRepository
}

func NewFileService(repo ports.FileRepository, assignments ports.AssignmentRepository) *FileService {
	return &FileService{repo: repo, assignments: assignments}
}

func (s *FileService) Record(ctx context.Context, f *domain.File) (*domain.File, error) {
	f.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FileService) Get(ctx context.Context, id string, actor *domain.User) (*domain.File, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, f.AssignmentID, f.UploaderID, actor); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FileService) ListByAssignment(ctx context.Context, assignmentID string, actor *domain.User) ([]*domain.File, error) {
	if err := s.authorize(ctx, assignmentID, "", actor); err != nil {
		return nil, err
	}
	return s.repo.ListByAssignment(ctx, assignmentID)
}

func (s *FileService) authorize(ctx context.Context, assignmentID, uploaderID string, actor *domain.User) error {
	if actor.Role == domain.RoleAdmin || (uploaderID != "" && uploaderID == actor.ID) {
		return nil
	}
	if assignmentID == "" {
		return domain.ErrForbidden
	}
	a, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if a.WriterID != actor.ID {
		return domain.ErrForbidden
	}
	return nil
}
