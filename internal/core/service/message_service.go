package service

import (
	"context"
	"fmt"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// MessageService guards assignment chat: only the assigned writer and admins
// may read or post. Messages are append-only.
type MessageService struct {
	repo        ports.MessageRepository
	assignments ports.AssignmentRepository
	notifier    ports.Notifier
}

func NewMessageService(repo ports.MessageRepository, assignments ports.AssignmentRepository, notifier ports.Notifier) *MessageService {
	return &MessageService{repo: repo, assignments: assignments, notifier: notifier}
}

func (s *MessageService) Post(ctx context.Context, assignmentID string, sender *domain.User, body string) (*domain.Message, error) {
	if body == "" {
		return nil, fmt.Errorf("post message: %w: body required", domain.ErrValidation)
	}
	a, err := s.authorize(ctx, assignmentID, sender)
	if err != nil {
		return nil, err
	}

	m := &domain.Message{
		AssignmentID: assignmentID,
		SenderID:     sender.ID,
		Body:         body,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	// Tell the other side of the conversation.
	if sender.Role == domain.RoleAdmin && a.WriterID != "" {
		s.notifier.Notify(ports.NotificationInput{
			UserID:  a.WriterID,
			Title:   "New message",
			Message: fmt.Sprintf("New message on %q.", a.Title),
			Type:    domain.NotifySystem,
			Link:    "/assignments/" + a.ID,
		})
	}
	return m, nil
}

func (s *MessageService) List(ctx context.Context, assignmentID string, actor *domain.User) ([]*domain.Message, error) {
	if _, err := s.authorize(ctx, assignmentID, actor); err != nil {
		return nil, err
	}
	return s.repo.ListByAssignment(ctx, assignmentID)
}

func (s *MessageService) authorize(ctx context.Context, assignmentID string, actor *domain.User) (*domain.Assignment, error) {
	a, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && a.WriterID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return a, nil
}
