package ports

import (
	"context"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// CreateAssignmentInput carries all data needed to create a new assignment.
type CreateAssignmentInput struct {
	Title        string
	Description  string
	Domain       string
	WordCountMin int
	WordCountMax int
	Amount       float64
	Deadline     time.Time
}

// PickInput is a writer's claim on a job-board assignment.
type PickInput struct {
	AssignmentID   string
	WriterID       string
	WriterDeadline time.Time
}

// WriterPatch is the restricted update a writer may apply to an owned
// assignment: status and proposed amount only.
type WriterPatch struct {
	Status          *domain.AssignmentStatus
	SubmittedAmount *float64
}

// AdminPatch is the free-form update available to admins. Nil fields are
// left untouched.
type AdminPatch struct {
	Title          *string
	Description    *string
	Domain         *string
	WordCountMin   *int
	WordCountMax   *int
	Amount         *float64
	AmountApproved *bool
	Deadline       *time.Time
	Status         *domain.AssignmentStatus
	PaymentStatus  *domain.PaymentStatus
}

// ExtensionRequestInput is a writer's plea for a later writer deadline.
type ExtensionRequestInput struct {
	AssignmentID      string
	WriterID          string
	RequestedDeadline time.Time
	Reason            string
}

// ExtensionResponseInput resolves a pending extension request.
type ExtensionResponseInput struct {
	ExtensionID   string
	Approve       bool
	AdminResponse string
}

// ListAssignmentsFilter carries query parameters for assignment listings.
type ListAssignmentsFilter struct {
	WriterID string // non-empty = scoped to a writer's own assignments
	Status   string
	Domain   string
	Page     int
	Limit    int
}

// SweepResult summarises one overdue-sweep run.
type SweepResult struct {
	Released int
	// ReleasedIDs are the assignments returned to the job board.
	ReleasedIDs []string
}

// Claim is the compare-and-swap pick operation. The repository must only
// match when the assignment is still unassigned, pending, and the writer is
// not denylisted; a zero-document match yields domain.ErrAlreadyPicked.
type AssignmentRepository interface {
	Create(ctx context.Context, a *domain.Assignment) error
	FindByID(ctx context.Context, id string) (*domain.Assignment, error)
	ListBoard(ctx context.Context, writerID string, writerDomains []string) ([]*domain.Assignment, error)
	List(ctx context.Context, filter ListAssignmentsFilter) ([]*domain.Assignment, int64, error)
	Claim(ctx context.Context, id, writerID string, writerDeadline time.Time, rate, amount float64, pickedAt time.Time) (*domain.Assignment, error)
	// Release resets a forfeited assignment to the job board, appending the
	// displaced writer to the denylist. Matches only while writerID still
	// holds the assignment.
	Release(ctx context.Context, id, writerID string) error
	ListOverdue(ctx context.Context, now time.Time) ([]*domain.Assignment, error)
	UpdateByWriter(ctx context.Context, id string, patch WriterPatch, submittedAt *time.Time) error
	UpdateByAdmin(ctx context.Context, id string, patch AdminPatch) error
	// ApproveAmount promotes submitted_amount into amount and clears the proposal.
	ApproveAmount(ctx context.Context, id string, amount float64) error
	SetWriterDeadline(ctx context.Context, id string, deadline time.Time, clearExtension bool) error
	SetExtensionFlags(ctx context.Context, id string, requested bool, reason string) error
	Delete(ctx context.Context, id string) error
}

// AssignmentService defines the lifecycle use cases.
type AssignmentService interface {
	Create(ctx context.Context, input CreateAssignmentInput) (*domain.Assignment, error)
	Get(ctx context.Context, id string, actor *domain.User) (*domain.Assignment, error)
	ListBoard(ctx context.Context, writer *domain.User) ([]*domain.Assignment, error)
	List(ctx context.Context, filter ListAssignmentsFilter) ([]*domain.Assignment, int64, error)
	Pick(ctx context.Context, input PickInput) (*domain.Assignment, error)
	UpdateByWriter(ctx context.Context, id, writerID string, patch WriterPatch) (*domain.Assignment, error)
	UpdateByAdmin(ctx context.Context, id string, patch AdminPatch) (*domain.Assignment, error)
	Delete(ctx context.Context, id string) error
	RequestExtension(ctx context.Context, input ExtensionRequestInput) (*domain.ExtensionRequest, error)
	RespondExtension(ctx context.Context, input ExtensionResponseInput) (*domain.ExtensionRequest, error)
	ListPendingExtensions(ctx context.Context) ([]*domain.ExtensionRequest, error)
	OverrideWriterDeadline(ctx context.Context, id string, deadline time.Time) error
	SweepOverdue(ctx context.Context) (*SweepResult, error)
}
