package domain

import (
	"errors"
	"time"
)

// AssignmentStatus represents the lifecycle state of an assignment.
type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
	StatusPaid       AssignmentStatus = "paid"
	StatusCancelled  AssignmentStatus = "cancelled"
	StatusRevision   AssignmentStatus = "revision"
)

// PaymentStatus tracks whether the writer has been paid for an assignment.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// WriterDeadlineBuffer is the minimum gap the writer-facing deadline must
// keep before the client-facing deadline.
const WriterDeadlineBuffer = 30 * time.Minute

// validTransitions defines the allowed state machine transitions.
// pending → in_progress happens on pick; in_progress → pending happens when
// the overdue sweep releases a forfeited assignment back to the job board.
var validTransitions = map[AssignmentStatus][]AssignmentStatus{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusPending, StatusCancelled},
	StatusCompleted:  {StatusPaid, StatusRevision, StatusCancelled},
	StatusRevision:   {StatusCompleted, StatusCancelled},
}

var (
	ErrValidation         = errors.New("validation failed")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrAlreadyPicked      = errors.New("assignment already picked")
	ErrWriterIneligible   = errors.New("writer is not eligible for this assignment")
	ErrDeadlineTooLate    = errors.New("writer deadline must be at least 30 minutes before the client deadline")
	ErrDeadlinePassed     = errors.New("deadline is in the past")
	ErrForbidden          = errors.New("access forbidden")
)

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Assignment is the core aggregate root.
type Assignment struct {
	ID              string  `json:"id" bson:"_id,omitempty"`
	Title           string  `json:"title" bson:"title"`
	Description     string  `json:"description" bson:"description"`
	Domain          string  `json:"domain" bson:"domain"`
	WordCountMin    int     `json:"word_count_min" bson:"word_count_min"`
	WordCountMax    int     `json:"word_count_max" bson:"word_count_max"`
	Amount          float64 `json:"amount" bson:"amount"`
	SubmittedAmount float64 `json:"submitted_amount,omitempty" bson:"submitted_amount,omitempty"`
	AmountApproved  bool    `json:"amount_approved" bson:"amount_approved"`
	RatePerWord     float64 `json:"rate_per_word" bson:"rate_per_word"`

	Deadline       time.Time  `json:"deadline" bson:"deadline"`
	WriterDeadline *time.Time `json:"writer_deadline,omitempty" bson:"writer_deadline,omitempty"`

	Status        AssignmentStatus `json:"status" bson:"status"`
	PaymentStatus PaymentStatus    `json:"payment_status" bson:"payment_status"`

	// WriterID is empty while the assignment sits on the job board.
	WriterID string `json:"writer_id,omitempty" bson:"writer_id"`
	// IneligibleWriters lists writers barred from re-picking after forfeiting.
	// Append-only across the assignment's lifetime.
	IneligibleWriters []string `json:"ineligible_writers,omitempty" bson:"ineligible_writers,omitempty"`

	ExtensionRequested bool   `json:"extension_requested" bson:"extension_requested"`
	ExtensionReason    string `json:"extension_reason,omitempty" bson:"extension_reason,omitempty"`

	PickedAt    *time.Time `json:"picked_at,omitempty" bson:"picked_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty" bson:"submitted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

// OnBoard reports whether the assignment is visible on the job board.
func (a *Assignment) OnBoard() bool {
	return a.WriterID == "" && a.Status == StatusPending
}

// IsIneligible reports whether writerID has forfeited this assignment before.
func (a *Assignment) IsIneligible(writerID string) bool {
	for _, id := range a.IneligibleWriters {
		if id == writerID {
			return true
		}
	}
	return false
}

// ValidWriterDeadline checks a candidate writer deadline against the buffer
// invariant and the clock.
func (a *Assignment) ValidWriterDeadline(candidate, now time.Time) error {
	if !candidate.After(now) {
		return ErrDeadlinePassed
	}
	if candidate.After(a.Deadline.Add(-WriterDeadlineBuffer)) {
		return ErrDeadlineTooLate
	}
	return nil
}
