package domain

import (
	"errors"
	"time"
)

// ExtensionStatus is the resolution state of a deadline extension request.
type ExtensionStatus string

const (
	ExtensionPending  ExtensionStatus = "pending"
	ExtensionApproved ExtensionStatus = "approved"
	ExtensionRejected ExtensionStatus = "rejected"
)

var (
	ErrExtensionNotFound = errors.New("extension request not found")
	ErrExtensionResolved = errors.New("extension request already resolved")
)

// ExtensionRequest is a writer's plea for more time on an assignment.
// Approval copies RequestedDeadline into the assignment's writer deadline.
type ExtensionRequest struct {
	ID                string          `json:"id" bson:"_id,omitempty"`
	AssignmentID      string          `json:"assignment_id" bson:"assignment_id"`
	WriterID          string          `json:"writer_id" bson:"writer_id"`
	RequestedDeadline time.Time       `json:"requested_deadline" bson:"requested_deadline"`
	Reason            string          `json:"reason" bson:"reason"`
	Status            ExtensionStatus `json:"status" bson:"status"`
	AdminResponse     string          `json:"admin_response,omitempty" bson:"admin_response,omitempty"`
	CreatedAt         time.Time       `json:"created_at" bson:"created_at"`
	ResolvedAt        *time.Time      `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}
