package handler

import (
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// --- Request types ---

type createAssignmentRequest struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	Domain       string    `json:"domain"`
	WordCountMin int       `json:"word_count_min" validate:"gte=0"`
	WordCountMax int       `json:"word_count_max" validate:"gte=0"`
	Amount       float64   `json:"amount" validate:"gte=0"`
	Deadline     time.Time `json:"deadline" validate:"required"`
}

type pickRequest struct {
	WriterDeadline time.Time `json:"writer_deadline" validate:"required"`
}

// writerUpdateRequest binds as a loose map first so unknown keys can be
// rejected; writers may only touch status and submitted_amount.
type writerUpdateRequest struct {
	Status          *string  `json:"status"`
	SubmittedAmount *float64 `json:"submitted_amount"`
}

type adminUpdateRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Domain         *string    `json:"domain"`
	WordCountMin   *int       `json:"word_count_min"`
	WordCountMax   *int       `json:"word_count_max"`
	Amount         *float64   `json:"amount"`
	AmountApproved *bool      `json:"amount_approved"`
	Deadline       *time.Time `json:"deadline"`
	Status         *string    `json:"status"`
	PaymentStatus  *string    `json:"payment_status"`
}

type extensionRequestBody struct {
	RequestedDeadline time.Time `json:"requested_deadline" validate:"required"`
	Reason            string    `json:"reason"`
}

type extensionResponseBody struct {
	Status        string `json:"status" validate:"required,oneof=approved rejected"`
	AdminResponse string `json:"admin_response"`
}

type deadlineOverrideRequest struct {
	WriterDeadline time.Time `json:"writer_deadline" validate:"required"`
}

// --- Response types ---

type assignmentListResponse struct {
	Assignments []*domain.Assignment `json:"assignments"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
}

type sweepResponse struct {
	Released    int      `json:"released"`
	ReleasedIDs []string `json:"released_ids"`
}
