package domain

import (
	"errors"
	"time"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrFileNotFound    = errors.New("file not found")
)

// Message is a single chat turn scoped to an assignment. Append-only.
type Message struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	AssignmentID string    `json:"assignment_id" bson:"assignment_id"`
	SenderID     string    `json:"sender_id" bson:"sender_id"`
	Body         string    `json:"body" bson:"body"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// File records an uploaded attachment. The bytes live on local disk at Path;
// only metadata is persisted. Append-only once created.
type File struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	AssignmentID string    `json:"assignment_id,omitempty" bson:"assignment_id,omitempty"`
	UploaderID   string    `json:"uploader_id" bson:"uploader_id"`
	Name         string    `json:"name" bson:"name"`
	Path         string    `json:"-" bson:"path"`
	Size         int64     `json:"size" bson:"size"`
	ContentType  string    `json:"content_type,omitempty" bson:"content_type,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
