package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app inbox row for an administrative recipient.
// CreatedAt is defaulted by the database.
type Notification struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	JobID       uuid.UUID `json:"job_id"`
	Title       string    `json:"title"`
	Body        string     `json:"body"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}
