package models

import (
	"time"

	"github.com/google/uuid"
)

// FormSubmission captures the values a visitor posted to a form component.
// Values is keyed by the field names the form declared.
type FormSubmission struct {
	ID          uuid.UUID         `json:"id"`
	BlogID      uuid.UUID         `json:"blog_id"`
	PageID      uuid.UUID         `json:"page_id"`
	ComponentID uuid.UUID         `json:"component_id"`
	Values      map[string]string `json:"values"`
	RemoteAddr  string            `json:"-"`
	CreatedAt   time.Time         `json:"created_at"`
}
