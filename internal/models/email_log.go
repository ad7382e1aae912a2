package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType for automation.
const (
	EmailTypeValidationLink = "validation_link"
	EmailTypeAccessRequest  = "access_request"
	EmailTypeRosterSummary  = "roster_summary"
	EmailTypeCombinedReport = "combined_report"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records outbound notification emails. Delivery is best effort;
// a failed row is retried by the worker and never blocks the flow that
// triggered it.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	AdvisorID      *uuid.UUID `json:"advisor_id,omitempty"`
	RegistrationID *uuid.UUID `json:"registration_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
