package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is one conference attendee entered by an advisor. First and
// last name are required; everything else may be blank. Two participants on
// the same roster may share a name.
type Participant struct {
	ID                uuid.UUID `json:"id"`
	AdvisorID         uuid.UUID `json:"advisor_id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Organization      string    `json:"organization,omitempty"`
	Affiliation       string    `json:"affiliation,omitempty"`
	Tour              string    `json:"tour,omitempty"`
	ApparelSize       string    `json:"apparel_size,omitempty"`
	DietaryNote       string    `json:"dietary_note,omitempty"`
	AccessibilityNote string    `json:"accessibility_note,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
