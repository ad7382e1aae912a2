package models

import (
	"time"

	"github.com/google/uuid"
)

// Categories is the fixed advisor-category vocabulary. The selector on the
// access page is populated from this list and creates are validated against it.
var Categories = []string{
	"DECA",
	"FBLA",
	"SkillsUSA",
	"HOSA",
	"Staff",
	"Vendor",
	"Student",
	"Guest",
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Advisor is an approved user allowed to register participants. Email is
// unique case-insensitively; validation is one-way (pending -> validated).
type Advisor struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Category    string     `json:"category"`
	Affiliation string     `json:"affiliation,omitempty"`
	IsValidated bool       `json:"is_validated"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DisplayName returns "First Last" for selector listings.
func (a *Advisor) DisplayName() string {
	return a.FirstName + " " + a.LastName
}

// AdvisorSummary is the shape returned by category lookups: just enough for
// the access-page selector.
type AdvisorSummary struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
}
