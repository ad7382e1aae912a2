// Package registrations is the ledger of participant rows under each
// advisor: create/edit/delete with ownership enforced in the queries
// themselves, stable roster ordering, and exact fee totals.
package registrations

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flc-events/backend/internal/models"
)

var (
	// ErrNotFound covers both a genuinely missing row and a row belonging
	// to a different advisor; callers cannot tell the two apart.
	ErrNotFound = errors.New("registration not found")
	// ErrValidation means a required field was blank.
	ErrValidation = errors.New("first and last name are required")
)

// ParticipantParams are the writable fields of a participant row.
type ParticipantParams struct {
	FirstName         string
	LastName          string
	Organization      string
	Affiliation       string
	Tour              string
	ApparelSize       string
	DietaryNote       string
	AccessibilityNote string
}

func (p *ParticipantParams) validate() error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.FirstName == "" || p.LastName == "" {
		return ErrValidation
	}
	return nil
}

const participantColumns = `id, advisor_id, first_name, last_name, organization, affiliation, tour, apparel_size, dietary_note, accessibility_note, created_at`

// Repository handles participant persistence. Every mutating query carries
// the advisor ID in its WHERE clause, so ownership cannot be bypassed by
// guessing row IDs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Add appends a participant to the advisor's roster. Duplicate names within
// one roster are allowed.
func (r *Repository) Add(ctx context.Context, advisorID uuid.UUID, params ParticipantParams) (*models.Participant, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	const q = `INSERT INTO registrations
		(advisor_id, first_name, last_name, organization, affiliation, tour, apparel_size, dietary_note, accessibility_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + participantColumns
	return scanParticipant(r.pool.QueryRow(ctx, q, advisorID,
		params.FirstName, params.LastName, params.Organization, params.Affiliation,
		params.Tour, params.ApparelSize, params.DietaryNote, params.AccessibilityNote))
}

// Edit updates a participant owned by advisorID. A row owned by someone else
// matches nothing and reports ErrNotFound.
func (r *Repository) Edit(ctx context.Context, advisorID, registrationID uuid.UUID, params ParticipantParams) (*models.Participant, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	const q = `UPDATE registrations
		SET first_name = $3, last_name = $4, organization = $5, affiliation = $6,
		    tour = $7, apparel_size = $8, dietary_note = $9, accessibility_note = $10
		WHERE id = $1 AND advisor_id = $2
		RETURNING ` + participantColumns
	p, err := scanParticipant(r.pool.QueryRow(ctx, q, registrationID, advisorID,
		params.FirstName, params.LastName, params.Organization, params.Affiliation,
		params.Tour, params.ApparelSize, params.DietaryNote, params.AccessibilityNote))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Delete removes a participant owned by advisorID. Deleting a missing or
// foreign row reports ErrNotFound and changes nothing.
func (r *Repository) Delete(ctx context.Context, advisorID, registrationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM registrations WHERE id = $1 AND advisor_id = $2`, registrationID, advisorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the advisor's roster ordered last name, first name.
func (r *Repository) List(ctx context.Context, advisorID uuid.UUID) ([]models.Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM registrations
		WHERE advisor_id = $1
		ORDER BY last_name, first_name`
	rows, err := r.pool.Query(ctx, q, advisorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// Count returns the advisor's participant count in a single query, so a
// total derived from it reflects one snapshot.
func (r *Repository) Count(ctx context.Context, advisorID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE advisor_id = $1`, advisorID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	if err := row.Scan(&p.ID, &p.AdvisorID, &p.FirstName, &p.LastName, &p.Organization,
		&p.Affiliation, &p.Tour, &p.ApparelSize, &p.DietaryNote, &p.AccessibilityNote, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
