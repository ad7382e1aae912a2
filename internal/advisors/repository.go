// Package advisors manages approved users: the people allowed to register
// participants. Staff create and validate them; the public access flow looks
// them up by category and email.
package advisors

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flc-events/backend/internal/models"
)

// ErrNotFound means no advisor matches the lookup.
var ErrNotFound = errors.New("advisor not found")

const advisorColumns = `id, first_name, last_name, email, category, affiliation, is_validated, validated_at, created_at, updated_at`

// ProfileParams are the mutable profile fields of an advisor.
type ProfileParams struct {
	FirstName   string
	LastName    string
	Category    string
	Affiliation string
}

// Repository handles advisor persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an advisors repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns an advisor by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Advisor, error) {
	const q = `SELECT ` + advisorColumns + ` FROM advisors WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

// GetByEmail returns an advisor by email, matched case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Advisor, error) {
	const q = `SELECT ` + advisorColumns + ` FROM advisors WHERE LOWER(email) = LOWER($1)`
	return r.scanOne(r.pool.QueryRow(ctx, q, email))
}

// FindOrCreate returns the advisor with the given email, creating it with the
// supplied profile when absent. An existing row is returned untouched: the
// caller must use Update to change a profile deliberately. The created flag
// reports which path was taken.
func (r *Repository) FindOrCreate(ctx context.Context, email string, profile ProfileParams) (*models.Advisor, bool, error) {
	const q = `INSERT INTO advisors (first_name, last_name, email, category, affiliation)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ((LOWER(email))) DO NOTHING
		RETURNING ` + advisorColumns
	advisor, err := r.scanOne(r.pool.QueryRow(ctx, q,
		profile.FirstName, profile.LastName, email, profile.Category, profile.Affiliation))
	if err == nil {
		return advisor, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	existing, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Update overwrites the advisor's profile fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, profile ProfileParams) (*models.Advisor, error) {
	const q = `UPDATE advisors
		SET first_name = $2, last_name = $3, category = $4, affiliation = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + advisorColumns
	return r.scanOne(r.pool.QueryRow(ctx, q, id, profile.FirstName, profile.LastName, profile.Category, profile.Affiliation))
}

// Validate marks the advisor validated. The transition is one-way: a second
// call matches no row and leaves validated_at exactly as the first call set it.
func (r *Repository) Validate(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE advisors
		SET is_validated = TRUE, validated_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_validated = FALSE`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("validate advisor: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// Either already validated (fine) or missing (not).
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return nil
}

// Delete removes the advisor; participant rows cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM advisors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete advisor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all advisors ordered last name, first name.
func (r *Repository) List(ctx context.Context) ([]models.Advisor, error) {
	const q = `SELECT ` + advisorColumns + ` FROM advisors ORDER BY last_name, first_name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Advisor
	for rows.Next() {
		a, err := scanAdvisor(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// FindByCategory returns selector summaries for one category, ordered
// first name, last name (the order the access-page dropdown shows).
func (r *Repository) FindByCategory(ctx context.Context, category string) ([]models.AdvisorSummary, error) {
	const q = `SELECT id, first_name, last_name, email FROM advisors
		WHERE category = $1
		ORDER BY first_name, last_name`
	rows, err := r.pool.Query(ctx, q, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AdvisorSummary
	for rows.Next() {
		var s models.AdvisorSummary
		var first, last string
		if err := rows.Scan(&s.ID, &first, &last, &s.Email); err != nil {
			return nil, err
		}
		s.DisplayName = first + " " + last
		list = append(list, s)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOne(row rowScanner) (*models.Advisor, error) {
	a, err := scanAdvisor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func scanAdvisor(row rowScanner) (*models.Advisor, error) {
	var a models.Advisor
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Category, &a.Affiliation,
		&a.IsValidated, &a.ValidatedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
