// Package emaillogs records outbound notification emails and exposes them to
// staff for delivery troubleshooting.
package emaillogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flc-events/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending log row for an email about to be sent.
func (r *Repository) Create(ctx context.Context, advisorID, registrationID *uuid.UUID, emailType, recipient, subject string) (uuid.UUID, error) {
	const q = `INSERT INTO email_logs (advisor_id, registration_id, email_type, recipient_email, subject)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, advisorID, registrationID, emailType, recipient, subject).Scan(&id)
	return id, err
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = $2, sent_at = NOW(), error_message = NULL WHERE id = $1`,
		id, models.EmailLogStatusSent)
	return err
}

// MarkFailed records a delivery failure with its error text.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = $2, error_message = $3 WHERE id = $1`,
		id, models.EmailLogStatusFailed, errMsg)
	return err
}

const logColumns = `id, advisor_id, registration_id, email_type, recipient_email, subject, status, sent_at, error_message, created_at`

// List returns the most recent email logs, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]*models.EmailLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `SELECT ` + logColumns + ` FROM email_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		el, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	return list, rows.Err()
}

// ListByAdvisor returns email logs tied to one advisor, newest first.
func (r *Repository) ListByAdvisor(ctx context.Context, advisorID uuid.UUID) ([]*models.EmailLog, error) {
	const q = `SELECT ` + logColumns + ` FROM email_logs
		WHERE advisor_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, advisorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		el, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (*models.EmailLog, error) {
	var el models.EmailLog
	var subject, errMsg *string
	if err := row.Scan(&el.ID, &el.AdvisorID, &el.RegistrationID, &el.EmailType, &el.RecipientEmail,
		&subject, &el.Status, &el.SentAt, &errMsg, &el.CreatedAt); err != nil {
		return nil, err
	}
	if subject != nil {
		el.Subject = *subject
	}
	if errMsg != nil {
		el.ErrorMessage = *errMsg
	}
	return &el, nil
}
