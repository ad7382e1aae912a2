// Package reports produces tabular snapshots of the registration ledger for
// CSV download and staff email.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flc-events/backend/internal/models"
)

// Row is one exported participant with its advisor context.
type Row struct {
	AdvisorEmail      string
	AdvisorFirstName  string
	AdvisorLastName   string
	Category          string
	FirstName         string
	LastName          string
	Organization      string
	Affiliation       string
	Tour              string
	ApparelSize       string
	DietaryNote       string
	AccessibilityNote string
}

// Report is a consistent snapshot of every registration with computed totals.
type Report struct {
	Rows         []Row
	Count        int
	FeePerPerson decimal.Decimal
	GrandTotal   decimal.Decimal
}

// Compiler aggregates the ledger into reports.
type Compiler struct {
	pool *pgxpool.Pool
	fee  decimal.Decimal
}

// NewCompiler creates a report compiler.
func NewCompiler(pool *pgxpool.Pool, feePerPerson decimal.Decimal) *Compiler {
	return &Compiler{pool: pool, fee: feePerPerson}
}

// Compile returns the full export. A single query produces the snapshot, so
// the row set and the totals derived from it cannot be torn by concurrent
// writes.
func (c *Compiler) Compile(ctx context.Context) (*Report, error) {
	const q = `SELECT a.email, a.first_name, a.last_name, a.category,
			r.first_name, r.last_name, r.organization, r.affiliation,
			r.tour, r.apparel_size, r.dietary_note, r.accessibility_note
		FROM registrations r
		JOIN advisors a ON a.id = r.advisor_id
		ORDER BY a.last_name, a.first_name, r.last_name, r.first_name`
	rows, err := c.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := &Report{FeePerPerson: c.fee}
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.AdvisorEmail, &row.AdvisorFirstName, &row.AdvisorLastName, &row.Category,
			&row.FirstName, &row.LastName, &row.Organization, &row.Affiliation,
			&row.Tour, &row.ApparelSize, &row.DietaryNote, &row.AccessibilityNote); err != nil {
			return nil, err
		}
		report.Rows = append(report.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	report.Count = len(report.Rows)
	report.GrandTotal = models.TotalCost(report.Count, c.fee)
	return report, nil
}

var exportHeader = []string{
	"Advisor Email", "Advisor First", "Advisor Last", "Category",
	"Participant First", "Participant Last", "Student Org", "College/Company",
	"Tour", "Tee", "Dietary", "ADA", "FeeUSD",
}

// EncodeCSV renders the full export with fee and grand-total rows.
func EncodeCSV(report *Report) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return "", err
	}
	fee := report.FeePerPerson.StringFixed(2)
	for _, row := range report.Rows {
		if err := w.Write([]string{
			row.AdvisorEmail, row.AdvisorFirstName, row.AdvisorLastName, row.Category,
			row.FirstName, row.LastName, row.Organization, row.Affiliation,
			row.Tour, row.ApparelSize, row.DietaryNote, row.AccessibilityNote, fee,
		}); err != nil {
			return "", err
		}
	}
	if err := writeTotals(w, report.Count, report.GrandTotal); err != nil {
		return "", err
	}
	w.Flush()
	return buf.String(), w.Error()
}

var rosterHeader = []string{
	"First Name", "Last Name", "Student Org", "College/Company",
	"Tour", "Tee", "Dietary", "ADA", "FeeUSD",
}

// RosterCSV renders one advisor's roster with totals, for the staff summary
// email sent after roster changes.
func RosterCSV(participants []models.Participant, feePerPerson decimal.Decimal) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rosterHeader); err != nil {
		return "", err
	}
	fee := feePerPerson.StringFixed(2)
	for _, p := range participants {
		if err := w.Write([]string{
			p.FirstName, p.LastName, p.Organization, p.Affiliation,
			p.Tour, p.ApparelSize, p.DietaryNote, p.AccessibilityNote, fee,
		}); err != nil {
			return "", err
		}
	}
	total := models.TotalCost(len(participants), feePerPerson)
	if err := writeTotals(w, len(participants), total); err != nil {
		return "", err
	}
	w.Flush()
	return buf.String(), w.Error()
}

func writeTotals(w *csv.Writer, count int, total decimal.Decimal) error {
	if err := w.Write([]string{}); err != nil {
		return err
	}
	if err := w.Write([]string{"Total participants", strconv.Itoa(count)}); err != nil {
		return err
	}
	return w.Write([]string{"Total cost (USD)", total.StringFixed(2)})
}
