package mailer

import (
	"fmt"
	"html"
)

// ValidationEmail builds the emailed access-link message.
func ValidationEmail(firstName, link string) (subject, bodyHTML string) {
	subject = "Confirm your email for FLC Registration"
	bodyHTML = fmt.Sprintf(
		`<p>Hello %s,</p>
<p>Please confirm your email to access FLC Registration:</p>
<p><a href="%s" style="display:inline-block;padding:10px 14px;background:#0d6efd;color:#fff;border-radius:6px;text-decoration:none;">Confirm Email</a></p>
<p>This link expires in 30 days.</p>`,
		html.EscapeString(firstName), link,
	)
	return subject, bodyHTML
}

// AccessRequestEmail builds the staff notification for a self-service
// access request.
func AccessRequestEmail(firstName, lastName, email, category, affiliation, message string) (subject, bodyHTML string) {
	subject = "FLC: New User Access Request"
	if message == "" {
		message = "-"
	}
	if affiliation == "" {
		affiliation = "-"
	}
	bodyHTML = fmt.Sprintf(
		`<h3>New Access Request</h3>
<p><strong>Name:</strong> %s %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Category:</strong> %s</p>
<p><strong>College/Company:</strong> %s</p>
<p><strong>Message:</strong><br>%s</p>`,
		html.EscapeString(firstName), html.EscapeString(lastName),
		html.EscapeString(email), html.EscapeString(category),
		html.EscapeString(affiliation), html.EscapeString(message),
	)
	return subject, bodyHTML
}

// RosterSummaryEmail builds the per-advisor staff update sent after each
// roster change. count/total are preformatted strings.
func RosterSummaryEmail(advisorName, advisorEmail, category, count, total string) (subject, bodyHTML string) {
	subject = fmt.Sprintf("FLC Registration Update: %s (%s)", advisorName, advisorEmail)
	bodyHTML = fmt.Sprintf(
		`<p>Participant list update for %s in category %s.</p>
<p>Total participants: %s. Total cost: $%s.</p>
<p>The current roster is attached as CSV.</p>`,
		html.EscapeString(advisorName), html.EscapeString(category),
		html.EscapeString(count), html.EscapeString(total),
	)
	return subject, bodyHTML
}

// CombinedReportEmail builds the staff message carrying the full
// registrations export.
func CombinedReportEmail(count, total string) (subject, bodyHTML string) {
	subject = "FLC: All Registrations CSV"
	bodyHTML = fmt.Sprintf(
		`<p>Attached is the combined registrations CSV.</p>
<p>Total participants: %s. Total cost: $%s.</p>`,
		html.EscapeString(count), html.EscapeString(total),
	)
	return subject, bodyHTML
}
