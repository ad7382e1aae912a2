package reports

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flc-events/backend/internal/mailer"
	"github.com/flc-events/backend/internal/models"
	"github.com/flc-events/backend/pkg/queue"
	"github.com/flc-events/backend/pkg/response"
)

// Snapshotter produces ledger snapshots. Implemented by Compiler; tests
// substitute a fake.
type Snapshotter interface {
	Compile(ctx context.Context) (*Report, error)
}

// EmailEnqueuer queues outbound email jobs. Implemented by queue.Queue.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Handler handles the staff report endpoints.
type Handler struct {
	compiler   Snapshotter
	emails     EmailEnqueuer
	staffEmail string
	logger     *zap.Logger
}

// NewHandler creates a reports handler.
func NewHandler(compiler Snapshotter, emails EmailEnqueuer, staffEmail string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{compiler: compiler, emails: emails, staffEmail: staffEmail, logger: logger}
}

const exportFilename = "flc_all_registrations.csv"

// DownloadCSV handles GET /staff/reports/registrations.csv.
func (h *Handler) DownloadCSV(c *gin.Context) {
	report, err := h.compiler.Compile(c.Request.Context())
	if err != nil {
		h.logger.Error("compile report", zap.Error(err))
		response.Internal(c, "failed to compile report")
		return
	}
	body, err := EncodeCSV(report)
	if err != nil {
		h.logger.Error("encode report csv", zap.Error(err))
		response.Internal(c, "failed to encode report")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

// EmailCSV handles POST /staff/reports/email: queues the combined export to
// the staff summary address.
func (h *Handler) EmailCSV(c *gin.Context) {
	report, err := h.compiler.Compile(c.Request.Context())
	if err != nil {
		h.logger.Error("compile report", zap.Error(err))
		response.Internal(c, "failed to compile report")
		return
	}
	body, err := EncodeCSV(report)
	if err != nil {
		h.logger.Error("encode report csv", zap.Error(err))
		response.Internal(c, "failed to encode report")
		return
	}
	subject, html := mailer.CombinedReportEmail(
		strconv.Itoa(report.Count), report.GrandTotal.StringFixed(2))
	if err := h.emails.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      models.EmailTypeCombinedReport,
		RecipientEmail: h.staffEmail,
		Subject:        subject,
		BodyHTML:       html,
		AttachmentName: exportFilename,
		AttachmentCSV:  body,
	}); err != nil {
		h.logger.Error("enqueue report email", zap.Error(err))
		response.Internal(c, "failed to queue report email")
		return
	}
	response.Accepted(c, gin.H{"message": "combined CSV queued for " + h.staffEmail})
}
