package registrations

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/flc-events/backend/internal/mailer"
	"github.com/flc-events/backend/internal/middleware"
	"github.com/flc-events/backend/internal/models"
	"github.com/flc-events/backend/internal/reports"
	"github.com/flc-events/backend/pkg/queue"
	"github.com/flc-events/backend/pkg/response"
)

// Store is the ledger surface the handler needs. Implemented by Repository;
// tests substitute an in-memory fake with the same ownership contract.
type Store interface {
	Add(ctx context.Context, advisorID uuid.UUID, params ParticipantParams) (*models.Participant, error)
	Edit(ctx context.Context, advisorID, registrationID uuid.UUID, params ParticipantParams) (*models.Participant, error)
	Delete(ctx context.Context, advisorID, registrationID uuid.UUID) error
	List(ctx context.Context, advisorID uuid.UUID) ([]models.Participant, error)
	Count(ctx context.Context, advisorID uuid.UUID) (int, error)
}

// AdvisorGetter resolves advisor IDs. Implemented by advisors.Repository.
type AdvisorGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Advisor, error)
}

// EmailEnqueuer queues outbound email jobs. Implemented by queue.Queue.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Handler handles the grant-gated participant endpoints. All routes sit
// behind middleware.RequireGrant; on top of that the handler requires the
// grant's email to match the target advisor, and answers "not found" when it
// does not, so foreign rosters are indistinguishable from missing ones.
type Handler struct {
	store      Store
	advisors   AdvisorGetter
	emails     EmailEnqueuer
	fee        decimal.Decimal
	staffEmail string
	logger     *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(store Store, advisors AdvisorGetter, emails EmailEnqueuer, feePerPerson decimal.Decimal, staffEmail string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:      store,
		advisors:   advisors,
		emails:     emails,
		fee:        feePerPerson,
		staffEmail: staffEmail,
		logger:     logger,
	}
}

// ParticipantBody is the body for add/edit of a participant.
type ParticipantBody struct {
	FirstName         string `json:"first_name" binding:"required"`
	LastName          string `json:"last_name" binding:"required"`
	Organization      string `json:"organization"`
	Affiliation       string `json:"affiliation"`
	Tour              string `json:"tour"`
	ApparelSize       string `json:"apparel_size"`
	DietaryNote       string `json:"dietary_note"`
	AccessibilityNote string `json:"accessibility_note"`
}

func (b ParticipantBody) params() ParticipantParams {
	return ParticipantParams{
		FirstName:         b.FirstName,
		LastName:          b.LastName,
		Organization:      b.Organization,
		Affiliation:       b.Affiliation,
		Tour:              b.Tour,
		ApparelSize:       b.ApparelSize,
		DietaryNote:       b.DietaryNote,
		AccessibilityNote: b.AccessibilityNote,
	}
}

// List handles GET /advisors/:id/participants: the roster plus totals.
func (h *Handler) List(c *gin.Context) {
	advisor, ok := h.requireOwner(c)
	if !ok {
		return
	}
	list, err := h.store.List(c.Request.Context(), advisor.ID)
	if err != nil {
		h.logger.Error("list participants", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		response.Internal(c, "failed to load roster")
		return
	}
	if list == nil {
		list = []models.Participant{}
	}
	count := len(list)
	response.OK(c, gin.H{
		"participants":      list,
		"participant_count": count,
		"fee_per_person":    h.fee.StringFixed(2),
		"total_cost":        models.TotalCost(count, h.fee).StringFixed(2),
	})
}

// Add handles POST /advisors/:id/participants.
func (h *Handler) Add(c *gin.Context) {
	advisor, ok := h.requireOwner(c)
	if !ok {
		return
	}
	var req ParticipantBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	participant, err := h.store.Add(c.Request.Context(), advisor.ID, req.params())
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("add participant", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		response.Internal(c, "failed to save participant")
		return
	}

	h.queueRosterSummary(c.Request.Context(), advisor, participant.ID)
	response.Created(c, participant)
}

// Edit handles PATCH /advisors/:id/participants/:regId.
func (h *Handler) Edit(c *gin.Context) {
	advisor, ok := h.requireOwner(c)
	if !ok {
		return
	}
	regID, err := uuid.Parse(c.Param("regId"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	var req ParticipantBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	participant, err := h.store.Edit(c.Request.Context(), advisor.ID, regID, req.params())
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "participant not found")
		default:
			h.logger.Error("edit participant", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
			response.Internal(c, "failed to update participant")
		}
		return
	}
	response.OK(c, participant)
}

// Delete handles DELETE /advisors/:id/participants/:regId.
func (h *Handler) Delete(c *gin.Context) {
	advisor, ok := h.requireOwner(c)
	if !ok {
		return
	}
	regID, err := uuid.Parse(c.Param("regId"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	if err := h.store.Delete(c.Request.Context(), advisor.ID, regID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "participant not found")
			return
		}
		h.logger.Error("delete participant", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		response.Internal(c, "failed to delete participant")
		return
	}
	response.OK(c, gin.H{"message": "participant deleted"})
}

// Totals handles GET /advisors/:id/totals. Count and cost come from one
// query, so the pair is always internally consistent.
func (h *Handler) Totals(c *gin.Context) {
	advisor, ok := h.requireOwner(c)
	if !ok {
		return
	}
	count, err := h.store.Count(c.Request.Context(), advisor.ID)
	if err != nil {
		h.logger.Error("count participants", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		response.Internal(c, "failed to compute totals")
		return
	}
	response.OK(c, gin.H{
		"participant_count": count,
		"fee_per_person":    h.fee.StringFixed(2),
		"total_cost":        models.TotalCost(count, h.fee).StringFixed(2),
	})
}

// requireOwner resolves :id and checks it against the grant's email. Any
// mismatch or unknown advisor answers 404 without revealing which it was.
func (h *Handler) requireOwner(c *gin.Context) (*models.Advisor, bool) {
	advisorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid advisor id")
		return nil, false
	}
	advisor, err := h.advisors.GetByID(c.Request.Context(), advisorID)
	if err != nil {
		response.NotFound(c, "advisor not found")
		return nil, false
	}
	if !strings.EqualFold(middleware.VerifiedEmail(c), advisor.Email) {
		response.NotFound(c, "advisor not found")
		return nil, false
	}
	return advisor, true
}

// queueRosterSummary emails staff the advisor's current roster as CSV. Best
// effort: a failure is logged and never rolls back the write that caused it.
func (h *Handler) queueRosterSummary(ctx context.Context, advisor *models.Advisor, registrationID uuid.UUID) {
	list, err := h.store.List(ctx, advisor.ID)
	if err != nil {
		h.logger.Error("roster summary list", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		return
	}
	body, err := reports.RosterCSV(list, h.fee)
	if err != nil {
		h.logger.Error("roster summary csv", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		return
	}
	count := len(list)
	subject, html := mailer.RosterSummaryEmail(
		advisor.DisplayName(), advisor.Email, advisor.Category,
		strconv.Itoa(count), models.TotalCost(count, h.fee).StringFixed(2))
	if err := h.emails.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType:      models.EmailTypeRosterSummary,
		AdvisorID:      &advisor.ID,
		RegistrationID: &registrationID,
		RecipientEmail: h.staffEmail,
		Subject:        subject,
		BodyHTML:       html,
		AttachmentName: "participants.csv",
		AttachmentCSV:  body,
	}); err != nil {
		h.logger.Error("enqueue roster summary", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
	}
}
