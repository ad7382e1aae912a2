package advisors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flc-events/backend/internal/mailer"
	"github.com/flc-events/backend/internal/models"
	"github.com/flc-events/backend/internal/token"
	"github.com/flc-events/backend/pkg/queue"
	"github.com/flc-events/backend/pkg/response"
)

// Store is the persistence surface the handler needs. Implemented by
// Repository; tests substitute an in-memory fake.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Advisor, error)
	FindOrCreate(ctx context.Context, email string, profile ProfileParams) (*models.Advisor, bool, error)
	Update(ctx context.Context, id uuid.UUID, profile ProfileParams) (*models.Advisor, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Advisor, error)
	FindByCategory(ctx context.Context, category string) ([]models.AdvisorSummary, error)
}

// EmailEnqueuer queues outbound email jobs. Implemented by queue.Queue.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Handler handles advisor HTTP endpoints: public category lookups plus the
// staff management surface.
type Handler struct {
	store      Store
	tokens     *token.Service
	emails     EmailEnqueuer
	baseURL    string
	staffEmail string
	logger     *zap.Logger
}

// NewHandler creates an advisors handler.
func NewHandler(store Store, tokens *token.Service, emails EmailEnqueuer, baseURL, staffEmail string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:      store,
		tokens:     tokens,
		emails:     emails,
		baseURL:    strings.TrimRight(baseURL, "/"),
		staffEmail: staffEmail,
		logger:     logger,
	}
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(c *gin.Context) {
	response.OK(c, models.Categories)
}

// ListByCategory handles GET /advisors/by-category?category=X. Returns
// selector entries {id, display_name, email} for the category.
func (h *Handler) ListByCategory(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	if category == "" {
		response.BadRequest(c, "category is required")
		return
	}
	list, err := h.store.FindByCategory(c.Request.Context(), category)
	if err != nil {
		h.logger.Error("find by category", zap.Error(err), zap.String("category", category))
		response.Internal(c, "failed to load advisors")
		return
	}
	if list == nil {
		list = []models.AdvisorSummary{}
	}
	response.OK(c, list)
}

// AdvisorBody is the body for staff create/update of an advisor.
type AdvisorBody struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Category    string `json:"category" binding:"required"`
	Affiliation string `json:"affiliation"`
}

// Create handles POST /staff/advisors. A repeated email returns the existing
// record untouched instead of duplicating or overwriting it. A validation
// link is emailed to newly created advisors, best effort.
func (h *Handler) Create(c *gin.Context) {
	var req AdvisorBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidCategory(req.Category) {
		response.BadRequest(c, "unknown category")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	advisor, created, err := h.store.FindOrCreate(c.Request.Context(), email, ProfileParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Category:    req.Category,
		Affiliation: req.Affiliation,
	})
	if err != nil {
		h.logger.Error("find or create advisor", zap.Error(err))
		response.Internal(c, "failed to save advisor")
		return
	}

	if created {
		h.sendValidationLink(c.Request.Context(), advisor)
		response.Created(c, advisor)
		return
	}
	response.OK(c, advisor)
}

// List handles GET /staff/advisors.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list advisors", zap.Error(err))
		response.Internal(c, "failed to load advisors")
		return
	}
	if list == nil {
		list = []models.Advisor{}
	}
	response.OK(c, list)
}

// Update handles PATCH /staff/advisors/:id. This is the one deliberate way
// to overwrite a profile.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid advisor id")
		return
	}
	var req AdvisorBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !models.ValidCategory(req.Category) {
		response.BadRequest(c, "unknown category")
		return
	}
	advisor, err := h.store.Update(c.Request.Context(), id, ProfileParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Category:    req.Category,
		Affiliation: req.Affiliation,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "advisor not found")
			return
		}
		h.logger.Error("update advisor", zap.Error(err), zap.String("advisor_id", id.String()))
		response.Internal(c, "failed to update advisor")
		return
	}
	response.OK(c, advisor)
}

// Delete handles DELETE /staff/advisors/:id. The advisor's participant rows
// go with it.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid advisor id")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "advisor not found")
			return
		}
		h.logger.Error("delete advisor", zap.Error(err), zap.String("advisor_id", id.String()))
		response.Internal(c, "failed to delete advisor")
		return
	}
	response.OK(c, gin.H{"message": "advisor deleted"})
}

// ResendValidation handles POST /staff/advisors/:id/resend-validation.
func (h *Handler) ResendValidation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid advisor id")
		return
	}
	advisor, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "advisor not found")
			return
		}
		h.logger.Error("get advisor", zap.Error(err), zap.String("advisor_id", id.String()))
		response.Internal(c, "failed to load advisor")
		return
	}
	h.sendValidationLink(c.Request.Context(), advisor)
	response.OK(c, gin.H{"message": fmt.Sprintf("validation email queued for %s", advisor.Email)})
}

// NewUserRequestBody is the body for the public POST /advisors/request form.
type NewUserRequestBody struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Category    string `json:"category" binding:"required"`
	Affiliation string `json:"affiliation"`
	Message     string `json:"message"`
}

// RequestNewUser handles POST /advisors/request: a public contact form that
// notifies staff someone wants to be added. No advisor record is created.
func (h *Handler) RequestNewUser(c *gin.Context) {
	var req NewUserRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	subject, body := mailer.AccessRequestEmail(req.FirstName, req.LastName, req.Email, req.Category, req.Affiliation, req.Message)
	if err := h.emails.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      models.EmailTypeAccessRequest,
		RecipientEmail: h.staffEmail,
		Subject:        subject,
		BodyHTML:       body,
	}); err != nil {
		h.logger.Error("enqueue access request email", zap.Error(err))
	}
	response.Accepted(c, gin.H{"message": "Your request has been submitted."})
}

func (h *Handler) sendValidationLink(ctx context.Context, advisor *models.Advisor) {
	tok, err := h.tokens.Issue(advisor.ID, advisor.Email)
	if err != nil {
		h.logger.Error("issue token", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		return
	}
	link := fmt.Sprintf("%s/access/validate/%s", h.baseURL, tok)
	subject, body := mailer.ValidationEmail(advisor.FirstName, link)
	if err := h.emails.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType:      models.EmailTypeValidationLink,
		AdvisorID:      &advisor.ID,
		RecipientEmail: advisor.Email,
		Subject:        subject,
		BodyHTML:       body,
	}); err != nil {
		h.logger.Error("enqueue validation email", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
	}
}
