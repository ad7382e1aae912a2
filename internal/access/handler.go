package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flc-events/backend/internal/mailer"
	"github.com/flc-events/backend/internal/middleware"
	"github.com/flc-events/backend/internal/models"
	"github.com/flc-events/backend/internal/token"
	"github.com/flc-events/backend/pkg/queue"
	"github.com/flc-events/backend/pkg/response"
)

// requestAccepted is returned for every access request, known address or not,
// so the endpoint cannot be used to probe which emails exist.
const requestAccepted = "If that email is registered, an access link has been sent."

// AdvisorDirectory is the advisor lookup surface the access flow needs.
// Implemented by advisors.Repository. Lookups return an error for unknown
// advisors; the access flow never distinguishes "unknown" from other lookup
// failures in its responses.
type AdvisorDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.Advisor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Advisor, error)
	// Validate marks the advisor validated. Repeat calls are no-ops and must
	// leave validated_at untouched.
	Validate(ctx context.Context, id uuid.UUID) error
}

// ResendLimiter throttles validation-email sends per address.
type ResendLimiter interface {
	AllowResend(ctx context.Context, email string, window time.Duration) (bool, error)
}

// EmailEnqueuer queues outbound email jobs. Implemented by queue.Queue.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Handler handles the access-request / validate / finish HTTP endpoints.
type Handler struct {
	advisors AdvisorDirectory
	tokens   *token.Service
	manager  *Manager
	limiter  ResendLimiter
	emails   EmailEnqueuer
	baseURL  string
	cooldown time.Duration
	logger   *zap.Logger
}

// NewHandler creates an access handler.
func NewHandler(advisors AdvisorDirectory, tokens *token.Service, manager *Manager, limiter ResendLimiter, emails EmailEnqueuer, baseURL string, cooldownSec int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		advisors: advisors,
		tokens:   tokens,
		manager:  manager,
		limiter:  limiter,
		emails:   emails,
		baseURL:  strings.TrimRight(baseURL, "/"),
		cooldown: time.Duration(cooldownSec) * time.Second,
		logger:   logger,
	}
}

// RequestAccessBody is the body for POST /access/request.
type RequestAccessBody struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestAccess handles POST /access/request. Issues a signed access token
// for a known advisor and queues the emailed link. The response is identical
// whether or not the address is registered.
func (h *Handler) RequestAccess(c *gin.Context) {
	var req RequestAccessBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Throttle before the lookup so unknown addresses behave the same.
	allowed, err := h.limiter.AllowResend(c.Request.Context(), email, h.cooldown)
	if err != nil {
		h.logger.Error("resend limiter", zap.Error(err))
		response.Internal(c, "failed to process request")
		return
	}
	if !allowed {
		response.TooManyRequests(c, "please wait before requesting another email")
		return
	}

	advisor, err := h.advisors.GetByEmail(c.Request.Context(), email)
	if err != nil {
		// Same response as the happy path: nothing here may reveal whether
		// the address is registered.
		h.logger.Debug("access request for unresolvable email", zap.Error(err))
		response.Accepted(c, gin.H{"message": requestAccepted})
		return
	}

	tok, err := h.tokens.Issue(advisor.ID, advisor.Email)
	if err != nil {
		h.logger.Error("issue token", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		response.Internal(c, "failed to process request")
		return
	}

	subject, body := mailer.ValidationEmail(advisor.FirstName, h.validationLink(tok))
	if err := h.emails.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		EmailType:      models.EmailTypeValidationLink,
		AdvisorID:      &advisor.ID,
		RecipientEmail: advisor.Email,
		Subject:        subject,
		BodyHTML:       body,
	}); err != nil {
		// Best effort: the advisor can request again, nothing to roll back.
		h.logger.Error("enqueue validation email", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
	}

	response.Accepted(c, gin.H{"message": requestAccepted})
}

// ValidateToken handles GET /access/validate/:token. Exchanges a valid token
// for an access grant, marking the advisor validated on first use.
func (h *Handler) ValidateToken(c *gin.Context) {
	subjectID, email, err := h.tokens.Verify(c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			response.Gone(c, "access link expired, please request a new one")
		default:
			response.Unauthorized(c, "invalid access link")
		}
		return
	}

	advisor, err := h.advisors.GetByID(c.Request.Context(), subjectID)
	if err != nil {
		response.NotFound(c, "account not found")
		return
	}
	// The token must still match the record it was issued for; a changed
	// address invalidates old links.
	if !strings.EqualFold(advisor.Email, email) {
		response.NotFound(c, "account not found")
		return
	}

	if err := h.advisors.Validate(c.Request.Context(), advisor.ID); err != nil {
		h.logger.Error("validate advisor", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		response.Internal(c, "failed to validate account")
		return
	}

	grant, err := h.manager.Open(c.Request.Context(), advisor.Email)
	if err != nil {
		h.logger.Error("open grant", zap.Error(err), zap.String("advisor_id", advisor.ID.String()))
		response.Internal(c, "failed to start session")
		return
	}

	response.OK(c, gin.H{
		"session_token": grant.SessionID,
		"expires_at":    grant.ExpiresAt,
		"advisor":       advisor,
	})
}

// Finish handles POST /access/finish. Revokes the caller's grant.
func (h *Handler) Finish(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		response.Unauthorized(c, "access required")
		return
	}
	if err := h.manager.Revoke(c.Request.Context(), sessionID); err != nil {
		h.logger.Error("revoke grant", zap.Error(err))
		response.Internal(c, "failed to finish session")
		return
	}
	response.OK(c, gin.H{"message": "session finished"})
}

func (h *Handler) validationLink(tok string) string {
	return fmt.Sprintf("%s/access/validate/%s", h.baseURL, tok)
}
