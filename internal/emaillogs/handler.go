package emaillogs

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flc-events/backend/pkg/response"
)

// Handler handles the staff email log endpoints. Mount behind the staff key
// middleware; access is already validated when these run.
type Handler struct {
	repo *Repository
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /staff/emails. Optional ?advisor_id= narrows to one
// advisor; ?limit= caps the unfiltered listing.
func (h *Handler) List(c *gin.Context) {
	if idStr := c.Query("advisor_id"); idStr != "" {
		advisorID, err := uuid.Parse(idStr)
		if err != nil {
			response.BadRequest(c, "invalid advisor id")
			return
		}
		logs, err := h.repo.ListByAdvisor(c.Request.Context(), advisorID)
		if err != nil {
			response.Internal(c, "failed to load email logs")
			return
		}
		response.OK(c, logs)
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	logs, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}
