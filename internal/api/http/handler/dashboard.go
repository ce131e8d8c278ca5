package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/irozhkov/library-server/internal/api/http/middleware"
	"github.com/irozhkov/library-server/internal/logger"
	"github.com/irozhkov/library-server/internal/model"
	"github.com/irozhkov/library-server/internal/service"
)

// DashboardHandler serves the role-scoped summary view.
type DashboardHandler struct {
	dashboard *service.Dashboard
	logger    *logger.Logger
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(dashboard *service.Dashboard, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Show renders the global summary for librarians and the personal one
// for members.
func (h *DashboardHandler) Show(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	if actor.Role == model.RoleLibrarian {
		summary, err := h.dashboard.ForLibrarian(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newLibrarianDashboardResponse(summary))
		return
	}

	summary, err := h.dashboard.ForMember(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMemberDashboardResponse(summary))
}
