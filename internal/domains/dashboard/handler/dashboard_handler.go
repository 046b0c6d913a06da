package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/dashboard/service"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// GetDashboard - GET /api/dashboard
func (h *Handler) GetDashboard(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context(), utils.QueryInt(c, "limit", 0))
	if err != nil {
		log.Error().Err(err).Msg("[DashboardHandler] Failed to load dashboard")
		response.InternalServerError(c, "Failed to load dashboard")
		return
	}

	response.Success(c, http.StatusOK, "Dashboard retrieved", overview)
}

// GetRecentActivity - GET /api/recent-activity?limit=
func (h *Handler) GetRecentActivity(c *gin.Context) {
	entries, err := h.service.RecentActivity(c.Request.Context(), utils.QueryInt(c, "limit", 0))
	if err != nil {
		log.Error().Err(err).Msg("[DashboardHandler] Failed to load recent activity")
		response.InternalServerError(c, "Failed to load recent activity")
		return
	}

	response.Success(c, http.StatusOK, "Recent activity retrieved", entries)
}
