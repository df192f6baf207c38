package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/interfaces/http/middleware"
	"leadflow.backend/internal/interfaces/http/response"
	"leadflow.backend/internal/usecases"
)

// DashboardHandler handles the dashboard aggregate endpoint
type DashboardHandler struct {
	dashboardUsecase *usecases.DashboardUsecase
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardUsecase *usecases.DashboardUsecase) *DashboardHandler {
	return &DashboardHandler{dashboardUsecase: dashboardUsecase}
}

// Stats returns role-scoped dashboard numbers
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	stats, err := h.dashboardUsecase.Stats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
