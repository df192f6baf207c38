package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/interfaces/http/middleware"
	"leadflow.backend/internal/interfaces/http/response"
	"leadflow.backend/internal/usecases"
	"leadflow.backend/pkg/utils"
)

// ActivityHandler handles audit-log endpoints
type ActivityHandler struct {
	activityUsecase *usecases.ActivityUsecase
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityUsecase *usecases.ActivityUsecase) *ActivityHandler {
	return &ActivityHandler{activityUsecase: activityUsecase}
}

// List returns the audit log, newest first. Super admins only.
// GET /api/v1/activity
func (h *ActivityHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	pagination := paginationFromQuery(c)

	activities, total, err := h.activityUsecase.List(c.Request.Context(), actor, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"activities": activities,
		"pagination": utils.CalculateMeta(total, pagination.Page, pagination.Limit),
	})
}

// Append records an explicit client-side action in the audit log
// POST /api/v1/activity
func (h *ActivityHandler) Append(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	var input entities.LogActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	h.activityUsecase.Log(c.Request.Context(), &actor.ID, input.Action, input.Details, requestMeta(c))

	response.Success(c, http.StatusCreated, gin.H{"success": true})
}
