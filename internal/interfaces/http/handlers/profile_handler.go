package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/interfaces/http/middleware"
	"leadflow.backend/internal/interfaces/http/response"
	"leadflow.backend/internal/usecases"
)

// ProfileHandler handles self-service profile endpoints
type ProfileHandler struct {
	authUsecase *usecases.AuthUsecase
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(authUsecase *usecases.AuthUsecase) *ProfileHandler {
	return &ProfileHandler{authUsecase: authUsecase}
}

// Get returns the actor's own profile
// GET /api/v1/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	user, err := h.authUsecase.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Update applies a name/email/photo change. Role is never touched here.
// PUT /api/v1/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.authUsecase.UpdateProfile(c.Request.Context(), actor.ID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
