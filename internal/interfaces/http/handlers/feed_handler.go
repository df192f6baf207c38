package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/interfaces/http/middleware"
	"leadflow.backend/internal/interfaces/http/response"
	"leadflow.backend/internal/usecases"
)

// FeedHandler handles company feed endpoints
type FeedHandler struct {
	feedUsecase *usecases.FeedUsecase
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedUsecase *usecases.FeedUsecase) *FeedHandler {
	return &FeedHandler{feedUsecase: feedUsecase}
}

// List returns the latest posts, newest first
// GET /api/v1/feed
func (h *FeedHandler) List(c *gin.Context) {
	posts, err := h.feedUsecase.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"posts": posts})
}

// Create publishes a new post
// POST /api/v1/feed
func (h *FeedHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	var input entities.CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	post, err := h.feedUsecase.Create(c.Request.Context(), actor, &input, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"post": post})
}

// ToggleLike likes or unlikes a post for the actor
// POST /api/v1/feed/:id/like
func (h *FeedHandler) ToggleLike(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid post ID"))
		return
	}

	post, err := h.feedUsecase.ToggleLike(c.Request.Context(), actor, id, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"post": post})
}

// Edit rewrites a post's content, author only
// PUT /api/v1/feed/:id
func (h *FeedHandler) Edit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid post ID"))
		return
	}

	var input entities.CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	post, err := h.feedUsecase.Edit(c.Request.Context(), actor, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"post": post})
}
