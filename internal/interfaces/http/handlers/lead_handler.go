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
	"leadflow.backend/pkg/utils"
)

// LeadHandler handles lead lifecycle endpoints
type LeadHandler struct {
	leadUsecase *usecases.LeadUsecase
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadUsecase *usecases.LeadUsecase) *LeadHandler {
	return &LeadHandler{leadUsecase: leadUsecase}
}

// List returns a page of leads visible to the actor
// GET /api/v1/leads
func (h *LeadHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	filter := entities.ListLeadsFilter{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		AssignedTo: c.Query("assignedTo"),
		Search:     c.Query("search"),
		Sort:       c.Query("sort"),
	}
	pagination := paginationFromQuery(c)

	leads, total, err := h.leadUsecase.List(c.Request.Context(), actor, filter, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"leads":      leads,
		"pagination": utils.CalculateMeta(total, pagination.Page, pagination.Limit),
	})
}

// Get returns one deeply-resolved lead
// GET /api/v1/leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid lead ID"))
		return
	}

	lead, err := h.leadUsecase.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lead": lead})
}

// Create records a manually entered lead
// POST /api/v1/leads
func (h *LeadHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	var input entities.CreateLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	lead, err := h.leadUsecase.Create(c.Request.Context(), actor, &input, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"lead": lead})
}

// UpdateStatus advances a lead one step along the pipeline
// PATCH /api/v1/leads/:id/status
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid lead ID"))
		return
	}

	var input entities.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	lead, err := h.leadUsecase.UpdateStatus(c.Request.Context(), actor, id, &input, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lead": lead})
}

// Assign applies a batch of assignment changes
// PATCH /api/v1/leads/:id/assign
func (h *LeadHandler) Assign(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid lead ID"))
		return
	}

	var input entities.AssignLeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	lead, err := h.leadUsecase.Assign(c.Request.Context(), actor, id, &input, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lead": lead})
}

// SetCategory overwrites the hot/warm/cold tag
// PATCH /api/v1/leads/:id/category
func (h *LeadHandler) SetCategory(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid lead ID"))
		return
	}

	var input entities.UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	lead, err := h.leadUsecase.SetCategory(c.Request.Context(), actor, id, &input, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lead": lead})
}
