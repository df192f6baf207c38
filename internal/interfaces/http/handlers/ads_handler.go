package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/infrastructure/facebook"
	"leadflow.backend/internal/interfaces/http/middleware"
	"leadflow.backend/internal/interfaces/http/response"
	"leadflow.backend/internal/usecases"
)

// AdsHandler handles ad-platform read endpoints and the manual conversion send
type AdsHandler struct {
	adsUsecase *usecases.AdsUsecase
}

// NewAdsHandler creates a new ads handler
func NewAdsHandler(adsUsecase *usecases.AdsUsecase) *AdsHandler {
	return &AdsHandler{adsUsecase: adsUsecase}
}

// Accounts lists reachable ad accounts
// GET /api/v1/ads/accounts
func (h *AdsHandler) Accounts(c *gin.Context) {
	accounts := h.adsUsecase.Accounts(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"data": accounts})
}

// Insights returns campaign metrics for a date range
// GET /api/v1/ads/insights?accountId=&since=&until=
func (h *AdsHandler) Insights(c *gin.Context) {
	insights, err := h.adsUsecase.Insights(
		c.Request.Context(),
		c.Query("accountId"),
		c.Query("since"),
		c.Query("until"),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": insights})
}

// SendConversion forwards a manually assembled conversion event
// POST /api/v1/conversions/send
func (h *AdsHandler) SendConversion(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	var event facebook.ConversionEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.adsUsecase.SendConversion(c.Request.Context(), actor, &event, requestMeta(c)); err != nil {
		middleware.RecordConversionEvent("failed")
		response.Error(c, err)
		return
	}

	middleware.RecordConversionEvent("sent")
	response.Success(c, http.StatusOK, gin.H{"success": true})
}
