package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"leadflow.backend/internal/interfaces/http/middleware"
	"leadflow.backend/internal/usecases"
	"leadflow.backend/pkg/logger"
)

// WebhookGateway is the slice of the ad-platform client the webhook
// endpoints need.
type WebhookGateway interface {
	VerifyToken() string
	VerifyPayload(body []byte, signatureHeader string) bool
}

// WebhookHandler handles lead-platform webhook endpoints
type WebhookHandler struct {
	webhookUsecase *usecases.WebhookUsecase
	gateway        WebhookGateway
	allowUnsigned  bool
}

// NewWebhookHandler creates a new webhook handler. allowUnsigned skips
// signature verification and must only be set in debug environments.
func NewWebhookHandler(webhookUsecase *usecases.WebhookUsecase, gateway WebhookGateway, allowUnsigned bool) *WebhookHandler {
	return &WebhookHandler{
		webhookUsecase: webhookUsecase,
		gateway:        gateway,
		allowUnsigned:  allowUnsigned,
	}
}

// Verify answers the subscription handshake
// GET /api/v1/webhooks/facebook
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.gateway.VerifyToken() {
		c.String(http.StatusOK, challenge)
		return
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "verification failed"})
}

// Receive ingests a lead notification. Verified deliveries are always
// acknowledged with 200 so the platform does not retry entries we have
// already recorded as processing errors.
// POST /api/v1/webhooks/facebook
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	// the unsigned escape hatch only waives a missing header; a
	// signature that is present must still verify
	signature := c.GetHeader("X-Hub-Signature-256")
	skipVerify := h.allowUnsigned && signature == ""
	if !skipVerify && !h.gateway.VerifyPayload(body, signature) {
		logger.Warn(c.Request.Context(), "webhook signature rejected",
			zap.Bool("signature_present", signature != ""))
		middleware.RecordWebhookNotification("rejected")
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
		return
	}

	if err := h.webhookUsecase.ProcessNotification(c.Request.Context(), body); err != nil {
		logger.Error(c.Request.Context(), "webhook processing failed", zap.Error(err))
		middleware.RecordWebhookNotification("malformed")
	} else {
		middleware.RecordWebhookNotification("accepted")
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
