package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/retailpos/backend/internal/application/integration"
	"github.com/retailpos/backend/internal/domain/integration"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// WebhookHandler receives ERP change notifications and routes them to the
// sync orchestrator. The tenant is carried in the path because the ERP
// calls back without platform credentials.
type WebhookHandler struct {
	BaseHandler
	service SyncService
	logger  *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(service SyncService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/erp/:tenant_id", h.Receive)
}

// WebhookRequest is the notification body the ERP delivers
type WebhookRequest struct {
	Event string               `json:"event" binding:"required"`
	Data  syncapp.EventPayload `json:"data"`
}

// Receive handles one ERP notification
func (h *WebhookHandler) Receive(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenant_id"))
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "invalid webhook payload")
		return
	}

	if err := h.service.HandleEvent(c.Request.Context(), tenantID, req.Event, req.Data); err != nil {
		switch {
		case errors.Is(err, integration.ErrConnectionNotFound):
			h.NotFound(c, "no ERP connection for tenant")
		case errors.Is(err, integration.ErrConnectionInactive):
			h.Error(c, http.StatusConflict, dto.ErrCodeConnectionInactive, "the ERP connection is inactive")
		default:
			h.logger.Error("Webhook event processing failed",
				zap.String("tenant_id", tenantID.String()),
				zap.String("event", req.Event),
				zap.Error(err),
			)
			h.Internal(c, "event processing failed")
		}
		return
	}

	h.Success(c, gin.H{"received": true})
}
