package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/retailpos/backend/internal/application/integration"
	"github.com/retailpos/backend/internal/domain/integration"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// SyncService is the slice of the sync orchestrator the HTTP layer uses.
type SyncService interface {
	SyncAll(ctx context.Context, tenantID uuid.UUID) (*syncapp.SyncSummary, error)
	HandleEvent(ctx context.Context, tenantID uuid.UUID, event string, payload syncapp.EventPayload) error
	Running(tenantID uuid.UUID) bool
}

// SyncHandler exposes the manual sync trigger and status endpoints
type SyncHandler struct {
	BaseHandler
	service SyncService
	conns   integration.ConnectionRepository
	logger  *zap.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service SyncService, conns integration.ConnectionRepository, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		service: service,
		conns:   conns,
		logger:  logger,
	}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/run", h.Run)
		sync.GET("/status", h.Status)
	}
}

// SyncRunResponse reports what a completed sync processed
type SyncRunResponse struct {
	Branches   int    `json:"branches"`
	PriceLists int    `json:"price_lists"`
	Categories int    `json:"categories"`
	Brands     int    `json:"brands"`
	Products   int    `json:"products"`
	Customers  int    `json:"customers"`
	Elapsed    string `json:"elapsed"`
}

// Run triggers a full ERP sync for the caller's tenant
func (h *SyncHandler) Run(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid or missing tenant ID")
		return
	}

	summary, err := h.service.SyncAll(c.Request.Context(), tenantID)
	if err != nil {
		h.syncError(c, tenantID, err)
		return
	}

	h.Success(c, SyncRunResponse{
		Branches:   summary.Branches,
		PriceLists: summary.PriceLists,
		Categories: summary.Categories,
		Brands:     summary.Brands,
		Products:   summary.Products,
		Customers:  summary.Customers,
		Elapsed:    summary.Elapsed.Round(time.Millisecond).String(),
	})
}

// SyncStatusResponse reports the tenant's connection sync state
type SyncStatusResponse struct {
	IsRunning      bool       `json:"is_running"`
	IsActive       bool       `json:"is_active"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus string     `json:"last_sync_status,omitempty"`
}

// Status reports the tenant's last and current sync state
func (h *SyncHandler) Status(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid or missing tenant ID")
		return
	}

	conn, err := h.conns.FindByTenant(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, integration.ErrConnectionNotFound) {
			h.NotFound(c, "no ERP connection for tenant")
			return
		}
		h.Internal(c, "failed to load connection")
		return
	}

	h.Success(c, SyncStatusResponse{
		IsRunning:      h.service.Running(tenantID),
		IsActive:       conn.IsActive,
		LastSyncAt:     conn.LastSyncAt,
		LastSyncStatus: conn.LastSyncStatus,
	})
}

// syncError maps sync failures to HTTP responses
func (h *SyncHandler) syncError(c *gin.Context, tenantID uuid.UUID, err error) {
	switch {
	case errors.Is(err, integration.ErrSyncAlreadyRunning):
		h.Error(c, http.StatusConflict, dto.ErrCodeSyncRunning, "a sync is already running for this tenant")
	case errors.Is(err, integration.ErrConnectionNotFound):
		h.NotFound(c, "no ERP connection for tenant")
	case errors.Is(err, integration.ErrConnectionInactive):
		h.Error(c, http.StatusConflict, dto.ErrCodeConnectionInactive, "the ERP connection is inactive")
	default:
		h.logger.Error("Manual sync failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		h.Internal(c, "sync failed")
	}
}
