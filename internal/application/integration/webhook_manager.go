package integration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/integration"
)

// requiredEvents are the ERP notifications the platform subscribes to.
var requiredEvents = []string{
	EventProductCreated,
	EventProductUpdated,
	EventProductDeleted,
	EventStockUpdated,
	EventCustomerCreated,
	EventCustomerUpdated,
}

// WebhookManager reconciles the ERP's notification subscriptions against
// the set the platform needs, registering missing ones and removing stale
// ones that point at our endpoint with an event we no longer care about.
type WebhookManager struct {
	conns    integration.ConnectionRepository
	auth     integration.AuthGateway
	gateways integration.GatewayFactory
	logger   *zap.Logger
}

// NewWebhookManager creates the subscription reconciler.
func NewWebhookManager(conns integration.ConnectionRepository, auth integration.AuthGateway, gateways integration.GatewayFactory, logger *zap.Logger) *WebhookManager {
	return &WebhookManager{conns: conns, auth: auth, gateways: gateways, logger: logger}
}

// EnsureSubscriptions makes the ERP's subscription set for the tenant match
// the required events, all pointing at targetURL.
func (m *WebhookManager) EnsureSubscriptions(ctx context.Context, tenantID uuid.UUID, targetURL string) error {
	conn, err := m.conns.FindByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if !conn.IsActive {
		return integration.ErrConnectionInactive
	}
	gw := m.gateways.GatewayFor(conn, NewTokenManager(conn, m.conns, m.auth, m.logger))

	existing, err := gw.ListSubscriptions(ctx)
	if err != nil {
		return err
	}

	missing := make(map[string]bool, len(requiredEvents))
	for _, event := range requiredEvents {
		missing[event] = true
	}
	for _, sub := range existing {
		if sub.TargetURL != targetURL {
			continue
		}
		if missing[sub.Event] {
			delete(missing, sub.Event)
			continue
		}
		if err := gw.DeleteSubscription(ctx, sub.ID); err != nil {
			return fmt.Errorf("delete subscription %d: %w", sub.ID, err)
		}
		m.logger.Info("Removed stale ERP subscription",
			zap.String("tenant_id", tenantID.String()),
			zap.String("event", sub.Event),
		)
	}

	for _, event := range requiredEvents {
		if !missing[event] {
			continue
		}
		if _, err := gw.RegisterSubscription(ctx, event, targetURL); err != nil {
			return fmt.Errorf("register %s: %w", event, err)
		}
		m.logger.Info("Registered ERP subscription",
			zap.String("tenant_id", tenantID.String()),
			zap.String("event", event),
		)
	}
	return nil
}
