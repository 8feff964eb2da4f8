package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/integration"
)

// ERP webhook event names routed by HandleEvent.
const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventStockUpdated    = "stock.updated"
	EventCustomerCreated = "customer.created"
	EventCustomerUpdated = "customer.updated"
)

// SyncSummary reports how many records each reconciler processed.
type SyncSummary struct {
	Branches   int           `json:"branches"`
	PriceLists int           `json:"price_lists"`
	Categories int           `json:"categories"`
	Brands     int           `json:"brands"`
	Products   int           `json:"products"`
	Customers  int           `json:"customers"`
	Elapsed    time.Duration `json:"elapsed"`
}

// String renders the summary in the form stored on the connection's last
// sync status.
func (s SyncSummary) String() string {
	return fmt.Sprintf("branches: %d, price lists: %d, categories: %d, brands: %d, products: %d, customers: %d (%s)",
		s.Branches, s.PriceLists, s.Categories, s.Brands, s.Products, s.Customers, s.Elapsed.Round(time.Millisecond))
}

// SyncService orchestrates full and event-driven synchronization for all
// tenants. Full syncs run the reconcilers in dependency order: branches and
// price lists first, then categories and brands, then products, then
// customers. At most one sync runs per tenant at a time.
type SyncService struct {
	conns      integration.ConnectionRepository
	auth       integration.AuthGateway
	gateways   integration.GatewayFactory
	branches   *BranchSyncer
	priceLists *PriceListSyncer
	categories *CategorySyncer
	brands     *BrandSyncer
	products   *ProductSyncer
	customers  *CustomerSyncer
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
}

// NewSyncService wires the orchestrator.
func NewSyncService(
	conns integration.ConnectionRepository,
	auth integration.AuthGateway,
	gateways integration.GatewayFactory,
	branches *BranchSyncer,
	priceLists *PriceListSyncer,
	categories *CategorySyncer,
	brands *BrandSyncer,
	products *ProductSyncer,
	customers *CustomerSyncer,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		conns:      conns,
		auth:       auth,
		gateways:   gateways,
		branches:   branches,
		priceLists: priceLists,
		categories: categories,
		brands:     brands,
		products:   products,
		customers:  customers,
		logger:     logger,
		now:        time.Now,
		inFlight:   map[uuid.UUID]bool{},
	}
}

// SyncAll runs a full synchronization for one tenant. The outcome, success
// or failure, is recorded on the connection either way.
func (s *SyncService) SyncAll(ctx context.Context, tenantID uuid.UUID) (*SyncSummary, error) {
	release, err := s.acquire(tenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	conn, gw, err := s.session(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	started := s.now()
	summary, err := s.runAll(ctx, gw, tenantID)
	summary.Elapsed = s.now().Sub(started)

	if err != nil {
		conn.RecordSyncFailure(err.Error(), s.now())
		if saveErr := s.conns.Save(ctx, conn); saveErr != nil {
			s.logger.Error("Failed to record sync failure", zap.Error(saveErr))
		}
		return nil, err
	}

	conn.RecordSyncSuccess(summary.String(), s.now())
	if err := s.conns.Save(ctx, conn); err != nil {
		return nil, err
	}
	s.logger.Info("Full synchronization finished",
		zap.String("tenant_id", tenantID.String()),
		zap.String("summary", summary.String()),
	)
	return &summary, nil
}

// EventPayload carries the external record ids referenced by a webhook
// event. The ERP sends either a single id or a list.
type EventPayload struct {
	ID  int64   `json:"id"`
	IDs []int64 `json:"ids"`
}

// ExternalIDs flattens the payload into one id slice.
func (p EventPayload) ExternalIDs() []int64 {
	ids := append([]int64(nil), p.IDs...)
	if p.ID != 0 {
		ids = append(ids, p.ID)
	}
	return ids
}

// HandleEvent routes one ERP webhook event to the matching reconciler.
// Unrecognized events are logged and acknowledged so the ERP does not
// retry them.
func (s *SyncService) HandleEvent(ctx context.Context, tenantID uuid.UUID, event string, payload EventPayload) error {
	ids := payload.ExternalIDs()
	switch event {
	case EventProductCreated, EventProductUpdated, EventStockUpdated:
		_, gw, err := s.session(ctx, tenantID)
		if err != nil {
			return err
		}
		_, err = s.products.SyncByIDs(ctx, gw, tenantID, ids)
		return err
	case EventProductDeleted:
		for _, id := range ids {
			if err := s.products.Deactivate(ctx, tenantID, id); err != nil {
				return err
			}
		}
		return nil
	case EventCustomerCreated, EventCustomerUpdated:
		_, gw, err := s.session(ctx, tenantID)
		if err != nil {
			return err
		}
		_, err = s.customers.SyncByIDs(ctx, gw, tenantID, ids)
		return err
	default:
		s.logger.Warn("Ignoring unrecognized ERP event",
			zap.String("tenant_id", tenantID.String()),
			zap.String("event", event),
		)
		return nil
	}
}

// Running reports whether a full sync is currently in flight for the
// tenant.
func (s *SyncService) Running(tenantID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[tenantID]
}

// session loads the tenant's active connection and opens a gateway bound to
// a fresh token manager.
func (s *SyncService) session(ctx context.Context, tenantID uuid.UUID) (*integration.Connection, integration.Gateway, error) {
	conn, err := s.conns.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	if !conn.IsActive {
		return nil, nil, integration.ErrConnectionInactive
	}
	tokens := NewTokenManager(conn, s.conns, s.auth, s.logger)
	return conn, s.gateways.GatewayFor(conn, tokens), nil
}

func (s *SyncService) runAll(ctx context.Context, gw integration.Gateway, tenantID uuid.UUID) (SyncSummary, error) {
	var summary SyncSummary
	var err error

	if summary.Branches, err = s.branches.Sync(ctx, gw, tenantID); err != nil {
		return summary, fmt.Errorf("branches: %w", err)
	}
	if summary.PriceLists, err = s.priceLists.Sync(ctx, gw, tenantID); err != nil {
		return summary, fmt.Errorf("price lists: %w", err)
	}
	if summary.Categories, err = s.categories.Sync(ctx, gw, tenantID); err != nil {
		return summary, fmt.Errorf("categories: %w", err)
	}
	if summary.Brands, err = s.brands.Sync(ctx, gw, tenantID); err != nil {
		return summary, fmt.Errorf("brands: %w", err)
	}
	if summary.Products, err = s.products.Sync(ctx, gw, tenantID); err != nil {
		return summary, fmt.Errorf("products: %w", err)
	}
	if summary.Customers, err = s.customers.Sync(ctx, gw, tenantID); err != nil {
		return summary, fmt.Errorf("customers: %w", err)
	}
	return summary, nil
}

func (s *SyncService) acquire(tenantID uuid.UUID) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[tenantID] {
		return nil, integration.ErrSyncAlreadyRunning
	}
	s.inFlight[tenantID] = true
	return func() {
		s.mu.Lock()
		delete(s.inFlight, tenantID)
		s.mu.Unlock()
	}, nil
}
