package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
	"github.com/retailpos/backend/internal/domain/partner"
)

// CustomerSyncer reconciles ERP customers.
type CustomerSyncer struct {
	customers  partner.CustomerRepository
	priceLists catalog.PriceListRepository
	logger     *zap.Logger
}

// NewCustomerSyncer creates the customer reconciler.
func NewCustomerSyncer(customers partner.CustomerRepository, priceLists catalog.PriceListRepository, logger *zap.Logger) *CustomerSyncer {
	return &CustomerSyncer{customers: customers, priceLists: priceLists, logger: logger}
}

// Sync upserts every ERP customer and returns how many were processed.
func (s *CustomerSyncer) Sync(ctx context.Context, gw integration.Gateway, tenantID uuid.UUID) (int, error) {
	records, err := gw.ListCustomers(ctx)
	if err != nil {
		return 0, err
	}
	return s.reconcile(ctx, tenantID, records)
}

// SyncByIDs reconciles just the given customers, fetched in batches.
func (s *CustomerSyncer) SyncByIDs(ctx context.Context, gw integration.Gateway, tenantID uuid.UUID, externalIDs []int64) (int, error) {
	total := 0
	for _, batch := range chunkIDs(externalIDs, integration.MaxBatchIDs) {
		records, err := gw.ListCustomersByIDs(ctx, batch)
		if err != nil {
			return total, err
		}
		n, err := s.reconcile(ctx, tenantID, records)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *CustomerSyncer) reconcile(ctx context.Context, tenantID uuid.UUID, records []integration.ExternalCustomer) (int, error) {
	for _, rec := range records {
		priceListID, err := s.resolvePriceList(ctx, tenantID, rec.PriceListID)
		if err != nil {
			return 0, fmt.Errorf("customer %d: %w", rec.ID, err)
		}
		customer := &partner.Customer{
			ID:              uuid.New(),
			TenantID:        tenantID,
			ExternalID:      rec.ID,
			Type:            partner.ParseCustomerType(rec.Type),
			TaxID:           rec.TaxID,
			TaxType:         rec.TaxType,
			TaxCategory:     rec.TaxCategory,
			Name:            customerName(rec),
			Email:           rec.Email,
			Phone:           rec.Phone,
			Address:         rec.Address,
			PriceListID:     priceListID,
			CreditLimit:     rec.CreditLimit,
			CreditBalance:   rec.CreditBalance,
			PaymentTermDays: rec.PaymentTermDays,
			GlobalDiscount:  rec.Discount,
			IsActive:        integration.IsActive(rec.Active),
		}
		if err := s.customers.Upsert(ctx, customer); err != nil {
			return 0, fmt.Errorf("customer %d: %w", rec.ID, err)
		}
	}
	return len(records), nil
}

// resolvePriceList maps an external price list id to the internal id.
// External id 0 is the ERP's default list, so it is looked up like any
// other; a miss leaves the reference unset.
func (s *CustomerSyncer) resolvePriceList(ctx context.Context, tenantID uuid.UUID, externalID int64) (*uuid.UUID, error) {
	list, err := s.priceLists.FindByExternalID(ctx, tenantID, externalID)
	if err != nil {
		if errors.Is(err, catalog.ErrPriceListNotFound) {
			s.logger.Debug("Customer references an unsynced price list, leaving it unset",
				zap.String("tenant_id", tenantID.String()),
				zap.Int64("price_list_external_id", externalID),
			)
			return nil, nil
		}
		return nil, err
	}
	return &list.ID, nil
}

func customerName(rec integration.ExternalCustomer) string {
	if rec.Description != "" {
		return rec.Description
	}
	return fmt.Sprintf("Customer %d", rec.ID)
}
