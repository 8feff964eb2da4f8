// Package partner contains the tenant-scoped business partner entities kept
// in sync with the ERP.
package partner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrCustomerNotFound = errors.New("partner: customer not found")

// CustomerType distinguishes individual and company customers.
type CustomerType string

const (
	CustomerTypePerson  CustomerType = "PERSON"
	CustomerTypeCompany CustomerType = "COMPANY"
)

// ParseCustomerType maps an ERP customer type to the internal enum,
// defaulting to PERSON for unrecognized values.
func ParseCustomerType(s string) CustomerType {
	switch s {
	case "company", "COMPANY", "business":
		return CustomerTypeCompany
	default:
		return CustomerTypePerson
	}
}

// Customer is a customer record synced from the ERP.
type Customer struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	ExternalID      int64
	Type            CustomerType
	TaxID           string
	TaxType         string
	TaxCategory     string
	Name            string
	Email           string
	Phone           string
	Address         string
	PriceListID     *uuid.UUID
	CreditLimit     decimal.Decimal
	CreditBalance   decimal.Decimal
	PaymentTermDays int
	GlobalDiscount  decimal.Decimal
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CustomerRepository persists customers keyed by (tenant, external ID).
type CustomerRepository interface {
	// FindByExternalID returns ErrCustomerNotFound on a miss.
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*Customer, error)

	// Upsert creates or updates by the (tenant, external ID) compound key
	// and populates the internal ID on the given entity.
	Upsert(ctx context.Context, customer *Customer) error

	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
