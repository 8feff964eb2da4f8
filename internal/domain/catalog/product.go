package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the tax percentage assumed when the ERP omits one.
var DefaultTaxRate = decimal.NewFromInt(21)

// Product is a sellable item synced from the ERP. A product with
// IsParent=true represents a style; its variants carry IsParent=false and a
// non-nil ParentID. IsVirtualParent marks a parent synthesized by the
// hierarchy resolver rather than received from the ERP.
type Product struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	ExternalID      int64
	SKU             *string
	Barcode         string
	Name            string
	CategoryID      *uuid.UUID
	BrandID         *uuid.UUID
	BasePrice       decimal.Decimal
	BaseCost        decimal.Decimal
	TaxRate         decimal.Decimal // percentage, 0-100
	IsActive        bool
	IsParent        bool
	IsVirtualParent bool
	ParentID        *uuid.UUID
	Size            string
	Color           string
	RawPayload      string // opaque source record, diagnostics only
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProductPrice is a product's price on one price list, unique per
// (product, price list).
type ProductPrice struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	PriceListID uuid.UUID
	Price       decimal.Decimal
	NetPrice    *decimal.Decimal
	Cost        decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductStock is a product's stock at one branch, unique per
// (product, branch).
type ProductStock struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	BranchID  uuid.UUID
	Quantity  decimal.Decimal
	Reserved  decimal.Decimal
	Available decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeTaxRate converts an incoming ERP tax value to a 0-100 percentage.
// A value strictly between 0 and 2 is a multiplier (1.21 means 21%) and is
// converted via (value-1)*100 rounded to one decimal; any other positive
// value is already a percentage; zero or absent defaults to 21.
func NormalizeTaxRate(value decimal.Decimal) decimal.Decimal {
	if value.IsZero() || value.IsNegative() {
		return DefaultTaxRate
	}
	two := decimal.NewFromInt(2)
	if value.LessThan(two) {
		return value.Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).Round(1)
	}
	return value
}

// AvailableStock derives availability when the source supplies no explicit
// figure.
func AvailableStock(quantity, reserved decimal.Decimal, explicit *decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	return quantity.Sub(reserved)
}

// ProductRepository persists products with their nested prices and stock,
// implicitly scoped by tenant ID.
type ProductRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByExternalID returns ErrProductNotFound on a miss.
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*Product, error)

	// FindByExternalIDs returns the subset of products that exist; missing
	// ids are simply absent from the result.
	FindByExternalIDs(ctx context.Context, tenantID uuid.UUID, externalIDs []int64) ([]Product, error)

	// Upsert creates or updates by the (tenant, external ID) compound key
	// and populates the internal ID on the given entity.
	Upsert(ctx context.Context, product *Product) error

	// UpsertPrice and UpsertStock write sub-records; callers only invoke
	// them after the parent product row exists.
	UpsertPrice(ctx context.Context, price *ProductPrice) error
	UpsertStock(ctx context.Context, stock *ProductStock) error

	// AssignParent sets ParentID on every listed variant in one statement.
	AssignParent(ctx context.Context, tenantID, parentID uuid.UUID, variantIDs []uuid.UUID) error

	// MarkParent flags a product as a parent. Upsert never touches the
	// parent flags, so hierarchy resolution sets them through here.
	MarkParent(ctx context.Context, tenantID, productID uuid.UUID) error

	// Deactivate sets IsActive=false; the row is never removed.
	Deactivate(ctx context.Context, tenantID uuid.UUID, externalID int64) error

	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
