package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailpos/backend/internal/domain/catalog"
)

// BranchModel is the persistence model for the Branch domain entity.
type BranchModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_branches_tenant;uniqueIndex:idx_branches_tenant_external,priority:1"`
	ExternalID *int64    `gorm:"uniqueIndex:idx_branches_tenant_external,priority:2"`
	Code       string    `gorm:"type:varchar(50)"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Address    string    `gorm:"type:varchar(255)"`
	City       string    `gorm:"type:varchar(100)"`
	Province   string    `gorm:"type:varchar(100)"`
	Phone      string    `gorm:"type:varchar(50)"`
	IsDefault  bool      `gorm:"not null;default:false"`
	IsActive   bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the persistence model to a domain Branch entity.
func (m *BranchModel) ToDomain() *catalog.Branch {
	return &catalog.Branch{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ExternalID: m.ExternalID,
		Code:       m.Code,
		Name:       m.Name,
		Address:    m.Address,
		City:       m.City,
		Province:   m.Province,
		Phone:      m.Phone,
		IsDefault:  m.IsDefault,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Branch entity.
func (m *BranchModel) FromDomain(b *catalog.Branch) {
	m.ID = b.ID
	m.TenantID = b.TenantID
	m.ExternalID = b.ExternalID
	m.Code = b.Code
	m.Name = b.Name
	m.Address = b.Address
	m.City = b.City
	m.Province = b.Province
	m.Phone = b.Phone
	m.IsDefault = b.IsDefault
	m.IsActive = b.IsActive
	m.CreatedAt = b.CreatedAt
	m.UpdatedAt = b.UpdatedAt
}

// BranchModelFromDomain creates a new persistence model from a domain Branch entity.
func BranchModelFromDomain(b *catalog.Branch) *BranchModel {
	m := &BranchModel{}
	m.FromDomain(b)
	return m
}

// PriceListModel is the persistence model for the PriceList domain entity.
type PriceListModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_price_lists_tenant_external,priority:1"`
	ExternalID int64     `gorm:"not null;uniqueIndex:idx_price_lists_tenant_external,priority:2"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Currency   string    `gorm:"type:varchar(10)"`
	IsDefault  bool      `gorm:"not null;default:false"`
	IsActive   bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PriceListModel) TableName() string {
	return "price_lists"
}

// ToDomain converts the persistence model to a domain PriceList entity.
func (m *PriceListModel) ToDomain() *catalog.PriceList {
	return &catalog.PriceList{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		Currency:   m.Currency,
		IsDefault:  m.IsDefault,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PriceList entity.
func (m *PriceListModel) FromDomain(p *catalog.PriceList) {
	m.ID = p.ID
	m.TenantID = p.TenantID
	m.ExternalID = p.ExternalID
	m.Name = p.Name
	m.Currency = p.Currency
	m.IsDefault = p.IsDefault
	m.IsActive = p.IsActive
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_categories_tenant_external,priority:1"`
	ExternalID int64      `gorm:"not null;uniqueIndex:idx_categories_tenant_external,priority:2"`
	Name       string     `gorm:"type:varchar(255);not null"`
	ParentID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		ParentID:   m.ParentID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.ExternalID = c.ExternalID
	m.Name = c.Name
	m.ParentID = c.ParentID
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// BrandModel is the persistence model for the Brand domain entity.
type BrandModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_brands_tenant_external,priority:1"`
	ExternalID int64     `gorm:"not null;uniqueIndex:idx_brands_tenant_external,priority:2"`
	Name       string    `gorm:"type:varchar(255);not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BrandModel) TableName() string {
	return "brands"
}

// ToDomain converts the persistence model to a domain Brand entity.
func (m *BrandModel) ToDomain() *catalog.Brand {
	return &catalog.Brand{
		ID:         m.ID,
		TenantID:   m.TenantID,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Brand entity.
func (m *BrandModel) FromDomain(b *catalog.Brand) {
	m.ID = b.ID
	m.TenantID = b.TenantID
	m.ExternalID = b.ExternalID
	m.Name = b.Name
	m.CreatedAt = b.CreatedAt
	m.UpdatedAt = b.UpdatedAt
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_external,priority:1"`
	ExternalID      int64           `gorm:"not null;uniqueIndex:idx_products_tenant_external,priority:2"`
	SKU             *string         `gorm:"type:varchar(100);index"`
	Barcode         string          `gorm:"type:varchar(100);index"`
	Name            string          `gorm:"type:varchar(255);not null"`
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index"`
	BrandID         *uuid.UUID      `gorm:"type:uuid;index"`
	BasePrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BaseCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(6,2);not null;default:21"`
	IsActive        bool            `gorm:"not null;default:true"`
	IsParent        bool            `gorm:"not null;default:false"`
	IsVirtualParent bool            `gorm:"not null;default:false"`
	ParentID        *uuid.UUID      `gorm:"type:uuid;index"`
	Size            string          `gorm:"type:varchar(50)"`
	Color           string          `gorm:"type:varchar(50)"`
	RawPayload      string          `gorm:"type:jsonb"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		ID:              m.ID,
		TenantID:        m.TenantID,
		ExternalID:      m.ExternalID,
		SKU:             m.SKU,
		Barcode:         m.Barcode,
		Name:            m.Name,
		CategoryID:      m.CategoryID,
		BrandID:         m.BrandID,
		BasePrice:       m.BasePrice,
		BaseCost:        m.BaseCost,
		TaxRate:         m.TaxRate,
		IsActive:        m.IsActive,
		IsParent:        m.IsParent,
		IsVirtualParent: m.IsVirtualParent,
		ParentID:        m.ParentID,
		Size:            m.Size,
		Color:           m.Color,
		RawPayload:      m.RawPayload,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.TenantID = p.TenantID
	m.ExternalID = p.ExternalID
	m.SKU = p.SKU
	m.Barcode = p.Barcode
	m.Name = p.Name
	m.CategoryID = p.CategoryID
	m.BrandID = p.BrandID
	m.BasePrice = p.BasePrice
	m.BaseCost = p.BaseCost
	m.TaxRate = p.TaxRate
	m.IsActive = p.IsActive
	m.IsParent = p.IsParent
	m.IsVirtualParent = p.IsVirtualParent
	m.ParentID = p.ParentID
	m.Size = p.Size
	m.Color = p.Color
	m.RawPayload = p.RawPayload
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// ProductPriceModel is the persistence model for a per-list product price.
type ProductPriceModel struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	ProductID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_product_prices_product_list,priority:1"`
	PriceListID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_product_prices_product_list,priority:2"`
	Price       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	NetPrice    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Cost        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt   time.Time        `gorm:"not null"`
	UpdatedAt   time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductPriceModel) TableName() string {
	return "product_prices"
}

// ToDomain converts the persistence model to a domain ProductPrice entity.
func (m *ProductPriceModel) ToDomain() *catalog.ProductPrice {
	return &catalog.ProductPrice{
		ID:          m.ID,
		ProductID:   m.ProductID,
		PriceListID: m.PriceListID,
		Price:       m.Price,
		NetPrice:    m.NetPrice,
		Cost:        m.Cost,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain ProductPrice entity.
func (m *ProductPriceModel) FromDomain(p *catalog.ProductPrice) {
	m.ID = p.ID
	m.ProductID = p.ProductID
	m.PriceListID = p.PriceListID
	m.Price = p.Price
	m.NetPrice = p.NetPrice
	m.Cost = p.Cost
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// ProductStockModel is the persistence model for per-branch product stock.
type ProductStockModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_stocks_product_branch,priority:1"`
	BranchID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_stocks_product_branch,priority:2"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Reserved  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Available decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductStockModel) TableName() string {
	return "product_stocks"
}

// ToDomain converts the persistence model to a domain ProductStock entity.
func (m *ProductStockModel) ToDomain() *catalog.ProductStock {
	return &catalog.ProductStock{
		ID:        m.ID,
		ProductID: m.ProductID,
		BranchID:  m.BranchID,
		Quantity:  m.Quantity,
		Reserved:  m.Reserved,
		Available: m.Available,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain ProductStock entity.
func (m *ProductStockModel) FromDomain(s *catalog.ProductStock) {
	m.ID = s.ID
	m.ProductID = s.ProductID
	m.BranchID = s.BranchID
	m.Quantity = s.Quantity
	m.Reserved = s.Reserved
	m.Available = s.Available
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}
