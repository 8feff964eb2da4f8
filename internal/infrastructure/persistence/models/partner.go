package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailpos/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customers_tenant_external,priority:1"`
	ExternalID      int64           `gorm:"not null;uniqueIndex:idx_customers_tenant_external,priority:2"`
	Type            string          `gorm:"type:varchar(20);not null;default:'PERSON'"`
	TaxID           string          `gorm:"type:varchar(50);index"`
	TaxType         string          `gorm:"type:varchar(50)"`
	TaxCategory     string          `gorm:"type:varchar(50)"`
	Name            string          `gorm:"type:varchar(255);not null"`
	Email           string          `gorm:"type:varchar(255)"`
	Phone           string          `gorm:"type:varchar(50)"`
	Address         string          `gorm:"type:varchar(255)"`
	PriceListID     *uuid.UUID      `gorm:"type:uuid;index"`
	CreditLimit     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreditBalance   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentTermDays int             `gorm:"not null;default:0"`
	GlobalDiscount  decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	IsActive        bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		ID:              m.ID,
		TenantID:        m.TenantID,
		ExternalID:      m.ExternalID,
		Type:            partner.CustomerType(m.Type),
		TaxID:           m.TaxID,
		TaxType:         m.TaxType,
		TaxCategory:     m.TaxCategory,
		Name:            m.Name,
		Email:           m.Email,
		Phone:           m.Phone,
		Address:         m.Address,
		PriceListID:     m.PriceListID,
		CreditLimit:     m.CreditLimit,
		CreditBalance:   m.CreditBalance,
		PaymentTermDays: m.PaymentTermDays,
		GlobalDiscount:  m.GlobalDiscount,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.ExternalID = c.ExternalID
	m.Type = string(c.Type)
	m.TaxID = c.TaxID
	m.TaxType = c.TaxType
	m.TaxCategory = c.TaxCategory
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.PriceListID = c.PriceListID
	m.CreditLimit = c.CreditLimit
	m.CreditBalance = c.CreditBalance
	m.PaymentTermDays = c.PaymentTermDays
	m.GlobalDiscount = c.GlobalDiscount
	m.IsActive = c.IsActive
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
