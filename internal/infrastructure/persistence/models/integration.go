package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailpos/backend/internal/domain/integration"
)

// ConnectionModel is the persistence model for a tenant's ERP connection.
type ConnectionModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_erp_connections_tenant"`
	AccountSlug    string     `gorm:"type:varchar(100);not null"`
	AppID          string     `gorm:"type:varchar(100);not null"`
	AppSecret      string     `gorm:"type:varchar(255);not null"`
	AccessToken    string     `gorm:"type:text"`
	RefreshToken   string     `gorm:"type:text"`
	TokenExpiresAt *time.Time `gorm:"index"`
	PageSize       int        `gorm:"not null;default:50"`
	LastSyncAt     *time.Time
	LastSyncStatus string    `gorm:"type:text"`
	IsActive       bool      `gorm:"not null;default:true;index"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConnectionModel) TableName() string {
	return "erp_connections"
}

// ToDomain converts the persistence model to a domain Connection entity.
func (m *ConnectionModel) ToDomain() *integration.Connection {
	return &integration.Connection{
		ID:             m.ID,
		TenantID:       m.TenantID,
		AccountSlug:    m.AccountSlug,
		AppID:          m.AppID,
		AppSecret:      m.AppSecret,
		AccessToken:    m.AccessToken,
		RefreshToken:   m.RefreshToken,
		TokenExpiresAt: m.TokenExpiresAt,
		PageSize:       m.PageSize,
		LastSyncAt:     m.LastSyncAt,
		LastSyncStatus: m.LastSyncStatus,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Connection entity.
func (m *ConnectionModel) FromDomain(c *integration.Connection) {
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.AccountSlug = c.AccountSlug
	m.AppID = c.AppID
	m.AppSecret = c.AppSecret
	m.AccessToken = c.AccessToken
	m.RefreshToken = c.RefreshToken
	m.TokenExpiresAt = c.TokenExpiresAt
	m.PageSize = c.PageSize
	m.LastSyncAt = c.LastSyncAt
	m.LastSyncStatus = c.LastSyncStatus
	m.IsActive = c.IsActive
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// ConnectionModelFromDomain creates a new persistence model from a domain Connection entity.
func ConnectionModelFromDomain(c *integration.Connection) *ConnectionModel {
	m := &ConnectionModel{}
	m.FromDomain(c)
	return m
}
