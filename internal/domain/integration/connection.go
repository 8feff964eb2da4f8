package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultPageSize is used when a connection carries no page-size hint.
const DefaultPageSize = 50

// tokenLifetimeSafetyMargin is subtracted from the provider-reported token
// lifetime so a token is never used right at its expiry edge.
const tokenLifetimeSafetyMargin = 300 * time.Second

// Connection holds a tenant's ERP account credentials and the current
// access/refresh token pair. Exactly one connection exists per tenant;
// inactive connections are never used for sync.
type Connection struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	AccountSlug    string
	AppID          string
	AppSecret      string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt *time.Time
	PageSize       int
	LastSyncAt     *time.Time
	LastSyncStatus string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewConnection creates an active connection for a tenant.
func NewConnection(tenantID uuid.UUID, accountSlug, appID, appSecret string) (*Connection, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if accountSlug == "" || appID == "" || appSecret == "" {
		return nil, ErrMissingCredentials
	}

	now := time.Now()
	return &Connection{
		ID:          uuid.New(),
		TenantID:    tenantID,
		AccountSlug: accountSlug,
		AppID:       appID,
		AppSecret:   appSecret,
		PageSize:    DefaultPageSize,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// TokenValidFor reports whether the cached access token is still usable at
// the given instant, keeping the requested safety margin before expiry.
func (c *Connection) TokenValidFor(margin time.Duration, now time.Time) bool {
	if c.AccessToken == "" || c.TokenExpiresAt == nil {
		return false
	}
	return c.TokenExpiresAt.After(now.Add(margin))
}

// TokenExpiresWithin reports whether the access token expires within d of
// the given instant. A connection without a token counts as expiring.
func (c *Connection) TokenExpiresWithin(d time.Duration, now time.Time) bool {
	if c.AccessToken == "" || c.TokenExpiresAt == nil {
		return true
	}
	return !c.TokenExpiresAt.After(now.Add(d))
}

// ApplyTokenGrant stores a freshly issued token pair. The recorded expiry is
// the provider-reported lifetime minus a 300-second safety margin.
func (c *Connection) ApplyTokenGrant(grant TokenGrant, now time.Time) {
	c.AccessToken = grant.AccessToken
	if grant.RefreshToken != "" {
		c.RefreshToken = grant.RefreshToken
	}
	expiry := now.Add(time.Duration(grant.ExpiresIn)*time.Second - tokenLifetimeSafetyMargin)
	c.TokenExpiresAt = &expiry
	c.UpdatedAt = now
}

// RecordSyncSuccess stores the completion timestamp and a human-readable
// summary of the last full sync.
func (c *Connection) RecordSyncSuccess(summary string, now time.Time) {
	c.LastSyncAt = &now
	c.LastSyncStatus = summary
	c.UpdatedAt = now
}

// RecordSyncFailure stores the failing step's error. Writes of already
// completed steps are retained, so the status reflects the last completed
// step and a subsequent sync is expected to self-heal.
func (c *Connection) RecordSyncFailure(errMsg string, now time.Time) {
	c.LastSyncAt = &now
	c.LastSyncStatus = "failed: " + errMsg
	c.UpdatedAt = now
}

// EffectivePageSize returns the page-size hint, falling back to the default.
func (c *Connection) EffectivePageSize() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

// TokenGrant is a token pair issued by the ERP token endpoints.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds
}

// ConnectionRepository persists tenant ERP connections. The token fields are
// mutated only by the token manager, always read-then-conditionally-write;
// same-tenant syncs are serialized by the caller so no extra locking is
// required here.
type ConnectionRepository interface {
	// FindByTenant returns the tenant's connection or ErrConnectionNotFound.
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*Connection, error)

	// FindAllActive returns every active connection across tenants.
	FindAllActive(ctx context.Context) ([]Connection, error)

	// Save creates or updates a connection.
	Save(ctx context.Context, conn *Connection) error
}
