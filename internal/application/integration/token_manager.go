// Package integration contains the application services that keep the retail
// platform's catalog, pricing, stock, branch and customer data consistent
// with the external ERP: the token manager, the per-entity reconcilers, the
// branch auto-matcher, the hierarchy resolver and the sync orchestrator.
package integration

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/integration"
)

// accessTokenSafetyMargin is how much remaining lifetime a cached access
// token needs before it is reused unchanged.
const accessTokenSafetyMargin = 5 * time.Minute

// TokenManager obtains and renews ERP access tokens for one tenant's
// connection using a three-tier strategy: reuse-if-valid, then
// refresh-if-refreshable, then full re-authentication. It is instantiated
// per sync invocation, never shared, so token state stays consistent within
// one run.
type TokenManager struct {
	conn   *integration.Connection
	conns  integration.ConnectionRepository
	auth   integration.AuthGateway
	logger *zap.Logger
	now    func() time.Time
}

// NewTokenManager creates a token manager bound to one tenant's connection.
func NewTokenManager(conn *integration.Connection, conns integration.ConnectionRepository, auth integration.AuthGateway, logger *zap.Logger) *TokenManager {
	return &TokenManager{
		conn:   conn,
		conns:  conns,
		auth:   auth,
		logger: logger,
		now:    time.Now,
	}
}

// AccessToken returns a usable access token. A cached token with more than
// the safety margin of lifetime left is returned unchanged; otherwise the
// token is renewed and persisted.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	if m.conn.TokenValidFor(accessTokenSafetyMargin, m.now()) {
		return m.conn.AccessToken, nil
	}
	return m.Renew(ctx)
}

// Renew skips the cached token and renews: one refresh attempt when a
// refresh credential is present, then a full re-authentication. Refresh
// failure is never retried; it falls straight through to re-authentication.
func (m *TokenManager) Renew(ctx context.Context) (string, error) {
	if m.conn.RefreshToken != "" {
		grant, err := m.auth.Refresh(ctx, m.conn.RefreshToken)
		if err == nil {
			return m.persistGrant(ctx, grant)
		}
		m.logger.Warn("ERP token refresh failed, falling back to full authentication",
			zap.String("tenant_id", m.conn.TenantID.String()),
			zap.Error(err),
		)
	}
	return m.Reauthenticate(ctx)
}

// Reauthenticate performs a full credential authentication and persists the
// resulting token pair. A failure here aborts the current sync operation.
func (m *TokenManager) Reauthenticate(ctx context.Context) (string, error) {
	grant, err := m.auth.Authenticate(ctx, m.conn.AccountSlug, m.conn.AppID, m.conn.AppSecret)
	if err != nil {
		return "", err
	}
	return m.persistGrant(ctx, grant)
}

func (m *TokenManager) persistGrant(ctx context.Context, grant *integration.TokenGrant) (string, error) {
	m.conn.ApplyTokenGrant(*grant, m.now())
	if err := m.conns.Save(ctx, m.conn); err != nil {
		return "", err
	}
	return m.conn.AccessToken, nil
}

// Interface guard
var _ integration.TokenSource = (*TokenManager)(nil)
