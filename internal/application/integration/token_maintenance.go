package integration

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/retailpos/backend/internal/domain/integration"
)

// tokenRefreshHorizon is how far ahead of expiry the sweep renews tokens.
const tokenRefreshHorizon = 2 * time.Hour

// TokenMaintenance proactively renews tokens that are close to expiry so
// that scheduled syncs rarely pay the re-authentication round trip. It runs
// over every active connection; a failure on one tenant is logged and never
// blocks the others.
type TokenMaintenance struct {
	conns  integration.ConnectionRepository
	auth   integration.AuthGateway
	logger *zap.Logger
	now    func() time.Time
}

// NewTokenMaintenance creates the token sweep service.
func NewTokenMaintenance(conns integration.ConnectionRepository, auth integration.AuthGateway, logger *zap.Logger) *TokenMaintenance {
	return &TokenMaintenance{
		conns:  conns,
		auth:   auth,
		logger: logger,
		now:    time.Now,
	}
}

// RefreshExpiring renews the token of every active connection whose token
// expires within the refresh horizon. It returns how many tokens were
// renewed.
func (s *TokenMaintenance) RefreshExpiring(ctx context.Context) (int, error) {
	conns, err := s.conns.FindAllActive(ctx)
	if err != nil {
		return 0, err
	}

	renewed := 0
	for i := range conns {
		conn := &conns[i]
		if !conn.TokenExpiresWithin(tokenRefreshHorizon, s.now()) {
			continue
		}
		manager := NewTokenManager(conn, s.conns, s.auth, s.logger)
		if _, err := manager.Renew(ctx); err != nil {
			s.logger.Error("Token renewal failed during maintenance sweep",
				zap.String("tenant_id", conn.TenantID.String()),
				zap.Error(err),
			)
			continue
		}
		renewed++
	}
	return renewed, nil
}
