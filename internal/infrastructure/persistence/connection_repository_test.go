package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/retailpos/backend/internal/domain/integration"
)

// newMockConnectionRepository creates a GormConnectionRepository with a mocked SQL connection
func newMockConnectionRepository(t *testing.T) (*GormConnectionRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormConnectionRepository(gormDB), mock, mockDB
}

func TestGormConnectionRepository_FindByTenant(t *testing.T) {
	t.Run("finds the tenant connection", func(t *testing.T) {
		repo, mock, mockDB := newMockConnectionRepository(t)
		defer mockDB.Close()

		connID := uuid.New()
		tenantID := uuid.New()
		expires := time.Now().Add(time.Hour)

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "account_slug", "app_id", "app_secret", "access_token", "token_expires_at", "page_size", "is_active"}).
			AddRow(connID, tenantID, "acme", "app-1", "secret", "tok", expires, 50, true)

		mock.ExpectQuery(`SELECT \* FROM "erp_connections" WHERE tenant_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, 1).
			WillReturnRows(rows)

		conn, err := repo.FindByTenant(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.NotNil(t, conn)
		assert.Equal(t, "acme", conn.AccountSlug)
		assert.True(t, conn.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns sentinel when the tenant has no connection", func(t *testing.T) {
		repo, mock, mockDB := newMockConnectionRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "erp_connections" WHERE tenant_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		conn, err := repo.FindByTenant(context.Background(), tenantID)

		assert.Nil(t, conn)
		assert.Equal(t, integration.ErrConnectionNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormConnectionRepository_FindAllActive(t *testing.T) {
	t.Run("returns only active connections", func(t *testing.T) {
		repo, mock, mockDB := newMockConnectionRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "account_slug", "app_id", "app_secret", "page_size", "is_active"}).
			AddRow(uuid.New(), uuid.New(), "acme", "app-1", "secret", 50, true).
			AddRow(uuid.New(), uuid.New(), "globex", "app-2", "secret", 100, true)

		mock.ExpectQuery(`SELECT \* FROM "erp_connections" WHERE is_active = \$1 ORDER BY tenant_id ASC`).
			WithArgs(true).
			WillReturnRows(rows)

		conns, err := repo.FindAllActive(context.Background())

		assert.NoError(t, err)
		assert.Len(t, conns, 2)
		assert.Equal(t, "globex", conns[1].AccountSlug)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
