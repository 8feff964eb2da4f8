package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/retailpos/backend/internal/domain/catalog"
)

// newMockProductRepository creates a GormProductRepository with a mocked SQL connection
func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormProductRepository(gormDB), mock, mockDB
}

func TestGormProductRepository_FindByExternalID(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "external_id", "name", "base_price", "base_cost", "tax_rate", "is_active"}).
			AddRow(productID, tenantID, int64(42), "Remera Basica", decimal.RequireFromString("1999.99"), decimal.Zero, decimal.NewFromInt(21), true)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE tenant_id = \$1 AND external_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, int64(42), 1).
			WillReturnRows(rows)

		product, err := repo.FindByExternalID(context.Background(), tenantID, 42)

		assert.NoError(t, err)
		assert.NotNil(t, product)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, int64(42), product.ExternalID)
		assert.True(t, product.BasePrice.Equal(decimal.RequireFromString("1999.99")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns sentinel for missing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE tenant_id = \$1 AND external_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, int64(99), 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByExternalID(context.Background(), tenantID, 99)

		assert.Error(t, err)
		assert.Nil(t, product)
		assert.Equal(t, catalog.ErrProductNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindByExternalIDs(t *testing.T) {
	t.Run("returns empty slice without querying for no ids", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		products, err := repo.FindByExternalIDs(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_Deactivate(t *testing.T) {
	t.Run("marks the product inactive", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectExec(`UPDATE "products" SET .* WHERE tenant_id = \$\d+ AND external_id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Deactivate(context.Background(), tenantID, 42)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns sentinel when nothing matched", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "products" SET .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Deactivate(context.Background(), uuid.New(), 42)

		assert.Equal(t, catalog.ErrProductNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_AssignParent(t *testing.T) {
	t.Run("does nothing for an empty variant list", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		err := repo.AssignParent(context.Background(), uuid.New(), uuid.New(), nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updates every listed variant", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "products" SET .* WHERE tenant_id = \$\d+ AND id IN \(\$\d+,\$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.AssignParent(context.Background(), uuid.New(), uuid.New(), []uuid.UUID{uuid.New(), uuid.New()})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
