package integration

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/integration"
	"github.com/retailpos/backend/internal/domain/partner"
)

// MockConnectionRepository is a mock implementation of ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*integration.Connection, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Connection), args.Error(1)
}

func (m *MockConnectionRepository) FindAllActive(ctx context.Context) ([]integration.Connection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Save(ctx context.Context, conn *integration.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

// MockAuthGateway is a mock implementation of AuthGateway
type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Authenticate(ctx context.Context, accountSlug, appID, appSecret string) (*integration.TokenGrant, error) {
	args := m.Called(ctx, accountSlug, appID, appSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.TokenGrant), args.Error(1)
}

func (m *MockAuthGateway) Refresh(ctx context.Context, refreshToken string) (*integration.TokenGrant, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.TokenGrant), args.Error(1)
}

// MockGateway is a mock implementation of Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListBranches(ctx context.Context) ([]integration.ExternalBranch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalBranch), args.Error(1)
}

func (m *MockGateway) ListPriceLists(ctx context.Context) ([]integration.ExternalPriceList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalPriceList), args.Error(1)
}

func (m *MockGateway) ListCategories(ctx context.Context) ([]integration.ExternalCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalCategory), args.Error(1)
}

func (m *MockGateway) ListBrands(ctx context.Context) ([]integration.ExternalBrand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalBrand), args.Error(1)
}

func (m *MockGateway) ListProducts(ctx context.Context) ([]integration.ExternalProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalProduct), args.Error(1)
}

func (m *MockGateway) ListCustomers(ctx context.Context) ([]integration.ExternalCustomer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalCustomer), args.Error(1)
}

func (m *MockGateway) ListProductsByIDs(ctx context.Context, ids []int64) ([]integration.ExternalProduct, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalProduct), args.Error(1)
}

func (m *MockGateway) ListCustomersByIDs(ctx context.Context, ids []int64) ([]integration.ExternalCustomer, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ExternalCustomer), args.Error(1)
}

func (m *MockGateway) ListSubscriptions(ctx context.Context) ([]integration.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Subscription), args.Error(1)
}

func (m *MockGateway) RegisterSubscription(ctx context.Context, event, targetURL string) (*integration.Subscription, error) {
	args := m.Called(ctx, event, targetURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Subscription), args.Error(1)
}

func (m *MockGateway) DeleteSubscription(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGatewayFactory is a mock implementation of GatewayFactory
type MockGatewayFactory struct {
	mock.Mock
}

func (m *MockGatewayFactory) GatewayFor(conn *integration.Connection, source integration.TokenSource) integration.Gateway {
	args := m.Called(conn, source)
	return args.Get(0).(integration.Gateway)
}

// MockBranchRepository is a mock implementation of BranchRepository
type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Branch, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.Branch, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindUnlinked(ctx context.Context, tenantID uuid.UUID) ([]catalog.Branch, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Branch), args.Error(1)
}

func (m *MockBranchRepository) Create(ctx context.Context, branch *catalog.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) Update(ctx context.Context, branch *catalog.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPriceListRepository is a mock implementation of PriceListRepository
type MockPriceListRepository struct {
	mock.Mock
}

func (m *MockPriceListRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.PriceList, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PriceList), args.Error(1)
}

func (m *MockPriceListRepository) Upsert(ctx context.Context, list *catalog.PriceList) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockPriceListRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.Category, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Upsert(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockBrandRepository is a mock implementation of BrandRepository
type MockBrandRepository struct {
	mock.Mock
}

func (m *MockBrandRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.Brand, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Brand), args.Error(1)
}

func (m *MockBrandRepository) Upsert(ctx context.Context, brand *catalog.Brand) error {
	args := m.Called(ctx, brand)
	return args.Error(0)
}

func (m *MockBrandRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByExternalIDs(ctx context.Context, tenantID uuid.UUID, externalIDs []int64) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Upsert(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpsertPrice(ctx context.Context, price *catalog.ProductPrice) error {
	args := m.Called(ctx, price)
	return args.Error(0)
}

func (m *MockProductRepository) UpsertStock(ctx context.Context, stock *catalog.ProductStock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

func (m *MockProductRepository) AssignParent(ctx context.Context, tenantID, parentID uuid.UUID, variantIDs []uuid.UUID) error {
	args := m.Called(ctx, tenantID, parentID, variantIDs)
	return args.Error(0)
}

func (m *MockProductRepository) MarkParent(ctx context.Context, tenantID, productID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID)
	return args.Error(0)
}

func (m *MockProductRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, externalID int64) error {
	args := m.Called(ctx, tenantID, externalID)
	return args.Error(0)
}

func (m *MockProductRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Upsert(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}
