package integration

import "context"

// MaxBatchIDs is the ERP's limit on a comma-separated by-id batch listing.
const MaxBatchIDs = 200

// TokenSource yields access tokens for authenticated gateway calls.
// Reauthenticate discards any cached token and performs a full credential
// authentication; the gateway calls it exactly once after a 401 before
// retrying the failed call.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Reauthenticate(ctx context.Context) (string, error)
}

// AuthGateway exposes the ERP's token endpoints. Both accept form-encoded
// bodies and answer with a JSON envelope carrying the token pair.
type AuthGateway interface {
	// Authenticate performs a full credential authentication.
	Authenticate(ctx context.Context, accountSlug, appID, appSecret string) (*TokenGrant, error)

	// Refresh exchanges a refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)
}

// Gateway is a tenant-bound handle on the ERP's authenticated listing and
// notification endpoints. Implementations drive the page-based listing
// protocol to completion and pass the access token as a query parameter on
// every call.
type Gateway interface {
	ListBranches(ctx context.Context) ([]ExternalBranch, error)
	ListPriceLists(ctx context.Context) ([]ExternalPriceList, error)
	ListCategories(ctx context.Context) ([]ExternalCategory, error)
	ListBrands(ctx context.Context) ([]ExternalBrand, error)
	ListProducts(ctx context.Context) ([]ExternalProduct, error)
	ListCustomers(ctx context.Context) ([]ExternalCustomer, error)

	// ListProductsByIDs and ListCustomersByIDs drive the by-id batch listing
	// endpoint; at most MaxBatchIDs ids per call.
	ListProductsByIDs(ctx context.Context, ids []int64) ([]ExternalProduct, error)
	ListCustomersByIDs(ctx context.Context, ids []int64) ([]ExternalCustomer, error)

	// Notification subscription management.
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
	RegisterSubscription(ctx context.Context, event, targetURL string) (*Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) error
}

// GatewayFactory builds a Gateway bound to one tenant's connection and token
// source. A fresh gateway (and token manager) is built per sync invocation
// so token state stays consistent within one run.
type GatewayFactory interface {
	GatewayFor(conn *Connection, source TokenSource) Gateway
}
