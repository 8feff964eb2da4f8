package erp

import "encoding/json"

// API paths of the ERP HTTP surface.
const (
	pathTokens        = "/v1/tokens"
	pathTokenRefresh  = "/v1/tokens/refresh"
	pathBranches      = "/v1/branches"
	pathPriceLists    = "/v1/price-lists"
	pathCategories    = "/v1/categories"
	pathBrands        = "/v1/brands"
	pathProducts      = "/v1/products"
	pathCustomers     = "/v1/customers"
	pathNotifications = "/v1/notifications"
)

// envelope is the ERP's response wrapper. Listing endpoints carry pagination
// metadata; a response without it is a single, complete page.
type envelope struct {
	Status        int             `json:"status"`
	StatusMessage string          `json:"statusMessage"`
	Body          json.RawMessage `json:"body"`
	Page          *int            `json:"page"`
	TotalPages    *int            `json:"total_pages"`
}

// tokenBody is the body of a token endpoint envelope.
type tokenBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// subscriptionRequest is the JSON body for registering a notification
// subscription.
type subscriptionRequest struct {
	Event     string `json:"event"`
	TargetURL string `json:"target_url"`
}
