package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/retailpos/backend/internal/domain/integration"
)

// maxResponseSize is the maximum allowed ERP response size (10MB).
const maxResponseSize = 10 * 1024 * 1024

// errorBodySnippet is how much of a failing response body is kept in the
// error for diagnostics.
const errorBodySnippet = 512

// Config holds ERP API client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is the maximum sustained request rate against the ERP, in
	// requests per second; RateBurst is the burst allowance.
	RateLimit float64
	RateBurst int
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("erp: base URL is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 5
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 10
	}
	return nil
}

// Client talks to the ERP HTTP API. It implements the token endpoints
// directly and hands out per-tenant gateways bound to a token source.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates an ERP API client with the given configuration.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
		logger:     logger,
	}, nil
}

// ---------------------------------------------------------------------------
// Token endpoints (integration.AuthGateway)
// ---------------------------------------------------------------------------

// Authenticate performs a full credential authentication.
func (c *Client) Authenticate(ctx context.Context, accountSlug, appID, appSecret string) (*integration.TokenGrant, error) {
	form := url.Values{}
	form.Set("account", accountSlug)
	form.Set("app_id", appID)
	form.Set("app_secret", appSecret)
	return c.postTokenForm(ctx, pathTokens, form)
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*integration.TokenGrant, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	return c.postTokenForm(ctx, pathTokenRefresh, form)
}

// postTokenForm posts a form-encoded body to a token endpoint. A non-2xx
// response or a success envelope lacking a token is an authentication error.
func (c *Client) postTokenForm(ctx context.Context, path string, form url.Values) (*integration.TokenGrant, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("erp: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("erp: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned HTTP %d: %s",
			integration.ErrAuthenticationFailed, path, resp.StatusCode, snippet(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrAuthenticationFailed, path, err)
	}
	var tok tokenBody
	if len(env.Body) > 0 {
		if err := json.Unmarshal(env.Body, &tok); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", integration.ErrAuthenticationFailed, path, err)
		}
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s answered without a token: %s",
			integration.ErrAuthenticationFailed, path, env.StatusMessage)
	}

	return &integration.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
	}, nil
}

// ---------------------------------------------------------------------------
// integration.GatewayFactory
// ---------------------------------------------------------------------------

// GatewayFor returns a gateway bound to one tenant's connection and token
// source.
func (c *Client) GatewayFor(conn *integration.Connection, source integration.TokenSource) integration.Gateway {
	return &tenantGateway{
		client: c,
		conn:   conn,
		source: source,
	}
}

// tenantGateway drives the ERP's authenticated endpoints for one tenant.
type tenantGateway struct {
	client *Client
	conn   *integration.Connection
	source integration.TokenSource
}

// ---------------------------------------------------------------------------
// Listing endpoints
// ---------------------------------------------------------------------------

func (g *tenantGateway) ListBranches(ctx context.Context) ([]integration.ExternalBranch, error) {
	records, err := g.fetchAll(ctx, pathBranches)
	if err != nil {
		return nil, err
	}
	return decodeRecords[integration.ExternalBranch](records, func(r *integration.ExternalBranch, raw json.RawMessage) {
		r.Raw = raw
	})
}

func (g *tenantGateway) ListPriceLists(ctx context.Context) ([]integration.ExternalPriceList, error) {
	records, err := g.fetchAll(ctx, pathPriceLists)
	if err != nil {
		return nil, err
	}
	return decodeRecords[integration.ExternalPriceList](records, func(r *integration.ExternalPriceList, raw json.RawMessage) {
		r.Raw = raw
	})
}

func (g *tenantGateway) ListCategories(ctx context.Context) ([]integration.ExternalCategory, error) {
	records, err := g.fetchAll(ctx, pathCategories)
	if err != nil {
		return nil, err
	}
	return decodeRecords[integration.ExternalCategory](records, func(r *integration.ExternalCategory, raw json.RawMessage) {
		r.Raw = raw
	})
}

func (g *tenantGateway) ListBrands(ctx context.Context) ([]integration.ExternalBrand, error) {
	records, err := g.fetchAll(ctx, pathBrands)
	if err != nil {
		return nil, err
	}
	return decodeRecords[integration.ExternalBrand](records, func(r *integration.ExternalBrand, raw json.RawMessage) {
		r.Raw = raw
	})
}

func (g *tenantGateway) ListProducts(ctx context.Context) ([]integration.ExternalProduct, error) {
	records, err := g.fetchAll(ctx, pathProducts)
	if err != nil {
		return nil, err
	}
	return decodeRecords[integration.ExternalProduct](records, func(r *integration.ExternalProduct, raw json.RawMessage) {
		r.Raw = raw
	})
}

func (g *tenantGateway) ListCustomers(ctx context.Context) ([]integration.ExternalCustomer, error) {
	records, err := g.fetchAll(ctx, pathCustomers)
	if err != nil {
		return nil, err
	}
	return decodeRecords[integration.ExternalCustomer](records, func(r *integration.ExternalCustomer, raw json.RawMessage) {
		r.Raw = raw
	})
}

func (g *tenantGateway) ListProductsByIDs(ctx context.Context, ids []int64) ([]integration.ExternalProduct, error) {
	records, err := g.fetchByIDs(ctx, pathProducts, ids)
	if err != nil {
		return nil, err
	}
	return decodeRecords[integration.ExternalProduct](records, func(r *integration.ExternalProduct, raw json.RawMessage) {
		r.Raw = raw
	})
}

func (g *tenantGateway) ListCustomersByIDs(ctx context.Context, ids []int64) ([]integration.ExternalCustomer, error) {
	records, err := g.fetchByIDs(ctx, pathCustomers, ids)
	if err != nil {
		return nil, err
	}
	return decodeRecords[integration.ExternalCustomer](records, func(r *integration.ExternalCustomer, raw json.RawMessage) {
		r.Raw = raw
	})
}

// ---------------------------------------------------------------------------
// Notification subscriptions
// ---------------------------------------------------------------------------

func (g *tenantGateway) ListSubscriptions(ctx context.Context) ([]integration.Subscription, error) {
	body, err := g.do(ctx, http.MethodGet, pathNotifications, nil, nil)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrInvalidResponse, pathNotifications, err)
	}
	var subs []integration.Subscription
	if len(env.Body) > 0 {
		if err := json.Unmarshal(env.Body, &subs); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", integration.ErrInvalidResponse, pathNotifications, err)
		}
	}
	return subs, nil
}

func (g *tenantGateway) RegisterSubscription(ctx context.Context, event, targetURL string) (*integration.Subscription, error) {
	payload, err := json.Marshal(subscriptionRequest{Event: event, TargetURL: targetURL})
	if err != nil {
		return nil, err
	}
	body, err := g.do(ctx, http.MethodPost, pathNotifications, nil, payload)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrInvalidResponse, pathNotifications, err)
	}
	var sub integration.Subscription
	if len(env.Body) > 0 {
		if err := json.Unmarshal(env.Body, &sub); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", integration.ErrInvalidResponse, pathNotifications, err)
		}
	}
	return &sub, nil
}

func (g *tenantGateway) DeleteSubscription(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d", pathNotifications, id)
	_, err := g.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// ---------------------------------------------------------------------------
// Paginated fetching
// ---------------------------------------------------------------------------

// fetchAll drives page=1,2,... against a listing endpoint until the provider
// reports the current page at or past its declared total, or the response
// carries no pagination metadata at all.
func (g *tenantGateway) fetchAll(ctx context.Context, path string) ([]json.RawMessage, error) {
	pageSize := g.conn.EffectivePageSize()

	var all []json.RawMessage
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("limit", strconv.Itoa(pageSize))

		body, err := g.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return nil, err
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %v", integration.ErrInvalidResponse, path, page, err)
		}

		records, err := decodeRecordArray(env.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %v", integration.ErrInvalidResponse, path, page, err)
		}
		all = append(all, records...)

		// No pagination metadata means a single, complete page.
		if env.Page == nil || env.TotalPages == nil {
			break
		}
		if *env.Page >= *env.TotalPages {
			break
		}
	}

	g.client.logger.Debug("Fetched ERP records",
		zap.String("tenant_id", g.conn.TenantID.String()),
		zap.String("path", path),
		zap.Int("count", len(all)),
	)
	return all, nil
}

// fetchByIDs drives the comma-separated by-id batch listing endpoint.
func (g *tenantGateway) fetchByIDs(ctx context.Context, path string, ids []int64) ([]json.RawMessage, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > integration.MaxBatchIDs {
		return nil, fmt.Errorf("%w: %d > %d", integration.ErrTooManyIDs, len(ids), integration.MaxBatchIDs)
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	query := url.Values{}
	query.Set("ids", strings.Join(parts, ","))

	body, err := g.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrInvalidResponse, path, err)
	}
	records, err := decodeRecordArray(env.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrInvalidResponse, path, err)
	}
	return records, nil
}

// do performs one authenticated call. The access token travels as a query
// parameter. A 401 triggers exactly one re-authentication followed by one
// retry of the same call; a second consecutive 401 is fatal for the sync
// run. Other non-2xx responses are fatal with the status and a body snippet
// captured for diagnostics.
func (g *tenantGateway) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	token, err := g.source.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := g.client.roundTrip(ctx, method, path, query, payload, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		token, err = g.source.Reauthenticate(ctx)
		if err != nil {
			return nil, err
		}
		status, body, err = g.client.roundTrip(ctx, method, path, query, payload, token)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s rejected a freshly issued token", integration.ErrAuthenticationFailed, path)
		}
	}

	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: %s returned HTTP %d: %s", integration.ErrRequestFailed, path, status, snippet(body))
	}
	return body, nil
}

// roundTrip performs a single rate-limited HTTP exchange.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", token)

	var reader io.Reader
	if payload != nil {
		reader = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path+"?"+query.Encode(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("erp: failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", integration.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("erp: failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// ---------------------------------------------------------------------------
// Decoding helpers
// ---------------------------------------------------------------------------

// decodeRecordArray splits an envelope body into its raw records. An empty
// body decodes as no records.
func decodeRecordArray(body json.RawMessage) ([]json.RawMessage, error) {
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// decodeRecords unmarshals raw records into typed ones, attaching each raw
// blob for diagnostic replay.
func decodeRecords[T any](records []json.RawMessage, attach func(*T, json.RawMessage)) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, raw := range records {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
		}
		attach(&rec, raw)
		out = append(out, rec)
	}
	return out, nil
}

// snippet truncates a response body for inclusion in an error message.
func snippet(body []byte) string {
	if len(body) > errorBodySnippet {
		return string(body[:errorBodySnippet]) + "..."
	}
	return string(body)
}

// Interface guards
var (
	_ integration.AuthGateway    = (*Client)(nil)
	_ integration.GatewayFactory = (*Client)(nil)
	_ integration.Gateway        = (*tenantGateway)(nil)
)
