package osrs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"osrs-alching/pkg/logging"
)

// DefaultBaseURL is the RuneScape Wiki real-time prices API
const DefaultBaseURL = "https://prices.runescape.wiki/api/v1/osrs"

// ClientOptions tunes a Client. Zero values fall back to defaults.
type ClientOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            *logging.Logger
}

// Client handles API communication with RuneScape Wiki API
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	logger     *logging.Logger
}

// NewClient creates a new OSRS API client
// userAgent is required by the RuneScape Wiki API
func NewClient(userAgent string) *Client {
	return NewClientWithOptions(userAgent, ClientOptions{})
}

// NewClientWithOptions creates a client with a custom base URL, timeout and request rate.
func NewClientWithOptions(userAgent string, opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	return &Client{
		baseURL:    opts.BaseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: opts.Timeout},
		// burst of 2 lets /latest and /1h go out together
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2),
		logger:  opts.Logger,
	}
}

// makeAPIRequest is the core HTTP request method. Every failure comes back as a *FetchError.
func (c *Client) makeAPIRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Kind: KindNetwork, Endpoint: endpoint, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Endpoint: endpoint, Err: fmt.Errorf("creating request: %w", err)}
	}

	// Critical: User-Agent required by RuneScape Wiki API
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.APICall("osrs_api", endpoint, http.MethodGet)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fe := &FetchError{Kind: KindNetwork, Endpoint: endpoint, Err: err}
		c.logger.APIError("osrs_api", endpoint, fe, time.Since(start).Seconds(), 0)
		return nil, fe
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fe := &FetchError{Kind: KindHTTPStatus, Endpoint: endpoint, StatusCode: resp.StatusCode}
		c.logger.APIError("osrs_api", endpoint, fe, time.Since(start).Seconds(), resp.StatusCode)
		return nil, fe
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fe := &FetchError{Kind: KindNetwork, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
		c.logger.APIError("osrs_api", endpoint, fe, time.Since(start).Seconds(), resp.StatusCode)
		return nil, fe
	}

	c.logger.APISuccess("osrs_api", endpoint, time.Since(start).Seconds(), resp.StatusCode)
	return body, nil
}

// GetLatestPrices fetches the current instant buy/sell prices of every item
func (c *Client) GetLatestPrices(ctx context.Context) (*LatestPricesResponse, error) {
	const endpoint = "/latest"

	data, err := c.makeAPIRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching latest prices: %w", err)
	}

	var response LatestPricesResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("fetching latest prices: %w", &FetchError{Kind: KindParse, Endpoint: endpoint, StatusCode: http.StatusOK, Err: err})
	}

	return &response, nil
}

// GetItemMapping fetches item metadata (names, buy limits, alch values)
func (c *Client) GetItemMapping(ctx context.Context) ([]ItemMapping, error) {
	data, err := c.makeAPIRequest(ctx, "/mapping")
	if err != nil {
		return nil, fmt.Errorf("fetching item mapping: %w", err)
	}

	var mappings []ItemMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("fetching item mapping: %w", &FetchError{Kind: KindParse, Endpoint: "/mapping", StatusCode: http.StatusOK, Err: err})
	}

	return mappings, nil
}

// GetHourlyPrices fetches every item's average prices over the most recent 1h bucket
func (c *Client) GetHourlyPrices(ctx context.Context) (*BulkPriceResponse, error) {
	const endpoint = "/1h"

	data, err := c.makeAPIRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching 1h prices: %w", err)
	}

	var response BulkPriceResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("fetching 1h prices: %w", &FetchError{Kind: KindParse, Endpoint: endpoint, StatusCode: http.StatusOK, Err: err})
	}

	return &response, nil
}
