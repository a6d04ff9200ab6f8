package bybit

import (
	"context"
	"fmt"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// klineFetcher performs the raw v5 market kline request
type klineFetcher func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// timeFetcher performs the raw v5 server time request
type timeFetcher func(ctx context.Context) (interface{}, error)

// Client wraps the Bybit API client for public market data
type Client struct {
	httpClient *bybit_api.Client
	fetch      klineFetcher
	serverTime timeFetcher
	category   string
	testnet    bool
	retry      RetryConfig
}

// Config holds the configuration for the Bybit client
type Config struct {
	Category string // "spot", "linear", "inverse"
	Testnet  bool
	BaseURL  string // overrides the mainnet/testnet host
	Retry    *RetryConfig
}

// NewClient creates a new Bybit client. Market data endpoints are public, so no
// credentials are needed.
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		if config.Testnet {
			baseURL = bybit_api.TESTNET
		} else {
			baseURL = bybit_api.MAINNET
		}
	}

	httpClient := bybit_api.NewBybitHttpClient("", "", bybit_api.WithBaseURL(baseURL))

	retry := DefaultRetryConfig()
	if config.Retry != nil {
		retry = *config.Retry
	}

	category := config.Category
	if category == "" {
		category = "linear"
	}

	c := &Client{
		httpClient: httpClient,
		category:   category,
		testnet:    config.Testnet,
		retry:      retry,
	}
	c.fetch = func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		res, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
		return res, err
	}
	c.serverTime = func(ctx context.Context) (interface{}, error) {
		res, err := c.httpClient.NewUtaBybitServiceNoParams().GetServerTime(ctx)
		return res, err
	}
	return c
}

// Ping requests the server time once to confirm the API is reachable
func (c *Client) Ping(ctx context.Context) error {
	result, err := c.serverTime(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach bybit %s: %w", c.GetEnvironment(), err)
	}
	serverResp, ok := result.(*bybit_api.ServerResponse)
	if !ok || serverResp == nil {
		return fmt.Errorf("invalid response type %T", result)
	}
	return ParseAPIError(serverResp.RetCode, serverResp.RetMsg)
}

// IsTestnet returns whether the client is configured for testnet
func (c *Client) IsTestnet() bool {
	return c.testnet
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	if c.testnet {
		return "testnet"
	}
	return "mainnet"
}
