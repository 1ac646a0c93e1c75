package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

// Client fetches per-wallet trading performance from the portfolio API
type Client struct {
	BaseURL string
	APIKey  string
	MockAPI bool
	client  *http.Client
}

// WalletPortfolio represents one wallet's performance snapshot
type WalletPortfolio struct {
	Wallet         string  `json:"wallet"`
	RealizedUsdPnl float64 `json:"realizedUsdPnl"`
	RealizedSolPnl float64 `json:"realizedSolPnl"`
	TotalTrades    int     `json:"totalTrades"`
	BuyCount       int     `json:"buyCount"`
	SellCount      int     `json:"sellCount"`
	UsdBought      float64 `json:"usdBought"`
	UsdSold        float64 `json:"usdSold"`
	SolBought      float64 `json:"solBought"`
	SolSold        float64 `json:"solSold"`
}

// NewClient creates a new portfolio API client
func NewClient(baseURL, apiKey string, mockAPI bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		MockAPI: mockAPI,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetWalletPortfolio retrieves the current performance snapshot for a wallet
func (c *Client) GetWalletPortfolio(ctx context.Context, wallet string) (*WalletPortfolio, error) {
	if c.MockAPI {
		return c.mockGetWalletPortfolio(wallet)
	}

	endpoint := fmt.Sprintf("%s/portfolio?wallet=%s", c.BaseURL, url.QueryEscape(wallet))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build portfolio request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portfolio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portfolio API returned status %d for wallet %s", resp.StatusCode, wallet)
	}

	var portfolio WalletPortfolio
	if err := json.NewDecoder(resp.Body).Decode(&portfolio); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio response: %w", err)
	}
	return &portfolio, nil
}

// mockGetWalletPortfolio mocks the GetWalletPortfolio method for testing
func (c *Client) mockGetWalletPortfolio(wallet string) (*WalletPortfolio, error) {
	trades := rand.Intn(50) + 1
	buys := rand.Intn(trades + 1)
	return &WalletPortfolio{
		Wallet:         wallet,
		RealizedUsdPnl: float64(rand.Intn(200000)-100000) / 100,
		RealizedSolPnl: float64(rand.Intn(20000)-10000) / 100,
		TotalTrades:    trades,
		BuyCount:       buys,
		SellCount:      trades - buys,
		UsdBought:      float64(rand.Intn(1000000)) / 100,
		UsdSold:        float64(rand.Intn(1000000)) / 100,
		SolBought:      float64(rand.Intn(100000)) / 100,
		SolSold:        float64(rand.Intn(100000)) / 100,
	}, nil
}
