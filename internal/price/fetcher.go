// Package price converts ETH amounts to a fiat currency using CoinGecko.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	ethID          = "ethereum"
)

// Fetcher retrieves the ETH price from CoinGecko.
type Fetcher struct {
	client   *http.Client
	currency string
	baseURL  string
}

// NewFetcher creates a fetcher quoting in currency (default usd).
func NewFetcher(currency string) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		currency: strings.ToLower(currency),
		baseURL:  defaultBaseURL,
	}
}

// Currency returns the quote currency, lowercased.
func (f *Fetcher) Currency() string { return f.currency }

// ETHPrice returns the price of one ETH.
func (f *Fetcher) ETHPrice(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", f.baseURL, ethID, f.currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading price response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price service returned %s", resp.Status)
	}

	// Response: {"ethereum":{"usd":1234.56}}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("parsing price response: %w", err)
	}
	p, ok := raw[ethID][f.currency]
	if !ok {
		return 0, fmt.Errorf("no %s price for ETH", strings.ToUpper(f.currency))
	}
	return p, nil
}

// Value converts an amount in wei to the quote currency.
func (f *Fetcher) Value(ctx context.Context, wei *big.Int) (float64, error) {
	p, err := f.ETHPrice(ctx)
	if err != nil {
		return 0, err
	}
	return WeiValue(wei, p), nil
}

// WeiValue multiplies an amount in wei by a per-ETH price.
func WeiValue(wei *big.Int, perETH float64) float64 {
	if wei == nil {
		return 0
	}
	eth := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18))
	v, _ := new(big.Float).Mul(eth, big.NewFloat(perETH)).Float64()
	return v
}

// Format renders v with two decimals and the upper-case currency code.
func (f *Fetcher) Format(v float64) string {
	return fmt.Sprintf("%.2f %s", v, strings.ToUpper(f.currency))
}
