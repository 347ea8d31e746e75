package config

// Config holds all w3dapp configuration.
type Config struct {
	WalletURL         string              `json:"wallet_url,omitempty"` // preferred wallet endpoint, probed first
	Network           string              `json:"network"`
	DefaultWallet     string              `json:"default_wallet,omitempty"`
	PollIntervalMS    int                 `json:"poll_interval_ms"`    // receipt and account polling
	ConfirmTimeoutSec int                 `json:"confirm_timeout_sec"` // 0 waits until interrupted
	OfficePriceETH    string              `json:"office_price_eth"`
	CustomEndpoints   map[string][]string `json:"custom_endpoints,omitempty"` // extra wallet endpoints per network

	// internal: config dir path used for Save()
	configDir string
}
