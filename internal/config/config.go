package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
)

const (
	defaultNetwork        = "localhost"
	defaultPollIntervalMS = 1000
	defaultOfficePriceETH = "10"

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// ErrUnknownKey is returned by Get and Set for keys that are not settable.
var ErrUnknownKey = errors.New("unknown config key")

// Keys lists the settable config keys in display order.
var Keys = []string{
	"wallet_url",
	"network",
	"default_wallet",
	"poll_interval_ms",
	"confirm_timeout_sec",
	"office_price_eth",
}

// Load reads config from dir (or creates defaults). An empty dir falls back
// to $W3DAPP_CONFIG_DIR, then ~/.w3dapp.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3dapp")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg, err := loadJSON[Config](filepath.Join(dir, configFile))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg.fillDefaults()
	cfg.configDir = dir

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// EffectiveWalletURL returns $W3DAPP_WALLET_URL when set, else the configured URL.
func (c *Config) EffectiveWalletURL() string {
	if v := strings.TrimSpace(os.Getenv(EnvWalletURL)); v != "" {
		return v
	}
	return c.WalletURL
}

// WalletCandidates returns every endpoint to probe for a wallet: the
// registry's candidates for the configured network, then custom endpoints.
func (c *Config) WalletCandidates(reg *chain.Registry) []string {
	out := reg.WalletCandidates(c.EffectiveWalletURL(), c.Network)
	for _, url := range c.CustomEndpoints[c.Network] {
		if !slices.Contains(out, url) {
			out = append(out, url)
		}
	}
	return out
}

// PollInterval returns the receipt and account polling interval.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return time.Duration(defaultPollIntervalMS) * time.Millisecond
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// ConfirmTimeout returns how long to wait for a confirmation, or 0 for no limit.
func (c *Config) ConfirmTimeout() time.Duration {
	if c.ConfirmTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.ConfirmTimeoutSec) * time.Second
}

// OfficePrice returns the configured price per hour for new offices, in wei.
func (c *Config) OfficePrice() (*big.Int, error) {
	return chain.ParseETH(c.OfficePriceETH)
}

// AddEndpoint adds a custom wallet endpoint for a network.
func (c *Config) AddEndpoint(network, url string) error {
	if c.CustomEndpoints == nil {
		c.CustomEndpoints = make(map[string][]string)
	}
	if slices.Contains(c.CustomEndpoints[network], url) {
		return fmt.Errorf("endpoint %s already exists for network %s", url, network)
	}
	c.CustomEndpoints[network] = append(c.CustomEndpoints[network], url)
	return nil
}

// RemoveEndpoint removes a custom wallet endpoint for a network.
func (c *Config) RemoveEndpoint(network, url string) error {
	eps := c.CustomEndpoints[network]
	idx := slices.Index(eps, url)
	if idx == -1 {
		return fmt.Errorf("endpoint %s not found for network %s", url, network)
	}
	c.CustomEndpoints[network] = slices.Delete(eps, idx, idx+1)
	return nil
}

// Get returns the string form of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "wallet_url":
		return c.WalletURL, nil
	case "network":
		return c.Network, nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "poll_interval_ms":
		return strconv.Itoa(c.PollIntervalMS), nil
	case "confirm_timeout_sec":
		return strconv.Itoa(c.ConfirmTimeoutSec), nil
	case "office_price_eth":
		return c.OfficePriceETH, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Set validates value and assigns it to key. It does not save.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "wallet_url":
		c.WalletURL = value
	case "network":
		if _, err := chain.NewRegistry().GetByName(value); err != nil {
			return fmt.Errorf("network %q: %w", value, err)
		}
		c.Network = strings.ToLower(value)
	case "default_wallet":
		c.DefaultWallet = value
	case "poll_interval_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("poll_interval_ms must be a positive integer, got %q", value)
		}
		c.PollIntervalMS = n
	case "confirm_timeout_sec":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("confirm_timeout_sec must be zero or a positive integer, got %q", value)
		}
		c.ConfirmTimeoutSec = n
	case "office_price_eth":
		if _, err := chain.ParseETH(value); err != nil {
			return fmt.Errorf("office_price_eth: %w", err)
		}
		c.OfficePriceETH = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// --- helpers ---

func (c *Config) fillDefaults() {
	if c.Network == "" {
		c.Network = defaultNetwork
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = defaultPollIntervalMS
	}
	if c.OfficePriceETH == "" {
		c.OfficePriceETH = defaultOfficePriceETH
	}
	if c.CustomEndpoints == nil {
		c.CustomEndpoints = make(map[string][]string)
	}
}

func loadJSON[T any](path string) (*T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &zero, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
