package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by w3dapp.
const (
	EnvConfigDir = "W3DAPP_CONFIG_DIR"
	EnvWalletURL = "W3DAPP_WALLET_URL"
	EnvMode      = "W3DAPP_ENV"
)

// LoadDotenvIfPresent reads ./.env for local development. Variables already
// set in the environment win, and nothing happens in production mode or when
// the file is absent.
func LoadDotenvIfPresent() {
	LoadDotenv(".env")
}

// LoadDotenv is LoadDotenvIfPresent for an explicit path.
func LoadDotenv(path string) {
	if strings.EqualFold(os.Getenv(EnvMode), "production") {
		return
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return
		}
		log.Printf("dotenv stat error: %v", err)
		return
	}

	if err := godotenv.Load(path); err != nil {
		log.Printf("dotenv load error: %v", err)
	}
}
