package config

import "time"

// Timeout constants used across cmd.
const (
	DetectTimeout   = 15 * time.Second // probing every wallet candidate
	ReadTimeout     = 30 * time.Second // view calls and account lookups
	TxDeployTimeout = 5 * time.Minute  // contract deployment confirmation wait
)
