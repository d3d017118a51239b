// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Application identity
const (
	AppName    = "Rich Gemini CLI"
	AppVersion = "0.2.0"
	BinaryName = "gemini-chat"
)

// Timeout and retry defaults
const (
	// DefaultAPITimeout bounds a single generateContent attempt
	DefaultAPITimeout = 30 * time.Second
	// DefaultRetryAttempts is the total number of attempts, including the first one
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond
	DefaultRetryMaxDelay  = 5 * time.Second
)

// Conversation and generation defaults
const (
	DefaultModel            = "gemini-2.0-flash"
	DefaultMaxMessageLength = 2000
	DefaultMaxHistoryLength = 50
	DefaultTemperature      = 0.7
	DefaultMaxTokens        = 2048
	DefaultLogLevel         = "INFO"
	DefaultLogFile          = "gemini_cli.log"
)

// API key format
const (
	APIKeyPrefix    = "AIza"
	APIKeyMinLength = 30
	APIKeyMaxLength = 100
)
