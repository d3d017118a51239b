// Package config loads and validates the chat client configuration.
//
// Raw key/value pairs are collected from the YAML config file, a .env file,
// the process environment and CLI flags (see LoadRaw), then turned into an
// immutable Config by Validate.
package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/quocvuong92/gemini-chat/internal/constants"
	"github.com/quocvuong92/gemini-chat/internal/logging"
)

// Environment variable names
const (
	EnvAPIKey           = "GEMINI_API_KEY"
	EnvModel            = "GEMINI_MODEL"
	EnvAppName          = "APP_NAME"
	EnvAppVersion       = "APP_VERSION"
	EnvMaxMessageLength = "MAX_MESSAGE_LENGTH"
	EnvMaxHistoryLength = "MAX_HISTORY_LENGTH"
	EnvTemperature      = "TEMPERATURE"
	EnvMaxTokens        = "MAX_TOKENS"
	EnvAPITimeout       = "API_TIMEOUT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFile          = "LOG_FILE"

	// Retry tunables
	EnvRetryAttempts  = "RETRY_ATTEMPTS"
	EnvRetryBaseDelay = "RETRY_BASE_DELAY_MS"
	EnvRetryMaxDelay  = "RETRY_MAX_DELAY_MS"
)

// Keys lists every configuration key understood by Validate, in the order
// problems are reported.
var Keys = []string{
	EnvAPIKey, EnvModel, EnvAppName, EnvAppVersion,
	EnvMaxMessageLength, EnvMaxHistoryLength,
	EnvTemperature, EnvMaxTokens, EnvAPITimeout,
	EnvLogLevel, EnvLogFile,
	EnvRetryAttempts, EnvRetryBaseDelay, EnvRetryMaxDelay,
}

// Temperature bounds accepted by the Gemini API
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// ErrorKind classifies a configuration problem.
type ErrorKind int

const (
	// InvalidAPIKeyFormat means the key is missing or not shaped like a Gemini key
	InvalidAPIKeyFormat ErrorKind = iota
	// InvalidRange means a value parsed but falls outside its bound
	InvalidRange
	// InvalidFormat means a value could not be parsed
	InvalidFormat
)

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	switch k {
	case InvalidAPIKeyFormat:
		return "InvalidApiKeyFormat"
	case InvalidRange:
		return "InvalidRange"
	case InvalidFormat:
		return "InvalidFormat"
	default:
		return "Unknown"
	}
}

// Errors
var (
	ErrInvalidAPIKeyFormat = errors.New("invalid API key format")
	ErrInvalidRange        = errors.New("value out of range")
	ErrInvalidFormat       = errors.New("invalid value format")
)

// ConfigError reports an invalid configuration field. The message names the
// field and never includes the API key value.
type ConfigError struct {
	Kind   ErrorKind
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Unwrap())
	}
	return fmt.Sprintf("%s: %v (%s)", e.Field, e.Unwrap(), e.Reason)
}

// Unwrap returns the sentinel error matching the kind, so callers can use errors.Is.
func (e *ConfigError) Unwrap() error {
	switch e.Kind {
	case InvalidAPIKeyFormat:
		return ErrInvalidAPIKeyFormat
	case InvalidRange:
		return ErrInvalidRange
	default:
		return ErrInvalidFormat
	}
}

// Config holds the validated application configuration.
// It is built once by Validate and is read-only afterwards.
type Config struct {
	apiKey     string
	model      string
	appName    string
	appVersion string

	maxMessageLength int
	maxHistoryLength int
	temperature      float64
	maxTokens        int
	apiTimeout       time.Duration

	logLevel logging.Level
	logFile  string

	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// APIKey returns the Gemini API key. Never log or print it; use MaskedAPIKey.
func (c *Config) APIKey() string { return c.apiKey }

// MaskedAPIKey returns the key prefix and its last four characters.
func (c *Config) MaskedAPIKey() string {
	if len(c.apiKey) < constants.APIKeyMinLength {
		return "(not set)"
	}
	return constants.APIKeyPrefix + strings.Repeat("*", 8) + c.apiKey[len(c.apiKey)-4:]
}

func (c *Config) Model() string                 { return c.model }
func (c *Config) AppName() string               { return c.appName }
func (c *Config) AppVersion() string            { return c.appVersion }
func (c *Config) MaxMessageLength() int         { return c.maxMessageLength }
func (c *Config) MaxHistoryLength() int         { return c.maxHistoryLength }
func (c *Config) Temperature() float64          { return c.temperature }
func (c *Config) MaxTokens() int                { return c.maxTokens }
func (c *Config) APITimeout() time.Duration     { return c.apiTimeout }
func (c *Config) LogLevel() logging.Level       { return c.logLevel }
func (c *Config) LogFile() string               { return c.logFile }
func (c *Config) RetryAttempts() int            { return c.retryAttempts }
func (c *Config) RetryBaseDelay() time.Duration { return c.retryBaseDelay }
func (c *Config) RetryMaxDelay() time.Duration  { return c.retryMaxDelay }

// UserAgent returns the value sent in the User-Agent header of API requests
func (c *Config) UserAgent() string {
	return strings.ReplaceAll(c.appName, " ", "-") + "/" + c.appVersion
}

// Validate builds a Config from raw key/value pairs. Missing keys take their
// defaults. The first problem found is returned as a *ConfigError.
func Validate(raw map[string]string) (*Config, error) {
	cfg, errs := validate(raw)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return cfg, nil
}

// ValidateAll is like Validate but reports every problem, joined with errors.Join.
func ValidateAll(raw map[string]string) (*Config, error) {
	cfg, errs := validate(raw)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// ValidateAPIKey checks the shape of a Gemini API key. No network call is made.
func ValidateAPIKey(key string) error {
	key = strings.TrimSpace(key)
	fail := func(reason string) error {
		return &ConfigError{Kind: InvalidAPIKeyFormat, Field: EnvAPIKey, Reason: reason}
	}

	if key == "" {
		return fail("not set")
	}
	if !strings.HasPrefix(key, constants.APIKeyPrefix) {
		return fail("must start with " + constants.APIKeyPrefix)
	}
	if len(key) < constants.APIKeyMinLength {
		return fail(fmt.Sprintf("must be at least %d characters", constants.APIKeyMinLength))
	}
	if len(key) > constants.APIKeyMaxLength {
		return fail(fmt.Sprintf("must be at most %d characters", constants.APIKeyMaxLength))
	}
	for _, r := range key {
		if !isKeyChar(r) {
			return fail("contains unsupported characters")
		}
	}
	return nil
}

func isKeyChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}

// validator accumulates field errors while parsing raw values
type validator struct {
	raw  map[string]string
	errs []error
}

func validate(raw map[string]string) (*Config, []error) {
	v := &validator{raw: raw}

	key := strings.TrimSpace(raw[EnvAPIKey])
	if err := ValidateAPIKey(key); err != nil {
		v.errs = append(v.errs, err)
	}

	cfg := &Config{
		apiKey:     key,
		model:      v.str(EnvModel, constants.DefaultModel),
		appName:    v.str(EnvAppName, constants.AppName),
		appVersion: v.str(EnvAppVersion, constants.AppVersion),

		maxMessageLength: v.positiveInt(EnvMaxMessageLength, constants.DefaultMaxMessageLength),
		maxHistoryLength: v.positiveInt(EnvMaxHistoryLength, constants.DefaultMaxHistoryLength),
		temperature:      v.temperature(),
		maxTokens:        v.int32Value(EnvMaxTokens, constants.DefaultMaxTokens),
		apiTimeout:       v.seconds(EnvAPITimeout, constants.DefaultAPITimeout),

		logLevel: v.logLevel(),
		logFile:  v.str(EnvLogFile, constants.DefaultLogFile),

		retryAttempts:  v.positiveInt(EnvRetryAttempts, constants.DefaultRetryAttempts),
		retryBaseDelay: v.millis(EnvRetryBaseDelay, constants.DefaultRetryBaseDelay),
		retryMaxDelay:  v.millis(EnvRetryMaxDelay, constants.DefaultRetryMaxDelay),
	}

	if cfg.retryMaxDelay > 0 && cfg.retryBaseDelay > 0 && cfg.retryMaxDelay < cfg.retryBaseDelay {
		v.rangeErr(EnvRetryMaxDelay, "must not be smaller than "+EnvRetryBaseDelay)
	}

	if len(v.errs) > 0 {
		return nil, v.errs
	}
	return cfg, nil
}

// lookup returns the trimmed raw value and whether it was set to something non-empty
func (v *validator) lookup(key string) (string, bool) {
	s, ok := v.raw[key]
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

func (v *validator) str(key, def string) string {
	if s, ok := v.lookup(key); ok {
		return s
	}
	return def
}

func (v *validator) formatErr(key, reason string) {
	v.errs = append(v.errs, &ConfigError{Kind: InvalidFormat, Field: key, Reason: reason})
}

func (v *validator) rangeErr(key, reason string) {
	v.errs = append(v.errs, &ConfigError{Kind: InvalidRange, Field: key, Reason: reason})
}

func (v *validator) positiveInt(key string, def int) int {
	s, ok := v.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		v.formatErr(key, fmt.Sprintf("%q is not an integer", s))
		return 0
	}
	if n <= 0 {
		v.rangeErr(key, "must be greater than 0")
		return 0
	}
	return n
}

func (v *validator) positiveFloat(key string, def float64) float64 {
	s, ok := v.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v.formatErr(key, fmt.Sprintf("%q is not a number", s))
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		v.rangeErr(key, "must be greater than 0")
		return 0
	}
	return f
}

// maxDurationSeconds is the largest whole number of seconds a time.Duration holds
const maxDurationSeconds = float64(math.MaxInt64 / int64(time.Second))

func (v *validator) seconds(key string, def time.Duration) time.Duration {
	f := v.positiveFloat(key, def.Seconds())
	if f == 0 {
		return 0
	}
	if f > maxDurationSeconds {
		v.rangeErr(key, fmt.Sprintf("must be at most %.0f seconds", maxDurationSeconds))
		return 0
	}
	d := time.Duration(f * float64(time.Second))
	if d <= 0 {
		v.rangeErr(key, "must be at least 1ns")
		return 0
	}
	return d
}

func (v *validator) millis(key string, def time.Duration) time.Duration {
	n := v.positiveInt(key, int(def/time.Millisecond))
	if int64(n) > math.MaxInt64/int64(time.Millisecond) {
		v.rangeErr(key, fmt.Sprintf("must be at most %d", math.MaxInt64/int64(time.Millisecond)))
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

// int32Value is a positive integer that must fit the API's int32 fields
func (v *validator) int32Value(key string, def int) int {
	n := v.positiveInt(key, def)
	if int64(n) > math.MaxInt32 {
		v.rangeErr(key, fmt.Sprintf("must be at most %d", math.MaxInt32))
		return 0
	}
	return n
}

func (v *validator) temperature() float64 {
	s, ok := v.lookup(EnvTemperature)
	if !ok {
		return constants.DefaultTemperature
	}
	t, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v.formatErr(EnvTemperature, fmt.Sprintf("%q is not a number", s))
		return 0
	}
	if !(t >= MinTemperature && t <= MaxTemperature) {
		v.rangeErr(EnvTemperature, fmt.Sprintf("must be between %.1f and %.1f", MinTemperature, MaxTemperature))
		return 0
	}
	return t
}

func (v *validator) logLevel() logging.Level {
	s, ok := v.lookup(EnvLogLevel)
	if !ok {
		return logging.ParseLevel(constants.DefaultLogLevel)
	}
	level, known := logging.LookupLevel(s)
	if !known || level == logging.LevelNone {
		v.formatErr(EnvLogLevel, fmt.Sprintf("%q is not one of DEBUG, INFO, WARNING, ERROR", s))
		return logging.LevelInfo
	}
	return level
}
