package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// configDirName is the directory holding the config file in each search location
const configDirName = "gemini-chat"

// FileConfig represents the configuration file structure.
// Pointer fields distinguish "not set" from zero values.
type FileConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`

	Chat       *ChatConfig       `yaml:"chat,omitempty"`
	Generation *GenerationConfig `yaml:"generation,omitempty"`
	API        *APIConfig        `yaml:"api,omitempty"`
	Logging    *LoggingConfig    `yaml:"logging,omitempty"`
}

// ChatConfig holds conversation limits
type ChatConfig struct {
	MaxMessageLength *int `yaml:"max_message_length,omitempty"`
	MaxHistoryLength *int `yaml:"max_history_length,omitempty"`
}

// GenerationConfig holds model generation parameters
type GenerationConfig struct {
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   *int     `yaml:"max_tokens,omitempty"`
}

// APIConfig holds timeout and retry tunables for the remote call
type APIConfig struct {
	TimeoutSeconds   *float64 `yaml:"timeout_seconds,omitempty"`
	RetryAttempts    *int     `yaml:"retry_attempts,omitempty"`
	RetryBaseDelayMS *int     `yaml:"retry_base_delay_ms,omitempty"`
	RetryMaxDelayMS  *int     `yaml:"retry_max_delay_ms,omitempty"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	var paths []string

	// 1. Current directory
	paths = append(paths, filepath.Join(".", "."+configDirName, ConfigFileName))

	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, configDirName, ConfigFileName))
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", configDirName, ConfigFileName))
	}

	return paths
}

// LoadConfigFile attempts to load configuration from the first existing config path
func LoadConfigFile() (*FileConfig, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return loadConfigFromPath(path)
		}
	}

	// No config file found, return empty config
	return &FileConfig{}, nil
}

// loadConfigFromPath loads config from a specific path
func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Raw flattens the file configuration into the key/value form consumed by Validate.
// Only fields present in the file are emitted.
func (fc *FileConfig) Raw() map[string]string {
	raw := make(map[string]string)
	if fc == nil {
		return raw
	}

	setStr := func(key, val string) {
		if val != "" {
			raw[key] = val
		}
	}
	setInt := func(key string, val *int) {
		if val != nil {
			raw[key] = strconv.Itoa(*val)
		}
	}
	setFloat := func(key string, val *float64) {
		if val != nil {
			raw[key] = strconv.FormatFloat(*val, 'f', -1, 64)
		}
	}

	setStr(EnvAPIKey, fc.APIKey)
	setStr(EnvModel, fc.Model)

	if fc.Chat != nil {
		setInt(EnvMaxMessageLength, fc.Chat.MaxMessageLength)
		setInt(EnvMaxHistoryLength, fc.Chat.MaxHistoryLength)
	}
	if fc.Generation != nil {
		setFloat(EnvTemperature, fc.Generation.Temperature)
		setInt(EnvMaxTokens, fc.Generation.MaxTokens)
	}
	if fc.API != nil {
		setFloat(EnvAPITimeout, fc.API.TimeoutSeconds)
		setInt(EnvRetryAttempts, fc.API.RetryAttempts)
		setInt(EnvRetryBaseDelay, fc.API.RetryBaseDelayMS)
		setInt(EnvRetryMaxDelay, fc.API.RetryMaxDelayMS)
	}
	if fc.Logging != nil {
		setStr(EnvLogLevel, fc.Logging.Level)
		setStr(EnvLogFile, fc.Logging.File)
	}

	return raw
}

// CreateDefaultConfigFile creates a default config file at the user config directory
func CreateDefaultConfigFile() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, configDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	defaultConfig := `# Gemini Chat Configuration
# Location: ~/.config/gemini-chat/config.yaml
# Environment variables and .env entries take precedence over this file.

# Gemini API key (prefer GEMINI_API_KEY in .env instead of storing it here)
# api_key: AIza...

# model: gemini-2.0-flash

# chat:
#   max_message_length: 2000
#   max_history_length: 50

# generation:
#   temperature: 0.7
#   max_tokens: 2048

# api:
#   timeout_seconds: 30
#   retry_attempts: 3
#   retry_base_delay_ms: 500
#   retry_max_delay_ms: 5000

# logging:
#   level: INFO
#   file: gemini_cli.log
`

	if err := os.WriteFile(path, []byte(defaultConfig), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
