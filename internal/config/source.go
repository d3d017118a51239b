package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is the dotenv file read from the working directory
const DefaultEnvFile = ".env"

// LoadOptions controls where LoadRaw looks for configuration.
type LoadOptions struct {
	// EnvFile is the dotenv file to read. Empty means DefaultEnvFile.
	// A missing file is not an error.
	EnvFile string

	// ConfigFile is an explicit YAML file. Empty means search GetConfigPaths.
	ConfigFile string

	// Overrides come from CLI flags and win over every other source.
	Overrides map[string]string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// LoadRaw merges configuration sources into one key/value map.
// Priority, lowest first: YAML file, .env file, process environment, overrides.
func LoadRaw(opts LoadOptions) (map[string]string, error) {
	raw := make(map[string]string)

	fileCfg, err := loadFileConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	for k, v := range fileCfg.Raw() {
		raw[k] = v
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	switch {
	case err == nil:
		for _, k := range Keys {
			if v, ok := dotenv[k]; ok {
				raw[k] = v
			}
		}
	case errors.Is(err, fs.ErrNotExist):
		// optional
	default:
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, k := range Keys {
		if v, ok := lookup(k); ok && v != "" {
			raw[k] = v
		}
	}

	for k, v := range opts.Overrides {
		if v != "" {
			raw[k] = v
		}
	}

	return raw, nil
}

func loadFileConfig(path string) (*FileConfig, error) {
	if path == "" {
		// Errors from the search path are ignored; env vars and flags take precedence
		if fc, err := LoadConfigFile(); err == nil {
			return fc, nil
		}
		return &FileConfig{}, nil
	}
	return loadConfigFromPath(path)
}

// sampleEnv is written by CreateSampleEnv
const sampleEnv = `# Gemini API settings
# Get a key from Google AI Studio: https://aistudio.google.com/app/apikey
GEMINI_API_KEY=your_gemini_api_key_here
GEMINI_MODEL=gemini-2.0-flash

# Application
APP_NAME=Rich Gemini CLI
APP_VERSION=0.2.0

# Behaviour
MAX_MESSAGE_LENGTH=2000
MAX_HISTORY_LENGTH=50
LOG_LEVEL=INFO
LOG_FILE=gemini_cli.log
API_TIMEOUT=30

# Retry policy
RETRY_ATTEMPTS=3
RETRY_BASE_DELAY_MS=500
RETRY_MAX_DELAY_MS=5000

# Generation parameters
TEMPERATURE=0.7
MAX_TOKENS=2048
`

// ErrEnvFileExists is returned by CreateSampleEnv when the target already exists
var ErrEnvFileExists = errors.New("env file already exists")

// CreateSampleEnv writes a commented sample .env file. It never overwrites an
// existing file. Returns the absolute path written.
func CreateSampleEnv(path string) (string, error) {
	if path == "" {
		path = DefaultEnvFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err == nil {
		return abs, fmt.Errorf("%w: %s", ErrEnvFileExists, abs)
	}
	if err := os.WriteFile(abs, []byte(sampleEnv), 0600); err != nil {
		return "", fmt.Errorf("failed to write env file: %w", err)
	}
	return abs, nil
}
