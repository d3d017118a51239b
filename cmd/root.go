package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/gemini-chat/internal/api"
	"github.com/quocvuong92/gemini-chat/internal/config"
	"github.com/quocvuong92/gemini-chat/internal/constants"
	"github.com/quocvuong92/gemini-chat/internal/display"
	"github.com/quocvuong92/gemini-chat/internal/logging"
)

// errReported marks failures that were already shown to the user
var errReported = errors.New("error already reported")

// App holds the application state
type App struct {
	verbose    bool
	render     bool
	model      string
	envFile    string
	configFile string
	logFile    string

	out       io.Writer
	lookupEnv func(string) (string, bool)
}

// NewApp creates a new App instance with default flag values
func NewApp() *App {
	return &App{
		render:    true,
		envFile:   config.DefaultEnvFile,
		out:       os.Stdout,
		lookupEnv: os.LookupEnv,
	}
}

// Execute runs the root command
func Execute() {
	app := NewApp()
	if err := NewRootCmd(app).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			display.New(display.Options{Output: os.Stderr}).ShowError(err.Error())
		}
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree bound to app
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.BinaryName,
		Short: "Interactive terminal chat with Google Gemini",
		Long: `gemini-chat is an interactive command-line chat client for Google Gemini.

Configuration is read from a .env file, the environment, and an optional
YAML file (~/.config/gemini-chat/config.yaml). Run 'gemini-chat init' to
create a sample .env file.

Examples:
  gemini-chat                         # Start chatting
  gemini-chat -m gemini-1.5-pro       # Use another model
  gemini-chat -v                      # Debug logging to stderr
  gemini-chat status                  # Show the effective configuration`,
		Version:       constants.AppVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.out = cmd.OutOrStdout()
			return app.run(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging to stderr")
	flags.StringVar(&app.envFile, "env-file", app.envFile, "Path to the .env file")
	flags.StringVar(&app.configFile, "config", "", "Path to a YAML config file (default: search standard locations)")
	rootCmd.Flags().BoolVarP(&app.render, "render", "r", app.render, "Render markdown replies with colors and formatting")
	rootCmd.Flags().StringVarP(&app.model, "model", "m", "", "Gemini model name (e.g., gemini-2.0-flash)")
	rootCmd.Flags().StringVar(&app.logFile, "log-file", "", "Log file path (overrides LOG_FILE)")

	// Add subcommands
	rootCmd.AddCommand(NewStatusCmd(app))
	rootCmd.AddCommand(NewInitCmd(app))

	return rootCmd
}

// display returns a Display writing to the app output
func (app *App) display() *display.Display {
	return display.New(display.Options{Output: app.out, Render: app.render})
}

// loadConfig merges every configuration source and validates the result,
// reporting all problems at once
func (app *App) loadConfig() (*config.Config, error) {
	raw, err := config.LoadRaw(config.LoadOptions{
		EnvFile:    app.envFile,
		ConfigFile: app.configFile,
		LookupEnv:  app.lookupEnv,
		Overrides: map[string]string{
			config.EnvModel:   app.model,
			config.EnvLogFile: app.logFile,
		},
	})
	if err != nil {
		return nil, err
	}
	return config.ValidateAll(raw)
}

// newLogger opens the configured log file; with --verbose, entries are also
// written to stderr at debug level
func (app *App) newLogger(cfg *config.Config) (*logging.Logger, io.Closer, error) {
	f, err := logging.OpenFile(cfg.LogFile())
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = f
	level := cfg.LogLevel()
	if app.verbose {
		out = io.MultiWriter(f, os.Stderr)
		level = logging.LevelDebug
	}

	return logging.New(logging.Options{
		Level:  level,
		Format: logging.FormatText,
		Output: out,
	}), f, nil
}

// reportConfigError shows every configuration problem and records it in the default log file
func (app *App) reportConfigError(disp *display.Display, err error) error {
	disp.ShowConfigErrors(err)

	if _, statErr := os.Stat(app.envFile); errors.Is(statErr, fs.ErrNotExist) {
		disp.ShowInfo(fmt.Sprintf("No %s file found. Create a sample with: %s init", app.envFile, constants.BinaryName))
	}

	logPath := app.logFile
	if logPath == "" {
		logPath = constants.DefaultLogFile
	}
	if f, openErr := logging.OpenFile(logPath); openErr == nil {
		logger := logging.New(logging.Options{Level: logging.LevelError, Output: f})
		logger.Error("Configuration validation failed", err)
		_ = logger.Sync()
		_ = f.Close()
	}
	return errReported
}

func (app *App) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	disp := app.display()

	cfg, err := app.loadConfig()
	if err != nil {
		return app.reportConfigError(disp, err)
	}

	logger, closer, err := app.newLogger(cfg)
	if err != nil {
		disp.ShowError(err.Error())
		return errReported
	}
	defer func() {
		_ = logger.Sync()
		_ = closer.Close()
	}()

	logger.Info(fmt.Sprintf("%s v%s starting", cfg.AppName(), cfg.AppVersion()), logging.Fields{
		"model":       cfg.Model(),
		"api_key":     cfg.MaskedAPIKey(),
		"max_history": cfg.MaxHistoryLength(),
	})

	client, err := api.NewGeminiClient(ctx, api.GeminiOptions{
		APIKey:    cfg.APIKey(),
		Model:     cfg.Model(),
		UserAgent: cfg.UserAgent(),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("Failed to create Gemini client", err)
		disp.ShowError(err.Error())
		return errReported
	}
	// Ensure client resources are cleaned up on exit
	defer client.Close()

	return app.runInteractive(ctx, cfg, client, disp, logger)
}
