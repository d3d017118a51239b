package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/gemini-chat/internal/config"
	"github.com/quocvuong92/gemini-chat/internal/constants"
)

// NewStatusCmd creates the status command
func NewStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the effective configuration",
		Long: `Validate the configuration and show the values a chat session would use.

The API key is always masked.

Examples:
  gemini-chat status
  gemini-chat status --env-file ./staging.env`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.out = cmd.OutOrStdout()
			return app.runStatus()
		},
	}
}

// NewInitCmd creates the init command
func NewInitCmd(app *App) *cobra.Command {
	var withYAML bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample .env file",
		Long: `Create a sample .env file with every supported setting.

Existing files are never overwritten. Use --yaml to also create
~/.config/gemini-chat/config.yaml.

Examples:
  gemini-chat init
  gemini-chat init --yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.out = cmd.OutOrStdout()
			return app.runInit(withYAML)
		},
	}
	cmd.Flags().BoolVar(&withYAML, "yaml", false, "Also create the YAML config file")
	return cmd
}

func (app *App) runStatus() error {
	disp := app.display()

	cfg, err := app.loadConfig()
	if err != nil {
		return app.reportConfigError(disp, err)
	}

	disp.ShowStatus(cfg, 0)
	return nil
}

func (app *App) runInit(withYAML bool) error {
	disp := app.display()

	path, err := config.CreateSampleEnv(app.envFile)
	switch {
	case errors.Is(err, config.ErrEnvFileExists):
		disp.ShowWarning(fmt.Sprintf("%s already exists, leaving it untouched", path))
	case err != nil:
		return err
	default:
		disp.ShowInfo(fmt.Sprintf("Created %s", path))
		disp.ShowInfo(fmt.Sprintf("Set %s, then run %s", config.EnvAPIKey, constants.BinaryName))
	}

	if withYAML {
		yamlPath, err := config.CreateDefaultConfigFile()
		if err != nil {
			disp.ShowWarning(err.Error())
		} else {
			disp.ShowInfo(fmt.Sprintf("Created %s", yamlPath))
		}
	}
	return nil
}
