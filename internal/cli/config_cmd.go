package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/defai-digital/AutomatosX-sub001/internal/config"
	clierrors "github.com/defai-digital/AutomatosX-sub001/internal/errors"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage atx configuration",
	GroupID: GroupConfiguration,
	Long: `Manage atx configuration.

Settings are resolved in priority order:
  1. Environment variables (ATX_*)
  2. Project config (.atx/config.yml)
  3. User config (~/.config/atx/config.yml)
  4. Built-in defaults`,
	Example: `  # Create a project config with commented defaults
  atx config init

  # Create a user-level config instead
  atx config init --user

  # Show where config files are looked up
  atx config path

  # Show the effective configuration
  atx config show`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with commented defaults",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().Bool("user", false, "Write the user-level config instead of the project config")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	user, _ := cmd.Flags().GetBool("user")
	force, _ := cmd.Flags().GetBool("force")

	path := config.ProjectConfigPath()
	if user {
		userPath, err := config.UserConfigPath()
		if err != nil {
			cliErr := clierrors.NewConfigError(
				fmt.Sprintf("cannot resolve user config directory: %v", err),
				"Set HOME (or XDG_CONFIG_HOME) and try again")
			clierrors.PrintError(cliErr)
			return cliErr
		}
		path = userPath
	}

	if _, err := os.Stat(path); err == nil && !force {
		cliErr := clierrors.NewConfigError(
			fmt.Sprintf("config file already exists: %s", path),
			"Pass --force to overwrite it",
			fmt.Sprintf("Or edit it directly: %s", path))
		clierrors.PrintError(cliErr)
		return cliErr
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("%s Created %s\n", cGreen("✓"), path)
	fmt.Println("\nEdit it to change agent, concurrency, and recall settings.")
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	projectPath := config.ProjectConfigPath()
	fmt.Printf("%s %s%s\n", cBold("Project:"), projectPath, existsMarker(projectPath))

	userPath, err := config.UserConfigPath()
	if err != nil {
		fmt.Printf("%s %s\n", cBold("User:"), cDim("unavailable: "+err.Error()))
		return nil
	}
	fmt.Printf("%s %s%s\n", cBold("User:"), userPath, existsMarker(userPath))
	return nil
}

func existsMarker(path string) string {
	if _, err := os.Stat(path); err == nil {
		return " " + cGreen("(exists)")
	}
	return " " + cDim("(not found)")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		cliErr := clierrors.ConfigParseError(configFlagPath(cmd), err)
		clierrors.PrintError(cliErr)
		return cliErr
	}

	printConfigValue("agent_preset", cfg.AgentPreset)
	printConfigValue("custom_agent_cmd", cfg.CustomAgentCmd)
	printConfigValue("max_concurrent", fmt.Sprintf("%d", cfg.MaxConcurrent))
	printConfigValue("continue_on_error", fmt.Sprintf("%t", cfg.ContinueOnError))
	printConfigValue("recall_limit", fmt.Sprintf("%d", cfg.RecallLimit))
	printConfigValue("recall_char_budget", fmt.Sprintf("%d", cfg.RecallCharBudget))
	printConfigValue("task_timeout_ms", fmt.Sprintf("%d", cfg.TaskTimeoutMS))
	printConfigValue("state_dir", cfg.StateDir)
	printConfigValue("session_db", cfg.SessionDB)
	printConfigValue("log_dir", cfg.LogDir)

	fmt.Println()
	fmt.Printf("%s\n", cBold("Resolved paths:"))
	printConfigValue("session database", cfg.SessionDBPath())
	printConfigValue("run log directory", cfg.RunLogDir())
	return nil
}

func printConfigValue(key, value string) {
	if value == "" {
		value = cDim("(unset)")
	}
	fmt.Printf("  %-20s %s\n", key, value)
}
