// Package cli implements the atx command line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/defai-digital/AutomatosX-sub001/internal/config"
)

// Command group IDs used to organize help output.
const (
	GroupWorkflows     = "workflows"
	GroupInspection    = "inspection"
	GroupConfiguration = "configuration"
)

var rootCmd = &cobra.Command{
	Use:   "atx",
	Short: "Run multi-agent workflows in dependency order",
	Long: `atx runs multi-agent workflows described as YAML documents.

A workflow declares actors (tasks bound to CLI agents), the dependencies
between them, and an optional execution policy. atx levels the dependency
graph, runs independent tasks concurrently within a bounded worker pool,
and records every task output in a shared session so later tasks can
recall what earlier ones produced.

Project home: https://github.com/defai-digital/AutomatosX-sub001`,
	Example: `  # Validate a workflow document
  atx validate workflows/release.yml

  # Run a workflow
  atx run workflows/release.yml

  # Preview the plan without calling any agents
  atx run workflows/release.yml --dry-run

  # Inspect the leveled execution graph
  atx graph workflows/release.yml

  # Follow the most recent run's event log
  atx watch --follow`,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupWorkflows, Title: "Workflow Commands:"},
		&cobra.Group{ID: GroupInspection, Title: "Inspection Commands:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration Commands:"},
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (overrides .atx/config.yml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cobra.OnInitialize(applyColorMode)
}

// applyColorMode honors --no-color before any command produces output.
func applyColorMode() {
	if noColor, err := rootCmd.PersistentFlags().GetBool("no-color"); err == nil && noColor {
		color.NoColor = true
	}
}

// Execute runs the root command. The returned error feeds exit code mapping
// in main.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the merged configuration, honoring the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// verboseEnabled reports whether --verbose was set on this invocation.
func verboseEnabled(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}
