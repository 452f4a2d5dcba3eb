package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/defai-digital/AutomatosX-sub001/internal/config"
	clierrors "github.com/defai-digital/AutomatosX-sub001/internal/errors"
	"github.com/defai-digital/AutomatosX-sub001/internal/health"
	"github.com/defai-digital/AutomatosX-sub001/internal/progress"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Short:   "Check that the environment is ready to run workflows",
	GroupID: GroupConfiguration,
	Args:    cobra.NoArgs,
	Long: `Check that the environment is ready to run workflows.

Verifies the configuration loads, the configured agent command is
runnable, and the session database and run log directory are
writable. Also scans which built-in agent presets are installed.`,
	Example: `  # Check the default environment
  atx doctor

  # Check against a specific project config
  atx doctor --config ./ci/atx.yml`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	caps := progress.DetectTerminalCapabilities()
	spin := progress.NewSpinner(caps, "running checks...")
	if caps.IsTTY {
		spin.Start()
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, cfgErr := config.Load(configPath)
	report := health.RunChecks(cfg, cfgErr)

	if caps.IsTTY {
		spin.Stop()
	}

	fmt.Print(health.FormatReport(report))

	if !report.AnyAgent {
		fmt.Println()
		fmt.Println("No agent presets are installed. Install one, or set")
		fmt.Println("custom_agent_cmd in the config to use your own command.")
	}

	if !report.Passed {
		cliErr := clierrors.NewPrerequisiteError(
			"environment is not ready",
			"Fix the failed checks above and run 'atx doctor' again")
		clierrors.PrintError(cliErr)
		return cliErr
	}

	fmt.Println()
	fmt.Printf("%s All checks passed.\n", cGreen("✓"))
	return nil
}
