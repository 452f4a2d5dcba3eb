package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/defai-digital/AutomatosX-sub001/internal/errors"
	"github.com/defai-digital/AutomatosX-sub001/internal/runlog"
)

var watchCmd = &cobra.Command{
	Use:     "watch [run-id]",
	Short:   "Watch the event stream of a workflow run",
	GroupID: GroupInspection,
	Args:    cobra.MaximumNArgs(1),
	Long: `Watch the recorded event stream of a workflow run.

Without a run id the most recent run is shown. Use --follow to keep
the stream open and render new events as a live run appends them,
like tail -f for workflow runs. Press Ctrl+C to stop following.`,
	Example: `  # Replay the most recent run
  atx watch

  # Follow a run that is still executing
  atx watch --follow

  # Replay a specific run
  atx watch 20250114_120000_a1b2c3d4

  # List runs that can be watched
  atx watch --list`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolP("follow", "f", false, "Keep the stream open and render new events as they arrive")
	watchCmd.Flags().Bool("list", false, "List recorded runs instead of watching one")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		cliErr := clierrors.ConfigParseError(configFlagPath(cmd), err)
		clierrors.PrintError(cliErr)
		return cliErr
	}
	logDir := cfg.RunLogDir()

	if list, _ := cmd.Flags().GetBool("list"); list {
		return printRunList(logDir)
	}

	runID, cliErr := resolveRunID(args, logDir)
	if cliErr != nil {
		clierrors.PrintError(cliErr)
		return cliErr
	}

	follow, _ := cmd.Flags().GetBool("follow")

	tailer, err := runlog.NewTailer(runlog.FilePath(logDir, runID))
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer tailer.Close()

	printWatchHeader(runID, tailer.Path(), follow)

	ctx, cancel := setupSignalHandler(cmd.Context())
	defer cancel()

	events, err := tailer.Tail(ctx, follow)
	if err != nil {
		return fmt.Errorf("tailing run log: %w", err)
	}

	renderer := newEventRenderer(true)
	for ev := range events {
		renderer.render(ev)
	}
	// Channel closure covers both a finished replay and Ctrl+C while
	// following. Neither is a failure of the watched run.
	return nil
}

// resolveRunID picks the run to watch: the explicit argument when given,
// otherwise the most recent recorded run.
func resolveRunID(args []string, logDir string) (string, *clierrors.CLIError) {
	if len(args) > 0 {
		runID := args[0]
		if _, err := os.Stat(runlog.FilePath(logDir, runID)); os.IsNotExist(err) {
			return "", clierrors.RunLogNotFound(runID, recentRuns(logDir))
		}
		return runID, nil
	}

	runID, err := runlog.Latest(logDir)
	if err != nil {
		if errors.Is(err, runlog.ErrNoRuns) {
			return "", clierrors.NoRunsFound(logDir)
		}
		return "", clierrors.Wrap(err, clierrors.Execution)
	}
	return runID, nil
}

// recentRuns returns up to five run ids, newest first, for suggestions.
func recentRuns(logDir string) []string {
	runs, err := runlog.Runs(logDir)
	if err != nil || len(runs) == 0 {
		return nil
	}
	// Runs are sorted ascending. Flip the tail so suggestions lead with
	// the newest.
	const maxSuggestions = 5
	start := len(runs) - maxSuggestions
	if start < 0 {
		start = 0
	}
	recent := make([]string, 0, len(runs)-start)
	for i := len(runs) - 1; i >= start; i-- {
		recent = append(recent, runs[i])
	}
	return recent
}

func printRunList(logDir string) error {
	runs, err := runlog.Runs(logDir)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run a workflow to create one:")
		fmt.Println("  atx run <workflow.yml>")
		return nil
	}

	fmt.Printf("%-34s  %s\n", "RUN ID", "RECORDED")
	fmt.Println(strings.Repeat("-", 56))
	for i := len(runs) - 1; i >= 0; i-- {
		recorded := ""
		if fi, err := os.Stat(runlog.FilePath(logDir, runs[i])); err == nil {
			recorded = formatRelativeTime(fi.ModTime())
		}
		fmt.Printf("%-34s  %s\n", runs[i], recorded)
	}
	fmt.Printf("\nTotal: %s\n", pluralize(len(runs), "run", "runs"))
	return nil
}

func printWatchHeader(runID, path string, follow bool) {
	mode := "replay"
	if follow {
		mode = "following"
	}
	fmt.Printf("%s%s  %s\n", cCyan(cBold("Watching ")), runID, cDim("("+mode+")"))
	fmt.Printf("%s\n", cDim("log: "+path))
}
