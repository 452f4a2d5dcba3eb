package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/defai-digital/AutomatosX-sub001/internal/agent"
	"github.com/defai-digital/AutomatosX-sub001/internal/config"
	clierrors "github.com/defai-digital/AutomatosX-sub001/internal/errors"
	"github.com/defai-digital/AutomatosX-sub001/internal/gitinfo"
	"github.com/defai-digital/AutomatosX-sub001/internal/graph"
	"github.com/defai-digital/AutomatosX-sub001/internal/notify"
	"github.com/defai-digital/AutomatosX-sub001/internal/runlog"
	"github.com/defai-digital/AutomatosX-sub001/internal/scheduler"
	"github.com/defai-digital/AutomatosX-sub001/internal/session"
	"github.com/defai-digital/AutomatosX-sub001/internal/spec"
)

var runCmd = &cobra.Command{
	Use:   "run <workflow.yml>",
	Short: "Execute a workflow",
	Long: `Execute a workflow document, running tasks in dependency order.

The run command:
- Parses and validates the workflow document
- Levels the dependency graph; independent tasks run concurrently
- Calls the configured agent command once per task
- Records task outputs in the session store for later recall
- Appends every scheduling event to a JSONL run log

Exit codes:
  0 - All tasks completed successfully
  1 - One or more tasks failed
  2 - Workflow validation failed
  3 - Invalid arguments or file not found
  4 - Broken configuration or missing prerequisite
  130 - Interrupted by SIGINT or SIGTERM`,
	Example: `  # Execute a workflow
  atx run workflows/release.yml

  # Preview the plan without calling any agents
  atx run workflows/release.yml --dry-run

  # Keep running unaffected tasks after a failure
  atx run workflows/release.yml --continue-on-error

  # Cap concurrent agent processes
  atx run workflows/release.yml --max-concurrent 2

  # Join a named session to share context across runs
  atx run workflows/release.yml --session nightly`,
	Args:    cobra.ExactArgs(1),
	GroupID: GroupWorkflows,
	RunE:    runRun,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "Echo planned agent calls without executing them")
	runCmd.Flags().String("agent", "", "Agent preset to use (overrides config)")
	runCmd.Flags().Int("max-concurrent", 4, "Maximum concurrent tasks (overrides config)")
	runCmd.Flags().Bool("continue-on-error", false, "Keep scheduling unaffected tasks after a failure")
	runCmd.Flags().String("session", "", "Session id to join (defaults to a fresh session per run)")
	runCmd.Flags().Duration("task-timeout", 0, "Per-task timeout, e.g. 5m or 90s (overrides config)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	filePath := args[0]
	if cliErr := validateWorkflowArg(filePath); cliErr != nil {
		clierrors.PrintError(cliErr)
		return cliErr
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		cliErr := clierrors.ConfigParseError(configFlagPath(cmd), err)
		clierrors.PrintError(cliErr)
		return cliErr
	}
	applyRunFlags(cmd, cfg)

	if cfg.MaxConcurrent < 1 {
		cliErr := clierrors.NewArgumentError("--max-concurrent must be at least 1")
		clierrors.PrintError(cliErr)
		return cliErr
	}

	doc, err := spec.ParseFile(filePath)
	if err != nil {
		return formatWorkflowInvalid(filePath, err)
	}

	g, err := graph.Build(doc)
	if err != nil {
		return formatWorkflowInvalid(filePath, err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	executor, store, cliErr := buildExecutorAndStore(cfg, dryRun)
	if cliErr != nil {
		clierrors.PrintError(cliErr)
		return cliErr
	}
	defer store.Close()

	runID := scheduler.NewRunID()
	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = runID
	}

	verbose := verboseEnabled(cmd)
	logger := newRunLogger(verbose)

	// Dry runs keep no log so previews never show up in the watch list.
	var sinks []scheduler.EventSink
	var logPath string
	if !dryRun {
		writer, err := runlog.Create(cfg.RunLogDir(), runID)
		if err != nil {
			cliErr := clierrors.WrapWithMessage(err, clierrors.Configuration,
				"cannot create run log",
				"Check that the log directory is writable",
				"Override the location with log_dir in .atx/config.yml")
			clierrors.PrintError(cliErr)
			return cliErr
		}
		defer writer.Close()
		logPath = writer.Path()
		sinks = append(sinks, writer.Sink(logger))
	}
	sinks = append(sinks, newEventRenderer(verbose).Sink())

	printRunHeader(doc, g, cfg, sessionID, logPath, dryRun)

	ctx, cancel := setupSignalHandler(cmd.Context())
	defer cancel()

	sched := scheduler.New(store, executor,
		scheduler.WithMaxConcurrent(cfg.MaxConcurrent),
		scheduler.WithContinueOnError(cfg.ContinueOnError),
		scheduler.WithRecallLimit(cfg.RecallLimit),
		scheduler.WithRecallCharBudget(cfg.RecallCharBudget),
		scheduler.WithDefaultTaskTimeout(cfg.TaskTimeout()),
		scheduler.WithRunID(runID),
		scheduler.WithSessionID(sessionID),
		scheduler.WithEvents(fanout(sinks...)),
		scheduler.WithLogger(logger),
	)

	result, err := sched.Run(ctx, g)
	printRunSummary(result)

	if !dryRun {
		notifyRunFinished(cfg, doc.Metadata.Name, result, err)
	}

	if err != nil {
		return printRunFailure(runID, err)
	}
	if result.Status == scheduler.RunFailed {
		_, failed, _ := result.Counts()
		return printRunFailure(runID, fmt.Errorf("%d task(s) failed", failed))
	}

	if !dryRun {
		printRunSuccess(runID)
	}
	return nil
}

// applyRunFlags overlays explicit command flags onto the loaded
// configuration. Only flags the user actually set override config values.
func applyRunFlags(cmd *cobra.Command, cfg *config.Configuration) {
	if cmd.Flags().Changed("agent") {
		preset, _ := cmd.Flags().GetString("agent")
		cfg.AgentPreset = preset
		cfg.CustomAgentCmd = ""
	}
	if cmd.Flags().Changed("max-concurrent") {
		cfg.MaxConcurrent, _ = cmd.Flags().GetInt("max-concurrent")
	}
	if cmd.Flags().Changed("continue-on-error") {
		cfg.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}
	if cmd.Flags().Changed("task-timeout") {
		d, _ := cmd.Flags().GetDuration("task-timeout")
		cfg.TaskTimeoutMS = int(d.Milliseconds())
	}
}

// configFlagPath resolves the path named in config load errors.
func configFlagPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return config.ProjectConfigPath()
}

// buildExecutorAndStore resolves the task executor and session store. Dry
// runs echo planned calls and keep session state in memory so no real state
// is touched.
func buildExecutorAndStore(cfg *config.Configuration, dryRun bool) (agent.Executor, session.Store, *clierrors.CLIError) {
	if dryRun {
		return agent.NewDryRunExecutor(), session.NewMemoryStore(), nil
	}

	executor, err := cfg.Executor()
	if err != nil {
		if cfg.CustomAgentCmd != "" {
			return nil, nil, clierrors.NewConfigError(err.Error(),
				"custom_agent_cmd must contain the {{PROMPT}} placeholder")
		}
		return nil, nil, clierrors.UnknownAgentPreset(cfg.AgentPreset, agent.Presets())
	}
	if cmdExec, ok := executor.(*agent.CommandExecutor); ok {
		if err := cmdExec.Validate(); err != nil {
			return nil, nil, clierrors.AgentUnavailable(agentName(cfg), err)
		}
	}

	dbPath := cfg.SessionDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, nil, clierrors.DatabaseOpenFailed(dbPath, err)
	}
	store, err := session.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, clierrors.DatabaseOpenFailed(dbPath, err)
	}

	return executor, store, nil
}

func agentName(cfg *config.Configuration) string {
	if cfg.CustomAgentCmd != "" {
		return "custom command"
	}
	return cfg.AgentPreset
}

// notifyRunFinished fires the optional desktop notification. Interrupted
// runs never notify.
func notifyRunFinished(cfg *config.Configuration, workflow string, result *scheduler.RunResult, runErr error) {
	if errors.Is(runErr, context.Canceled) {
		return
	}
	success := runErr == nil && result.Status == scheduler.RunCompleted
	notify.NewNotifier(cfg.NotifyConfig()).RunFinished(workflow, success, result.Duration)
}

// newRunLogger builds the logger backing scheduler diagnostics. Verbose mode
// surfaces debug records; otherwise only warnings reach the terminal.
func newRunLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// printRunHeader prints the run banner before the first event.
func printRunHeader(doc *spec.Document, g *graph.Graph, cfg *config.Configuration, sessionID, logPath string, dryRun bool) {
	name := doc.Metadata.Name
	if doc.Metadata.Version != "" {
		name += " v" + doc.Metadata.Version
	}
	fmt.Printf("%s %s\n", cBold("Workflow:"), name)
	fmt.Printf("%s %s\n", cBold("Plan:"), graph.RenderCompact(g))

	if dryRun {
		fmt.Printf("%s dry-run (no agent calls)\n", cBold("Agent:"))
	} else {
		fmt.Printf("%s %s\n", cBold("Agent:"), agentName(cfg))
	}
	fmt.Printf("%s %s\n", cBold("Session:"), sessionID)
	if logPath != "" {
		fmt.Printf("%s %s\n", cBold("Log:"), logPath)
	}
	if info, ok := gitinfo.Describe(""); ok {
		fmt.Printf("%s %s\n", cBold("Repo:"), info)
	}
	fmt.Println()
}

// setupSignalHandler cancels the run context on SIGINT or SIGTERM so tasks
// already past admission can finish cooperatively.
func setupSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nReceived interrupt signal, stopping execution...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// printRunSummary prints the aggregate outcome line.
func printRunSummary(result *scheduler.RunResult) {
	completed, failed, pending := result.Counts()
	line := fmt.Sprintf("%d completed, %d failed", completed, failed)
	if pending > 0 {
		line += fmt.Sprintf(", %d never started", pending)
	}
	fmt.Printf("\n%s %s\n", line, cDim("in "+formatDuration(result.Duration)))
}

func printRunSuccess(runID string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Print("✓ Workflow Run Complete")
	fmt.Printf(" - Run ID: %s\n", runID)
}

func printRunFailure(runID string, err error) error {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(os.Stderr, "✗ Workflow Run Failed")
	if runID != "" {
		fmt.Fprintf(os.Stderr, " - Run ID: %s\n", runID)
	} else {
		fmt.Fprintln(os.Stderr)
	}
	return err
}
