package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/defai-digital/AutomatosX-sub001/internal/errors"
	"github.com/defai-digital/AutomatosX-sub001/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Short:   "Inspect recorded agent sessions",
	GroupID: GroupInspection,
	Long: `Inspect the sessions recorded by previous workflow runs.

Every run records each task's output into a session in the local
SQLite database. Tasks in later levels recall those outputs as
context, and this command lets you see exactly what they saw.`,
	Example: `  # List all recorded sessions
  atx sessions list

  # Show the outputs recorded in one session
  atx sessions show 20250114_120000_a1b2c3d4`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the task outputs recorded in a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

func init() {
	sessionsShowCmd.Flags().Int("limit", 50, "Maximum number of records to show")
	sessionsShowCmd.Flags().Bool("full", false, "Print full outputs without truncation")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		cliErr := clierrors.ConfigParseError(configFlagPath(cmd), err)
		clierrors.PrintError(cliErr)
		return cliErr
	}

	dbPath := cfg.SessionDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		printNoSessions()
		return nil
	}

	store, err := session.OpenSQLite(dbPath)
	if err != nil {
		cliErr := clierrors.DatabaseOpenFailed(dbPath, err)
		clierrors.PrintError(cliErr)
		return cliErr
	}
	defer store.Close()

	infos, err := store.Sessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(infos) == 0 {
		printNoSessions()
		return nil
	}

	printSessionsTable(infos)
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	sessionID := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		cliErr := clierrors.ConfigParseError(configFlagPath(cmd), err)
		clierrors.PrintError(cliErr)
		return cliErr
	}

	dbPath := cfg.SessionDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		cliErr := clierrors.SessionNotFound(sessionID)
		clierrors.PrintError(cliErr)
		return cliErr
	}

	store, err := session.OpenSQLite(dbPath)
	if err != nil {
		cliErr := clierrors.DatabaseOpenFailed(dbPath, err)
		clierrors.PrintError(cliErr)
		return cliErr
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.Recall(cmd.Context(), sessionID, "", limit)
	if err != nil {
		var idErr *session.IDError
		if errors.As(err, &idErr) {
			cliErr := clierrors.Wrap(err, clierrors.Argument)
			clierrors.PrintError(cliErr)
			return cliErr
		}
		return fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	if len(records) == 0 {
		cliErr := clierrors.SessionNotFound(sessionID)
		clierrors.PrintError(cliErr)
		return cliErr
	}

	full, _ := cmd.Flags().GetBool("full")
	printSessionRecords(sessionID, records, full)
	return nil
}

func printNoSessions() {
	fmt.Println("No sessions recorded yet.")
	fmt.Println()
	fmt.Println("Run a workflow to create one:")
	fmt.Println("  atx run <workflow.yml>")
}

func printSessionsTable(infos []session.Info) {
	fmt.Printf("%-32s  %-8s  %s\n", "SESSION ID", "RECORDS", "CREATED")
	fmt.Println(strings.Repeat("-", 60))
	for _, info := range infos {
		fmt.Printf("%-32s  %-8d  %s\n", info.ID, info.Records, formatRelativeTime(info.CreatedAt))
	}
	fmt.Printf("\nTotal: %s\n", pluralize(len(infos), "session", "sessions"))
}

func printSessionRecords(sessionID string, records []session.Record, full bool) {
	fmt.Printf("%s %s  %s\n", cBold("Session"), sessionID, cDim(pluralize(len(records), "record", "records")))

	for _, rec := range records {
		head := rec.TaskID
		if rec.Title != "" && rec.Title != rec.TaskID {
			head = rec.TaskID + ": " + rec.Title
		}
		fmt.Printf("\n%s %s %s\n",
			cCyan(fmt.Sprintf("[%d]", rec.Seq)),
			cBold(head),
			cDim(fmt.Sprintf("(%s, %s)", rec.Agent, formatDuration(rec.Duration))))

		output := rec.Output
		if !full {
			output = truncateOutput(output, maxOutputPreview)
		}
		for _, line := range strings.Split(output, "\n") {
			fmt.Printf("    %s\n", line)
		}
	}
}

// maxOutputPreview caps per-record output in `sessions show` unless --full is set.
const maxOutputPreview = 400

func truncateOutput(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "... (truncated, use --full)"
}
