package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/defai-digital/AutomatosX-sub001/internal/errors"
	"github.com/defai-digital/AutomatosX-sub001/internal/graph"
	"github.com/defai-digital/AutomatosX-sub001/internal/spec"
)

var graphCmd = &cobra.Command{
	Use:   "graph <workflow.yml>",
	Short: "Show the leveled execution graph",
	Long: `Show the leveled execution graph of a workflow document.

Tasks are grouped by execution level: level 0 holds tasks with no
dependencies, each later level holds the tasks freed by the previous one.
Tasks in the same level run concurrently during a run.`,
	Example: `  # Render the execution graph
  atx graph workflows/release.yml

  # One-line plan summary
  atx graph workflows/release.yml --compact`,
	Args:    cobra.ExactArgs(1),
	GroupID: GroupInspection,
	RunE:    runGraph,
}

func init() {
	graphCmd.Flags().Bool("compact", false, "Render the graph as a single line")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	filePath := args[0]
	if cliErr := validateWorkflowArg(filePath); cliErr != nil {
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

	if compact, _ := cmd.Flags().GetBool("compact"); compact {
		fmt.Println(graph.RenderCompact(g))
		return nil
	}

	fmt.Print(graph.RenderASCII(doc.Metadata.Name, g))
	return nil
}
