package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	clierrors "github.com/defai-digital/AutomatosX-sub001/internal/errors"
	"github.com/defai-digital/AutomatosX-sub001/internal/graph"
	"github.com/defai-digital/AutomatosX-sub001/internal/spec"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow.yml>",
	Short: "Validate a workflow document without running it",
	Long: `Validate a workflow document without running it.

Validation covers:
- YAML structure and required fields
- Unique actor ids and resolvable dependency references
- Resource hint ranges
- Graph acyclicity

Exit codes:
  0 - Workflow is valid
  2 - Workflow validation failed
  3 - Invalid arguments or file not found`,
	Example: `  # Validate a workflow document
  atx validate workflows/release.yml`,
	Args:    cobra.ExactArgs(1),
	GroupID: GroupWorkflows,
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	printValidMessage(filePath, doc, g)
	return nil
}

// validateWorkflowArg checks that the path names an existing regular file.
func validateWorkflowArg(path string) *clierrors.CLIError {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return clierrors.WorkflowFileNotFound(path)
	case err != nil:
		return clierrors.NewArgumentError(fmt.Sprintf("checking file: %v", err))
	case info.IsDir():
		return clierrors.NewArgumentError(fmt.Sprintf("expected file, got directory: %s", path))
	}
	return nil
}

// formatWorkflowInvalid prints the validation failure and returns it as a
// validation error for exit code mapping.
func formatWorkflowInvalid(filePath string, err error) error {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(os.Stderr, "Error: ")
	fmt.Fprintf(os.Stderr, "workflow validation failed for %s\n", filePath)
	fmt.Fprintf(os.Stderr, "  %v\n", err)
	return clierrors.Wrap(err, clierrors.Validation)
}

// printValidMessage prints the success summary for a valid workflow.
func printValidMessage(filePath string, doc *spec.Document, g *graph.Graph) {
	green := color.New(color.FgGreen, color.Bold)
	green.Print("Valid")
	fmt.Printf(" - Workflow %q (%d tasks, %d levels)\n", doc.Metadata.Name, g.Len(), len(g.Levels))
	fmt.Printf("  file: %s\n", filePath)
	if doc.Policy != nil && doc.Policy.Goal != "" {
		fmt.Printf("  policy: %s\n", doc.Policy.Goal)
	}
}
