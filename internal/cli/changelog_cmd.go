package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/defai-digital/AutomatosX-sub001/internal/changelog"
	clierrors "github.com/defai-digital/AutomatosX-sub001/internal/errors"
)

var changelogCmd = &cobra.Command{
	Use:     "changelog [version]",
	Short:   "Show release history",
	GroupID: GroupConfiguration,
	Args:    cobra.MaximumNArgs(1),
	Long: `Show the atx release history embedded in this binary.

Without arguments the latest release is shown. Pass a version to show
one release, or --all for the full history.`,
	Example: `  # Show the latest release
  atx changelog

  # Show one release
  atx changelog 0.2.0

  # Show everything
  atx changelog --all

  # Regenerate CHANGELOG.md
  atx changelog --markdown > CHANGELOG.md`,
	RunE: runChangelog,
}

func init() {
	changelogCmd.Flags().Bool("all", false, "Show every version")
	changelogCmd.Flags().Bool("markdown", false, "Render Keep a Changelog markdown instead of terminal output")
	rootCmd.AddCommand(changelogCmd)
}

func runChangelog(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	c, err := changelog.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("loading embedded changelog: %w", err)
	}

	if markdown, _ := cmd.Flags().GetBool("markdown"); markdown {
		return changelog.RenderMarkdown(c, os.Stdout)
	}

	if all, _ := cmd.Flags().GetBool("all"); all {
		changelog.RenderTerminalAll(c, os.Stdout)
		return nil
	}

	if len(args) > 0 {
		v, err := c.GetVersion(args[0])
		if err != nil {
			var notFound *changelog.VersionNotFoundError
			if errors.As(err, &notFound) {
				cliErr := clierrors.NewArgumentError(err.Error(),
					"List versions with: atx changelog --all")
				clierrors.PrintError(cliErr)
				return cliErr
			}
			return err
		}
		changelog.RenderTerminal(v, os.Stdout)
		return nil
	}

	latest := c.GetLatestRelease()
	if latest == nil {
		fmt.Println("No releases recorded yet.")
		return nil
	}
	changelog.RenderTerminal(latest, os.Stdout)
	return nil
}
