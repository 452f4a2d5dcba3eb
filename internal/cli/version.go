package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/defai-digital/AutomatosX-sub001/internal/version"
)

var versionPlain bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for atx",
	GroupID: GroupConfiguration,
	Example: `  # Show version info
  atx version

  # Plain output (for scripts)
  atx version --plain`,
	Run: func(cmd *cobra.Command, _ []string) {
		if versionPlain {
			printPlainVersion()
		} else {
			printPrettyVersion()
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
	rootCmd.AddCommand(versionCmd)
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion() {
	fmt.Printf("atx %s\n", version.Version)
	fmt.Printf("commit: %s\n", version.Commit)
	fmt.Printf("built: %s\n", version.BuildDate)
	fmt.Printf("go: %s\n", runtime.Version())
	fmt.Printf("platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func printPrettyVersion() {
	fmt.Printf("%s %s\n", cBold("atx"), version.Version)
	fmt.Printf("  %s  %s\n", cDim("commit:"), truncateCommit(version.Commit))
	fmt.Printf("  %s   %s\n", cDim("built:"), version.BuildDate)
	fmt.Printf("  %s      %s\n", cDim("go:"), runtime.Version())
	fmt.Printf("  %s %s/%s\n", cDim("platform:"), runtime.GOOS, runtime.GOARCH)
}

// truncateCommit shortens commit hash if it's too long
func truncateCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
