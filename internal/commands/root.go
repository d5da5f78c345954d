package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var repoDir string

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Household transaction reconciliation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "household repository directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(&repoDir),
		newDetectCommand(&repoDir),
		newTransfersCommand(&repoDir),
		newOverrideCommand(&repoDir),
		newSourcesCommand(&repoDir),
		newServeCommand(&repoDir),
	)

	return rootCmd
}
