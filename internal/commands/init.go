package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/ledger"
)

func newInitCommand() *cobra.Command {
	var (
		household string
		members   []string
		useGit    bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new household repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, household, members, useGit)
		},
	}

	cmd.Flags().StringVar(&household, "household", "", "household name (required)")
	_ = cmd.MarkFlagRequired("household")
	cmd.Flags().StringSliceVar(&members, "member", nil, "household member (repeatable)")
	cmd.Flags().BoolVar(&useGit, "git", true, "initialize a git repository")

	return cmd
}

func runInit(out io.Writer, dir, household string, members []string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	for _, d := range []string{"logs", "import", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(household, members)
	cfg.Git.AutoCommit = useGit
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Empty ledger with just the header.
	if err := ledger.NewStore(filepath.Join(dir, cfg.LedgerPath())).Save(nil); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("import/processed/\n"), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !useGit {
		fmt.Fprintf(out, "Initialized %s at %s\n", household, dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(dir, "init: "+household, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized %s at %s (%s)\n", household, dir, hash)
	return nil
}
