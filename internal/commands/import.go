package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
)

var (
	labelColor    = color.New(color.FgCyan, color.Bold)
	categoryColor = color.New(color.FgGreen)
	transferColor = color.New(color.FgYellow)
)

func newImportCommand(repoDir *string) *cobra.Command {
	var sourceID, format, user string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank export into the ledger",
		Long: `Import a bank export into the ledger.

With a file, --source names a configured mapped source and --format picks a
built-in parser (chase, ofx). Without a file every export waiting in import/
is imported and moved to import/processed/. OFX and QFX files are detected by
extension; CSV files use --source or --format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(*repoDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				if sourceID == "" && format == "" {
					return fmt.Errorf("--source or --format is required when importing %s", args[0])
				}
				return importFile(out, e.svc, args[0], sourceID, format, user)
			}
			return importInbox(out, e, sourceID, format, user)
		},
	}

	cmd.Flags().StringVar(&sourceID, "source", "", "configured source ID")
	cmd.Flags().StringVar(&format, "format", "", "built-in format (chase, ofx)")
	cmd.Flags().StringVar(&user, "user", "", "household member the rows belong to")
	cmd.MarkFlagsMutuallyExclusive("source", "format")

	return cmd
}

func importFile(out io.Writer, svc *ledger.Service, path, sourceID, format, user string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	report, err := svc.Import(ledger.ImportParams{
		Reader:   f,
		SourceID: sourceID,
		Format:   format,
		User:     user,
		Name:     filepath.Base(path),
	})
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	printReport(out, filepath.Base(path), report)
	return nil
}

func importInbox(out io.Writer, e *env, sourceID, format, user string) error {
	files, err := importer.Scan(e.root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "Nothing to import in import/")
		return nil
	}

	for _, fi := range files {
		fileFormat := format
		if importer.FormatFor(fi.Name) == "ofx" {
			fileFormat = "ofx"
		} else if sourceID == "" && format == "" {
			e.log.Warn().Str("file", fi.Name).Msg("skipping CSV export: no --source or --format given")
			continue
		}

		fileSource := sourceID
		if fileFormat == "ofx" {
			fileSource = ""
		}
		if err := importFile(out, e.svc, fi.Path, fileSource, fileFormat, user); err != nil {
			return err
		}
		if err := importer.MarkProcessed(e.root, fi.Name); err != nil {
			return err
		}
	}
	return nil
}

func printReport(out io.Writer, name string, r ledger.ImportReport) {
	labelColor.Fprintf(out, "%s", name)
	fmt.Fprintf(out, ": %d imported, %d skipped, %d duplicates\n", r.Imported, r.Skipped, r.Duplicates)

	if len(r.AutoFilled) > 0 {
		fmt.Fprintln(out, "Auto-filled categories:")
		for _, af := range r.AutoFilled {
			fmt.Fprintf(out, "  row %d  %s -> ", af.Row, af.Description)
			categoryColor.Fprintln(out, af.SuggestedCategory)
		}
	}

	if len(r.Transfers) > 0 {
		fmt.Fprintf(out, "Transfers detected: %d\n", len(r.Transfers))
		for _, p := range r.Transfers {
			fmt.Fprintf(out, "  %s / %s  ", p.Debit.Description, p.Credit.Description)
			transferColor.Fprintf(out, "%s", p.Credit.Amount.StringFixed(2))
			fmt.Fprintf(out, "  confidence %s\n", p.Confidence.StringFixed(2))
		}
	}

	if r.Commit != "" {
		fmt.Fprintf(out, "Committed %s\n", r.Commit)
	}
}
