package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newSourcesCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured import sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(*repoDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(e.cfg.Sources) == 0 {
				fmt.Fprintln(out, "No sources configured")
				return nil
			}

			table := tablewriter.NewWriter(out)
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"ID", "Name", "Columns", "Date Format", "Flip"})
			for _, sc := range e.cfg.Sources {
				cols := make([]string, 0, len(sc.Mappings))
				for _, m := range sc.Mappings {
					cols = append(cols, m.CSVColumn+"="+m.StandardColumn)
				}
				table.Append([]string{
					sc.ID,
					sc.Name,
					strings.Join(cols, "; "),
					sc.DateFormat,
					strconv.FormatBool(sc.FlipIncomeExpense),
				})
			}
			table.Render()
			return nil
		},
	}
}
