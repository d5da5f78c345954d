package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newDetectCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Re-run transfer detection over the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(*repoDir)
			if err != nil {
				return err
			}
			report, err := e.svc.Detect()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transfers detected: %d\n", len(report.Transfers))
			for _, p := range report.Transfers {
				fmt.Fprintf(out, "  %s  %s / %s  %s\n", p.TransferID, p.Debit.Description, p.Credit.Description, p.Credit.Amount.StringFixed(2))
			}
			return nil
		},
	}
}

func newTransfersCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "transfers",
		Short: "List detected transfers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(*repoDir)
			if err != nil {
				return err
			}
			views, err := e.svc.Transfers()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No transfers")
				return nil
			}

			table := tablewriter.NewWriter(out)
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"Transfer", "Type", "Date", "From", "To", "Amount", "Confidence", "Excluded"})
			for _, v := range views {
				table.Append([]string{
					v.TransferID,
					string(v.Type),
					v.Debit.Date.Format("2006-01-02"),
					v.Debit.Metadata.SourceKey() + " " + v.Debit.User,
					v.Credit.Metadata.SourceKey() + " " + v.Credit.User,
					v.Credit.Amount.StringFixed(2),
					v.Confidence.StringFixed(2),
					strconv.FormatBool(v.Excluded),
				})
			}
			table.Render()
			return nil
		},
	}
}

func newOverrideCommand(repoDir *string) *cobra.Command {
	var excluded bool

	cmd := &cobra.Command{
		Use:   "override <transaction-id>",
		Short: "Set a transaction's exclusion flag by hand",
		Long: `Set a transaction's exclusion flag by hand.

The transaction is marked as user-overridden and transfer detection leaves it
alone from then on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(*repoDir)
			if err != nil {
				return err
			}
			txn, err := e.svc.Override(args[0], excluded)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: excluded=%t\n", txn.ID, txn.Description, excluded)
			return nil
		},
	}

	cmd.Flags().BoolVar(&excluded, "excluded", true, "exclude the transaction from calculations")
	return cmd
}
