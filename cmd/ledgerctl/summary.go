package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/money"
	"github.com/akaza138/sktexcot-accounting-test/internal/platform"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print every active counterparty's net balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := platform.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		s, err := svc.Projector.ProjectAll(cmd.Context())
		if err != nil {
			return err
		}

		return printSummary(cmd.OutOrStdout(), s)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func printSummary(w io.Writer, s *ledger.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCounterparty\tNet\tStatus")

	for _, b := range s.Balances {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.CounterpartyID, b.Name, money.Rupees(b.Net), b.Status)
	}

	fmt.Fprintf(tw, "\tReceivable\t%s\t\n", money.Rupees(s.TotalReceivable))
	fmt.Fprintf(tw, "\tPayable\t%s\t\n", money.Rupees(s.TotalPayable))

	return tw.Flush()
}
