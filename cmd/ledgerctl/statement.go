package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/akaza138/sktexcot-accounting-test/internal/export"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/money"
	"github.com/akaza138/sktexcot-accounting-test/internal/platform"
)

var statementCmd = &cobra.Command{
	Use:   "statement [counterparty-id]",
	Short: "Print a counterparty ledger with running balances",
	Example: `  # Whole history
  ledgerctl statement 12

  # April only, as CSV
  ledgerctl statement 12 --from 2025-04-01 --to 2025-04-30 --csv`,
	Args: cobra.ExactArgs(1),
	RunE: runStatement,
}

func init() {
	statementCmd.Flags().String("from", "", "first day to include (YYYY-MM-DD)")
	statementCmd.Flags().String("to", "", "last day to include (YYYY-MM-DD)")
	statementCmd.Flags().Bool("csv", false, "write CSV instead of a table")

	rootCmd.AddCommand(statementCmd)
}

func runStatement(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid counterparty id %q", args[0])
	}

	from, err := dateFlag(cmd, "from")
	if err != nil {
		return err
	}

	to, err := dateFlag(cmd, "to")
	if err != nil {
		return err
	}

	svc, err := platform.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	st, err := svc.Export.Statement(cmd.Context(), id, from, to)
	if err != nil {
		return err
	}

	if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
		return export.WriteCSV(cmd.OutOrStdout(), st)
	}

	return printStatement(cmd.OutOrStdout(), st)
}

func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("--%s must be YYYY-MM-DD: %w", name, err)
	}

	return &t, nil
}

func printStatement(w io.Writer, st *ledger.Statement) error {
	fmt.Fprintf(w, "%s (#%d)\n\n", st.Counterparty.Name, st.Counterparty.ID)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tType\tReference\tDebit\tCredit\tBalance\t")
	fmt.Fprintf(tw, "\topening\t\t%s\t%s\t%s\t\n",
		money.Format(st.Opening.Debit), money.Format(st.Opening.Credit), money.Rupees(st.Opening.Net()))

	for _, l := range st.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			l.Entry.Date.Format(time.DateOnly), l.Entry.Type, l.Entry.Reference,
			money.Format(l.Entry.Debit), money.Format(l.Entry.Credit), money.Rupees(l.RunningBalance))
	}

	fmt.Fprintf(tw, "\tclosing\t\t\t\t%s\t\n", money.Rupees(st.Closing))

	return tw.Flush()
}
