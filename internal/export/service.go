// Package export writes counterparty ledger statements to CSV files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/counterparty"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

// Statements is the projection the exporter renders.
type Statements interface {
	Project(ctx context.Context, counterpartyID int64, from, to *time.Time) (*ledger.Statement, error)
}

// Item is one exported statement and the file it was written to.
type Item struct {
	Counterparty *counterparty.Counterparty
	Closing      decimal.Decimal
	FilePath     string
}

type Service struct {
	statements     Statements
	counterparties counterparty.Lookup
}

func NewService(statements Statements, counterparties counterparty.Lookup) *Service {
	return &Service{
		statements:     statements,
		counterparties: counterparties,
	}
}

// Statement projects one counterparty's statement without writing it.
func (s *Service) Statement(ctx context.Context, counterpartyID int64, from, to *time.Time) (*ledger.Statement, error) {
	st, err := s.statements.Project(ctx, counterpartyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("projecting statement: %w", err)
	}

	return st, nil
}

// Export writes one counterparty's statement for [from, to] into outputDir.
func (s *Service) Export(ctx context.Context, counterpartyID int64, from, to *time.Time, outputDir string) (Item, error) {
	st, err := s.Statement(ctx, counterpartyID, from, to)
	if err != nil {
		return Item{}, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Item{}, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, Filename(st))

	f, err := os.Create(path)
	if err != nil {
		return Item{}, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, st); err != nil {
		return Item{}, fmt.Errorf("writing statement: %w", err)
	}

	return Item{Counterparty: st.Counterparty, Closing: st.Closing, FilePath: path}, nil
}

// ExportAll writes a statement for every active counterparty.
func (s *Service) ExportAll(ctx context.Context, from, to *time.Time, outputDir string) ([]Item, error) {
	cps, err := s.counterparties.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing counterparties: %w", err)
	}

	items := make([]Item, 0, len(cps))

	for _, cp := range cps {
		item, err := s.Export(ctx, cp.ID, from, to, outputDir)
		if err != nil {
			return nil, fmt.Errorf("exporting counterparty %d: %w", cp.ID, err)
		}

		items = append(items, item)
	}

	return items, nil
}

var header = []string{"Date", "Type", "Reference", "Narration", "Debit", "Credit", "Balance"}

// WriteCSV renders st as an opening row, one row per entry with its running
// balance, and a closing row.
func WriteCSV(w io.Writer, st *ledger.Statement) error {
	cw := csv.NewWriter(w)

	openingDate := ""
	if st.From != nil {
		openingDate = st.From.Format(time.DateOnly)
	}

	rows := [][]string{
		header,
		{openingDate, string(ledger.TypeOpening), "", "Opening Balance",
			money(st.Opening.Debit), money(st.Opening.Credit), money(st.Opening.Net())},
	}

	for _, l := range st.Lines {
		e := l.Entry
		rows = append(rows, []string{
			e.Date.Format(time.DateOnly),
			string(e.Type),
			e.Reference.String(),
			e.Narration,
			money(e.Debit),
			money(e.Credit),
			money(l.RunningBalance),
		})
	}

	closingDate := ""
	if st.To != nil {
		closingDate = st.To.Format(time.DateOnly)
	}

	rows = append(rows, []string{closingDate, "", "", "Closing Balance", "", "", money(st.Closing)})

	if err := cw.WriteAll(rows); err != nil {
		return err
	}

	return cw.Error()
}

// Filename names a statement file after the counterparty and window,
// e.g. 12_Acme_Knits_20250401-20250430.csv.
func Filename(st *ledger.Statement) string {
	safeName := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, st.Counterparty.Name)

	window := "all"
	if st.From != nil || st.To != nil {
		window = bound(st.From, "start") + "-" + bound(st.To, "end")
	}

	return fmt.Sprintf("%d_%s_%s.csv", st.Counterparty.ID, safeName, window)
}

func bound(t *time.Time, open string) string {
	if t == nil {
		return open
	}

	return t.Format("20060102")
}

// GenerateSummary lists exported statements one per line, for a cover note.
func GenerateSummary(items []Item) string {
	var sb strings.Builder

	for _, item := range items {
		fmt.Fprintf(&sb, "* %s | %s | %s\n",
			item.Counterparty.Name, money(item.Closing), filepath.Base(item.FilePath))
	}

	return sb.String()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
