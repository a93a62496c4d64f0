package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/akaza138/sktexcot-accounting-test/internal/export"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type Balances interface {
	ProjectAll(ctx context.Context) (*ledger.Summary, error)
}

type Statements interface {
	Project(ctx context.Context, counterpartyID int64, from, to *time.Time) (*ledger.Statement, error)
}

type Payments interface {
	ApplyPayment(ctx context.Context, params transaction.ApplyPaymentParams) (*transaction.Payment, error)
}

type Exporter interface {
	ExportAll(ctx context.Context, from, to *time.Time, outputDir string) ([]export.Item, error)
}

// BackMsg returns control to the menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenStatementMsg asks the menu to show one counterparty's statement.
type OpenStatementMsg struct {
	CounterpartyID int64
}
