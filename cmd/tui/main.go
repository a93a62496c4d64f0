package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/akaza138/sktexcot-accounting-test/cmd/tui/internal/view"
	"github.com/akaza138/sktexcot-accounting-test/internal/config"
	"github.com/akaza138/sktexcot-accounting-test/internal/platform"
)

type model struct {
	svc *platform.Services

	currentView View

	summaryView   view.SummaryModel
	statementView view.StatementModel
	paymentView   view.PaymentModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu View = iota
	ViewSummary
	ViewStatement
	ViewPayment
	ViewExport
)

func initialModel(svc *platform.Services) model {
	return model{
		svc:         svc,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewSummary
				m.summaryView = view.NewSummaryModel(m.svc.Projector)

				return m, m.summaryView.Init()
			case "2":
				m.currentView = ViewPayment
				m.paymentView = view.NewPaymentModel(m.svc.Transactions)

				return m, m.paymentView.Init()
			case "3":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.svc.Export)

				return m, m.exportView.Init()
			}
		}
	case view.OpenStatementMsg:
		m.currentView = ViewStatement
		m.statementView = view.NewStatementModel(m.svc.Projector, msg.CounterpartyID)

		return m, m.statementView.Init()
	case view.BackMsg:
		if m.currentView == ViewStatement {
			m.currentView = ViewSummary
			return m, nil
		}

		m.currentView = ViewMenu

		return m, nil
	}

	var next tea.Model

	switch m.currentView {
	case ViewSummary:
		next, cmd = m.summaryView.Update(msg)
		m.summaryView = next.(view.SummaryModel)
	case ViewStatement:
		next, cmd = m.statementView.Update(msg)
		m.statementView = next.(view.StatementModel)
	case ViewPayment:
		next, cmd = m.paymentView.Update(msg)
		m.paymentView = next.(view.PaymentModel)
	case ViewExport:
		next, cmd = m.exportView.Update(msg)
		m.exportView = next.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Ledger\n\n" +
				"1. Balances and statements\n" +
				"2. Record a payment\n" +
				"3. Export statements\n\n" +
				"q. Quit",
		)
	case ViewSummary:
		current = m.summaryView
	case ViewStatement:
		current = m.statementView
	case ViewPayment:
		current = m.paymentView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).Padding(1, 1, 0).Render(current.Title())
	help := lipgloss.NewStyle().Faint(true).Padding(0, 1).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logs would tear the alt screen, so they go to a file when asked for.
	logger := slog.New(slog.DiscardHandler)

	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		f, err := tea.LogToFile(path, "ledger")
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()

		logger = slog.New(slog.NewTextHandler(f, nil))
	}

	svc, err := platform.Build(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	p := tea.NewProgram(initialModel(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
