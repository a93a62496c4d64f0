package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

// SummaryModel lists every counterparty's net balance.
type SummaryModel struct {
	balances Balances

	table   table.Model
	summary *ledger.Summary
	loading bool
	err     error
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func NewSummaryModel(balances Balances) SummaryModel {
	return SummaryModel{
		balances: balances,
		loading:  true,
		table: newTable([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Counterparty", Width: 32},
			{Title: "Net", Width: 18},
			{Title: "Status", Width: 12},
		}),
	}
}

func (m SummaryModel) Title() string { return "Balances" }

func (m SummaryModel) ShortHelp() string {
	return "Esc: back | Enter: statement | r: refresh"
}

func (m SummaryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.summary = msg.summary
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			return m, m.openSelected()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m SummaryModel) openSelected() tea.Cmd {
	if m.summary == nil {
		return nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.summary.Balances) {
		return nil
	}

	id := m.summary.Balances[idx].CounterpartyID

	return func() tea.Msg { return OpenStatementMsg{CounterpartyID: id} }
}

func (m *SummaryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.summary.Balances))

	for _, b := range m.summary.Balances {
		rows = append(rows, table.Row{
			strconv.FormatInt(b.CounterpartyID, 10),
			b.Name,
			FormatAmount(b.Net),
			string(b.Status),
		})
	}

	m.table.SetRows(rows)
}

func (m SummaryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading balances...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	totals := fmt.Sprintf("Receivable: %s | Payable: %s",
		activeStyle(FormatAmount(m.summary.TotalReceivable)),
		activeStyle(FormatAmount(m.summary.TotalPayable)),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(totals),
			tableView,
		),
	)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

type summaryLoadedMsg struct {
	summary *ledger.Summary
	err     error
}

func (m SummaryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.balances.ProjectAll(ctx)

		return summaryLoadedMsg{summary: s, err: err}
	}
}
