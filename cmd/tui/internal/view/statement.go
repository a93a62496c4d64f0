package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

type statementState int

const (
	statementStateTimeframe statementState = iota
	statementStateLoading
	statementStateBrowse
)

// StatementModel shows one counterparty's ledger with running balances.
type StatementModel struct {
	statements     Statements
	counterpartyID int64

	state  statementState
	picker TimeframePicker
	window TimeframeSelectedMsg
	table  table.Model
	st     *ledger.Statement
	err    error
}

func NewStatementModel(statements Statements, counterpartyID int64) StatementModel {
	return StatementModel{
		statements:     statements,
		counterpartyID: counterpartyID,
		picker:         NewTimeframePicker(),
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Type", Width: 10},
			{Title: "Reference", Width: 14},
			{Title: "Debit", Width: 14},
			{Title: "Credit", Width: 14},
			{Title: "Balance", Width: 16},
		}),
	}
}

func (m StatementModel) Title() string { return "Statement" }

func (m StatementModel) ShortHelp() string {
	if m.state == statementStateBrowse {
		return "Esc: change timeframe"
	}

	return "Esc: back"
}

func (m StatementModel) Init() tea.Cmd {
	return nil
}

func (m StatementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.window = msg
		m.state = statementStateLoading

		return m, m.loadCmd()

	case statementLoadedMsg:
		m.state = statementStateBrowse
		m.err = msg.err

		if msg.err == nil {
			m.st = msg.st
			m.refreshTable()
		}

		return m, nil
	}

	switch m.state {
	case statementStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case statementStateBrowse:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = statementStateTimeframe
			m.picker.Reset()

			return m, nil
		}

		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *StatementModel) refreshTable() {
	rows := []table.Row{{
		"", string(ledger.TypeOpening), "",
		FormatAmount(m.st.Opening.Debit), FormatAmount(m.st.Opening.Credit), FormatAmount(m.st.Opening.Net()),
	}}

	for _, l := range m.st.Lines {
		rows = append(rows, table.Row{
			FormatDate(l.Entry.Date),
			string(l.Entry.Type),
			l.Entry.Reference.String(),
			FormatAmount(l.Entry.Debit),
			FormatAmount(l.Entry.Credit),
			FormatAmount(l.RunningBalance),
		})
	}

	m.table.SetRows(rows)
}

func (m StatementModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case statementStateTimeframe:
		return pad.Render(m.picker.View())
	case statementStateLoading:
		return pad.Render("Loading statement...")
	}

	if m.err != nil {
		return pad.Render(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("%s (#%d), %s", m.st.Counterparty.Name, m.st.Counterparty.ID, m.window.Label())
	closing := fmt.Sprintf("Closing balance: %s", activeStyle(FormatAmount(m.st.Closing)))

	return pad.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingBottom(1).Render(header),
		m.table.View(),
		"",
		closing,
	))
}

type statementLoadedMsg struct {
	st  *ledger.Statement
	err error
}

func (m StatementModel) loadCmd() tea.Cmd {
	id, from, to := m.counterpartyID, m.window.From, m.window.To

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.statements.Project(ctx, id, from, to)

		return statementLoadedMsg{st: st, err: err}
	}
}
