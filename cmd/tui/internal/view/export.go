package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/akaza138/sktexcot-accounting-test/internal/export"
)

type exportState int

const (
	exportStateTimeframe exportState = iota
	exportStatePath
	exportStateExporting
	exportStateResult
)

// ExportModel writes a CSV statement per active counterparty into a folder.
type ExportModel struct {
	exporter Exporter

	state  exportState
	err    error
	picker TimeframePicker
	window TimeframeSelectedMsg

	form    *huh.Form
	path    *string
	spinner spinner.Model
	summary string
}

func NewExportModel(exporter Exporter) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		exporter: exporter,
		state:    exportStateTimeframe,
		picker:   NewTimeframePicker(),
		path:     new("./statements"),
		spinner:  s,
	}
}

func (m ExportModel) Title() string { return "Export Statements" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.window = tfMsg
		m.form = m.buildPathForm()
		m.state = exportStatePath

		return m, m.form.Init()
	}

	switch m.state {
	case exportStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case exportStatePath:
		return m.updatePath(msg)

	case exportStateExporting:
		if result, ok := msg.(exportResultMsg); ok {
			m.state = exportStateResult
			m.err = result.err
			m.summary = result.body

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case exportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = exportStateTimeframe
		m.picker.Reset()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(*m.path))
}

func (m ExportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./statements").
				Value(m.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case exportStateTimeframe:
		return pad.Render(m.picker.View())
	case exportStatePath:
		return pad.Render(m.form.View())
	case exportStateExporting:
		return pad.Render(fmt.Sprintf("%s Writing statements for %s...", m.spinner.View(), m.window.Label()))
	case exportStateResult:
		if m.err != nil {
			return pad.Render(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render("Export Complete!")

		return pad.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.summary))
	}

	return ""
}

type exportResultMsg struct {
	body string
	err  error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(path string) tea.Cmd {
	from, to := m.window.From, m.window.To

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		items, err := m.exporter.ExportAll(ctx, from, to, path)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if len(items) == 0 {
			return exportResultMsg{body: "No active counterparties."}
		}

		return exportResultMsg{body: export.GenerateSummary(items)}
	}
}
