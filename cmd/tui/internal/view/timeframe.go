package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Timeframe is a predefined or custom statement window.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeThisFinancialYear
	TimeframeLastFinancialYear
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisFinancialYear:
		return "This Financial Year"
	case TimeframeLastFinancialYear:
		return "Last Financial Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// financialYearStart is 1 April of the financial year containing t.
func financialYearStart(t time.Time) time.Time {
	y := t.Year()
	if t.Month() < time.April {
		y--
	}

	return day(y, time.April, 1)
}

// timeframeRange resolves tf against now into inclusive dates. Both are nil
// for TimeframeAll and TimeframeCustom.
func timeframeRange(tf Timeframe, now time.Time) (*time.Time, *time.Time) {
	today := day(now.Year(), now.Month(), now.Day())

	var from, to time.Time

	switch tf {
	case TimeframeThisMonth:
		from = day(now.Year(), now.Month(), 1)
		to = today
	case TimeframeLastMonth:
		from = day(now.Year(), now.Month()-1, 1)
		to = from.AddDate(0, 1, -1)
	case TimeframeThisFinancialYear:
		from = financialYearStart(now)
		to = today
	case TimeframeLastFinancialYear:
		to = financialYearStart(now).AddDate(0, 0, -1)
		from = financialYearStart(to)
	default:
		return nil, nil
	}

	return &from, &to
}

// TimeframeSelectedMsg carries the chosen window. Nil bounds are open.
type TimeframeSelectedMsg struct {
	From *time.Time
	To   *time.Time
}

func (m TimeframeSelectedMsg) Label() string {
	if m.From == nil && m.To == nil {
		return "all time"
	}

	return fmt.Sprintf("%s to %s", FormatDate(*m.From), FormatDate(*m.To))
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker() TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "From: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "To:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   TimeframeThisFinancialYear,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.state == timeframeStateSelect {
			return m.updateSelect(keyMsg)
		}

		if next, cmd, handled := m.updateCustom(keyMsg); handled {
			return next, cmd
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		from, to := timeframeRange(m.selected, time.Now())

		return m, selected(from, to)
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		from, to, err := parseCustomRange(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return m, nil, true
		}

		m.err = nil

		return m, selected(from, to), true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

// parseCustomRange accepts either bound empty, leaving that side open.
func parseCustomRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if s := strings.TrimSpace(start); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, nil, errors.New("invalid from date (YYYY-MM-DD)")
		}

		from = &t
	}

	if s := strings.TrimSpace(end); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, nil, errors.New("invalid to date (YYYY-MM-DD)")
		}

		to = &t
	}

	if from != nil && to != nil && from.After(*to) {
		return nil, nil, errors.New("from date is after to date")
	}

	return from, to, nil
}

func selected(from, to *time.Time) tea.Cmd {
	return func() tea.Msg {
		return TimeframeSelectedMsg{From: from, To: to}
	}
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var c1, c2 tea.Cmd

	m.startInput, c1 = m.startInput.Update(msg)
	m.endInput, c2 = m.endInput.Update(msg)

	return m, tea.Batch(c1, c2)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range (either side may be blank):\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	var sb strings.Builder

	sb.WriteString("Select Timeframe:\n\n")

	for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
		cursor := " "
		if m.selected == tf {
			cursor = ">"
		}

		fmt.Fprintf(&sb, "%s %s\n", cursor, tf)
	}

	sb.WriteString("\n(Enter to select, Esc to back)")

	return sb.String() + errStr
}

// IsSelecting reports whether the picker is on the preset list.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = TimeframeThisFinancialYear
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
