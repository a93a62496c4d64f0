package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

const (
	linkNone = "none"
	linkSale = "sale"
	linkBill = "bill"
)

// paymentForm holds the raw huh bindings before they are parsed.
type paymentForm struct {
	Direction      string
	CounterpartyID string
	Amount         string
	Date           string
	Mode           string
	Link           string
	LinkedID       string
	Reference      string
	Notes          string
}

func (f paymentForm) params() (transaction.ApplyPaymentParams, error) {
	var p transaction.ApplyPaymentParams

	cp, err := parsePositiveID(f.CounterpartyID)
	if err != nil {
		return p, fmt.Errorf("counterparty: %w", err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(f.Amount))
	if err != nil || !amount.IsPositive() {
		return p, errors.New("amount must be a positive number")
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(f.Date))
	if err != nil {
		return p, errors.New("date must be YYYY-MM-DD")
	}

	p = transaction.ApplyPaymentParams{
		Direction:            transaction.Direction(f.Direction),
		CounterpartyID:       cp,
		Amount:               amount,
		PaymentDate:          date,
		Mode:                 transaction.PaymentMode(f.Mode),
		TransactionReference: strings.TrimSpace(f.Reference),
		Notes:                strings.TrimSpace(f.Notes),
	}

	if f.Link == linkNone {
		return p, nil
	}

	id, err := parsePositiveID(f.LinkedID)
	if err != nil {
		return p, fmt.Errorf("%s id: %w", f.Link, err)
	}

	if f.Link == linkSale {
		p.SaleID = &id
	} else {
		p.BillID = &id
	}

	return p, nil
}

func parsePositiveID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("must be a positive whole number")
	}

	return id, nil
}

// PaymentModel records a receipt or payment through a form.
type PaymentModel struct {
	payments Payments

	values *paymentForm
	form   *huh.Form
	saving bool
	result *transaction.Payment
	err    error
}

func NewPaymentModel(payments Payments) PaymentModel {
	values := &paymentForm{
		Direction: string(transaction.DirectionReceipt),
		Date:      FormatDate(time.Now()),
		Mode:      string(transaction.ModeBank),
		Link:      linkNone,
	}

	return PaymentModel{
		payments: payments,
		values:   values,
		form:     buildPaymentForm(values),
	}
}

func requiredID(s string) error {
	_, err := parsePositiveID(s)
	return err
}

func buildPaymentForm(v *paymentForm) *huh.Form {
	modes := []transaction.PaymentMode{
		transaction.ModeBank, transaction.ModeCash, transaction.ModeUPI,
		transaction.ModeCheque, transaction.ModeNEFT, transaction.ModeRTGS,
	}

	modeOptions := make([]huh.Option[string], len(modes))
	for i, mode := range modes {
		modeOptions[i] = huh.NewOption(strings.ToUpper(string(mode)), string(mode))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Direction").
				Options(
					huh.NewOption("Receipt (money in)", string(transaction.DirectionReceipt)),
					huh.NewOption("Payment (money out)", string(transaction.DirectionPayment)),
				).
				Value(&v.Direction),
			huh.NewInput().Title("Counterparty ID").Value(&v.CounterpartyID).Validate(requiredID),
			huh.NewInput().
				Title("Amount").
				Value(&v.Amount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || !d.IsPositive() {
						return errors.New("enter a positive amount")
					}

					return nil
				}),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&v.Date).
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
					return err
				}),
			huh.NewSelect[string]().Title("Mode").Options(modeOptions...).Value(&v.Mode),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Apply to").
				Options(
					huh.NewOption("Nothing (on account)", linkNone),
					huh.NewOption("Sales invoice", linkSale),
					huh.NewOption("Purchase bill", linkBill),
				).
				Value(&v.Link),
			huh.NewInput().
				Title("Invoice / bill ID").
				Description("Ignored when applied to nothing").
				Value(&v.LinkedID),
			huh.NewInput().Title("Transaction reference").Value(&v.Reference),
			huh.NewText().Title("Notes").Value(&v.Notes),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m PaymentModel) Title() string { return "Record Payment" }

func (m PaymentModel) ShortHelp() string {
	if m.result != nil || m.err != nil {
		return "Esc: back | n: new payment"
	}

	return "Esc: back | Enter: next"
}

func (m PaymentModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m PaymentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if saved, ok := msg.(paymentSavedMsg); ok {
		m.saving = false
		m.result = saved.payment
		m.err = saved.err

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			if m.result != nil || m.err != nil {
				next := NewPaymentModel(m.payments)
				return next, next.Init()
			}
		}
	}

	if m.saving || m.result != nil || m.err != nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	params, err := m.values.params()
	if err != nil {
		m.err = err
		return m, nil
	}

	m.saving = true

	return m, m.saveCmd(params)
}

func (m PaymentModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch {
	case m.saving:
		return pad.Render("Saving payment...")
	case m.err != nil:
		return pad.Render(errStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(n for a new payment, Esc to back)")
	case m.result != nil:
		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render("Payment recorded")
		body := fmt.Sprintf("#%d %s of %s on %s",
			m.result.ID, m.result.Direction, FormatAmount(m.result.Amount), FormatDate(m.result.PaymentDate))

		return pad.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", "(n for another, Esc to back)"))
	}

	return pad.Render(m.form.View())
}

type paymentSavedMsg struct {
	payment *transaction.Payment
	err     error
}

func (m PaymentModel) saveCmd(params transaction.ApplyPaymentParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.payments.ApplyPayment(ctx, params)

		return paymentSavedMsg{payment: p, err: err}
	}
}
