package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/money"
)

const dbTimeout = 5 * time.Second

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

func FormatAmount(d decimal.Decimal) string {
	return money.Rupees(d)
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
