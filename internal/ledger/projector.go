package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/akaza138/sktexcot-accounting-test/internal/counterparty"
)

const defaultSummaryWorkers = 8

// BalanceStatus classifies a counterparty's net position.
type BalanceStatus string

const (
	StatusReceivable BalanceStatus = "receivable"
	StatusPayable    BalanceStatus = "payable"
	StatusSettled    BalanceStatus = "settled"
)

func statusOf(net decimal.Decimal) BalanceStatus {
	switch net.Sign() {
	case 1:
		return StatusReceivable
	case -1:
		return StatusPayable
	}

	return StatusSettled
}

type Opening struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

func (o Opening) Net() decimal.Decimal {
	return o.Debit.Sub(o.Credit)
}

type Line struct {
	Entry          *Entry
	RunningBalance decimal.Decimal
}

// Statement is a counterparty ledger over an optional date window.
type Statement struct {
	Counterparty *counterparty.Counterparty
	From         *time.Time
	To           *time.Time
	Opening      Opening
	Lines        []Line
	Closing      decimal.Decimal
}

type Balance struct {
	CounterpartyID int64           `json:"counterparty_id"`
	Name           string          `json:"name"`
	Net            decimal.Decimal `json:"net"`
	Status         BalanceStatus   `json:"status"`
}

type Summary struct {
	Balances        []Balance       `json:"balances"`
	TotalReceivable decimal.Decimal `json:"total_receivable"`
	TotalPayable    decimal.Decimal `json:"total_payable"`
}

// Projector computes balances over the ordered ledger.
type Projector struct {
	entries        Reader
	counterparties counterparty.Lookup
	cache          *SummaryCache
	workers        int
	logger         *slog.Logger
}

type ProjectorOption func(*Projector)

// WithSummaryCache serves ProjectAll through the given cache.
func WithSummaryCache(c *SummaryCache) ProjectorOption {
	return func(p *Projector) { p.cache = c }
}

func WithSummaryWorkers(n int) ProjectorOption {
	return func(p *Projector) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithProjectorLogger(l *slog.Logger) ProjectorOption {
	return func(p *Projector) { p.logger = l }
}

func NewProjector(entries Reader, counterparties counterparty.Lookup, opts ...ProjectorOption) *Projector {
	p := &Projector{
		entries:        entries,
		counterparties: counterparties,
		workers:        defaultSummaryWorkers,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Project builds the statement for one counterparty. The opening balance is
// the signed static opening plus everything posted before from; lines carry
// the running balance after each entry.
func (p *Projector) Project(ctx context.Context, counterpartyID int64, from, to *time.Time) (*Statement, error) {
	cp, err := p.counterparties.Get(ctx, counterpartyID)
	if err != nil {
		return nil, err
	}

	opening := Opening{Debit: decimal.Zero, Credit: decimal.Zero}
	if cp.OpeningSide == counterparty.SideCredit {
		opening.Credit = cp.OpeningBalance
	} else {
		opening.Debit = cp.OpeningBalance
	}

	if from != nil {
		bf, err := p.entries.SumAmounts(ctx, counterpartyID, from)
		if err != nil {
			return nil, fmt.Errorf("summing brought forward: %w", err)
		}

		opening.Debit = opening.Debit.Add(bf.Debit)
		opening.Credit = opening.Credit.Add(bf.Credit)
	}

	entries, err := p.entries.List(ctx, counterpartyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	running := opening.Net()
	lines := make([]Line, 0, len(entries))

	for _, e := range entries {
		running = running.Add(e.Net())
		lines = append(lines, Line{Entry: e, RunningBalance: running})
	}

	return &Statement{
		Counterparty: cp,
		From:         from,
		To:           to,
		Opening:      opening,
		Lines:        lines,
		Closing:      running,
	}, nil
}

// ProjectAll returns the net balance of every active counterparty with
// receivable and payable totals.
func (p *Projector) ProjectAll(ctx context.Context) (*Summary, error) {
	if p.cache == nil {
		return p.summarize(ctx)
	}

	key, err := p.cache.BuildKey(ctx, "ledger", "summary")
	if err != nil {
		p.logger.Warn("summary cache unavailable", "error", err)
		return p.summarize(ctx)
	}

	var out Summary

	err = p.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return p.summarize(ctx)
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (p *Projector) summarize(ctx context.Context) (*Summary, error) {
	cps, err := p.counterparties.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing counterparties: %w", err)
	}

	balances := make([]Balance, len(cps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, cp := range cps {
		g.Go(func() error {
			totals, err := p.entries.SumAmounts(gctx, cp.ID, nil)
			if err != nil {
				return fmt.Errorf("summing counterparty %d: %w", cp.ID, err)
			}

			net := cp.SignedOpening().Add(totals.Net())
			balances[i] = Balance{
				CounterpartyID: cp.ID,
				Name:           cp.Name,
				Net:            net,
				Status:         statusOf(net),
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Summary{
		Balances:        balances,
		TotalReceivable: decimal.Zero,
		TotalPayable:    decimal.Zero,
	}

	for _, b := range balances {
		switch b.Status {
		case StatusReceivable:
			out.TotalReceivable = out.TotalReceivable.Add(b.Net)
		case StatusPayable:
			out.TotalPayable = out.TotalPayable.Add(b.Net.Abs())
		}
	}

	return out, nil
}
