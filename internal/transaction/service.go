package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/audit"
	"github.com/akaza138/sktexcot-accounting-test/internal/counterparty"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/lock"
)

// Audit entity kinds, named after the tables they describe.
const (
	entitySales    = "sales"
	entityBilling  = "billing"
	entityPayments = "payments"
)

// Invalidator is told after every committed write so cached projections can
// be dropped.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service records sales, bills and payments and keeps the ledger and the
// outstanding balances on each invoice in step with them.
type Service struct {
	repo           Repository
	counterparties counterparty.Lookup
	audit          audit.Sink
	locker         lock.Locker
	cache          Invalidator
	prefix         string
	logger         *slog.Logger
}

type Option func(*Service)

func WithAudit(sink audit.Sink) Option {
	return func(s *Service) { s.audit = sink }
}

func WithLocker(l lock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithInvalidator(i Invalidator) Option {
	return func(s *Service) { s.cache = i }
}

func WithInvoicePrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo Repository, counterparties counterparty.Lookup, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		counterparties: counterparties,
		locker:         lock.NewLocal(),
		prefix:         DefaultInvoicePrefix,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.audit == nil {
		s.audit = audit.NewLogSink(s.logger)
	}

	return s
}

// txAttempts bounds how often a unit of work aborted by a concurrent write
// is run again.
const txAttempts = 3

// inTx runs fn in one unit of work and commits only if fn succeeds. A unit
// that fails with ErrSerialization is rolled back and run again from the
// start, so fn must not carry state between attempts.
func (s *Service) inTx(ctx context.Context, fn func(tx Tx) error) error {
	var err error

	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if !errors.Is(err, ErrSerialization) {
			break
		}

		if ctx.Err() != nil {
			return err
		}

		s.logger.Warn("retrying after concurrent update", "attempt", attempt, "error", err)
	}

	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("failed to invalidate ledger cache", "error", err)
		}
	}

	return nil
}

func (s *Service) runTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// acquire takes the locks in the order given and returns one release for all.
func (s *Service) acquire(ctx context.Context, keys ...string) (func(), error) {
	releases := make([]func(), 0, len(keys))

	releaseAll := func() {
		for _, r := range slices.Backward(releases) {
			r()
		}
	}

	for _, key := range keys {
		r, err := s.locker.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}

		releases = append(releases, r)
	}

	return releaseAll, nil
}

func (s *Service) record(ctx context.Context, action audit.Action, kind string, id int64, before, after any) {
	e := audit.NewEvent(ctx, action, kind, id, before, after)

	if err := s.audit.Record(ctx, e); err != nil {
		s.logger.Error("failed to record audit event",
			"error", err,
			"action", action,
			"entity_kind", kind,
			"entity_id", id,
		)
	}
}

// paymentEvent is a payment write made while saving a sale or bill. It is
// audited once the unit of work commits.
type paymentEvent struct {
	action audit.Action
	id     int64
	before any
	after  any
}

func created(p *Payment) paymentEvent {
	return paymentEvent{action: audit.ActionCreate, id: p.ID, after: *p}
}

func (s *Service) recordPayments(ctx context.Context, events []paymentEvent) {
	for _, e := range events {
		s.record(ctx, e.action, entityPayments, e.id, e.before, e.after)
	}
}

// resyncEntry rewrites the ledger row derived from ref. A missing row is
// left alone. A nil narration keeps the current one.
func resyncEntry(
	ctx context.Context,
	store ledger.Store,
	ref ledger.Reference,
	typ ledger.Type,
	debit, credit decimal.Decimal,
	date time.Time,
	narration *string,
) error {
	e, err := store.Find(ctx, ref, &typ)
	if errors.Is(err, ledger.ErrEntryNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("finding ledger entry for %s: %w", ref, err)
	}

	text := e.Narration
	if narration != nil {
		text = *narration
	}

	err = store.UpdateAmount(ctx, e.ID, debit, credit, date, text)
	if err != nil && !errors.Is(err, ledger.ErrEntryNotFound) {
		return fmt.Errorf("updating ledger entry for %s: %w", ref, err)
	}

	return nil
}

func paymentEntry(p *Payment, narration string) *ledger.Entry {
	debit, credit := p.Direction.LedgerAmounts(p.Amount)

	return &ledger.Entry{
		CounterpartyID: p.CounterpartyID,
		Date:           p.PaymentDate,
		Type:           p.Direction.LedgerType(),
		Reference:      p.Reference(),
		Debit:          debit,
		Credit:         credit,
		Narration:      narration,
	}
}

func withDescription(head, description string) string {
	if description == "" {
		return head
	}

	return head + " - " + description
}

func settlementNarration(doc document) string {
	return "Payment for " + doc.label()
}

// paymentNarration is used for payments recorded on their own, which need
// their ID and so are narrated after the insert.
func paymentNarration(p *Payment) string {
	head := fmt.Sprintf("Payment #%d", p.ID)
	if p.Direction == DirectionReceipt {
		head = fmt.Sprintf("Receipt #%d", p.ID)
	}

	return withDescription(head, p.Notes)
}
