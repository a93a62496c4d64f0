package transaction_test

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

// memState is everything a memRepo holds. A Tx works on a clone and swaps it
// in on Commit, so Rollback discards partial writes.
type memState struct {
	nextID   int64
	sales    map[int64]transaction.Sale
	bills    map[int64]transaction.Bill
	payments map[int64]transaction.Payment
	entries  map[int64]ledger.Entry
	seqs     map[string]int
}

func (s *memState) clone() *memState {
	return &memState{
		nextID:   s.nextID,
		sales:    maps.Clone(s.sales),
		bills:    maps.Clone(s.bills),
		payments: maps.Clone(s.payments),
		entries:  maps.Clone(s.entries),
		seqs:     maps.Clone(s.seqs),
	}
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

type memRepo struct {
	mu    sync.Mutex
	state *memState

	// failPost makes every ledger Post fail once set.
	failPost error
	// conflicts is how many upcoming commits abort as if a concurrent
	// write won the race.
	conflicts int
	commits   int
}

func newMemRepo() *memRepo {
	return &memRepo{state: &memState{
		sales:    map[int64]transaction.Sale{},
		bills:    map[int64]transaction.Bill{},
		payments: map[int64]transaction.Payment{},
		entries:  map[int64]ledger.Entry{},
		seqs:     map[string]int{},
	}}
}

func (r *memRepo) snapshot() *memState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.clone()
}

func (r *memRepo) Begin(_ context.Context) (transaction.Tx, error) {
	return &memTx{repo: r, state: r.snapshot()}, nil
}

func (r *memRepo) GetSale(_ context.Context, id int64) (*transaction.Sale, error) {
	s, ok := r.snapshot().sales[id]
	if !ok {
		return nil, transaction.ErrSaleNotFound
	}

	return &s, nil
}

func (r *memRepo) ListSales(_ context.Context, _ transaction.SaleFilter) ([]*transaction.Sale, error) {
	var out []*transaction.Sale

	for _, s := range sortedValues(r.snapshot().sales) {
		out = append(out, &s)
	}

	return out, nil
}

func (r *memRepo) GetBill(_ context.Context, id int64) (*transaction.Bill, error) {
	b, ok := r.snapshot().bills[id]
	if !ok {
		return nil, transaction.ErrBillNotFound
	}

	return &b, nil
}

func (r *memRepo) ListBills(_ context.Context, _ transaction.BillFilter) ([]*transaction.Bill, error) {
	var out []*transaction.Bill

	for _, b := range sortedValues(r.snapshot().bills) {
		out = append(out, &b)
	}

	return out, nil
}

func (r *memRepo) GetPayment(_ context.Context, id int64) (*transaction.Payment, error) {
	p, ok := r.snapshot().payments[id]
	if !ok {
		return nil, transaction.ErrPaymentNotFound
	}

	return &p, nil
}

func (r *memRepo) ListPayments(_ context.Context, _ transaction.PaymentFilter) ([]*transaction.Payment, error) {
	var out []*transaction.Payment

	for _, p := range sortedValues(r.snapshot().payments) {
		out = append(out, &p)
	}

	return out, nil
}

// entriesFor returns the committed ledger rows derived from ref.
func (r *memRepo) entriesFor(ref ledger.Reference) []ledger.Entry {
	var out []ledger.Entry

	for _, e := range sortedValues(r.snapshot().entries) {
		if e.Reference == ref {
			out = append(out, e)
		}
	}

	return out
}

func (r *memRepo) paymentsFor(ref ledger.Reference) []transaction.Payment {
	var out []transaction.Payment

	for _, p := range sortedValues(r.snapshot().payments) {
		if linked, ok := p.Linked(); ok && linked == ref {
			out = append(out, p)
		}
	}

	return out
}

// dropSale removes a sale behind the service's back, leaving its payments.
func (r *memRepo) dropSale(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.state.sales, id)
}

func (r *memRepo) counts() (sales, bills, payments, entries int) {
	s := r.snapshot()
	return len(s.sales), len(s.bills), len(s.payments), len(s.entries)
}

type memTx struct {
	repo  *memRepo
	state *memState
}

func (t *memTx) Ledger() ledger.Store { return t }

func (t *memTx) Commit() error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	t.repo.commits++

	if t.repo.conflicts > 0 {
		t.repo.conflicts--
		return transaction.ErrSerialization
	}

	t.repo.state = t.state

	return nil
}

func (t *memTx) Rollback() error { return nil }

func (t *memTx) NextInvoiceSequence(_ context.Context, prefix string, year int) (int, error) {
	scope := transaction.SequencePrefix(prefix, year)

	if _, ok := t.state.seqs[scope]; !ok {
		var existing []string
		for _, s := range t.state.sales {
			existing = append(existing, s.InvoiceNumber)
		}

		t.state.seqs[scope] = transaction.NextSequence(existing, prefix, year) - 1
	}

	t.state.seqs[scope]++

	return t.state.seqs[scope], nil
}

func (t *memTx) CreateSale(_ context.Context, s *transaction.Sale) error {
	for _, other := range t.state.sales {
		if other.InvoiceNumber == s.InvoiceNumber {
			return transaction.ErrDuplicateInvoiceNumber
		}
	}

	s.ID = t.state.id()
	s.CreatedAt = time.Now()
	t.state.sales[s.ID] = *s

	return nil
}

func (t *memTx) LockSale(_ context.Context, id int64) (*transaction.Sale, error) {
	s, ok := t.state.sales[id]
	if !ok {
		return nil, transaction.ErrSaleNotFound
	}

	return &s, nil
}

func (t *memTx) UpdateSale(_ context.Context, s *transaction.Sale) error {
	if _, ok := t.state.sales[s.ID]; !ok {
		return transaction.ErrSaleNotFound
	}

	t.state.sales[s.ID] = *s

	return nil
}

func (t *memTx) DeleteSale(_ context.Context, id int64) error {
	if _, ok := t.state.sales[id]; !ok {
		return transaction.ErrSaleNotFound
	}

	delete(t.state.sales, id)

	return nil
}

func (t *memTx) BillNumberTaken(_ context.Context, number string, excludeID int64) (bool, error) {
	for _, b := range t.state.bills {
		if b.BillNumber == number && b.ID != excludeID {
			return true, nil
		}
	}

	return false, nil
}

func (t *memTx) CreateBill(_ context.Context, b *transaction.Bill) error {
	b.ID = t.state.id()
	b.CreatedAt = time.Now()
	t.state.bills[b.ID] = *b

	return nil
}

func (t *memTx) LockBill(_ context.Context, id int64) (*transaction.Bill, error) {
	b, ok := t.state.bills[id]
	if !ok {
		return nil, transaction.ErrBillNotFound
	}

	return &b, nil
}

func (t *memTx) UpdateBill(_ context.Context, b *transaction.Bill) error {
	if _, ok := t.state.bills[b.ID]; !ok {
		return transaction.ErrBillNotFound
	}

	t.state.bills[b.ID] = *b

	return nil
}

func (t *memTx) DeleteBill(_ context.Context, id int64) error {
	if _, ok := t.state.bills[id]; !ok {
		return transaction.ErrBillNotFound
	}

	delete(t.state.bills, id)

	return nil
}

func (t *memTx) CreatePayment(_ context.Context, p *transaction.Payment) error {
	p.ID = t.state.id()
	p.CreatedAt = time.Now()
	t.state.payments[p.ID] = *p

	return nil
}

func (t *memTx) LockPayment(_ context.Context, id int64) (*transaction.Payment, error) {
	p, ok := t.state.payments[id]
	if !ok {
		return nil, transaction.ErrPaymentNotFound
	}

	return &p, nil
}

func (t *memTx) UpdatePayment(_ context.Context, p *transaction.Payment) error {
	if _, ok := t.state.payments[p.ID]; !ok {
		return transaction.ErrPaymentNotFound
	}

	t.state.payments[p.ID] = *p

	return nil
}

func (t *memTx) DeletePayment(_ context.Context, id int64) error {
	if _, ok := t.state.payments[id]; !ok {
		return transaction.ErrPaymentNotFound
	}

	delete(t.state.payments, id)

	return nil
}

func (t *memTx) LinkedPayments(_ context.Context, ref ledger.Reference) ([]*transaction.Payment, error) {
	var out []*transaction.Payment

	for _, p := range sortedValues(t.state.payments) {
		if linked, ok := p.Linked(); ok && linked == ref {
			out = append(out, &p)
		}
	}

	return out, nil
}

func (t *memTx) Post(_ context.Context, e *ledger.Entry) error {
	if t.repo.failPost != nil {
		return t.repo.failPost
	}

	e.ID = t.state.id()
	e.CreatedAt = time.Now()
	t.state.entries[e.ID] = *e

	return nil
}

func (t *memTx) Find(_ context.Context, ref ledger.Reference, typ *ledger.Type) (*ledger.Entry, error) {
	for _, e := range sortedValues(t.state.entries) {
		if e.Reference == ref && (typ == nil || e.Type == *typ) {
			return &e, nil
		}
	}

	return nil, ledger.ErrEntryNotFound
}

func (t *memTx) UpdateAmount(
	_ context.Context,
	id int64,
	debit, credit decimal.Decimal,
	date time.Time,
	narration string,
) error {
	e, ok := t.state.entries[id]
	if !ok {
		return ledger.ErrEntryNotFound
	}

	e.Debit, e.Credit, e.Date, e.Narration = debit, credit, date, narration
	t.state.entries[id] = e

	return nil
}

func (t *memTx) DeleteByReference(_ context.Context, ref ledger.Reference) (int64, error) {
	var n int64

	for id, e := range t.state.entries {
		if e.Reference == ref {
			delete(t.state.entries, id)
			n++
		}
	}

	return n, nil
}

func (t *memTx) List(_ context.Context, counterpartyID int64, from, to *time.Time) ([]*ledger.Entry, error) {
	var out []*ledger.Entry

	for _, e := range sortedValues(t.state.entries) {
		if e.CounterpartyID != counterpartyID {
			continue
		}

		if (from != nil && e.Date.Before(*from)) || (to != nil && e.Date.After(*to)) {
			continue
		}

		out = append(out, &e)
	}

	return out, nil
}

func (t *memTx) SumAmounts(_ context.Context, counterpartyID int64, before *time.Time) (ledger.Totals, error) {
	totals := ledger.Totals{}

	for _, e := range t.state.entries {
		if e.CounterpartyID != counterpartyID || (before != nil && !e.Date.Before(*before)) {
			continue
		}

		totals.Debit = totals.Debit.Add(e.Debit)
		totals.Credit = totals.Credit.Add(e.Credit)
	}

	return totals, nil
}

// sortedValues returns m's values in key order so fakes behave like ORDER BY id.
func sortedValues[V any](m map[int64]V) []V {
	keys := slices.SortedFunc(maps.Keys(m), cmp.Compare[int64])

	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}

	return out
}
