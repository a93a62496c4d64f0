package transaction

import (
	"context"
	"time"

	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

// Repository is the persistence boundary. Reads run on their own; every
// write goes through a Tx so a record and its ledger rows change together.
type Repository interface {
	Begin(ctx context.Context) (Tx, error)

	GetSale(ctx context.Context, id int64) (*Sale, error)
	ListSales(ctx context.Context, filter SaleFilter) ([]*Sale, error)
	GetBill(ctx context.Context, id int64) (*Bill, error)
	ListBills(ctx context.Context, filter BillFilter) ([]*Bill, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*Payment, error)
}

// Tx is one unit of work. Lock* methods read a row and hold it for the rest
// of the transaction.
type Tx interface {
	Ledger() ledger.Store

	NextInvoiceSequence(ctx context.Context, prefix string, year int) (int, error)
	CreateSale(ctx context.Context, s *Sale) error
	LockSale(ctx context.Context, id int64) (*Sale, error)
	UpdateSale(ctx context.Context, s *Sale) error
	DeleteSale(ctx context.Context, id int64) error

	BillNumberTaken(ctx context.Context, number string, excludeID int64) (bool, error)
	CreateBill(ctx context.Context, b *Bill) error
	LockBill(ctx context.Context, id int64) (*Bill, error)
	UpdateBill(ctx context.Context, b *Bill) error
	DeleteBill(ctx context.Context, id int64) error

	CreatePayment(ctx context.Context, p *Payment) error
	LockPayment(ctx context.Context, id int64) (*Payment, error)
	UpdatePayment(ctx context.Context, p *Payment) error
	DeletePayment(ctx context.Context, id int64) error
	// LinkedPayments lists the payments applied against a sale or bill, oldest first.
	LinkedPayments(ctx context.Context, ref ledger.Reference) ([]*Payment, error)

	Commit() error
	Rollback() error
}

type SaleFilter struct {
	CounterpartyID *int64
	StartDate      *time.Time
	EndDate        *time.Time
	Limit          int
	Offset         int
}

type BillFilter struct {
	CounterpartyID *int64
	StartDate      *time.Time
	EndDate        *time.Time
	Limit          int
	Offset         int
}

type PaymentFilter struct {
	CounterpartyID *int64
	Direction      *Direction
	SaleID         *int64
	BillID         *int64
	Limit          int
	Offset         int
}
