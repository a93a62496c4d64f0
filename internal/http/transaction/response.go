package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

type saleResponse struct {
	ID              int64                     `json:"id"`
	InvoiceNumber   string                    `json:"invoice_number"`
	InvoiceDate     time.Time                 `json:"invoice_date"`
	CounterpartyID  int64                     `json:"counterparty_id"`
	ItemDescription string                    `json:"item_description,omitempty"`
	ProcessType     string                    `json:"process_type,omitempty"`
	Quantity        decimal.Decimal           `json:"quantity"`
	Rate            decimal.Decimal           `json:"rate"`
	GSTType         tax.GSTType               `json:"gst_type"`
	GSTRate         decimal.Decimal           `json:"gst_rate"`
	TCSAmount       decimal.Decimal           `json:"tcs_amount"`
	BaseAmount      decimal.Decimal           `json:"base_amount"`
	CGSTAmount      decimal.Decimal           `json:"cgst_amount"`
	SGSTAmount      decimal.Decimal           `json:"sgst_amount"`
	IGSTAmount      decimal.Decimal           `json:"igst_amount"`
	TotalAmount     decimal.Decimal           `json:"total_amount"`
	AmountPaid      decimal.Decimal           `json:"amount_paid"`
	AmountDue       decimal.Decimal           `json:"amount_due"`
	PaymentStatus   transaction.PaymentStatus `json:"payment_status"`
	PaymentMode     transaction.PaymentMode   `json:"payment_mode,omitempty"`
	PaymentDate     *time.Time                `json:"payment_date,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       *time.Time                `json:"updated_at,omitempty"`
}

func toSaleResponse(s *transaction.Sale) saleResponse {
	return saleResponse{
		ID:              s.ID,
		InvoiceNumber:   s.InvoiceNumber,
		InvoiceDate:     s.InvoiceDate,
		CounterpartyID:  s.CounterpartyID,
		ItemDescription: s.ItemDescription,
		ProcessType:     s.ProcessType,
		Quantity:        s.Quantity,
		Rate:            s.Rate,
		GSTType:         s.GSTType,
		GSTRate:         s.GSTRate,
		TCSAmount:       s.TCSAmount,
		BaseAmount:      s.BaseAmount,
		CGSTAmount:      s.CGSTAmount,
		SGSTAmount:      s.SGSTAmount,
		IGSTAmount:      s.IGSTAmount,
		TotalAmount:     s.TotalAmount,
		AmountPaid:      s.AmountPaid,
		AmountDue:       s.AmountDue,
		PaymentStatus:   s.PaymentStatus,
		PaymentMode:     s.PaymentMode,
		PaymentDate:     s.PaymentDate,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

type billResponse struct {
	ID              int64                     `json:"id"`
	BillNumber      string                    `json:"bill_number"`
	BillDate        time.Time                 `json:"bill_date"`
	CounterpartyID  int64                     `json:"counterparty_id"`
	CustomerName    string                    `json:"customer_name,omitempty"`
	ItemDescription string                    `json:"item_description,omitempty"`
	ProcessType     string                    `json:"process_type,omitempty"`
	Quantity        decimal.Decimal           `json:"quantity"`
	Rate            decimal.Decimal           `json:"rate"`
	GSTType         tax.GSTType               `json:"gst_type"`
	GSTRate         decimal.Decimal           `json:"gst_rate"`
	TDSApplicable   bool                      `json:"tds_applicable"`
	TDSRate         decimal.Decimal           `json:"tds_rate"`
	TDSFileDate     *time.Time                `json:"tds_file_date,omitempty"`
	BaseAmount      decimal.Decimal           `json:"base_amount"`
	GSTAmount       decimal.Decimal           `json:"gst_amount"`
	TDSAmount       decimal.Decimal           `json:"tds_amount"`
	TotalAmount     decimal.Decimal           `json:"total_amount"`
	AmountPaid      decimal.Decimal           `json:"amount_paid"`
	AmountDue       decimal.Decimal           `json:"amount_due"`
	PaymentStatus   transaction.PaymentStatus `json:"payment_status"`
	PaymentMode     transaction.PaymentMode   `json:"payment_mode,omitempty"`
	PaymentDate     *time.Time                `json:"payment_date,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       *time.Time                `json:"updated_at,omitempty"`
}

func toBillResponse(b *transaction.Bill) billResponse {
	return billResponse{
		ID:              b.ID,
		BillNumber:      b.BillNumber,
		BillDate:        b.BillDate,
		CounterpartyID:  b.CounterpartyID,
		CustomerName:    b.CustomerName,
		ItemDescription: b.ItemDescription,
		ProcessType:     b.ProcessType,
		Quantity:        b.Quantity,
		Rate:            b.Rate,
		GSTType:         b.GSTType,
		GSTRate:         b.GSTRate,
		TDSApplicable:   b.TDSApplicable,
		TDSRate:         b.TDSRate,
		TDSFileDate:     b.TDSFileDate,
		BaseAmount:      b.BaseAmount,
		GSTAmount:       b.GSTAmount,
		TDSAmount:       b.TDSAmount,
		TotalAmount:     b.TotalAmount,
		AmountPaid:      b.AmountPaid,
		AmountDue:       b.AmountDue,
		PaymentStatus:   b.PaymentStatus,
		PaymentMode:     b.PaymentMode,
		PaymentDate:     b.PaymentDate,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type paymentResponse struct {
	ID                   int64                   `json:"id"`
	Direction            transaction.Direction   `json:"direction"`
	CounterpartyID       int64                   `json:"counterparty_id"`
	Amount               decimal.Decimal         `json:"amount"`
	PaymentDate          time.Time               `json:"payment_date"`
	Mode                 transaction.PaymentMode `json:"payment_mode"`
	TransactionReference string                  `json:"transaction_reference,omitempty"`
	BankAccount          string                  `json:"bank_account,omitempty"`
	Notes                string                  `json:"notes,omitempty"`
	SaleID               *int64                  `json:"sale_id,omitempty"`
	BillID               *int64                  `json:"bill_id,omitempty"`
	Settlement           bool                    `json:"settlement"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            *time.Time              `json:"updated_at,omitempty"`
}

func toPaymentResponse(p *transaction.Payment) paymentResponse {
	return paymentResponse{
		ID:                   p.ID,
		Direction:            p.Direction,
		CounterpartyID:       p.CounterpartyID,
		Amount:               p.Amount,
		PaymentDate:          p.PaymentDate,
		Mode:                 p.Mode,
		TransactionReference: p.TransactionReference,
		BankAccount:          p.BankAccount,
		Notes:                p.Notes,
		SaleID:               p.SaleID,
		BillID:               p.BillID,
		Settlement:           p.Settlement,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func mapAll[T, R any](items []*T, fn func(*T) R) []R {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}

	return out
}
