package transaction

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/http/respond"
	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

type createBillRequest struct {
	BillNumber      string                  `json:"bill_number" validate:"required"`
	BillDate        time.Time               `json:"bill_date" validate:"required"`
	CounterpartyID  int64                   `json:"counterparty_id" validate:"gt=0"`
	CustomerName    string                  `json:"customer_name"`
	ItemDescription string                  `json:"item_description"`
	ProcessType     string                  `json:"process_type"`
	Quantity        decimal.Decimal         `json:"quantity" validate:"gt=0"`
	Rate            decimal.Decimal         `json:"rate" validate:"gte=0"`
	GSTType         tax.GSTType             `json:"gst_type" validate:"oneof=intra_state inter_state"`
	GSTRate         decimal.Decimal         `json:"gst_rate" validate:"gte=0,lte=100"`
	TDSApplicable   bool                    `json:"tds_applicable"`
	TDSRate         decimal.Decimal         `json:"tds_rate" validate:"gte=0,lte=100"`
	TDSFileDate     *time.Time              `json:"tds_file_date"`
	AmountPaid      decimal.Decimal         `json:"amount_paid" validate:"gte=0"`
	PaymentMode     transaction.PaymentMode `json:"payment_mode" validate:"omitempty,oneof=cash bank upi cheque neft rtgs"`
	PaymentDate     *time.Time              `json:"payment_date"`
	Notes           string                  `json:"notes"`
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	bill, err := h.svc.CreateBill(r.Context(), transaction.CreateBillParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toBillResponse(bill))
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	bills, err := h.svc.ListBills(r.Context(), transaction.BillFilter{
		CounterpartyID: q.counterpartyID,
		StartDate:      q.start,
		EndDate:        q.end,
		Limit:          q.limit,
		Offset:         q.offset,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapAll(bills, toBillResponse))
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	bill, err := h.svc.GetBill(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toBillResponse(bill))
}

type updateBillRequest struct {
	BillNumber      *string                  `json:"bill_number,omitempty" validate:"omitempty,min=1"`
	BillDate        *time.Time               `json:"bill_date,omitempty"`
	CustomerName    *string                  `json:"customer_name,omitempty"`
	ItemDescription *string                  `json:"item_description,omitempty"`
	ProcessType     *string                  `json:"process_type,omitempty"`
	Quantity        *decimal.Decimal         `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Rate            *decimal.Decimal         `json:"rate,omitempty" validate:"omitempty,gte=0"`
	GSTType         *tax.GSTType             `json:"gst_type,omitempty" validate:"omitempty,oneof=intra_state inter_state"`
	GSTRate         *decimal.Decimal         `json:"gst_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TDSApplicable   *bool                    `json:"tds_applicable,omitempty"`
	TDSRate         *decimal.Decimal         `json:"tds_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TDSFileDate     *time.Time               `json:"tds_file_date,omitempty"`
	AmountPaid      *decimal.Decimal         `json:"amount_paid,omitempty" validate:"omitempty,gte=0"`
	PaymentMode     *transaction.PaymentMode `json:"payment_mode,omitempty" validate:"omitempty,oneof=cash bank upi cheque neft rtgs"`
	PaymentDate     *time.Time               `json:"payment_date,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
}

func (h *Handler) updateBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateBillRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	bill, err := h.svc.UpdateBill(r.Context(), id, transaction.BillPatch(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toBillResponse(bill))
}

func (h *Handler) deleteBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteBill(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
