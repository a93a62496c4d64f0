package transaction

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/http/respond"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

type applyPaymentRequest struct {
	Direction            transaction.Direction   `json:"direction" validate:"oneof=receipt payment"`
	CounterpartyID       int64                   `json:"counterparty_id" validate:"gt=0"`
	Amount               decimal.Decimal         `json:"amount" validate:"gt=0"`
	PaymentDate          time.Time               `json:"payment_date" validate:"required"`
	Mode                 transaction.PaymentMode `json:"payment_mode" validate:"oneof=cash bank upi cheque neft rtgs"`
	TransactionReference string                  `json:"transaction_reference"`
	BankAccount          string                  `json:"bank_account"`
	Notes                string                  `json:"notes"`
	SaleID               *int64                  `json:"sale_id,omitempty" validate:"omitempty,gt=0"`
	BillID               *int64                  `json:"bill_id,omitempty" validate:"omitempty,gt=0,excluded_with=SaleID"`
}

func (h *Handler) applyPayment(w http.ResponseWriter, r *http.Request) {
	var req applyPaymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.ApplyPayment(r.Context(), transaction.ApplyPaymentParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toPaymentResponse(p))
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	filter := transaction.PaymentFilter{
		CounterpartyID: q.counterpartyID,
		SaleID:         queryInt64(r, "sale_id"),
		BillID:         queryInt64(r, "bill_id"),
		Limit:          q.limit,
		Offset:         q.offset,
	}

	if d := transaction.Direction(r.URL.Query().Get("direction")); d.Valid() {
		filter.Direction = new(d)
	}

	payments, err := h.svc.ListPayments(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, mapAll(payments, toPaymentResponse))
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.GetPayment(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toPaymentResponse(p))
}

type amendPaymentRequest struct {
	Amount               decimal.Decimal          `json:"amount" validate:"gt=0"`
	PaymentDate          time.Time                `json:"payment_date" validate:"required"`
	Mode                 *transaction.PaymentMode `json:"payment_mode,omitempty" validate:"omitempty,oneof=cash bank upi cheque neft rtgs"`
	TransactionReference *string                  `json:"transaction_reference,omitempty"`
	BankAccount          *string                  `json:"bank_account,omitempty"`
	Notes                *string                  `json:"notes,omitempty"`
}

func (h *Handler) amendPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req amendPaymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.AmendPayment(r.Context(), id, transaction.AmendPaymentParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toPaymentResponse(p))
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeletePayment(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
