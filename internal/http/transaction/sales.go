package transaction

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/http/respond"
	"github.com/akaza138/sktexcot-accounting-test/internal/tax"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

type createSaleRequest struct {
	InvoiceDate     time.Time               `json:"invoice_date" validate:"required"`
	CounterpartyID  int64                   `json:"counterparty_id" validate:"gt=0"`
	ItemDescription string                  `json:"item_description"`
	ProcessType     string                  `json:"process_type"`
	Quantity        decimal.Decimal         `json:"quantity" validate:"gt=0"`
	Rate            decimal.Decimal         `json:"rate" validate:"gte=0"`
	GSTType         tax.GSTType             `json:"gst_type" validate:"oneof=intra_state inter_state"`
	GSTRate         decimal.Decimal         `json:"gst_rate" validate:"gte=0,lte=100"`
	TCSAmount       decimal.Decimal         `json:"tcs_amount" validate:"gte=0"`
	AmountPaid      decimal.Decimal         `json:"amount_paid" validate:"gte=0"`
	PaymentMode     transaction.PaymentMode `json:"payment_mode" validate:"omitempty,oneof=cash bank upi cheque neft rtgs"`
	PaymentDate     *time.Time              `json:"payment_date"`
	Notes           string                  `json:"notes"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	sale, err := h.svc.CreateSale(r.Context(), transaction.CreateSaleParams{
		InvoiceDate:     req.InvoiceDate,
		CounterpartyID:  req.CounterpartyID,
		ItemDescription: req.ItemDescription,
		ProcessType:     req.ProcessType,
		Quantity:        req.Quantity,
		Rate:            req.Rate,
		GSTType:         req.GSTType,
		GSTRate:         req.GSTRate,
		TCSAmount:       req.TCSAmount,
		AmountPaid:      req.AmountPaid,
		PaymentMode:     req.PaymentMode,
		PaymentDate:     req.PaymentDate,
		Notes:           req.Notes,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSaleResponse(sale))
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	sales, err := h.svc.ListSales(r.Context(), transaction.SaleFilter{
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

	respond.JSON(w, http.StatusOK, mapAll(sales, toSaleResponse))
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sale, err := h.svc.GetSale(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSaleResponse(sale))
}

type updateSaleRequest struct {
	InvoiceDate     *time.Time               `json:"invoice_date,omitempty"`
	ItemDescription *string                  `json:"item_description,omitempty"`
	ProcessType     *string                  `json:"process_type,omitempty"`
	Quantity        *decimal.Decimal         `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Rate            *decimal.Decimal         `json:"rate,omitempty" validate:"omitempty,gte=0"`
	GSTType         *tax.GSTType             `json:"gst_type,omitempty" validate:"omitempty,oneof=intra_state inter_state"`
	GSTRate         *decimal.Decimal         `json:"gst_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TCSAmount       *decimal.Decimal         `json:"tcs_amount,omitempty" validate:"omitempty,gte=0"`
	AmountPaid      *decimal.Decimal         `json:"amount_paid,omitempty" validate:"omitempty,gte=0"`
	PaymentMode     *transaction.PaymentMode `json:"payment_mode,omitempty" validate:"omitempty,oneof=cash bank upi cheque neft rtgs"`
	PaymentDate     *time.Time               `json:"payment_date,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
}

func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateSaleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	sale, err := h.svc.UpdateSale(r.Context(), id, transaction.SalePatch(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSaleResponse(sale))
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteSale(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
