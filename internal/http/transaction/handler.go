package transaction

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akaza138/sktexcot-accounting-test/internal/http/respond"
	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=transaction
type Service interface {
	CreateSale(ctx context.Context, params transaction.CreateSaleParams) (*transaction.Sale, error)
	GetSale(ctx context.Context, id int64) (*transaction.Sale, error)
	ListSales(ctx context.Context, filter transaction.SaleFilter) ([]*transaction.Sale, error)
	UpdateSale(ctx context.Context, id int64, patch transaction.SalePatch) (*transaction.Sale, error)
	DeleteSale(ctx context.Context, id int64) error

	CreateBill(ctx context.Context, params transaction.CreateBillParams) (*transaction.Bill, error)
	GetBill(ctx context.Context, id int64) (*transaction.Bill, error)
	ListBills(ctx context.Context, filter transaction.BillFilter) ([]*transaction.Bill, error)
	UpdateBill(ctx context.Context, id int64, patch transaction.BillPatch) (*transaction.Bill, error)
	DeleteBill(ctx context.Context, id int64) error

	ApplyPayment(ctx context.Context, params transaction.ApplyPaymentParams) (*transaction.Payment, error)
	GetPayment(ctx context.Context, id int64) (*transaction.Payment, error)
	ListPayments(ctx context.Context, filter transaction.PaymentFilter) ([]*transaction.Payment, error)
	AmendPayment(ctx context.Context, id int64, params transaction.AmendPaymentParams) (*transaction.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) SaleRoutes(r chi.Router) {
	r.Post("/", h.createSale)
	r.Get("/", h.listSales)
	r.Get("/{id}", h.getSale)
	r.Patch("/{id}", h.updateSale)
	r.Delete("/{id}", h.deleteSale)
}

func (h *Handler) BillRoutes(r chi.Router) {
	r.Post("/", h.createBill)
	r.Get("/", h.listBills)
	r.Get("/{id}", h.getBill)
	r.Patch("/{id}", h.updateBill)
	r.Delete("/{id}", h.deleteBill)
}

func (h *Handler) PaymentRoutes(r chi.Router) {
	r.Post("/", h.applyPayment)
	r.Get("/", h.listPayments)
	r.Get("/{id}", h.getPayment)
	r.Patch("/{id}", h.amendPayment)
	r.Delete("/{id}", h.deletePayment)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.WriteProblem(w, r, http.StatusBadRequest, "invalid id")
		return 0, false
	}

	return id, true
}

// listQuery holds the query parameters every list endpoint shares.
type listQuery struct {
	counterpartyID *int64
	start, end     *time.Time
	limit, offset  int
}

func parseListQuery(r *http.Request) listQuery {
	q := r.URL.Query()

	out := listQuery{
		counterpartyID: queryInt64(r, "counterparty_id"),
		start:          queryDate(r, "start_date"),
		end:            queryDate(r, "end_date"),
	}

	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		out.limit = n
	}

	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		out.offset = n
	}

	return out
}

func queryInt64(r *http.Request, key string) *int64 {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}

	return new(n)
}

func queryDate(r *http.Request, key string) *time.Time {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}

	return new(t)
}
