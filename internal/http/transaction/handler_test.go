package transaction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/akaza138/sktexcot-accounting-test/internal/transaction"
)

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/sales", h.SaleRoutes)
	r.Route("/bills", h.BillRoutes)
	r.Route("/payments", h.PaymentRoutes)

	return r
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestHandler(t *testing.T) {
	invoiceDate := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	sale := &transaction.Sale{
		ID:             1,
		InvoiceNumber:  "SK/2025/0001",
		InvoiceDate:    invoiceDate,
		CounterpartyID: 3,
		TotalAmount:    dec("1180"),
		AmountDue:      dec("1180"),
		PaymentStatus:  transaction.StatusUnpaid,
	}

	type testCase struct {
		name       string
		method     string
		target     string
		body       string
		setupMock  func(m *MockService)
		wantStatus int
		wantBody   func(t *testing.T, body []byte)
	}

	tests := []testCase{
		{
			name:   "CreateSale",
			method: http.MethodPost,
			target: "/sales",
			body: `{"invoice_date":"2025-04-10T00:00:00Z","counterparty_id":3,"quantity":"10",
				"rate":"100","gst_type":"intra_state","gst_rate":"18"}`,
			setupMock: func(m *MockService) {
				m.EXPECT().CreateSale(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, p transaction.CreateSaleParams) (*transaction.Sale, error) {
						assert.Equal(t, int64(3), p.CounterpartyID)
						assert.True(t, dec("10").Equal(p.Quantity))
						assert.True(t, p.AmountPaid.IsZero())
						return sale, nil
					})
			},
			wantStatus: http.StatusCreated,
			wantBody: func(t *testing.T, body []byte) {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "SK/2025/0001", resp["invoice_number"])
				assert.Equal(t, "1180", resp["total_amount"])
				assert.Equal(t, "unpaid", resp["payment_status"])
			},
		},
		{
			name:       "CreateSaleRejectsZeroQuantity",
			method:     http.MethodPost,
			target:     "/sales",
			body:       `{"invoice_date":"2025-04-10T00:00:00Z","counterparty_id":3,"quantity":0,"rate":1,"gst_type":"intra_state"}`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "CreateSaleRejectsUnknownGSTType",
			method:     http.MethodPost,
			target:     "/sales",
			body:       `{"invoice_date":"2025-04-10T00:00:00Z","counterparty_id":3,"quantity":1,"rate":1,"gst_type":"vat"}`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "MalformedBody",
			method:     http.MethodPost,
			target:     "/sales",
			body:       `{"invoice_date":`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "InvalidID",
			method:     http.MethodGet,
			target:     "/sales/abc",
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "SaleNotFound",
			method: http.MethodGet,
			target: "/sales/9",
			setupMock: func(m *MockService) {
				m.EXPECT().GetSale(gomock.Any(), int64(9)).Return(nil, transaction.ErrSaleNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody: func(t *testing.T, body []byte) {
				var p map[string]any
				require.NoError(t, json.Unmarshal(body, &p))
				assert.Equal(t, "sale not found", p["detail"])
				assert.Equal(t, float64(http.StatusNotFound), p["status"])
			},
		},
		{
			name:   "UpdateSalePassesOnlySetFields",
			method: http.MethodPatch,
			target: "/sales/1",
			body:   `{"amount_paid":"800"}`,
			setupMock: func(m *MockService) {
				m.EXPECT().UpdateSale(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
					func(_ context.Context, _ int64, patch transaction.SalePatch) (*transaction.Sale, error) {
						require.NotNil(t, patch.AmountPaid)
						assert.True(t, dec("800").Equal(*patch.AmountPaid))
						assert.Nil(t, patch.Quantity)
						return sale, nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "UpdateSaleBelowApplied",
			method: http.MethodPatch,
			target: "/sales/1",
			body:   `{"amount_paid":"10"}`,
			setupMock: func(m *MockService) {
				m.EXPECT().UpdateSale(gomock.Any(), int64(1), gomock.Any()).Return(nil, transaction.ErrPaidBelowApplied)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "DuplicateBill",
			method: http.MethodPost,
			target: "/bills",
			body: `{"bill_number":"B-1","bill_date":"2025-05-03T00:00:00Z","counterparty_id":2,
				"quantity":5,"rate":200,"gst_type":"intra_state","gst_rate":12}`,
			setupMock: func(m *MockService) {
				m.EXPECT().CreateBill(gomock.Any(), gomock.Any()).Return(nil, transaction.ErrDuplicateBillNumber)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "DeleteBill",
			method: http.MethodDelete,
			target: "/bills/2",
			setupMock: func(m *MockService) {
				m.EXPECT().DeleteBill(gomock.Any(), int64(2)).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "ApplyPaymentBothLinks",
			method: http.MethodPost,
			target: "/payments",
			body: `{"direction":"receipt","counterparty_id":3,"amount":"100","payment_date":"2025-04-20T00:00:00Z",
				"payment_mode":"upi","sale_id":1,"bill_id":2}`,
			setupMock:  func(m *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "AmendPayment",
			method: http.MethodPatch,
			target: "/payments/3",
			body:   `{"amount":"350","payment_date":"2025-04-25T00:00:00Z"}`,
			setupMock: func(m *MockService) {
				m.EXPECT().AmendPayment(gomock.Any(), int64(3), gomock.Any()).DoAndReturn(
					func(_ context.Context, _ int64, p transaction.AmendPaymentParams) (*transaction.Payment, error) {
						assert.True(t, dec("350").Equal(p.Amount))
						return &transaction.Payment{ID: 3, Amount: p.Amount, Direction: transaction.DirectionReceipt}, nil
					})
			},
			wantStatus: http.StatusOK,
			wantBody: func(t *testing.T, body []byte) {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "350", resp["amount"])
			},
		},
		{
			name:   "ListPaymentsFilters",
			method: http.MethodGet,
			target: "/payments?direction=receipt&sale_id=4&limit=20",
			setupMock: func(m *MockService) {
				m.EXPECT().ListPayments(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, f transaction.PaymentFilter) ([]*transaction.Payment, error) {
						require.NotNil(t, f.Direction)
						assert.Equal(t, transaction.DirectionReceipt, *f.Direction)
						require.NotNil(t, f.SaleID)
						assert.Equal(t, int64(4), *f.SaleID)
						assert.Nil(t, f.BillID)
						assert.Equal(t, 20, f.Limit)
						return nil, nil
					})
			},
			wantStatus: http.StatusOK,
			wantBody: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `[]`, string(body))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockService(ctrl)
			tt.setupMock(svc)

			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			newRouter(NewHandler(svc)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantBody != nil {
				tt.wantBody(t, rec.Body.Bytes())
			}
		})
	}
}
