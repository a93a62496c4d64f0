package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akaza138/sktexcot-accounting-test/internal/apperrors"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "NotFound", err: fmt.Errorf("sale %w", apperrors.ErrNotFound), want: http.StatusNotFound},
		{name: "Conflict", err: fmt.Errorf("dup: %w", apperrors.ErrConflict), want: http.StatusConflict},
		{name: "InvalidState", err: fmt.Errorf("x: %w", apperrors.ErrInvalidState), want: http.StatusConflict},
		{name: "Validation", err: fmt.Errorf("x: %w", apperrors.ErrValidation), want: http.StatusUnprocessableEntity},
		{name: "BadRequest", err: &BadRequestError{Err: errors.New("eof")}, want: http.StatusBadRequest},
		{name: "Unknown", err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestError_HidesInternalDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/1", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var p Problem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "Internal Server Error", p.Title)
	assert.Empty(t, p.Detail)
	assert.Equal(t, "/api/v1/sales/1", p.Instance)
}

type payload struct {
	Name   string          `json:"name" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		badReq  bool
	}{
		{name: "Valid", body: `{"name":"a","amount":"10.50"}`},
		{name: "ZeroAmount", body: `{"name":"a","amount":0}`, wantErr: apperrors.ErrValidation},
		{name: "MissingName", body: `{"amount":5}`, wantErr: apperrors.ErrValidation},
		{name: "UnknownField", body: `{"name":"a","amount":5,"x":1}`, badReq: true},
		{name: "NotJSON", body: `name=a`, badReq: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var p payload

			err := Decode(req, &p)

			switch {
			case tt.badReq:
				var bad *BadRequestError
				require.ErrorAs(t, err, &bad)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.True(t, decimal.RequireFromString("10.5").Equal(p.Amount))
			}
		})
	}
}
