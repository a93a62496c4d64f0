// Package respond writes JSON bodies and RFC 7807 problem responses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Decimals validate as their float value so gt/gte/lte tags apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}

		f, _ := d.Float64()

		return f
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Decode reads a JSON body into dst and validates it. Failures are returned
// wrapped in apperrors.ErrValidation, or as a *BadRequestError when the
// body is not JSON.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return &BadRequestError{Err: err}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%s: %w", describe(verrs), apperrors.ErrValidation)
		}

		return err
	}

	return nil
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))

	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}

		parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}

	return strings.Join(parts, "; ")
}

// BadRequestError is a request that could not be parsed at all.
type BadRequestError struct {
	Err error
}

func (e *BadRequestError) Error() string { return "malformed request: " + e.Err.Error() }
func (e *BadRequestError) Unwrap() error { return e.Err }

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Error maps err onto a problem response. Unclassified errors are logged and
// reported as 500 without detail.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	detail := err.Error()

	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)

		detail = ""
	}

	WriteProblem(w, r, status, detail)
}

func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	p := Problem{
		Type:      "about:blank",
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.Path,
		RequestID: middleware.GetReqID(r.Context()),
	}

	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.Error("failed to encode problem", "error", err)
	}
}

// StatusOf is the HTTP status for an error kind.
func StatusOf(err error) int {
	var bad *BadRequestError

	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}
