package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akaza138/sktexcot-accounting-test/internal/export"
	ledgerhttp "github.com/akaza138/sktexcot-accounting-test/internal/http/ledger"
	"github.com/akaza138/sktexcot-accounting-test/internal/http/respond"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

//go:generate mockgen -source=handler.go -destination=service_mock.go -package=export
type Service interface {
	Statement(ctx context.Context, counterpartyID int64, from, to *time.Time) (*ledger.Statement, error)
	ExportAll(ctx context.Context, from, to *time.Time, outputDir string) ([]export.Item, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{counterpartyID}", h.statement)
	r.Post("/download", h.download)
}

type downloadRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "counterpartyID"), 10, 64)
	if err != nil || id <= 0 {
		respond.WriteProblem(w, r, http.StatusBadRequest, "invalid counterparty id")
		return
	}

	from, to, ok := ledgerhttp.Window(w, r)
	if !ok {
		return
	}

	st, err := h.svc.Statement(r.Context(), id, from, to)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(st)))

	if err := export.WriteCSV(w, st); err != nil {
		slog.ErrorContext(r.Context(), "failed to write statement", "counterparty_id", id, "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		respond.WriteProblem(w, r, http.StatusBadRequest, "start_date must not be after end_date")
		return
	}

	tmpDir, err := os.MkdirTemp("", "ledger-export-*")
	if err != nil {
		respond.Error(w, r, fmt.Errorf("creating temp dir: %w", err))
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.ExportAll(r.Context(), req.StartDate, req.EndDate, tmpDir)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	summary := export.GenerateSummary(items)
	if err := os.WriteFile(filepath.Join(tmpDir, "summary.txt"), []byte(summary), 0o644); err != nil {
		respond.Error(w, r, fmt.Errorf("writing summary: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"statements_%s.zip\"", time.Now().Format("20060102")))

	if err := zipDir(w, tmpDir); err != nil {
		slog.ErrorContext(r.Context(), "failed to create zip", "error", err)
	}
}

func zipDir(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		zf, err := zw.Create(rel)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
