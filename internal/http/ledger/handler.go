package ledger

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/akaza138/sktexcot-accounting-test/internal/http/respond"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

type Projector interface {
	Project(ctx context.Context, counterpartyID int64, from, to *time.Time) (*ledger.Statement, error)
	ProjectAll(ctx context.Context) (*ledger.Summary, error)
}

type Handler struct {
	projector Projector
}

func NewHandler(projector Projector) *Handler {
	return &Handler{projector: projector}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/{counterpartyID}", h.statement)
}

type lineResponse struct {
	ID             int64           `json:"id"`
	Date           string          `json:"date"`
	Type           ledger.Type     `json:"type"`
	Reference      string          `json:"reference"`
	Narration      string          `json:"narration,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

type statementResponse struct {
	CounterpartyID int64           `json:"counterparty_id"`
	Name           string          `json:"name"`
	From           *string         `json:"from,omitempty"`
	To             *string         `json:"to,omitempty"`
	Opening        ledger.Opening  `json:"opening"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Lines          []lineResponse  `json:"lines"`
	Closing        decimal.Decimal `json:"closing_balance"`
}

func toStatementResponse(st *ledger.Statement) statementResponse {
	resp := statementResponse{
		CounterpartyID: st.Counterparty.ID,
		Name:           st.Counterparty.Name,
		From:           formatDate(st.From),
		To:             formatDate(st.To),
		Opening:        st.Opening,
		OpeningBalance: st.Opening.Net(),
		Lines:          make([]lineResponse, len(st.Lines)),
		Closing:        st.Closing,
	}

	for i, l := range st.Lines {
		resp.Lines[i] = lineResponse{
			ID:             l.Entry.ID,
			Date:           l.Entry.Date.Format(time.DateOnly),
			Type:           l.Entry.Type,
			Reference:      l.Entry.Reference.String(),
			Narration:      l.Entry.Narration,
			Debit:          l.Entry.Debit,
			Credit:         l.Entry.Credit,
			RunningBalance: l.RunningBalance,
		}
	}

	return resp
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "counterpartyID"), 10, 64)
	if err != nil || id <= 0 {
		respond.WriteProblem(w, r, http.StatusBadRequest, "invalid counterparty id")
		return
	}

	from, to, ok := Window(w, r)
	if !ok {
		return
	}

	st, err := h.projector.Project(r.Context(), id, from, to)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toStatementResponse(st))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.projector.ProjectAll(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, s)
}

// Window reads the optional from/to query dates. It writes a 400 and
// returns false when either is malformed or from is after to.
func Window(w http.ResponseWriter, r *http.Request) (from, to *time.Time, ok bool) {
	q := r.URL.Query()

	for key, dst := range map[string]**time.Time{"from": &from, "to": &to} {
		s := q.Get(key)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.WriteProblem(w, r, http.StatusBadRequest, key+" must be a YYYY-MM-DD date")
			return nil, nil, false
		}

		*dst = new(t)
	}

	if from != nil && to != nil && from.After(*to) {
		respond.WriteProblem(w, r, http.StatusBadRequest, "from must not be after to")
		return nil, nil, false
	}

	return from, to, true
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}

	return new(t.Format(time.DateOnly))
}
