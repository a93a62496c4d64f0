package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/akaza138/sktexcot-accounting-test/internal/counterparty"
	"github.com/akaza138/sktexcot-accounting-test/internal/ledger"
)

type stubStatements struct {
	projectFunc func(ctx context.Context, id int64, from, to *time.Time) (*ledger.Statement, error)
}

func (s *stubStatements) Project(ctx context.Context, id int64, from, to *time.Time) (*ledger.Statement, error) {
	return s.projectFunc(ctx, id, from, to)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func statement(cp *counterparty.Counterparty, from, to *time.Time) *ledger.Statement {
	day := func(d int) time.Time { return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC) }

	return &ledger.Statement{
		Counterparty: cp,
		From:         from,
		To:           to,
		Opening:      ledger.Opening{Debit: dec("1000"), Credit: decimal.Zero},
		Lines: []ledger.Line{
			{
				Entry: &ledger.Entry{
					ID: 1, Date: day(1), Type: ledger.TypeSale,
					Reference: ledger.Reference{Kind: ledger.KindSale, ID: 7},
					Debit:     dec("500"), Credit: decimal.Zero, Narration: "Invoice #SK/2025/0007 - Yarn, dyed",
				},
				RunningBalance: dec("1500"),
			},
			{
				Entry: &ledger.Entry{
					ID: 2, Date: day(2), Type: ledger.TypeReceipt,
					Reference: ledger.Reference{Kind: ledger.KindPayment, ID: 3},
					Debit:     decimal.Zero, Credit: dec("300"), Narration: "Receipt #3",
				},
				RunningBalance: dec("1200"),
			},
		},
		Closing: dec("1200"),
	}
}

func TestWriteCSV(t *testing.T) {
	cp := &counterparty.Counterparty{ID: 4, Name: "Acme Knits"}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, statement(cp, nil, nil)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"", "opening", "", "Opening Balance", "1000.00", "0.00", "1000.00"}, rows[1])
	assert.Equal(t, []string{
		"2025-04-01", "sale", "sale:7", "Invoice #SK/2025/0007 - Yarn, dyed", "500.00", "0.00", "1500.00",
	}, rows[2])
	assert.Equal(t, "1200.00", rows[3][6])
	assert.Equal(t, []string{"", "", "", "Closing Balance", "", "", "1200.00"}, rows[4])
}

func TestFilename(t *testing.T) {
	cp := &counterparty.Counterparty{ID: 12, Name: "Acme Knits & Co."}
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "12_Acme_Knits___Co__all.csv", Filename(statement(cp, nil, nil)))
	assert.Equal(t, "12_Acme_Knits___Co__20250401-end.csv", Filename(statement(cp, &from, nil)))
}

func TestService_ExportAll(t *testing.T) {
	acme := &counterparty.Counterparty{ID: 1, Name: "Acme"}
	blue := &counterparty.Counterparty{ID: 2, Name: "Blue"}

	type testCase struct {
		name      string
		setupMock func(l *counterparty.MockLookup)
		project   func(ctx context.Context, id int64, from, to *time.Time) (*ledger.Statement, error)
		wantFiles []string
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "OneFilePerCounterparty",
			setupMock: func(l *counterparty.MockLookup) {
				l.EXPECT().ListActive(gomock.Any()).Return([]*counterparty.Counterparty{acme, blue}, nil)
			},
			project: func(_ context.Context, id int64, from, to *time.Time) (*ledger.Statement, error) {
				if id == acme.ID {
					return statement(acme, from, to), nil
				}

				return statement(blue, from, to), nil
			},
			wantFiles: []string{"1_Acme_all.csv", "2_Blue_all.csv"},
		},
		{
			name: "ProjectionFails",
			setupMock: func(l *counterparty.MockLookup) {
				l.EXPECT().ListActive(gomock.Any()).Return([]*counterparty.Counterparty{acme}, nil)
			},
			project: func(context.Context, int64, *time.Time, *time.Time) (*ledger.Statement, error) {
				return nil, errors.New("db down")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lookup := counterparty.NewMockLookup(ctrl)
			tt.setupMock(lookup)

			svc := NewService(&stubStatements{projectFunc: tt.project}, lookup)
			dir := t.TempDir()

			items, err := svc.ExportAll(context.Background(), nil, nil, dir)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, items, len(tt.wantFiles))

			for i, want := range tt.wantFiles {
				assert.Equal(t, filepath.Join(dir, want), items[i].FilePath)

				_, err := os.Stat(items[i].FilePath)
				assert.NoError(t, err)
			}

			assert.Equal(t, "* Acme | 1200.00 | 1_Acme_all.csv\n* Blue | 1200.00 | 2_Blue_all.csv\n",
				GenerateSummary(items))
		})
	}
}
