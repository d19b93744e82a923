package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		t.Fatal(err)
	}
	return buf
}

var header = []any{"material_id", "material_name", "unit", "quantity", "unit_price"}

func TestWriteBalances(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteBalances(buf, []inventory.Position{{
		MaterialID:  3,
		Material:    "Papelão",
		Unit:        "kg",
		Quantity:    decimal.NewFromInt(15),
		AverageCost: decimal.NewFromInt(3),
		TotalValue:  decimal.NewFromInt(45),
	}})
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if got := strings.Join(rows[1], "|"); got != "3|Papelão|kg|15|3|45" {
		t.Errorf("data row = %q", got)
	}
}

func TestParseEntries(t *testing.T) {
	buf := workbook(t,
		header,
		[]any{1, "Papelão", "kg", "10", "2"},
		[]any{2, "Alumínio", "kg", "", ""}, // пропускается
		[]any{1, "Papelão", "kg", "2,5", "4,10"},
	)
	lines, err := ParseEntries(buf)
	if err != nil {
		t.Fatal(err)
	}
	want := []inventory.EntryLine{
		{MaterialID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(2)},
		{MaterialID: 1, Quantity: decimal.RequireFromString("2.5"), UnitPrice: decimal.RequireFromString("4.1")},
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %d, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i].MaterialID != want[i].MaterialID ||
			!lines[i].Quantity.Equal(want[i].Quantity) ||
			!lines[i].UnitPrice.Equal(want[i].UnitPrice) {
			t.Errorf("line %d = %+v, want %+v", i, lines[i], want[i])
		}
	}
}

func TestParseEntriesErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   *bytes.Buffer
		wantErr error
		wantRow int
	}{
		{"not xlsx", bytes.NewBufferString("a,b,c"), ErrUnreadable, 0},
		{"header only", workbook(t, header), ErrNoRows, 0},
		{"bad id", workbook(t, header, []any{"x", "", "", "1", "1"}), nil, 2},
		{"bad quantity", workbook(t, header, []any{1, "", "", "1", "1"}, []any{1, "", "", "abc", "1"}), nil, 3},
		{"missing price", workbook(t, header, []any{1, "", "", "1"}), nil, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntries(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			var re RowError
			if !errors.As(err, &re) {
				t.Fatalf("err = %v, want RowError", err)
			}
			if re.Row != tt.wantRow {
				t.Errorf("row = %d, want %d", re.Row, tt.wantRow)
			}
		})
	}
}

type recorderFunc func(ctx context.Context, ownerID int64, lines []inventory.EntryLine) ([]inventory.Entry, error)

func (f recorderFunc) RecordEntries(ctx context.Context, ownerID int64, lines []inventory.EntryLine) ([]inventory.Entry, error) {
	return f(ctx, ownerID, lines)
}

func TestImportEntriesRecordsOneBatch(t *testing.T) {
	calls := 0
	rec := recorderFunc(func(_ context.Context, ownerID int64, lines []inventory.EntryLine) ([]inventory.Entry, error) {
		calls++
		if ownerID != 5 || len(lines) != 2 {
			t.Errorf("RecordEntries(%d, %d lines)", ownerID, len(lines))
		}
		return make([]inventory.Entry, len(lines)), nil
	})
	buf := workbook(t, header, []any{1, "", "", "1", "1"}, []any{2, "", "", "3", "0.5"})

	got, err := ImportEntries(context.Background(), rec, 5, buf)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 || len(got) != 2 {
		t.Errorf("calls=%d entries=%d", calls, len(got))
	}
}
