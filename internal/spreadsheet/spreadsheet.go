// Package spreadsheet - импорт и экспорт данных склада в .xlsx.
package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
)

var (
	ErrUnreadable = errors.New("spreadsheet: not a readable xlsx workbook")
	ErrNoRows     = errors.New("spreadsheet: no data rows")
)

// RowError указывает на первую плохую строку импорта (нумерация с 1, как в
// Excel).
type RowError struct {
	Row    int
	Column string
	Value  string
}

func (e RowError) Error() string {
	return fmt.Sprintf("spreadsheet: row %d: invalid %s %q", e.Row, e.Column, e.Value)
}

var balanceHeader = []any{"material_id", "material_name", "unit", "quantity", "average_cost", "total_value"}

// WriteBalances пишет остатки в книгу из одного листа.
func WriteBalances(w io.Writer, positions []inventory.Position) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &balanceHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, p := range positions {
		row := []any{
			p.MaterialID,
			p.Material,
			p.Unit,
			p.Quantity.InexactFloat64(),
			p.AverageCost.InexactFloat64(),
			p.TotalValue.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// EntryRecorder - то, что импорту нужно от учёта.
type EntryRecorder interface {
	RecordEntries(ctx context.Context, ownerID int64, lines []inventory.EntryLine) ([]inventory.Entry, error)
}

// Колонки импорта: material_id | material_name | unit | quantity | unit_price.
const (
	colMaterialID = 0
	colQuantity   = 3
	colUnitPrice  = 4
	importColumns = 5
)

// ParseEntries читает строки прихода с активного листа. Заголовок и строки
// без количества пропускаем.
func ParseEntries(r io.Reader) ([]inventory.EntryLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var lines []inventory.EntryLine
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		for len(row) < importColumns {
			row = append(row, "")
		}
		idStr := strings.TrimSpace(row[colMaterialID])
		qtyStr := strings.TrimSpace(row[colQuantity])
		if qtyStr == "" {
			continue
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			return nil, RowError{Row: i + 1, Column: "material_id", Value: idStr}
		}
		qty, err := parseNumber(qtyStr)
		if err != nil {
			return nil, RowError{Row: i + 1, Column: "quantity", Value: qtyStr}
		}
		priceStr := strings.TrimSpace(row[colUnitPrice])
		price, err := parseNumber(priceStr)
		if err != nil {
			return nil, RowError{Row: i + 1, Column: "unit_price", Value: priceStr}
		}
		lines = append(lines, inventory.EntryLine{MaterialID: id, Quantity: qty, UnitPrice: price})
	}
	if len(lines) == 0 {
		return nil, ErrNoRows
	}
	return lines, nil
}

// ImportEntries разбирает r и проводит все строки одним пакетом прихода.
func ImportEntries(ctx context.Context, rec EntryRecorder, ownerID int64, r io.Reader) ([]inventory.Entry, error) {
	lines, err := ParseEntries(r)
	if err != nil {
		return nil, err
	}
	return rec.RecordEntries(ctx, ownerID, lines)
}

// parseNumber понимает и "1.5", и "1,5".
func parseNumber(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, errors.New("empty")
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}
