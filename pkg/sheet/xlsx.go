package sheet

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/hazyhaar/agrocota/pkg/quote"
)

func init() {
	Register(xlsxFormat{})
}

type xlsxFormat struct{}

func (xlsxFormat) Name() string         { return "xlsx" }
func (xlsxFormat) Extensions() []string { return []string{".xlsx", ".xlsm"} }

// Read parses one sheet of a workbook. Cells stored as numbers become
// quote.Number so prices keep their full precision; everything else is text.
func (xlsxFormat) Read(r io.Reader, opts Options) (quote.RawGrid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return quote.RawGrid{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := pickSheet(f.GetSheetList(), opts.Sheet)
	if err != nil {
		return quote.RawGrid{}, err
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return quote.RawGrid{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	rows := make([][]quote.Cell, 0, len(raw))
	nonBlank := 0
	for r, values := range raw {
		row := make([]quote.Cell, len(values))
		for c, v := range values {
			row[c] = xlsxCell(f, sheet, r, c, v)
		}
		if !blankRow(row) {
			nonBlank++
		}
		rows = append(rows, row)
		if opts.MaxRows > 0 && nonBlank > opts.MaxRows {
			break
		}
	}
	return buildGrid(rows, opts.MaxRows)
}

func pickSheet(sheets []string, want string) (string, error) {
	if len(sheets) == 0 {
		return "", ErrEmptyFile
	}
	if want == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == want {
			return s, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found (have %v)", want, sheets)
}

func xlsxCell(f *excelize.File, sheet string, row, col int, value string) quote.Cell {
	if value == "" {
		return quote.Cell{}
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return quote.Text(value)
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return quote.Text(value)
	}
	if typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset {
		if n, err := strconv.ParseFloat(value, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return quote.Number(n)
		}
	}
	return quote.Text(value)
}
