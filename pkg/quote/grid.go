package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CellKind tells which variant a Cell holds.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is one spreadsheet value as decoded by the file reader.
// The zero value is an empty cell.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// Text returns a text cell. An empty string yields an empty cell.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// Number returns a numeric cell.
func Number(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell the way a user would read it: text verbatim,
// numbers in their shortest decimal form, empty as "".
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON encodes text as a JSON string, numbers as JSON numbers and
// empty cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellText:
		return json.Marshal(c.Text)
	case CellNumber:
		return json.Marshal(c.Number)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts strings, numbers, booleans and null. Arrays and
// objects carry no cell value and decode as an empty cell.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Cell{}
		return nil
	}
	switch data[0] {
	case '[', '{':
		*c = Cell{}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode text cell: %w", err)
		}
		*c = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("decode bool cell: %w", err)
		}
		*c = Text(strconv.FormatBool(b))
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("decode number cell: %w", err)
		}
		*c = Number(f)
	}
	return nil
}

// Labels renders header cells as strings. Numeric headers keep their
// decimal form and empty ones become "".
func Labels(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}

// RawGrid is the header row plus data rows of a single sheet.
type RawGrid struct {
	Headers []string `json:"headers"`
	Rows    [][]Cell `json:"rows"`
}

// Width is the number of header columns.
func (g RawGrid) Width() int {
	return len(g.Headers)
}

// Cell returns the value at (row, col). Rows behave as if padded or
// truncated to the header width: anything outside reads as empty.
func (g RawGrid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Headers) {
		return Cell{}
	}
	r := g.Rows[row]
	if col >= len(r) {
		return Cell{}
	}
	return r[col]
}
