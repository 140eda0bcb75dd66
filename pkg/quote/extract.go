package quote

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Item is one validated, priced quotation line.
type Item struct {
	Product      string  `json:"product"`
	Supplier     string  `json:"supplier"`
	Category     string  `json:"category"`
	PricePerArea float64 `json:"price_per_area"`
	Dose         string  `json:"dose,omitempty"`
	Unit         string  `json:"unit,omitempty"`
}

// leadingDecimal matches the numeric prefix a lenient parser would accept.
var leadingDecimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseDecimal reads a decimal written with either separator: the first comma
// becomes a period and the longest numeric prefix is parsed ("150,50" -> 150.5,
// "85 R$" -> 85). Anything unparseable or non-finite yields 0.
func ParseDecimal(s string) float64 {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	num := leadingDecimal.FindString(s)
	if num == "" {
		return 0
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// ParsePrice coerces a price cell to a number; see ParseDecimal for text.
func ParsePrice(c Cell) float64 {
	switch c.Kind {
	case CellNumber:
		if math.IsInf(c.Number, 0) || math.IsNaN(c.Number) {
			return 0
		}
		return c.Number
	case CellText:
		return ParseDecimal(c.Text)
	default:
		return 0
	}
}

// Extract applies the mapping to every data row and keeps the rows with a
// product name and a positive price. Invalid rows are dropped silently.
func (v *Vocabulary) Extract(grid RawGrid, m ColumnMapping) []Item {
	items, _ := v.extract(grid, m)
	return items
}

// Extract uses the default vocabulary.
func Extract(grid RawGrid, m ColumnMapping) []Item {
	return defaultVocabulary.Extract(grid, m)
}

func (v *Vocabulary) extract(grid RawGrid, m ColumnMapping) ([]Item, map[Source]int) {
	items := make([]Item, 0, len(grid.Rows))
	sources := make(map[Source]int)
	if grid.Width() == 0 {
		return items, sources
	}

	text := func(row, col int) string {
		if col == NotPresent {
			return ""
		}
		return strings.TrimSpace(grid.Cell(row, col).String())
	}

	for r := range grid.Rows {
		product := text(r, m.Product)
		price := ParsePrice(grid.Cell(r, m.PricePerArea))
		if product == "" || !(price > 0) {
			continue
		}
		res := v.Resolve(text(r, m.Category), product)
		sources[res.Source]++
		items = append(items, Item{
			Product:      product,
			Supplier:     text(r, m.Supplier),
			Category:     res.Category,
			PricePerArea: price,
			Dose:         text(r, m.Dose),
			Unit:         text(r, m.Unit),
		})
	}
	return items, sources
}
