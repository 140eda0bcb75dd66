// Package quote turns loosely structured supplier price sheets into priced,
// categorized quotation lines.
//
// The pipeline is one pass and holds no state between runs:
// headers -> ColumnMapping -> per-row extraction -> category resolution ->
// validated items -> Summary.
package quote

import "sort"

// CategoryCount is the number of items that landed in a category.
type CategoryCount struct {
	Category string `json:"category"`
	Items    int    `json:"items"`
}

// Summary aggregates an item list. It is recomputed on every run.
type Summary struct {
	Items      int             `json:"items"`
	Products   int             `json:"distinct_products"`
	Suppliers  int             `json:"distinct_suppliers"`
	Categories int             `json:"distinct_categories"`
	ByCategory []CategoryCount `json:"by_category"`
}

// Result is the outcome of one ingestion run.
type Result struct {
	Mapping     ColumnMapping  `json:"mapping"`
	Items       []Item         `json:"items"`
	Summary     Summary        `json:"summary"`
	RowsRead    int            `json:"rows_read"`
	RowsDropped int            `json:"rows_dropped"`
	Sources     map[Source]int `json:"sources"`
}

// Ingest runs the full pipeline with the default vocabulary.
func Ingest(grid RawGrid) *Result {
	return defaultVocabulary.Ingest(grid)
}

// Ingest detects the column mapping from the headers, extracts the valid
// rows and summarizes them. Identical grids give identical results.
func (v *Vocabulary) Ingest(grid RawGrid) *Result {
	mapping := DetectColumns(grid.Headers)
	items, sources := v.extract(grid, mapping)
	return &Result{
		Mapping:     mapping,
		Items:       items,
		Summary:     Summarize(items),
		RowsRead:    len(grid.Rows),
		RowsDropped: len(grid.Rows) - len(items),
		Sources:     sources,
	}
}

// Summarize counts items and distinct products, suppliers and categories.
// An empty supplier name counts as one distinct supplier.
func Summarize(items []Item) Summary {
	products := make(map[string]struct{})
	suppliers := make(map[string]struct{})
	categories := make(map[string]int)
	for _, it := range items {
		products[it.Product] = struct{}{}
		suppliers[it.Supplier] = struct{}{}
		categories[it.Category]++
	}

	byCategory := make([]CategoryCount, 0, len(categories))
	for cat, n := range categories {
		byCategory = append(byCategory, CategoryCount{Category: cat, Items: n})
	}
	sort.Slice(byCategory, func(i, j int) bool {
		if byCategory[i].Items != byCategory[j].Items {
			return byCategory[i].Items > byCategory[j].Items
		}
		return byCategory[i].Category < byCategory[j].Category
	})

	return Summary{
		Items:      len(items),
		Products:   len(products),
		Suppliers:  len(suppliers),
		Categories: len(categories),
		ByCategory: byCategory,
	}
}
