package quote

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Offer is one supplier's price for a product.
type Offer struct {
	Supplier     string  `json:"supplier"`
	PricePerArea float64 `json:"price_per_area"`
}

// ProductGroup holds every offer for one product, cheapest first.
type ProductGroup struct {
	Product string  `json:"product"`
	Offers  []Offer `json:"offers"`
}

// CategoryComparison is the budget range of one category: MinTotal sums the
// cheapest offer of each product, MaxTotal the most expensive one.
type CategoryComparison struct {
	Category string         `json:"category"`
	MinTotal float64        `json:"min_total"`
	MaxTotal float64        `json:"max_total"`
	Products int            `json:"products"`
	Quotes   int            `json:"quotes"`
	Groups   []ProductGroup `json:"groups"`
}

// Comparison is the data behind the comparative charts of a quotation.
type Comparison struct {
	Categories       []CategoryComparison `json:"categories"`
	MinTotal         float64              `json:"min_total"`
	MaxTotal         float64              `json:"max_total"`
	PotentialSavings float64              `json:"potential_savings"`
}

// Compare groups items by category and product. Categories are ordered by
// MaxTotal (largest first), products by name using Portuguese collation.
func Compare(items []Item) Comparison {
	byCategory := make(map[string]map[string][]Offer)
	for _, it := range items {
		if it.Product == "" {
			continue
		}
		products, ok := byCategory[it.Category]
		if !ok {
			products = make(map[string][]Offer)
			byCategory[it.Category] = products
		}
		products[it.Product] = append(products[it.Product], Offer{Supplier: it.Supplier, PricePerArea: it.PricePerArea})
	}

	col := collate.New(language.BrazilianPortuguese)
	cmp := Comparison{Categories: make([]CategoryComparison, 0, len(byCategory))}
	for category, products := range byCategory {
		cc := CategoryComparison{Category: category, Groups: make([]ProductGroup, 0, len(products))}
		for product, offers := range products {
			sort.SliceStable(offers, func(i, j int) bool { return offers[i].PricePerArea < offers[j].PricePerArea })
			cc.Groups = append(cc.Groups, ProductGroup{Product: product, Offers: offers})
		}
		// Sum in sorted order so totals do not depend on map iteration.
		sort.Slice(cc.Groups, func(i, j int) bool {
			if c := col.CompareString(cc.Groups[i].Product, cc.Groups[j].Product); c != 0 {
				return c < 0
			}
			return cc.Groups[i].Product < cc.Groups[j].Product
		})
		for _, g := range cc.Groups {
			cc.MinTotal += g.Offers[0].PricePerArea
			cc.MaxTotal += g.Offers[len(g.Offers)-1].PricePerArea
			cc.Quotes += len(g.Offers)
		}
		cc.Products = len(cc.Groups)
		cmp.Categories = append(cmp.Categories, cc)
	}

	sort.Slice(cmp.Categories, func(i, j int) bool {
		a, b := cmp.Categories[i], cmp.Categories[j]
		if a.MaxTotal != b.MaxTotal {
			return a.MaxTotal > b.MaxTotal
		}
		return a.Category < b.Category
	})
	for _, cc := range cmp.Categories {
		cmp.MinTotal += cc.MinTotal
		cmp.MaxTotal += cc.MaxTotal
	}
	if savings := cmp.MaxTotal - cmp.MinTotal; savings > 0 {
		cmp.PotentialSavings = savings
	}
	return cmp
}
