package quote

import "strings"

// NotPresent marks a role that no header was detected for.
const NotPresent = -1

// Positional defaults used when no header names the role.
const (
	defaultProductColumn = 0
	defaultPriceColumn   = 3
)

// ColumnMapping says which column holds each field of a quotation line.
// Product and PricePerArea always hold an index; the others may be NotPresent.
type ColumnMapping struct {
	Product      int `json:"product"`
	Supplier     int `json:"supplier"`
	Category     int `json:"category"`
	PricePerArea int `json:"price_per_area"`
	Dose         int `json:"dose"`
	Unit         int `json:"unit"`
}

type role int

const (
	roleNone role = iota
	roleProduct
	roleSupplier
	roleCategory
	rolePricePerArea
	rolePrice
	roleDose
	roleUnit
)

var (
	productKeywords  = []string{"produto", "product", "insumo", "nome", "item", "descricao", "cultivo", "marca"}
	supplierKeywords = []string{"fornecedor", "empresa", "supplier", "fabricante", "brand"}
	categoryKeywords = []string{"categoria", "category", "tipo", "grupo", "classe", "segmento"}
	perAreaKeywords  = []string{"preco_ha", "r$/ha", "preco/ha", "/ha"}
	priceKeywords    = []string{"preco", "valor", "custo"}
)

// headerRole returns the first role whose keywords match the normalized header.
func headerRole(h string) role {
	switch {
	case containsAny(h, productKeywords):
		return roleProduct
	case containsAny(h, supplierKeywords):
		return roleSupplier
	case containsAny(h, categoryKeywords):
		return roleCategory
	case strings.Contains(h, "valor") && strings.Contains(h, "ha"), containsAny(h, perAreaKeywords):
		return rolePricePerArea
	case containsAny(h, priceKeywords):
		return rolePrice
	case strings.Contains(h, "dose"), h == "kg/ha", h == "l/ha":
		return roleDose
	case strings.Contains(h, "unid"), strings.Contains(h, "unit"), h == "un", h == "kg":
		return roleUnit
	default:
		return roleNone
	}
}

// DetectColumns infers the column mapping from header labels.
// The first header found for a role keeps it, except that a per-area price
// header replaces a column picked by the generic price fallback.
func DetectColumns(headers []string) ColumnMapping {
	m := ColumnMapping{
		Product:      defaultProductColumn,
		Supplier:     NotPresent,
		Category:     NotPresent,
		PricePerArea: defaultPriceColumn,
		Dose:         NotPresent,
		Unit:         NotPresent,
	}

	var productFound, perAreaFound, priceFound bool
	for i, raw := range headers {
		switch headerRole(normalizeKey(raw)) {
		case roleProduct:
			if !productFound {
				m.Product, productFound = i, true
			}
		case roleSupplier:
			if m.Supplier == NotPresent {
				m.Supplier = i
			}
		case roleCategory:
			if m.Category == NotPresent {
				m.Category = i
			}
		case rolePricePerArea:
			if !perAreaFound {
				m.PricePerArea, perAreaFound, priceFound = i, true, true
			}
		case rolePrice:
			if !priceFound {
				m.PricePerArea, priceFound = i, true
			}
		case roleDose:
			if m.Dose == NotPresent {
				m.Dose = i
			}
		case roleUnit:
			if m.Unit == NotPresent {
				m.Unit = i
			}
		}
	}
	return m
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
