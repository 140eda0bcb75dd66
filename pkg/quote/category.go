package quote

import "strings"

// Source names the classifier step that produced a category.
type Source string

const (
	SourceAlias       Source = "alias"
	SourceSubstring   Source = "substring"
	SourcePassthrough Source = "passthrough"
	SourceHint        Source = "hint"
	SourceDefault     Source = "default"
)

// Resolution is a resolved category and the step that resolved it.
type Resolution struct {
	Category string `json:"category"`
	Source   Source `json:"source"`
}

// Classify resolves the category of a quotation line from its raw category
// cell and product name. It never fails; the vocabulary default category is
// the last resort.
func (v *Vocabulary) Classify(rawCategory, product string) string {
	return v.Resolve(rawCategory, product).Category
}

// Resolve is Classify that also reports which step matched:
// exact alias, alias contained in the cell, the cell itself title-cased,
// a product-name hint (only for blank cells), then the default.
func (v *Vocabulary) Resolve(rawCategory, product string) Resolution {
	if key := normalizeKey(rawCategory); key != "" {
		if cat, ok := v.exact[key]; ok {
			return Resolution{Category: cat, Source: SourceAlias}
		}
		for _, a := range v.aliases {
			if strings.Contains(key, a.key) {
				return Resolution{Category: a.category, Source: SourceSubstring}
			}
		}
		return Resolution{Category: titleWords(strings.TrimSpace(rawCategory)), Source: SourcePassthrough}
	}

	name := Normalize(product)
	for _, h := range v.hints {
		if h.re.MatchString(name) {
			return Resolution{Category: h.category, Source: SourceHint}
		}
	}
	return Resolution{Category: v.defaultCategory, Source: SourceDefault}
}

// Classify uses the default vocabulary.
func Classify(rawCategory, product string) string {
	return defaultVocabulary.Classify(rawCategory, product)
}
