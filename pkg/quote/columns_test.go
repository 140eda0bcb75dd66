package quote

import "testing"

func TestDetectColumns_Defaults(t *testing.T) {
	got := DetectColumns([]string{"A", "B", "C", "D"})
	want := ColumnMapping{Product: 0, Supplier: NotPresent, Category: NotPresent, PricePerArea: 3, Dose: NotPresent, Unit: NotPresent}
	if got != want {
		t.Errorf("DetectColumns = %+v, want %+v", got, want)
	}
}

func TestDetectColumns_Empty(t *testing.T) {
	got := DetectColumns(nil)
	if got.Product != 0 || got.PricePerArea != 3 || got.Supplier != NotPresent {
		t.Errorf("DetectColumns(nil) = %+v", got)
	}
}

func TestDetectColumns_HeaderIndependence(t *testing.T) {
	a := DetectColumns([]string{"Produto", "Fornecedor", "Categoria", "Valor/Ha"})
	b := DetectColumns([]string{"produto", "fornecedor", "categoria", "VALOR/HA"})
	if a != b {
		t.Errorf("mappings differ: %+v vs %+v", a, b)
	}
	want := ColumnMapping{Product: 0, Supplier: 1, Category: 2, PricePerArea: 3, Dose: NotPresent, Unit: NotPresent}
	if a != want {
		t.Errorf("DetectColumns = %+v, want %+v", a, want)
	}
}

func TestDetectColumns_Accents(t *testing.T) {
	got := DetectColumns([]string{"Unidade", "Descrição", "Preço/ha", "Dose"})
	if got.Product != 1 {
		t.Errorf("Product = %d, want 1", got.Product)
	}
	if got.PricePerArea != 2 {
		t.Errorf("PricePerArea = %d, want 2", got.PricePerArea)
	}
	if got.Unit != 0 || got.Dose != 3 {
		t.Errorf("Unit/Dose = %d/%d, want 0/3", got.Unit, got.Dose)
	}
}

func TestDetectColumns_Roles(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    ColumnMapping
	}{
		{
			name:    "spanish-ish synonyms",
			headers: []string{"Item", "Empresa", "Tipo", "R$/ha", "Unid."},
			want:    ColumnMapping{Product: 0, Supplier: 1, Category: 2, PricePerArea: 3, Dose: NotPresent, Unit: 4},
		},
		{
			name:    "english headers",
			headers: []string{"Supplier", "Category", "Product", "Price", "Unit"},
			want:    ColumnMapping{Product: 2, Supplier: 0, Category: 1, PricePerArea: 3, Dose: NotPresent, Unit: 4},
		},
		{
			name:    "generic price fallback",
			headers: []string{"Insumo", "Fabricante", "Custo", "Grupo"},
			want:    ColumnMapping{Product: 0, Supplier: 1, Category: 3, PricePerArea: 2, Dose: NotPresent, Unit: NotPresent},
		},
		{
			name:    "exact dose and unit headers",
			headers: []string{"Marca", "l/ha", "un", "Valor ha"},
			// "l/ha" contains "/ha" and is taken as the price column before the dose test runs.
			want: ColumnMapping{Product: 0, Supplier: NotPresent, Category: NotPresent, PricePerArea: 1, Dose: NotPresent, Unit: 2},
		},
		{
			name:    "kg exact is unit",
			headers: []string{"Nome", "kg", "Dose recomendada", "Preco"},
			want:    ColumnMapping{Product: 0, Supplier: NotPresent, Category: NotPresent, PricePerArea: 3, Dose: 2, Unit: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectColumns(tt.headers)
			if got != tt.want {
				t.Errorf("DetectColumns(%q) = %+v, want %+v", tt.headers, got, tt.want)
			}
		})
	}
}

func TestDetectColumns_FirstOccurrenceWins(t *testing.T) {
	got := DetectColumns([]string{"Produto", "Fornecedor", "Nome Comercial", "Empresa", "Valor/ha", "Preço/ha"})
	if got.Product != 0 {
		t.Errorf("Product = %d, want 0", got.Product)
	}
	if got.Supplier != 1 {
		t.Errorf("Supplier = %d, want 1", got.Supplier)
	}
	if got.PricePerArea != 4 {
		t.Errorf("PricePerArea = %d, want 4", got.PricePerArea)
	}
}

func TestDetectColumns_HeaderConsumedByFirstRole(t *testing.T) {
	// "Nome do Fornecedor" matches the product keywords first, so it never
	// becomes the supplier column even though product is already taken.
	got := DetectColumns([]string{"Produto", "Nome do Fornecedor", "x", "Valor/ha"})
	if got.Supplier != NotPresent {
		t.Errorf("Supplier = %d, want NotPresent", got.Supplier)
	}
	if got.Product != 0 {
		t.Errorf("Product = %d, want 0", got.Product)
	}
}

func TestDetectColumns_PerAreaBeatsGenericFallback(t *testing.T) {
	got := DetectColumns([]string{"Produto", "Custo Total", "Fornecedor", "Valor/ha"})
	if got.PricePerArea != 3 {
		t.Errorf("PricePerArea = %d, want 3 (per-area header replaces generic fallback)", got.PricePerArea)
	}
	got = DetectColumns([]string{"Produto", "R$/ha", "Preço"})
	if got.PricePerArea != 1 {
		t.Errorf("PricePerArea = %d, want 1 (generic does not override per-area)", got.PricePerArea)
	}
}

// Known sharp edge: with only generic price headers, the first one wins even
// when a later column is the one that actually holds the per-area price.
func TestDetectColumns_GenericFallbackSharpEdge(t *testing.T) {
	got := DetectColumns([]string{"Produto", "Custo Total", "Fornecedor", "Categoria", "Preço"})
	if got.PricePerArea != 1 {
		t.Errorf("PricePerArea = %d, want 1 (first generic price header)", got.PricePerArea)
	}
}
