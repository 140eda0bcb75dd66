package sheet

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hazyhaar/agrocota/pkg/quote"
)

func buildWorkbook(t *testing.T, sheets map[string][][]any, order ...string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		for r, row := range sheets[name] {
			axis, _ := excelize.CoordinatesToCellName(1, r+1)
			vals := row
			if err := f.SetSheetRow(name, axis, &vals); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestXLSXRead(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]any{
		"Cotação": {
			{"Produto", "Fornecedor", "Categoria", "R$/ha"},
			{"Glifosato", "Agro A", "Herbicida", 85.5},
			{},
			{"Ureia", "Agro B", "", "120,00"},
			{"Codigo", "Agro C", "Outros", "0042"},
		},
		"Resumo": {
			{"Produto", "Total"},
		},
	}, "Cotação", "Resumo")

	grid, err := Read("planilha.xlsx", buf, Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(grid.Headers) != 4 || grid.Headers[3] != "R$/ha" {
		t.Errorf("Headers = %q", grid.Headers)
	}
	if len(grid.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(grid.Rows))
	}
	if got := grid.Cell(0, 3); got != quote.Number(85.5) {
		t.Errorf("numeric cell = %+v, want Number(85.5)", got)
	}
	if got := grid.Cell(1, 3); got != quote.Text("120,00") {
		t.Errorf("text cell = %+v, want Text(120,00)", got)
	}
	// Numbers stored as text stay text.
	if got := grid.Cell(2, 3); got != quote.Text("0042") {
		t.Errorf("text digits = %+v, want Text(0042)", got)
	}

	res := quote.Ingest(grid)
	if len(res.Items) != 3 || res.Items[0].PricePerArea != 85.5 || res.Items[1].PricePerArea != 120 {
		t.Errorf("Ingest items = %+v", res.Items)
	}
}

func TestXLSXRead_NamedSheetAndMaxRows(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]any{
		"Capa":  {{"Relatório"}},
		"Dados": {{"Produto", "Preço"}, {"A", 1}, {"B", 2}, {"C", 3}},
	}, "Capa", "Dados")

	grid, err := Read("p.xlsx", bytes.NewReader(buf.Bytes()), Options{Sheet: "Dados", MaxRows: 2})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if grid.Headers[0] != "Produto" || len(grid.Rows) != 2 {
		t.Errorf("grid = %+v", grid)
	}

	if _, err := Read("p.xlsx", bytes.NewReader(buf.Bytes()), Options{Sheet: "Nope"}); err == nil {
		t.Error("expected error for missing sheet")
	}
}

func TestXLSXRead_NotAWorkbook(t *testing.T) {
	if _, err := Read("p.xlsx", bytes.NewReader([]byte("not a zip")), Options{}); err == nil {
		t.Error("expected error for invalid workbook")
	}
}
