package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/agrocota/pkg/quote"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "agrocota.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleItems() []quote.Item {
	return []quote.Item{
		{Product: "Glifosato", Supplier: "Agro A", Category: quote.Herbicida, PricePerArea: 85, Dose: "2,5", Unit: "L"},
		{Product: "Ureia", Supplier: "Agro B", Category: quote.Fertilizante, PricePerArea: 120},
		{Product: "Boro", Supplier: "", Category: quote.Nutricao, PricePerArea: 12.5, Dose: "a gosto"},
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List on empty db: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected 0 quotations, got %d", len(list))
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestCreateAndGet(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	q, err := s.Create(ctx, NewQuotation{Title: "  Safra 26/27 ", Notes: " ", SourceFile: "cotacao.xlsx", Items: sampleItems()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if q.Title != "Safra 26/27" || q.Status != StatusDraft || q.ApprovalToken == "" || q.ID == q.ApprovalToken {
		t.Errorf("created = %+v", q)
	}

	got, err := s.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != q.Title || got.Notes != "" || got.SourceFile != "cotacao.xlsx" || !got.CreatedAt.Equal(q.CreatedAt) {
		t.Errorf("Get = %+v, want %+v", got, q)
	}

	byToken, err := s.GetByToken(ctx, q.ApprovalToken)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if byToken.ID != q.ID {
		t.Errorf("GetByToken id = %q, want %q", byToken.ID, q.ID)
	}

	items, err := s.Items(ctx, q.ID)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	first := items[0]
	if first.Position != 0 || first.Product != "Glifosato" || first.Dose != "2,5" || first.Unit != "L" {
		t.Errorf("items[0] = %+v", first)
	}
	if first.DoseValue == nil || *first.DoseValue != 2.5 {
		t.Errorf("items[0].DoseValue = %v, want 2.5", first.DoseValue)
	}
	if first.Quantity != 1 || first.UnitPrice != 85 {
		t.Errorf("items[0] quantity/unit price = %v/%v", first.Quantity, first.UnitPrice)
	}
	if items[1].DoseValue != nil || items[1].Dose != "" {
		t.Errorf("items[1] dose = %q/%v, want none", items[1].Dose, items[1].DoseValue)
	}
	// Non-numeric dose text is kept, its numeric value is not.
	if items[2].Dose != "a gosto" || items[2].DoseValue != nil {
		t.Errorf("items[2] dose = %q/%v", items[2].Dose, items[2].DoseValue)
	}
}

func TestCreate_DoseValue(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	doses := []struct {
		dose string
		want float64 // 0 means NULL
	}{
		{"2,5", 2.5},
		{"-2", 0},
		{"0", 0},
		{"", 0},
		{"1.5 L/ha", 1.5},
	}
	items := make([]quote.Item, len(doses))
	for i, d := range doses {
		items[i] = quote.Item{Product: "P", Category: quote.Outros, PricePerArea: 1, Dose: d.dose}
	}
	q, err := s.Create(ctx, NewQuotation{Title: "doses", Items: items})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.Items(ctx, q.ID)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	for i, d := range doses {
		dv := got[i].DoseValue
		switch {
		case d.want == 0 && dv != nil:
			t.Errorf("dose %q: DoseValue = %v, want NULL", d.dose, *dv)
		case d.want != 0 && (dv == nil || *dv != d.want):
			t.Errorf("dose %q: DoseValue = %v, want %v", d.dose, dv, d.want)
		}
	}
}

func TestCreate_Validation(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, NewQuotation{Title: " ", Items: sampleItems()}); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("blank title err = %v, want ErrTitleRequired", err)
	}
	if _, err := s.Create(ctx, NewQuotation{Title: "x"}); !errors.Is(err, ErrNoItems) {
		t.Errorf("no items err = %v, want ErrNoItems", err)
	}
	list, _ := s.List(ctx)
	if len(list) != 0 {
		t.Errorf("rejected quotations were stored: %d", len(list))
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var step int
	s.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Hour)
	}

	for _, title := range []string{"primeira", "segunda", "terceira"} {
		if _, err := s.Create(ctx, NewQuotation{Title: title, Items: sampleItems()}); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].Title != "terceira" || list[2].Title != "primeira" {
		t.Errorf("List order = %+v", list)
	}
}

func TestStatusTransitions(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	q, err := s.Create(ctx, NewQuotation{Title: "t", Items: sampleItems()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sent, err := s.MarkSent(ctx, q.ID)
	if err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if sent.Status != StatusSent {
		t.Errorf("status = %s, want sent", sent.Status)
	}
	if _, err := s.MarkSent(ctx, q.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second MarkSent err = %v, want ErrInvalidTransition", err)
	}

	decided, err := s.Decide(ctx, q.ApprovalToken, true)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decided.Status != StatusApproved {
		t.Errorf("status = %s, want approved", decided.Status)
	}
	if _, err := s.Decide(ctx, q.ApprovalToken, false); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Decide err = %v, want ErrInvalidTransition", err)
	}
	if _, err := s.MarkSent(ctx, q.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("MarkSent after decision err = %v, want ErrInvalidTransition", err)
	}
}

func TestDecide_FromDraft(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	q, err := s.Create(ctx, NewQuotation{Title: "t", Items: sampleItems()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.Decide(ctx, q.ApprovalToken, false)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if got.Status != StatusRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}
}

func TestNotFound(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if _, err := s.GetByToken(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByToken err = %v", err)
	}
	if _, err := s.MarkSent(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkSent err = %v", err)
	}
	if _, err := s.Decide(ctx, "nope", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("Decide err = %v", err)
	}
	if err := s.Delete(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	q, err := s.Create(ctx, NewQuotation{Title: "t", Items: sampleItems()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, q.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, q.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	items, err := s.Items(ctx, q.ID)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items survived delete: %d", len(items))
	}
}
