package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/agrocota/pkg/quote"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), discardLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":8430" || cfg.DBPath != "agrocota.db" || cfg.MaxRows != 10000 || cfg.MaxUploadMB != 32 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\ndb_path: /tmp/x.db\nmax_rows: 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AGROCOTA_DB_PATH", "/data/agrocota.db")
	t.Setenv("AGROCOTA_MAX_UPLOAD_MB", "8")

	cfg, err := loadConfig(path, discardLogger())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := config{Addr: ":9000", DBPath: "/data/agrocota.db", MaxRows: 50, MaxUploadMB: 8}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path, discardLogger()); err == nil {
		t.Error("expected parse error")
	}

	t.Setenv("AGROCOTA_MAX_ROWS", "lots")
	if _, err := loadConfig(filepath.Join(t.TempDir(), "none.yaml"), discardLogger()); err == nil {
		t.Error("expected error for non-numeric AGROCOTA_MAX_ROWS")
	}
}

func TestRunIngest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cotacao.csv")
	csv := "Nome;Empresa;Tipo;R$/ha\nGlifosato;Fornecedor A;Herbicida;85,00\n;Fornecedor B;Herbicida;90,00\nUreia;Fornecedor A;;120,00\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runIngest(context.Background(), &out, ingestOptions{file: path}); err != nil {
		t.Fatalf("runIngest: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Glifosato", "Fertilizante", "2 items (3 rows read, 1 dropped)"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	out.Reset()
	if err := runIngest(context.Background(), &out, ingestOptions{file: path, asJSON: true}); err != nil {
		t.Fatalf("runIngest json: %v", err)
	}
	var res quote.Result
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Items) != 2 || res.Summary.Suppliers != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestRunIngest_NoValidRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vazia.csv")
	if err := os.WriteFile(path, []byte("Produto;Preço\nUreia;0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runIngest(context.Background(), io.Discard, ingestOptions{file: path}); err == nil {
		t.Error("expected error when no row is valid")
	}
}

func TestDumpVocabulary(t *testing.T) {
	var out bytes.Buffer
	if err := dumpVocabulary(&out, quote.DefaultVocabulary().Spec()); err != nil {
		t.Fatalf("dumpVocabulary: %v", err)
	}
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := quote.LoadVocabulary(path)
	if err != nil {
		t.Fatalf("LoadVocabulary(dump): %v", err)
	}
	if v.Name() != "agro-pt-br" || v.Classify("Fungicidas", "") != quote.Fungicida {
		t.Errorf("dumped vocabulary differs: %s", v.Name())
	}
}
