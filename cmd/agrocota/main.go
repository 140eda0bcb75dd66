package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const version = "0.3.0"

type config struct {
	Addr        string `yaml:"addr"`
	DBPath      string `yaml:"db_path"`
	Vocabulary  string `yaml:"vocabulary"`
	MaxRows     int    `yaml:"max_rows"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "ingest":
		cmdIngest(os.Args[2:])
	case "vocab":
		cmdVocab(os.Args[2:])
	case "version":
		fmt.Println("agrocota", version)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: agrocota <command>

Commands:
  serve    Start the HTTP server
  mcp      Serve the MCP tools over stdio
  ingest   Read a spreadsheet and print the priced items
  vocab    Dump or check category vocabularies
  version  Print the version
`)
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads .env, then the YAML file at path (missing file means
// defaults), then applies AGROCOTA_* environment overrides.
func loadConfig(path string, logger *slog.Logger) (config, error) {
	cfg := config{
		Addr:        ":8430",
		DBPath:      "agrocota.db",
		MaxRows:     10000,
		MaxUploadMB: 32,
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("no config file, using defaults", "path", path)
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("AGROCOTA_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("AGROCOTA_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("AGROCOTA_VOCABULARY"); v != "" {
		cfg.Vocabulary = v
	}
	for name, dst := range map[string]*int{
		"AGROCOTA_MAX_ROWS":      &cfg.MaxRows,
		"AGROCOTA_MAX_UPLOAD_MB": &cfg.MaxUploadMB,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("%s: not a non-negative integer: %q", name, v)
		}
		*dst = n
	}
	return cfg, nil
}
