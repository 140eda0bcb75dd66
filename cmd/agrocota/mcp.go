package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/agrocota/pkg/api"
	"github.com/hazyhaar/agrocota/pkg/metrics"
	"github.com/hazyhaar/agrocota/pkg/quote"
	"github.com/hazyhaar/agrocota/pkg/store"
)

// cmdMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they
// never mix with the protocol stream.
func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := newLogger(slog.LevelWarn)

	cfg, err := loadConfig(*cfgPath, logger)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	vocab := quote.NewRegistry(cfg.Vocabulary)
	if err := vocab.Load(); err != nil {
		logger.Error("failed to load vocabulary", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	srv := server.NewMCPServer("agrocota", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, api.NewService(api.Config{
		Vocab:   vocab,
		Store:   st,
		Metrics: metrics.New(),
		Logger:  logger,
		MaxRows: cfg.MaxRows,
	}))

	if err := server.ServeStdio(srv); err != nil {
		logger.Error("mcp server", "error", err)
		os.Exit(1)
	}
}
