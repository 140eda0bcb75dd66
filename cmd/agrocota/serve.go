package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/agrocota/pkg/api"
	"github.com/hazyhaar/agrocota/pkg/metrics"
	"github.com/hazyhaar/agrocota/pkg/quote"
	"github.com/hazyhaar/agrocota/pkg/store"
)

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	debug := fs.Bool("debug", false, "log every endpoint call")
	fs.Parse(args)

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := newLogger(level)

	cfg, err := loadConfig(*cfgPath, logger)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	// Load vocabulary.
	vocab := quote.NewRegistry(cfg.Vocabulary)
	if err := vocab.Load(); err != nil {
		logger.Error("failed to load vocabulary", "error", err)
		os.Exit(1)
	}
	info := vocab.Info()
	logger.Info("vocabulary loaded", "name", info.Name, "aliases", info.Aliases, "hints", info.Hints)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := api.NewService(api.Config{
		Vocab:          vocab,
		Store:          st,
		Metrics:        metrics.New(),
		Logger:         logger,
		MaxRows:        cfg.MaxRows,
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// SIGHUP: hot reload vocabulary.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading vocabulary")
			if err := vocab.Reload(); err != nil {
				logger.Error("reload failed, keeping previous vocabulary", "error", err)
			} else {
				logger.Info("vocabulary reloaded", "name", vocab.Info().Name)
			}
		}
	}()

	// Start server.
	go func() {
		logger.Info("agrocota listening", "addr", cfg.Addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
