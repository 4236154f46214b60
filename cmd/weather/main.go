// Command weather runs the interactive weather lookup widget in the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	httpadapter "github.com/couchcryptid/weather-lookup/internal/adapter/http"
	"github.com/couchcryptid/weather-lookup/internal/app"
	"github.com/couchcryptid/weather-lookup/internal/config"
	"github.com/couchcryptid/weather-lookup/internal/observability"
	"github.com/couchcryptid/weather-lookup/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "weather:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal belongs to the UI: logs go to LOG_FILE or nowhere.
	logOut, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	logger := observability.NewLogger(cfg, logOut)
	metrics := observability.NewMetrics()

	a, err := app.New(cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bridge := tui.NewBridge()
	suggester := a.NewSuggester(bridge)
	defer suggester.Close()
	orchestrator := a.NewOrchestrator(bridge)

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, a.Checks(), logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("ops server error", "error", err)
			}
		}()
	}

	model := tui.New(ctx, tui.Deps{
		Suggester: suggester,
		Searcher:  orchestrator,
		Themes:    a.Themes,
		Logger:    logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	pumpCtx, stopPump := context.WithCancel(ctx)
	go bridge.Run(pumpCtx, program)

	logger.Info("widget started", "storage", cfg.StoragePath, "geolocation", cfg.GeolocationMode)
	_, runErr := program.Run()
	stopPump()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}
	logger.Info("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("ops server shutdown error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			slog.Error("close log file", "error", err)
		}
	}, nil
}
