package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agenthands/wordmap/internal/client"
	"github.com/agenthands/wordmap/internal/config"
	"github.com/agenthands/wordmap/internal/logging"
	"github.com/agenthands/wordmap/internal/session"
	"github.com/agenthands/wordmap/internal/tui"
)

func main() {
	cfg, err := config.FromEnvironment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.Client.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := logging.Configure(logFile, cfg.LogLevel)

	c := client.New(cfg.Client.Endpoint,
		client.WithTimeout(cfg.Client.Timeout.Duration),
		client.WithLogger(logger),
	)
	s := session.New(session.WithLogger(logger))

	m := tui.New(s, c, tui.Options{
		NoticeTTL: cfg.Client.NoticeTTL.Duration,
		Output:    cfg.Client.Output,
		Logger:    logger,
	})

	logger.Info("starting wordmap", "endpoint", cfg.Client.Endpoint, "output", cfg.Client.Output)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		logger.Error("ui exited", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
