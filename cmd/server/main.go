package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/agenthands/wordmap/internal/config"
	"github.com/agenthands/wordmap/internal/embedding"
	"github.com/agenthands/wordmap/internal/llm"
	"github.com/agenthands/wordmap/internal/logging"
	"github.com/agenthands/wordmap/internal/server"
)

func main() {
	cfg, err := config.FromEnvironment()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Configure(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	embedder, err := llm.NewEmbedder(context.Background(), cfg.LLM)
	if err != nil {
		logger.Error("failed to create embedder", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}
	if c, ok := embedder.(llm.Closer); ok {
		defer c.Close()
	}

	svc := embedding.NewService(embedder, cfg, logger)
	r := server.NewServer(svc, logger).SetupRouter()

	logger.Info("starting server", "port", cfg.Server.Port, "provider", cfg.LLM.Provider, "clusters", cfg.Clustering.Clusters)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
