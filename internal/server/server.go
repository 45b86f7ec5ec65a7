package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/wordmap/internal/client"
	"github.com/agenthands/wordmap/internal/core/gate"
	"github.com/agenthands/wordmap/internal/core/model"
)

const (
	errInvalidRequest = "A central word and at least 3 other words are required"
	errComputeFailed  = "Failed to compute embeddings"
)

// Visualizer computes embedding points for a word list.
type Visualizer interface {
	Visualize(ctx context.Context, words []string, centralWord string) ([]model.EmbeddingPoint, error)
}

type Server struct {
	Visualizer Visualizer
	Logger     *slog.Logger
}

func NewServer(v Visualizer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Visualizer: v,
		Logger:     logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.Health)
	r.POST("/get_embeddings", s.GetEmbeddings)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) GetEmbeddings(c *gin.Context) {
	var req model.EmbeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.Logger.Warn("invalid embedding request", "request_id", requestID(c), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}

	if strings.TrimSpace(req.CentralWord) == "" || len(req.Words) < gate.MinWords {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}

	points, err := s.Visualizer.Visualize(c.Request.Context(), req.Words, req.CentralWord)
	if err != nil {
		s.Logger.Error("failed to compute embeddings", "request_id", requestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errComputeFailed})
		return
	}

	c.JSON(http.StatusOK, points)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(client.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(client.RequestIDHeader, id)

		start := time.Now()
		c.Next()

		s.Logger.Info("request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}
