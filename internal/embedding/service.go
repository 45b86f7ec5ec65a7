package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/agenthands/wordmap/internal/cluster"
	"github.com/agenthands/wordmap/internal/config"
	"github.com/agenthands/wordmap/internal/core/gate"
	"github.com/agenthands/wordmap/internal/core/model"
	"github.com/agenthands/wordmap/internal/llm"
)

// Service embeds a word list, clusters it, projects it to 3D and scores
// every word against a central word.
type Service struct {
	embedder    llm.EmbedderClient
	cache       *gocache.Cache
	kmeans      *cluster.KMeans
	concurrency int
	logger      *slog.Logger
}

func NewService(embedder llm.EmbedderClient, cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	ttl := cfg.Cache.TTL.Duration
	var c *gocache.Cache
	if ttl <= 0 {
		c = gocache.New(gocache.NoExpiration, 0)
	} else {
		c = gocache.New(ttl, 2*ttl)
	}

	concurrency := cfg.Concurrency.Embed
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Service{
		embedder:    embedder,
		cache:       c,
		kmeans:      cluster.NewKMeans(cfg.Clustering.Clusters, cfg.Clustering.MaxIterations, cfg.Clustering.Seed),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Visualize returns one point per distinct word that could be embedded.
// Words the embedder rejects are left out. Fewer than three embedded words
// yield an empty result.
func (s *Service) Visualize(ctx context.Context, words []string, centralWord string) ([]model.EmbeddingPoint, error) {
	start := time.Now()

	central, err := s.embed(ctx, centralWord)
	if err != nil {
		return nil, fmt.Errorf("failed to embed central word %q: %w", centralWord, err)
	}

	unique := dedupe(words)
	vectors := make([][]float64, len(unique))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, w := range unique {
		g.Go(func() error {
			vec, err := s.embed(ctx, w)
			if err != nil {
				s.logger.Warn("dropping word that could not be embedded", "word", w, "error", err)
				return nil
			}
			vectors[i] = vec
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(unique))
	keptVectors := make([][]float64, 0, len(unique))
	for i, vec := range vectors {
		if vec != nil {
			kept = append(kept, unique[i])
			keptVectors = append(keptVectors, vec)
		}
	}

	if len(keptVectors) < gate.MinWords {
		s.logger.Info("not enough embeddings to cluster", "embedded", len(keptVectors), "requested", len(words))
		return []model.EmbeddingPoint{}, nil
	}

	labels, err := s.kmeans.Fit(keptVectors)
	if err != nil {
		return nil, fmt.Errorf("clustering failed: %w", err)
	}
	coords, err := cluster.Project3D(keptVectors)
	if err != nil {
		return nil, fmt.Errorf("projection failed: %w", err)
	}

	points := make([]model.EmbeddingPoint, len(kept))
	for i, w := range kept {
		points[i] = model.EmbeddingPoint{
			Word:        w,
			Similarity:  cluster.Cosine(central, keptVectors[i]),
			Cluster:     labels[i],
			Coordinates: coords[i],
		}
	}

	s.logger.Info("visualization computed",
		"words", len(points),
		"dropped", len(unique)-len(points),
		"elapsed", time.Since(start))
	return points, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float64, error) {
	key := Normalize(text)
	if key == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	if v, ok := s.cache.Get(key); ok {
		return v.([]float64), nil
	}

	vec, err := s.embedder.Embed(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("empty embedding for %q", key)
	}

	out := cluster.ToFloat64(vec)
	s.cache.Set(key, out, gocache.DefaultExpiration)
	return out, nil
}

// Normalize applies NFKC, trims, and strips control characters.
func Normalize(text string) string {
	normed := strings.TrimSpace(norm.NFKC.String(text))
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}

func dedupe(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
