package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/wordmap/internal/client"
)

// Smoke test against a running embedding server.
func main() {
	endpoint := os.Getenv("WORDMAP_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:5000/get_embeddings"
	}

	fmt.Println("Starting Integration Test...")
	c := client.New(endpoint, client.WithTimeout(30*time.Second))

	ctx := context.Background()
	words := []string{"Go developer", "Rust developer", "Nurse", "Pastry chef"}

	fmt.Println("1. Requesting embeddings...")
	points, err := c.Request(ctx, uuid.NewString(), words, "backend engineer")
	if err != nil {
		fmt.Printf("FAILED: request: %v\n", err)
		os.Exit(1)
	}
	if len(points) != len(words) {
		fmt.Printf("FAILED: expected %d points, got %d\n", len(words), len(points))
		os.Exit(1)
	}
	for _, p := range points {
		fmt.Printf("  %-16s cluster=%d similarity=%.3f coords=%.3f\n", p.Word, p.Cluster, p.Similarity, p.Coordinates)
	}
	fmt.Println("PASSED: embeddings")

	fmt.Println("2. Checking rejection of short lists...")
	_, err = c.Request(ctx, "", words[:2], "backend engineer")
	if !client.IsKind(err, client.KindTransport) {
		fmt.Printf("FAILED: expected an HTTP error, got %v\n", err)
		os.Exit(1)
	}
	fmt.Println("PASSED: validation")
}
