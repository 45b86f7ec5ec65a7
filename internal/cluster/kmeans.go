package cluster

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

var ErrDimensionMismatch = errors.New("vectors have different dimensions")

// KMeans partitions vectors with Lloyd's algorithm after k-means++ seeding.
// A fixed Seed makes the result reproducible for the same input.
type KMeans struct {
	K             int
	MaxIterations int
	Seed          uint64
}

func NewKMeans(k int, maxIterations int, seed uint64) *KMeans {
	if maxIterations <= 0 {
		maxIterations = 300
	}
	return &KMeans{K: k, MaxIterations: maxIterations, Seed: seed}
}

// Fit returns one label per vector. K is capped at the number of vectors.
// Labels are renumbered in order of first appearance, so the first vector is
// always in cluster 0.
func (km *KMeans) Fit(vectors [][]float64) ([]int, error) {
	n := len(vectors)
	if n == 0 {
		return nil, nil
	}
	if km.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", km.K)
	}
	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim {
			return nil, ErrDimensionMismatch
		}
	}

	k := min(km.K, n)
	centroids := km.seed(vectors, k)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < km.MaxIterations; iter++ {
		changeCount := 0
		for i, v := range vectors {
			best := nearest(v, centroids)
			if labels[i] != best {
				labels[i] = best
				changeCount++
			}
		}
		if changeCount == 0 {
			break
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, v := range vectors {
			floats.Add(sums[labels[i]], v)
			counts[labels[i]]++
		}
		for c := range centroids {
			// an empty cluster keeps its previous centroid
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			centroids[c] = sums[c]
		}
	}

	return relabel(labels), nil
}

// seed picks k initial centroids with the k-means++ rule.
func (km *KMeans) seed(vectors [][]float64, k int) [][]float64 {
	rng := rand.New(rand.NewPCG(km.Seed, km.Seed))
	n := len(vectors)

	chosen := make([]bool, n)
	first := rng.IntN(n)
	chosen[first] = true
	centroids := [][]float64{clone(vectors[first])}

	dist := make([]float64, n)
	for len(centroids) < k {
		total := 0.0
		for i, v := range vectors {
			d := floats.Distance(v, centroids[nearest(v, centroids)], 2)
			dist[i] = d * d
			total += dist[i]
		}

		next := -1
		if total > 0 {
			r := rng.Float64() * total
			for i, d := range dist {
				r -= d
				if r < 0 && !chosen[i] {
					next = i
					break
				}
			}
		}
		if next == -1 {
			// all remaining points coincide with a centroid
			for i := range vectors {
				if !chosen[i] {
					next = i
					break
				}
			}
		}
		chosen[next] = true
		centroids = append(centroids, clone(vectors[next]))
	}
	return centroids
}

func nearest(v []float64, centroids [][]float64) int {
	best, bestDist := 0, -1.0
	for c, centroid := range centroids {
		d := floats.Distance(v, centroid, 2)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func relabel(labels []int) []int {
	mapping := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		m, ok := mapping[l]
		if !ok {
			m = len(mapping)
			mapping[l] = m
		}
		out[i] = m
	}
	return out
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
