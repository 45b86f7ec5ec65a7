package reconcile

import (
	"sort"

	"github.com/agenthands/wordmap/internal/core/model"
	"github.com/agenthands/wordmap/internal/core/wordset"
)

// Reconcile rebuilds the displayed word list from an embedding response,
// ordered by similarity descending with ties kept in response order. The
// response is authoritative: words it does not mention are not displayed.
// current is read only; its membership and central query are unchanged.
func Reconcile(current *wordset.WordSet, response []model.EmbeddingPoint) []model.WordEntry {
	points := make([]model.EmbeddingPoint, len(response))
	copy(points, response)

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Similarity > points[j].Similarity
	})

	out := make([]model.WordEntry, len(points))
	for i, p := range points {
		sim := p.Similarity
		out[i] = model.WordEntry{Text: p.Word, Similarity: &sim}
	}
	return out
}

// Missing lists the words of current that the response did not return, in
// insertion order.
func Missing(current *wordset.WordSet, response []model.EmbeddingPoint) []string {
	seen := make(map[string]struct{}, len(response))
	for _, p := range response {
		seen[p.Word] = struct{}{}
	}
	var missing []string
	for _, w := range current.Words() {
		if _, ok := seen[w]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}
