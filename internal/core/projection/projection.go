package projection

import (
	"github.com/agenthands/wordmap/internal/core/model"
)

// Palette is indexed by cluster id modulo its length.
var Palette = []string{"red", "green", "blue", "yellow", "purple", "orange", "brown", "pink", "grey", "cyan"}

func Color(clusterID int) string {
	n := len(Palette)
	return Palette[((clusterID%n)+n)%n]
}

// Project groups points by cluster. Traces are ordered by the first
// appearance of their cluster id in the response, and points keep their
// response order inside a trace.
func Project(response []model.EmbeddingPoint) []model.ClusterTrace {
	var traces []model.ClusterTrace
	byCluster := make(map[int]int)

	for _, p := range response {
		i, ok := byCluster[p.Cluster]
		if !ok {
			i = len(traces)
			byCluster[p.Cluster] = i
			traces = append(traces, model.ClusterTrace{
				ClusterID: p.Cluster,
				Color:     Color(p.Cluster),
			})
		}
		traces[i].Points = append(traces[i].Points, p)
	}
	return traces
}
