package model

// EmbeddingRequest is the body posted to the embedding endpoint.
type EmbeddingRequest struct {
	Words       []string `json:"words"`
	CentralWord string   `json:"centralWord"`
}

// EmbeddingPoint is one embedded word as returned by the embedding endpoint.
type EmbeddingPoint struct {
	Word        string     `json:"word"`
	Similarity  float64    `json:"similarity"`
	Cluster     int        `json:"cluster"`
	Coordinates [3]float64 `json:"coordinates"`
}

// ErrorResponse is the body returned instead of a point list on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ClusterTrace is a group of points sharing a cluster id. Built fresh for
// every visualization.
type ClusterTrace struct {
	ClusterID int              `json:"cluster_id"`
	Points    []EmbeddingPoint `json:"points"`
	Color     string           `json:"color"`
}

// Axes returns the parallel coordinate and label arrays of the trace.
func (t ClusterTrace) Axes() (x, y, z []float64, text []string) {
	x = make([]float64, len(t.Points))
	y = make([]float64, len(t.Points))
	z = make([]float64, len(t.Points))
	text = make([]string, len(t.Points))
	for i, p := range t.Points {
		x[i] = p.Coordinates[0]
		y[i] = p.Coordinates[1]
		z[i] = p.Coordinates[2]
		text[i] = p.Word
	}
	return x, y, z, text
}
