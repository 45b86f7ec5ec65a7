package model

// WordEntry is one row of the displayed word list. Similarity is nil until a
// visualization response assigns it.
type WordEntry struct {
	Text       string   `json:"text"`
	Similarity *float64 `json:"similarity,omitempty"`
}

func (e WordEntry) HasSimilarity() bool {
	return e.Similarity != nil
}
