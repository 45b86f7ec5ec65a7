package wordset

import (
	"errors"
	"strings"

	"github.com/agenthands/wordmap/internal/core/model"
)

var (
	ErrDuplicateOrEmpty = errors.New("word is empty or already present")
	ErrNotFound         = errors.New("word not found")
	ErrEmptyQuery       = errors.New("central query is empty")
)

// WordSet is an insertion-ordered set of words plus the central query they
// are compared against. Words are identified by exact, case-sensitive text.
// It is not safe for concurrent use.
type WordSet struct {
	entries      []model.WordEntry
	index        map[string]int
	centralQuery string
}

func New() *WordSet {
	return &WordSet{index: make(map[string]int)}
}

// Add appends text (trimmed) with no similarity.
func (s *WordSet) Add(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrDuplicateOrEmpty
	}
	if _, ok := s.index[text]; ok {
		return ErrDuplicateOrEmpty
	}
	s.index[text] = len(s.entries)
	s.entries = append(s.entries, model.WordEntry{Text: text})
	return nil
}

// Remove deletes text, trimmed like Add.
func (s *WordSet) Remove(text string) error {
	text = strings.TrimSpace(text)
	i, ok := s.index[text]
	if !ok {
		return ErrNotFound
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.index, text)
	for j := i; j < len(s.entries); j++ {
		s.index[s.entries[j].Text] = j
	}
	return nil
}

func (s *WordSet) Contains(text string) bool {
	_, ok := s.index[strings.TrimSpace(text)]
	return ok
}

func (s *WordSet) SetCentralQuery(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyQuery
	}
	s.centralQuery = text
	return nil
}

// ReplaceAll drops every entry and adds texts in order under the Add rule.
// Empty and repeated texts are skipped; the first occurrence wins. It
// returns how many texts were skipped. The central query is kept.
func (s *WordSet) ReplaceAll(texts []string) int {
	s.entries = make([]model.WordEntry, 0, len(texts))
	s.index = make(map[string]int, len(texts))

	skipped := 0
	for _, t := range texts {
		if err := s.Add(t); err != nil {
			skipped++
		}
	}
	return skipped
}

func (s *WordSet) Size() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in insertion order.
func (s *WordSet) Entries() []model.WordEntry {
	out := make([]model.WordEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *WordSet) Words() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Text
	}
	return out
}

func (s *WordSet) CentralQuery() string {
	return s.centralQuery
}

func (s *WordSet) HasCentralQuery() bool {
	return s.centralQuery != ""
}
