package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/agenthands/wordmap/internal/client"
	"github.com/agenthands/wordmap/internal/core/gate"
	"github.com/agenthands/wordmap/internal/core/importer"
	"github.com/agenthands/wordmap/internal/core/model"
	"github.com/agenthands/wordmap/internal/core/projection"
	"github.com/agenthands/wordmap/internal/core/reconcile"
	"github.com/agenthands/wordmap/internal/core/wordset"
	"github.com/agenthands/wordmap/internal/plot"
)

var ErrImportInProgress = errors.New("an import is already in progress")

const (
	NoticeEmptyWord      = "Please enter a job title or experience."
	NoticeEmptyQuery     = "Please enter a central query."
	NoticeFetchFailed    = "Failed to load visualization."
	NoticeInvalidFile    = "Invalid JSON file."
	NoticeInvalidFormat  = "Invalid JSON format. Expected an array of jobs."
	NoticeImportInFlight = "An import is already in progress."
)

// FetchRequest asks the driver to call the embedding endpoint and report
// the outcome back through ApplyFetch with the same Seq.
type FetchRequest struct {
	Seq         uint64
	RequestID   string
	Words       []string
	CentralWord string
}

// Update describes what an operation changed. The driver renders it; the
// session never renders anything itself.
type Update struct {
	Notice         string
	Display        []model.WordEntry
	DisplayChanged bool
	Fetch          *FetchRequest
	Traces         []model.ClusterTrace
	Figure         *plot.Figure
	// HidePlot is set when the word set no longer passes the gate.
	HidePlot bool
	// Stale is set when a fetch result was dropped because a newer request
	// was issued after it.
	Stale bool
}

// Session owns the word set and the displayed list for one user. It is a
// single-writer state machine: all calls must come from one goroutine,
// normally the UI event loop.
type Session struct {
	words     *wordset.WordSet
	display   []model.WordEntry
	seq       uint64
	importing string
	newID     func() string
	logger    *slog.Logger
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

func New(opts ...Option) *Session {
	s := &Session{
		words:  wordset.New(),
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) AddWord(text string) Update {
	if err := s.words.Add(text); err != nil {
		if strings.TrimSpace(text) == "" {
			return Update{Notice: NoticeEmptyWord}
		}
		return Update{Notice: fmt.Sprintf("%q is already in the list.", strings.TrimSpace(text))}
	}

	s.display = append(s.display, model.WordEntry{Text: strings.TrimSpace(text)})
	u := Update{DisplayChanged: true}
	s.check(&u)
	return u
}

func (s *Session) DeleteWord(text string) Update {
	text = strings.TrimSpace(text)
	if err := s.words.Remove(text); err != nil {
		return Update{Notice: fmt.Sprintf("%q is not in the list.", text)}
	}

	for i, e := range s.display {
		if e.Text == text {
			s.display = append(s.display[:i], s.display[i+1:]...)
			break
		}
	}
	u := Update{DisplayChanged: true}
	s.check(&u)
	return u
}

func (s *Session) SetCentralQuery(text string) Update {
	if err := s.words.SetCentralQuery(text); err != nil {
		return Update{Notice: NoticeEmptyQuery}
	}
	var u Update
	s.check(&u)
	return u
}

// BeginImport marks an import of name as pending. Only one import may be
// pending at a time.
func (s *Session) BeginImport(name string) error {
	if s.importing != "" {
		return fmt.Errorf("%w: %s", ErrImportInProgress, s.importing)
	}
	s.importing = name
	return nil
}

func (s *Session) Importing() bool {
	return s.importing != ""
}

// CompleteImport finishes the pending import with the file content or the
// error that prevented reading it. A failed import leaves the word set as
// it was.
func (s *Session) CompleteImport(raw []byte, readErr error) Update {
	name := s.importing
	s.importing = ""

	if readErr != nil {
		s.logger.Warn("import read failed", "file", name, "error", readErr)
		return Update{Notice: NoticeInvalidFile}
	}

	texts, err := importer.Import(raw)
	if err != nil {
		s.logger.Warn("import rejected", "file", name, "error", err)
		if errors.Is(err, importer.ErrShape) {
			return Update{Notice: NoticeInvalidFormat}
		}
		return Update{Notice: NoticeInvalidFile}
	}

	skipped := s.words.ReplaceAll(texts)
	s.display = s.words.Entries()
	s.logger.Info("import applied", "file", name, "words", s.words.Size(), "skipped", skipped)

	u := Update{DisplayChanged: true}
	if skipped > 0 {
		u.Notice = fmt.Sprintf("Skipped %d empty or duplicate entries.", skipped)
	}
	s.check(&u)
	return u
}

// ApplyFetch applies the outcome of the request with the given seq. Results
// for anything but the most recently issued request are dropped.
func (s *Session) ApplyFetch(seq uint64, points []model.EmbeddingPoint, err error) Update {
	if seq != s.seq {
		s.logger.Debug("dropping stale embedding response", "seq", seq, "latest", s.seq)
		return Update{Stale: true}
	}

	if err != nil {
		s.logger.Error("visualization failed", "seq", seq, "error", err)
		if client.IsKind(err, client.KindRemote) {
			var fe *client.FetchError
			errors.As(err, &fe)
			return Update{Notice: fe.Message}
		}
		return Update{Notice: NoticeFetchFailed}
	}

	if missing := reconcile.Missing(s.words, points); len(missing) > 0 {
		s.logger.Info("service omitted words", "seq", seq, "words", missing)
	}

	s.display = reconcile.Reconcile(s.words, points)
	traces := projection.Project(points)
	return Update{
		DisplayChanged: true,
		Display:        s.Display(),
		Traces:         traces,
		Figure:         plot.Build(traces),
	}
}

// Display returns a copy of the displayed word list.
func (s *Session) Display() []model.WordEntry {
	out := make([]model.WordEntry, len(s.display))
	copy(out, s.display)
	return out
}

func (s *Session) Words() []string {
	return s.words.Words()
}

func (s *Session) CentralQuery() string {
	return s.words.CentralQuery()
}

// check runs the gate and either issues a fetch or reports why not. A
// failing gate also invalidates any request still in flight.
func (s *Session) check(u *Update) {
	if u.DisplayChanged {
		u.Display = s.Display()
	}

	s.seq++
	d := gate.Evaluate(s.words.Size(), s.words.HasCentralQuery())
	if d != gate.Proceed {
		u.Notice = d.Message()
		u.HidePlot = d == gate.NeedsMoreWords
		return
	}

	u.Fetch = &FetchRequest{
		Seq:         s.seq,
		RequestID:   s.newID(),
		Words:       s.words.Words(),
		CentralWord: s.words.CentralQuery(),
	}
	s.logger.Debug("visualization requested", "seq", s.seq, "request_id", u.Fetch.RequestID, "words", len(u.Fetch.Words))
}
