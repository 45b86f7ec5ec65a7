package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/wordmap/internal/client"
	"github.com/agenthands/wordmap/internal/core/gate"
	"github.com/agenthands/wordmap/internal/core/model"
	"github.com/agenthands/wordmap/internal/logging"
	"github.com/agenthands/wordmap/internal/plot"
	"github.com/agenthands/wordmap/internal/session"
)

type fakeFetcher struct {
	mu     sync.Mutex
	calls  int
	points []model.EmbeddingPoint
	err    error
}

func (f *fakeFetcher) Request(ctx context.Context, requestID string, words []string, centralQuery string) ([]model.EmbeddingPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.points, f.err
}

type figureSink struct {
	path string
	figs []*plot.Figure
}

func (s *figureSink) write(path string, fig *plot.Figure) error {
	s.path = path
	s.figs = append(s.figs, fig)
	return nil
}

func newTestModel(f Fetcher, sink *figureSink) *Model {
	s := session.New(session.WithLogger(logging.Discard()))
	return New(s, f, Options{
		NoticeTTL:   time.Millisecond,
		Output:      "out.html",
		Logger:      logging.Discard(),
		WriteFigure: sink.write,
	})
}

// pump runs cmd and feeds every resulting message back into m, except
// notice dismissals so notices stay observable.
func pump(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			pump(m, c)
		}
	case dismissNoticeMsg, tea.QuitMsg, nil:
	default:
		_, next := m.Update(msg)
		pump(m, next)
	}
}

func typeLine(m *Model, line string) {
	if line != "" {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
		pump(m, cmd)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pump(m, cmd)
}

func sim(v float64) *float64 { return &v }

func TestModel_AddWordsAndQuery(t *testing.T) {
	f := &fakeFetcher{points: []model.EmbeddingPoint{
		{Word: "Nurse", Similarity: 0.2, Cluster: 1},
		{Word: "Go developer", Similarity: 0.9, Cluster: 0},
		{Word: "Rust developer", Similarity: 0.8, Cluster: 0},
	}}
	sink := &figureSink{}
	m := newTestModel(f, sink)

	typeLine(m, "Go developer")
	assert.Equal(t, gate.NeedsQuery.Message(), m.notice)

	typeLine(m, "Rust developer")
	typeLine(m, "Nurse")
	assert.Equal(t, 0, f.calls)

	typeLine(m, "/query backend engineer")
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 0, m.pending)

	display := m.session.Display()
	require.Len(t, display, 3)
	assert.Equal(t, "Go developer", display[0].Text)
	assert.Equal(t, sim(0.9), display[0].Similarity)
	assert.Equal(t, "Nurse", display[2].Text)

	require.Len(t, sink.figs, 1)
	assert.Equal(t, "out.html", sink.path)
	assert.Len(t, sink.figs[0].Data, 2)
	assert.True(t, m.plotVisible)

	view := m.View()
	assert.Contains(t, view, "Central Query: backend engineer")
	assert.Contains(t, view, "Go developer (Similarity: 0.90)")
	assert.Contains(t, view, "Plot written to out.html")
}

func TestModel_EmptyWordNotice(t *testing.T) {
	m := newTestModel(&fakeFetcher{}, &figureSink{})

	typeLine(m, "   ")
	assert.Equal(t, session.NoticeEmptyWord, m.notice)
	assert.Contains(t, m.View(), session.NoticeEmptyWord)
}

func TestModel_NoticeDismissal(t *testing.T) {
	m := newTestModel(&fakeFetcher{}, &figureSink{})

	m.setNotice("first")
	firstID := m.noticeID
	m.setNotice("second")

	m.Update(dismissNoticeMsg{id: firstID})
	assert.Equal(t, "second", m.notice)

	m.Update(dismissNoticeMsg{id: m.noticeID})
	assert.Empty(t, m.notice)
}

func TestModel_NoticeTickFires(t *testing.T) {
	m := newTestModel(&fakeFetcher{}, &figureSink{})

	cmd := m.setNotice("hello")
	msg := cmd()
	m.Update(msg)
	assert.Empty(t, m.notice)
}

func TestModel_FetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		notice string
	}{
		{"transport", &client.FetchError{Kind: client.KindTransport, Message: "HTTP error! Status: 500"}, session.NoticeFetchFailed},
		{"remote", &client.FetchError{Kind: client.KindRemote, Message: "model unavailable"}, "model unavailable"},
		{"other", errors.New("boom"), session.NoticeFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{err: tt.err}
			sink := &figureSink{}
			m := newTestModel(f, sink)

			typeLine(m, "/query q")
			typeLine(m, "a")
			typeLine(m, "b")
			typeLine(m, "c")

			assert.Equal(t, 1, f.calls)
			assert.Equal(t, tt.notice, m.notice)
			assert.Empty(t, sink.figs)
		})
	}
}

func TestModel_RemoveHidesPlot(t *testing.T) {
	f := &fakeFetcher{points: []model.EmbeddingPoint{
		{Word: "a", Similarity: 0.5}, {Word: "b", Similarity: 0.4}, {Word: "c", Similarity: 0.3},
	}}
	m := newTestModel(f, &figureSink{})

	typeLine(m, "/query q")
	for _, w := range []string{"a", "b", "c"} {
		typeLine(m, w)
	}
	require.True(t, m.plotVisible)

	typeLine(m, "/rm b")
	assert.False(t, m.plotVisible)
	assert.Equal(t, []string{"a", "c"}, m.session.Words())
	assert.NotContains(t, m.View(), "Plot written")
}

func TestModel_Import(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"jobs":["a","b","c"]}`), 0o600))

	f := &fakeFetcher{points: []model.EmbeddingPoint{{Word: "a"}, {Word: "b"}, {Word: "c"}}}
	m := newTestModel(f, &figureSink{})

	typeLine(m, "/query q")
	typeLine(m, "old")
	typeLine(m, "/import "+path)

	assert.Equal(t, []string{"a", "b", "c"}, m.session.Words())
	assert.False(t, m.session.Importing())
	assert.Equal(t, 1, f.calls)
}

func TestModel_ImportDroppedPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`["a","b"]`), 0o600))

	m := newTestModel(&fakeFetcher{}, &figureSink{})
	typeLine(m, "'"+path+"'")

	assert.Equal(t, session.NoticeInvalidFormat, m.notice)
	assert.Empty(t, m.session.Words())
}

func TestModel_ImportMissingFile(t *testing.T) {
	m := newTestModel(&fakeFetcher{}, &figureSink{})
	typeLine(m, "/import "+filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, session.NoticeInvalidFile, m.notice)
}

func TestModel_ImportWhilePending(t *testing.T) {
	m := newTestModel(&fakeFetcher{}, &figureSink{})
	require.NoError(t, m.session.BeginImport("first.json"))

	cmd := m.startImport("/tmp/second.json")
	require.NotNil(t, cmd)
	assert.Equal(t, session.NoticeImportInFlight, m.notice)
}

func TestModel_StaleFetchIgnored(t *testing.T) {
	m := newTestModel(&fakeFetcher{}, &figureSink{})
	m.pending = 1

	m.Update(fetchDoneMsg{seq: 99, points: []model.EmbeddingPoint{{Word: "x"}}})
	assert.Empty(t, m.session.Display())
	assert.Equal(t, 0, m.pending)
}

func TestModel_Editing(t *testing.T) {
	m := newTestModel(&fakeFetcher{}, &figureSink{})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("cd")})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "ab c", string(m.input))
	assert.Contains(t, m.View(), "> ab c")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line, cmd, arg string
	}{
		{"Go developer", "add", "Go developer"},
		{"  spaced  ", "add", "spaced"},
		{"/query  backend ", "query", "backend"},
		{"/rm Nurse", "rm", "Nurse"},
		{"/delete Nurse", "rm", "Nurse"},
		{"/import \"/tmp/my jobs.json\"", "import", "/tmp/my jobs.json"},
		{"'/tmp/dropped.json'", "import", "/tmp/dropped.json"},
		{"file:///tmp/dropped.json", "import", "/tmp/dropped.json"},
		{"/quit", "quit", ""},
		{"/help", "help", ""},
		{"/bogus x", "unknown", "/bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, arg := parseCommand(tt.line)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.arg, arg)
		})
	}
}

func TestWriteHTMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.html")
	fig := plot.Build([]model.ClusterTrace{{ClusterID: 0, Color: "red", Points: []model.EmbeddingPoint{{Word: "a"}}}})

	require.NoError(t, WriteHTMLFile(path, fig))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scatter3d")
}
