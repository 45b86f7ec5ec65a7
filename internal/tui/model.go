package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agenthands/wordmap/internal/core/model"
	"github.com/agenthands/wordmap/internal/plot"
	"github.com/agenthands/wordmap/internal/session"
)

// Fetcher requests embedding points from the embedding endpoint.
type Fetcher interface {
	Request(ctx context.Context, requestID string, words []string, centralQuery string) ([]model.EmbeddingPoint, error)
}

type fetchDoneMsg struct {
	seq    uint64
	points []model.EmbeddingPoint
	err    error
}

type importDoneMsg struct {
	raw []byte
	err error
}

type dismissNoticeMsg struct {
	id int
}

type figureWrittenMsg struct {
	path string
	err  error
}

type Options struct {
	NoticeTTL time.Duration
	Output    string
	Logger    *slog.Logger
	// WriteFigure persists a figure for rendering. Defaults to an HTML file.
	WriteFigure func(path string, fig *plot.Figure) error
}

// Model maps terminal input to session operations. bubbletea calls Update
// from a single goroutine, which makes it the session's only writer.
type Model struct {
	session *session.Session
	fetcher Fetcher
	opts    Options

	input       []rune
	notice      string
	noticeID    int
	status      string
	plotVisible bool
	pending     int
}

func New(s *session.Session, f Fetcher, opts Options) *Model {
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = 3 * time.Second
	}
	if opts.Output == "" {
		opts.Output = "wordmap.html"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.WriteFigure == nil {
		opts.WriteFigure = WriteHTMLFile
	}
	return &Model{session: s, fetcher: f, opts: opts}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case fetchDoneMsg:
		m.pending--
		return m, m.apply(m.session.ApplyFetch(msg.seq, msg.points, msg.err))

	case importDoneMsg:
		return m, m.apply(m.session.CompleteImport(msg.raw, msg.err))

	case dismissNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case figureWrittenMsg:
		if msg.err != nil {
			m.opts.Logger.Error("failed to write plot", "path", msg.path, "error", msg.err)
			return m, m.setNotice("Failed to write the plot.")
		}
		m.plotVisible = true
		m.status = "Plot written to " + msg.path
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		line := string(m.input)
		m.input = m.input[:0]
		return m, m.submit(line)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *Model) submit(line string) tea.Cmd {
	cmd, arg := parseCommand(line)
	switch cmd {
	case "quit":
		return tea.Quit
	case "query":
		return m.apply(m.session.SetCentralQuery(arg))
	case "rm":
		return m.apply(m.session.DeleteWord(arg))
	case "import":
		return m.startImport(arg)
	case "help":
		return m.setNotice(helpText)
	case "unknown":
		return m.setNotice(fmt.Sprintf("Unknown command %q. Type /help.", arg))
	default:
		return m.apply(m.session.AddWord(arg))
	}
}

func (m *Model) startImport(path string) tea.Cmd {
	if path == "" {
		return m.setNotice("Usage: /import <file.json>")
	}
	if err := m.session.BeginImport(path); err != nil {
		return m.setNotice(session.NoticeImportInFlight)
	}
	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		return importDoneMsg{raw: raw, err: err}
	}
}

// apply turns a session update into view state and follow-up commands.
func (m *Model) apply(u session.Update) tea.Cmd {
	var cmds []tea.Cmd
	if u.Notice != "" {
		cmds = append(cmds, m.setNotice(u.Notice))
	}
	if u.HidePlot {
		m.plotVisible = false
		m.status = ""
	}
	if u.Fetch != nil {
		cmds = append(cmds, m.fetch(*u.Fetch))
	}
	if u.Figure != nil {
		cmds = append(cmds, m.writeFigure(u.Figure))
	}
	return tea.Batch(cmds...)
}

func (m *Model) fetch(req session.FetchRequest) tea.Cmd {
	m.pending++
	fetcher := m.fetcher
	return func() tea.Msg {
		points, err := fetcher.Request(context.Background(), req.RequestID, req.Words, req.CentralWord)
		return fetchDoneMsg{seq: req.Seq, points: points, err: err}
	}
}

func (m *Model) writeFigure(fig *plot.Figure) tea.Cmd {
	path, write := m.opts.Output, m.opts.WriteFigure
	return func() tea.Msg {
		return figureWrittenMsg{path: path, err: write(path, fig)}
	}
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeID++
	m.notice = text
	id := m.noticeID
	return tea.Tick(m.opts.NoticeTTL, func(time.Time) tea.Msg {
		return dismissNoticeMsg{id: id}
	})
}

// parseCommand splits an input line into a command name and its argument.
// Plain text is a word to add; a dropped file path is an import.
func parseCommand(line string) (string, string) {
	trimmed := strings.TrimSpace(line)
	if path, ok := droppedPath(trimmed); ok {
		return "import", path
	}
	if !strings.HasPrefix(trimmed, "/") {
		return "add", trimmed
	}

	name, arg, _ := strings.Cut(trimmed[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "q", "quit", "exit":
		return "quit", ""
	case "query", "central":
		return "query", arg
	case "rm", "del", "delete":
		return "rm", arg
	case "import", "load":
		return "import", unquote(arg)
	case "help", "?":
		return "help", ""
	default:
		return "unknown", "/" + name
	}
}

// droppedPath recognises a JSON file path that a terminal inserts when a
// file is dragged onto it.
func droppedPath(s string) (string, bool) {
	p := unquote(s)
	p = strings.TrimPrefix(p, "file://")
	if !strings.HasSuffix(strings.ToLower(p), ".json") {
		return "", false
	}
	if !strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "./") {
		return "", false
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = home + p[1:]
		}
	}
	return p, true
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// WriteHTMLFile writes fig as a standalone Plotly page at path.
func WriteHTMLFile(path string, fig *plot.Figure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := plot.WriteHTML(f, fig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
