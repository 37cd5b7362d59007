package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dochat/internal/domain"
)

// Session is the TUI-facing subset of the retrieval pipeline.
type Session interface {
	Ask(ctx context.Context, text string) (domain.Turn, error)
	Summarize(ctx context.Context) (domain.Turn, error)
	Export(w io.Writer) error
}

// turnMsg carries the outcome of an async Ask or Summarize.
type turnMsg struct {
	turn domain.Turn
	err  error
}

// exportMsg carries the outcome of an export.
type exportMsg struct {
	path string
	err  error
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	session  Session
	input    textinput.Model
	viewport viewport.Model
	turns    []domain.Turn
	preview  string
	title    string
	status   string
	busy     bool
	ready    bool
}

// New creates the chat model. preview is the extractive summary shown in the
// header after ingest.
func New(session Session, title, preview string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question (ctrl+s summary, ctrl+e export)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		session:  session,
		input:    ti,
		viewport: vp,
		title:    title,
		preview:  preview,
		status:   "Document loaded. Ask away.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + preview, status, input box, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil

	case turnMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.turns = append(m.turns, msg.turn)
			m.status = fmt.Sprintf("Answered from pages %s", pageList(msg.turn.Result))
			if msg.turn.Kind == domain.TurnSummarize {
				m.status = "Summary generated from document content"
			}
		}
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil

	case exportMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported to " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "Thinking..."
				m.input.Reset()
				return m, ask(m.session, q)
			}
		case "ctrl+s":
			if !m.busy {
				m.busy = true
				m.status = "Summarizing document..."
				return m, summarize(m.session)
			}
		case "ctrl+e":
			return m, export(m.session)
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("dochat — " + m.title)
	preview := previewStyle.Render(m.preview)
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + preview + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	if len(m.turns) == 0 {
		return "No questions yet."
	}
	var b strings.Builder
	for i, turn := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if turn.Kind == domain.TurnSummarize {
			b.WriteString(questionStyle.Render("[Document Summary]"))
		} else {
			b.WriteString(questionStyle.Render("You: " + turn.Query))
		}
		b.WriteString("\n")
		b.WriteString(turn.Answer)
		if pages := pageList(turn.Result); pages != "" {
			b.WriteString("\n")
			b.WriteString(citationStyle.Render("cited pages: " + pages))
		}
	}
	return b.String()
}

func ask(s Session, query string) tea.Cmd {
	return func() tea.Msg {
		turn, err := s.Ask(context.Background(), query)
		return turnMsg{turn: turn, err: err}
	}
}

func summarize(s Session) tea.Cmd {
	return func() tea.Msg {
		turn, err := s.Summarize(context.Background())
		return turnMsg{turn: turn, err: err}
	}
}

func export(s Session) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll("exports", 0o755); err != nil {
			return exportMsg{err: err}
		}
		path := filepath.Join("exports", "dochat_export_"+time.Now().Format("20060102_150405")+".txt")
		f, err := os.Create(path)
		if err != nil {
			return exportMsg{err: err}
		}
		defer f.Close()
		if err := s.Export(f); err != nil {
			return exportMsg{err: err}
		}
		return exportMsg{path: path}
	}
}

func pageList(r domain.RetrievalResult) string {
	pages := r.Pages()
	if len(pages) == 0 {
		return ""
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	previewStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	citationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)
