// Package chat implements the interactive chat surface following the
// Elm architecture for use with Bubbletea.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driving"
)

// state is the chat turn state machine.
type state int

const (
	// stateIdle accepts input.
	stateIdle state = iota

	// stateProcessing has a question in flight; input is blocked and
	// ESC cancels back to idle.
	stateProcessing
)

// Message types produced by asynchronous commands. Each carries the
// turn it belongs to, so a command resolving after its turn was
// cancelled is dropped instead of leaking into the next turn.
type (
	answerMsg struct {
		turn   int
		answer *domain.Answer
	}
	errMsg struct {
		turn int
		err  error
	}
)

// Model is the chat TUI model.
type Model struct {
	query        driving.QueryService
	conversation *domain.Conversation
	retrieveK    int

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   Styles

	state      state
	transcript []string
	cancel     context.CancelFunc
	turn       int
	pending    string

	width  int
	height int
	ready  bool
}

// NewModel creates a chat model over the query service.
func NewModel(query driving.QueryService, sessionCap, retrieveK int) Model {
	input := textinput.New()
	input.Placeholder = "Ask about your harvested sources..."
	input.Focus()
	input.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		query:        query,
		conversation: domain.NewConversation(sessionCap),
		retrieveK:    retrieveK,
		input:        input,
		spinner:      sp,
		styles:       DefaultStyles(),
		state:        stateIdle,
	}
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		headerHeight := 2
		footerHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case answerMsg:
		if m.state != stateProcessing || msg.turn != m.turn {
			return m, nil
		}
		m.cancel = nil
		m.state = stateIdle
		// Only completed turns enter the conversation window.
		m.conversation.AppendUser(m.pending)
		m.conversation.AppendAssistant(msg.answer.Text)
		m.appendAnswer(msg.answer)
		m.input.Focus()
		return m, textinput.Blink

	case errMsg:
		if m.state != stateProcessing || msg.turn != m.turn {
			return m, nil
		}
		m.cancel = nil
		m.state = stateIdle
		m.appendError(msg.err)
		m.input.Focus()
		return m, textinput.Blink

	case spinner.TickMsg:
		if m.state != stateProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey processes keyboard input per state.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.abort()
		return m, tea.Quit

	case tea.KeyEsc:
		if m.state == stateProcessing {
			// Cancel the in-flight turn, stay in the chat.
			m.abort()
			m.state = stateIdle
			m.transcript = append(m.transcript, m.styles.Error.Render("(cancelled)"))
			m.refreshViewport()
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.state != stateIdle {
			return m, nil
		}
		question := strings.TrimSpace(m.input.Value())
		if question == "" {
			return m, nil
		}
		return m.submit(question)
	}

	if m.state == stateProcessing {
		// Input is blocked while a question is in flight.
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit transitions to Processing and launches the question. The user
// turn is recorded only once its answer arrives.
func (m Model) submit(question string) (tea.Model, tea.Cmd) {
	// History excludes the question being asked.
	history := m.conversation.Turns()
	m.turn++
	m.pending = question

	m.transcript = append(m.transcript, m.styles.User.Render("You: ")+question)
	m.refreshViewport()

	m.input.SetValue("")
	m.input.Blur()
	m.state = stateProcessing

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	return m, tea.Batch(m.spinner.Tick, m.ask(ctx, m.turn, question, history))
}

// ask returns the command that runs the query asynchronously.
func (m Model) ask(ctx context.Context, turn int, question string, history []domain.Turn) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.query.AskInConversation(ctx, question, history, m.retrieveK)
		if err != nil {
			return errMsg{turn: turn, err: err}
		}
		return answerMsg{turn: turn, answer: answer}
	}
}

// abort cancels any in-flight question.
func (m *Model) abort() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// appendAnswer renders the answer and its citations into the transcript.
func (m *Model) appendAnswer(answer *domain.Answer) {
	var b strings.Builder
	b.WriteString(m.styles.Assistant.Render("dz: "))
	b.WriteString(answer.Text)
	for _, c := range answer.Citations {
		b.WriteString("\n")
		b.WriteString(m.styles.Citation.Render(fmt.Sprintf("  [%d] %s", c.Index, c.Label())))
	}
	m.transcript = append(m.transcript, b.String())
	m.refreshViewport()
}

// appendError renders a failure into the transcript. A turn with no
// relevant sources is reported, not treated as fatal.
func (m *Model) appendError(err error) {
	text := "error: " + err.Error()
	if errors.Is(err, domain.ErrNoResults) {
		text = "Nothing relevant in the catalog for that question."
	}
	m.transcript = append(m.transcript, m.styles.Error.Render(text))
	m.refreshViewport()
}

// refreshViewport re-renders the transcript and scrolls to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	content := strings.Join(m.transcript, "\n\n")
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(content))
	m.viewport.GotoBottom()
}

// View renders the chat surface.
func (m Model) View() string {
	if !m.ready {
		return "Starting chat..."
	}

	var footer string
	if m.state == stateProcessing {
		footer = m.spinner.View() + " Thinking... (esc to cancel)"
	} else {
		footer = m.input.View()
	}

	return strings.Join([]string{
		m.styles.Header.Render("dz chat") + m.styles.Hint.Render("  ctrl+c to quit"),
		m.viewport.View(),
		footer,
	}, "\n")
}

// Run starts the chat program and blocks until it exits.
func Run(query driving.QueryService, sessionCap, retrieveK int) error {
	program := tea.NewProgram(NewModel(query, sessionCap, retrieveK), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
