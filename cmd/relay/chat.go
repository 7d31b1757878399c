package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	session "github.com/korvuslabs/relay-core/core"
	"github.com/korvuslabs/relay-core/core/conversations"
	"github.com/korvuslabs/relay-core/core/events"
	"github.com/korvuslabs/relay-core/core/transport"
	"github.com/muesli/reflow/wordwrap"
)

var (
	userStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	supervisorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle        = lipgloss.NewStyle().Faint(true)
)

// Messages sent into the bubbletea loop from the session callbacks.
type (
	streamStartMsg  struct{}
	contentMsg      struct{ text string }
	activityMsg     struct{ text string }
	resultMsg       struct {
		text   string
		origin session.ResultOrigin
	}
	streamErrMsg    struct{ err error }
	streamEndMsg    struct{ state session.StreamState }
	sendRejectedMsg struct{ err error }
)

type entry struct {
	role      string // "user", "supervisor", "activity", "error"
	text      string
	streaming bool
}

type chatModel struct {
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	session *session.Session
	store   *conversations.InMemoryStore

	history     []entry
	pendingUser string
	lastResult  *resultMsg
	activity    string
	streaming   bool
	ready       bool
	width       int
	quitting    bool
}

func newChatModel(store *conversations.InMemoryStore) *chatModel {
	input := textinput.New()
	input.Placeholder = "Ask the supervisor..."
	input.Focus()
	input.CharLimit = 0

	return &chatModel{
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		store:   store,
	}
}

// runChat wires a session's callbacks into a bubbletea program and runs it
// until the user quits.
func runChat(client transport.Client, throttle time.Duration) error {
	store := conversations.NewInMemoryStore()
	m := newChatModel(store)
	p := tea.NewProgram(m, tea.WithAltScreen())

	m.session = session.NewSession(
		session.WithTransport(client),
		session.WithUpdateThrottle(throttle),
		session.WithStreamStartCallback(func(session.StreamState) {
			p.Send(streamStartMsg{})
		}),
		session.WithContentUpdateCallback(func(text string, _ session.StreamState) {
			p.Send(contentMsg{text: text})
		}),
		session.WithRawEventCallback(func(event events.Event) {
			if notice := activityNotice(event); notice != "" {
				p.Send(activityMsg{text: notice})
			}
		}),
		session.WithCompleteResultCallback(func(text string, origin session.ResultOrigin) {
			p.Send(resultMsg{text: text, origin: origin})
		}),
		session.WithErrorCallback(func(err error) {
			p.Send(streamErrMsg{err: err})
		}),
		session.WithStreamEndCallback(func(state session.StreamState) {
			p.Send(streamEndMsg{state: state})
		}),
	)
	defer m.session.Close()

	_, err := p.Run()
	return err
}

// activityNotice turns tool and plan events into a one-line notice, empty
// for events that accumulate into the answer itself.
func activityNotice(event events.Event) string {
	switch event.Kind {
	case events.KindToolStart:
		return "→ " + fallbackText(event.DisplayContent, "tool started")
	case events.KindToolEnd:
		return "✓ " + fallbackText(event.DisplayContent, "tool finished")
	}

	switch event.Name {
	case events.ArtifactToolNotificationStart:
		return "→ " + fallbackText(event.DisplayContent, "tool started")
	case events.ArtifactToolNotificationEnd:
		return "✓ " + fallbackText(event.DisplayContent, "tool finished")
	case events.ArtifactExecutionPlanUpdate, events.ArtifactExecutionPlanStatusUpdate:
		return "plan: " + fallbackText(event.DisplayContent, "updated")
	}
	return ""
}

func fallbackText(text, fallback string) string {
	if text == "" {
		return fallback
	}
	return text
}

func (m *chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyCtrlG:
			m.session.Cancel()
			return m, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.pendingUser = text
			m.history = append(m.history, entry{role: "user", text: text})
			m.updateViewport()
			return m, m.sendCmd(text)
		}

	case tea.WindowSizeMsg:
		const footerHeight = 2
		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
		m.input.Width = msg.Width - 4
		m.updateViewport()
		return m, nil

	case streamStartMsg:
		m.streaming = true
		m.activity = ""
		m.lastResult = nil
		m.history = append(m.history, entry{role: "supervisor", streaming: true})
		m.updateViewport()
		return m, nil

	case contentMsg:
		if n := len(m.history); n > 0 && m.history[n-1].streaming {
			m.history[n-1].text = msg.text
			m.updateViewport()
		}
		return m, nil

	case activityMsg:
		m.activity = msg.text
		if n := len(m.history); n > 0 && m.history[n-1].streaming {
			streamingEntry := m.history[n-1]
			m.history = append(m.history[:n-1], entry{role: "activity", text: msg.text}, streamingEntry)
			m.updateViewport()
		}
		return m, nil

	case resultMsg:
		m.lastResult = &msg
		return m, nil

	case streamErrMsg:
		m.history = append(m.history, entry{role: "error", text: msg.err.Error()})
		m.updateViewport()
		return m, nil

	case streamEndMsg:
		m.streaming = false
		m.activity = ""
		if n := len(m.history); n > 0 && m.history[n-1].streaming {
			m.history[n-1].streaming = false
			if m.history[n-1].text == "" {
				m.history[n-1].text = dimStyle.Render("(no answer)")
			}
		}
		m.recordTurn(msg.state)
		m.updateViewport()
		return m, nil

	case sendRejectedMsg:
		m.history = append(m.history, entry{role: "error", text: msg.err.Error()})
		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	// Scroll keys go to the viewport; typing keys must not move it.
	if keyMsg, isKey := msg.(tea.KeyMsg); isKey {
		switch keyMsg.Type {
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// sendCmd runs the turn off the UI loop. Stream errors arrive through the
// error callback; only pre-flight rejections need surfacing here.
func (m *chatModel) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		err := m.session.SendMessage(context.Background(), text)
		if errors.Is(err, session.ErrTurnInFlight) ||
			errors.Is(err, session.ErrNoTransport) ||
			errors.Is(err, session.ErrSessionClosed) {
			return sendRejectedMsg{err: err}
		}
		return nil
	}
}

// recordTurn appends the exchange to the conversation store once the turn's
// context id is known.
func (m *chatModel) recordTurn(state session.StreamState) {
	contextID := state.ContextID
	if contextID == "" {
		contextID = "local"
	}

	if m.pendingUser != "" {
		m.store.Append(contextID, conversations.Record{
			Role: conversations.RoleUser,
			Text: m.pendingUser,
		})
		m.pendingUser = ""
	}
	if m.lastResult != nil {
		m.store.Append(contextID, conversations.Record{
			Role:   conversations.RoleSupervisor,
			Text:   m.lastResult.text,
			Origin: string(m.lastResult.origin),
		})
		m.lastResult = nil
	}
}

func (m *chatModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Connecting..."
	}

	var status string
	if m.streaming {
		notice := m.activity
		if notice == "" {
			notice = "thinking... (ctrl+g to cancel)"
		}
		status = dimStyle.Render(m.spinner.View() + " " + notice)
	} else {
		status = dimStyle.Render("enter to send, ctrl+c to quit")
	}

	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), m.input.View(), status)
}

func (m *chatModel) updateViewport() {
	if !m.ready {
		return
	}

	width := max(m.width-4, 20)
	var b strings.Builder
	for _, e := range m.history {
		switch e.role {
		case "user":
			b.WriteString(userStyle.Render("you:") + "\n")
			b.WriteString(wordwrap.String(e.text, width))
		case "supervisor":
			b.WriteString(supervisorStyle.Render("supervisor:") + "\n")
			b.WriteString(wordwrap.String(e.text, width))
		case "activity":
			b.WriteString(dimStyle.Render(wordwrap.String(e.text, width)))
		case "error":
			b.WriteString(errorStyle.Render("error:") + "\n")
			b.WriteString(wordwrap.String(e.text, width))
		}
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}
