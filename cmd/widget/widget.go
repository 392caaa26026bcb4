package main

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatwidget/internal/models"
	"chatwidget/internal/session"
	"chatwidget/internal/speech"
)

// stateMsg delivers a fresh session snapshot into the update loop.
type stateMsg session.Snapshot

type styles struct {
	header    lipgloss.Style
	userTag   lipgloss.Style
	botTag    lipgloss.Style
	body      lipgloss.Style
	thinking  lipgloss.Style
	errBanner lipgloss.Style
	micOn     lipgloss.Style
	micOff    lipgloss.Style
	help      lipgloss.Style
}

func newStyles() styles {
	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3b82f6")).Padding(0, 1),
		userTag:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#60a5fa")),
		botTag:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a3a3a3")),
		body:      lipgloss.NewStyle(),
		thinking:  lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#737373")),
		errBanner: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#dc2626")).Padding(0, 1),
		micOn:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")),
		micOff:    lipgloss.NewStyle().Foreground(lipgloss.Color("#737373")),
		help:      lipgloss.NewStyle().Foreground(lipgloss.Color("#525252")),
	}
}

type widget struct {
	ctrl    *session.Controller
	updates <-chan session.Snapshot

	snap     session.Snapshot
	micAvail bool
	status   string
	ready    bool
	width    int
	height   int

	input      textinput.Model
	transcript viewport.Model
	spin       spinner.Model

	styles styles
}

func newWidget(ctrl *session.Controller, updates <-chan session.Snapshot, micAvail bool) widget {
	input := textinput.New()
	input.Prompt = "❯ "
	input.Placeholder = "Type or speak your message..."
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6"))

	return widget{
		ctrl:       ctrl,
		updates:    updates,
		snap:       ctrl.Snapshot(),
		micAvail:   micAvail,
		input:      input,
		transcript: viewport.New(0, 0),
		spin:       sp,
		styles:     newStyles(),
	}
}

func waitUpdate(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m widget) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, waitUpdate(m.updates))
}

func (m widget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 10
		m.transcript.Width = msg.Width
		m.transcript.Height = msg.Height - 5
		m.ready = true
		m.renderTranscript()

	case stateMsg:
		prev := m.snap
		m.snap = session.Snapshot(msg)
		if m.snap.PendingInput != prev.PendingInput && m.snap.PendingInput != m.input.Value() {
			// Dictation replaced the buffer behind the UI's back.
			m.input.SetValue(m.snap.PendingInput)
			m.input.CursorEnd()
		}
		m.renderTranscript()
		m.transcript.GotoBottom()
		cmds = append(cmds, waitUpdate(m.updates))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.ctrl.Close()
			return m, tea.Quit

		case "enter":
			if m.snap.Busy {
				break
			}
			if err := m.ctrl.SubmitTurn(m.input.Value()); err != nil {
				if errors.Is(err, session.ErrReplyPending) {
					m.status = "Still waiting for the assistant..."
				} else {
					m.status = err.Error()
				}
				break
			}
			m.status = ""
			m.input.Reset()

		case "ctrl+t":
			if err := m.ctrl.ToggleCapture(); err != nil {
				if errors.Is(err, speech.ErrUnsupported) {
					m.status = "Sorry, speech recognition is not available here."
				} else {
					m.status = err.Error()
				}
			}

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.ctrl.SetPendingInput(m.input.Value())
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *widget) renderTranscript() {
	m.transcript.SetContent(renderConversation(m.snap, m.styles, m.width))
}

// renderConversation lays out the committed history, the reveal in progress,
// and the thinking indicator, newest at the bottom.
func renderConversation(snap session.Snapshot, st styles, width int) string {
	body := st.body
	if width > 0 {
		body = body.Width(width)
	}

	var b strings.Builder
	for _, turn := range snap.History {
		tag := st.botTag.Render("Assistant")
		if turn.Role == models.RoleUser {
			tag = st.userTag.Render("You")
		}
		b.WriteString(tag + "\n")
		b.WriteString(body.Render(turn.Content) + "\n\n")
	}

	if snap.RevealBuffer != "" {
		b.WriteString(st.botTag.Render("Assistant") + "\n")
		b.WriteString(body.Render(snap.RevealBuffer+"▌") + "\n")
	} else if snap.AwaitingReply {
		b.WriteString(st.thinking.Render("Assistant is thinking...") + "\n")
	}

	return b.String()
}

func (m widget) statusLine() string {
	switch {
	case m.snap.LastError != "":
		return m.styles.errBanner.Render("⚠ " + m.snap.LastError)
	case m.status != "":
		return m.styles.errBanner.Render(m.status)
	case m.snap.Busy:
		return m.spin.View() + m.styles.thinking.Render(" working...")
	default:
		return m.styles.help.Render("enter send · ctrl+t mic · esc quit")
	}
}

func (m widget) micIndicator() string {
	switch {
	case m.snap.CaptureActive:
		return m.styles.micOn.Render("● rec")
	case m.micAvail:
		return m.styles.micOff.Render("○ mic")
	default:
		return m.styles.micOff.Render("  -  ")
	}
}

func (m widget) View() string {
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.styles.header.Render("AI Chatbot 🤖") + "\n")
	b.WriteString(m.transcript.View() + "\n")
	b.WriteString(m.statusLine() + "\n")
	b.WriteString(m.micIndicator() + " " + m.input.View())
	return b.String()
}
