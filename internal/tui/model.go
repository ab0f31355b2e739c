// Package tui renders a chat widget as a terminal bubble: a one-line hint
// while closed, and the conversation with either a text prompt or a slot
// picker while open.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/elliotchance/pie/v2"

	"github.com/lojasmm/chatbubble/internal/chat"
	"github.com/lojasmm/chatbubble/internal/widget"
)

const defaultTitle = "Chat Assistant"

// exchangeDoneMsg is sent when a backend call issued by the model returns.
type exchangeDoneMsg struct {
	err error
}

type Model struct {
	ctx    context.Context
	widget *widget.Widget
	title  string

	input   textinput.Model
	spinner spinner.Model

	cursor   int
	inFlight int
	quitting bool
}

func New(ctx context.Context, w *widget.Widget, title string) Model {
	if title == "" {
		title = defaultTitle
	}

	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 1000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		widget:  w,
		title:   title,
		input:   ti,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case exchangeDoneMsg:
		m.inFlight--
		m.cursor = 0
		return m, nil

	case spinner.TickMsg:
		if m.inFlight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	snap := m.widget.Snapshot()

	if !snap.Open {
		switch msg.String() {
		case "enter", "ctrl+o":
			return m.run(func(ctx context.Context) error { return m.widget.Open(ctx) })
		case "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if msg.String() == "esc" {
		m.widget.Close()
		return m, nil
	}

	if snap.SlotMode() {
		return m.handleSlotKey(msg, snap.Slots)
	}

	if msg.String() == "enter" {
		text := m.input.Value()
		m.input.Reset()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		return m.run(func(ctx context.Context) error { return m.widget.Send(ctx, text) })
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSlotKey(msg tea.KeyMsg, slots []string) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(slots)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		return m.choose(slots, m.cursor)
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return m.choose(slots, int(key[0]-'1'))
	}
	return m, nil
}

func (m Model) choose(slots []string, idx int) (tea.Model, tea.Cmd) {
	if idx < 0 || idx >= len(slots) {
		return m, nil
	}
	slot := slots[idx]
	m.cursor = 0
	return m.run(func(ctx context.Context) error { return m.widget.SelectSlot(ctx, slot) })
}

// run issues a widget call in the background and keeps the spinner going
// until it returns.
func (m Model) run(call func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.inFlight++
	ctx := m.ctx
	exchange := func() tea.Msg {
		return exchangeDoneMsg{err: call(ctx)}
	}
	if m.inFlight == 1 {
		return m, tea.Batch(exchange, m.spinner.Tick)
	}
	return m, exchange
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.widget.Snapshot()
	if !snap.Open {
		return "  ( 💬 )  enter: open chat · q: quit\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "── %s ── (esc: close · ctrl+c: quit)\n\n", m.title)

	if len(snap.Messages) > 0 {
		b.WriteString(strings.Join(pie.Map(snap.Messages, renderMessage), "\n"))
		b.WriteString("\n")
	}

	if m.inFlight > 0 {
		fmt.Fprintf(&b, "\n%s waiting for reply...\n", m.spinner.View())
	}

	b.WriteString("\n")
	if snap.SlotMode() {
		b.WriteString("Select a time slot:\n")
		for i, slot := range snap.Slots {
			marker := "  "
			if i == m.cursor {
				marker = "> "
			}
			fmt.Fprintf(&b, "%s%d. %s\n", marker, i+1, slot)
		}
		return b.String()
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

func renderMessage(msg chat.Message) string {
	switch {
	case msg.Failed():
		return "  ! " + msg.Text
	case msg.Role == chat.RoleUser:
		return "you: " + msg.Text
	default:
		return "bot: " + msg.Text
	}
}
