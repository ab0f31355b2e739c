// Package widget holds the state of one chat bubble: its session token,
// the conversation, pending slot choices and the open/greeted flags.
package widget

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/lojasmm/chatbubble/internal/chat"
)

// Backend is the transport used by a widget. *backend.Client satisfies it.
type Backend interface {
	Send(ctx context.Context, sessionID, text string) (chat.Reply, error)
	Greet(ctx context.Context, sessionID string) (chat.Reply, error)
}

type State string

const (
	StateClosed        State = "closed"
	StateOpenUngreeted State = "open_ungreeted"
	StateOpenText      State = "open_text"
	StateOpenSlots     State = "open_slots"
)

// Snapshot is a point-in-time copy of a widget for rendering.
type Snapshot struct {
	SessionID string         `json:"session_id"`
	State     State          `json:"state"`
	Open      bool           `json:"open"`
	Greeted   bool           `json:"greeted"`
	Messages  []chat.Message `json:"messages"`
	Slots     []string       `json:"slots"`
}

// SlotMode reports whether the widget expects a slot choice instead of free text.
func (s Snapshot) SlotMode() bool { return len(s.Slots) > 0 }

type Widget struct {
	backend   Backend
	sessionID string
	log       *slog.Logger

	// exchange serializes backend calls so replies land in issuance order.
	exchange sync.Mutex

	mu       sync.Mutex
	open     bool
	greeted  bool
	messages []chat.Message
	slots    []string
}

type Option func(*Widget)

// WithSessionID overrides the session token generator.
func WithSessionID(gen SessionIDFunc) Option {
	return func(w *Widget) {
		if gen != nil {
			w.sessionID = gen()
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.log = l
		}
	}
}

func New(b Backend, opts ...Option) *Widget {
	w := &Widget{backend: b, log: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	if w.sessionID == "" {
		w.sessionID = ShortSessionID()
	}
	w.log = w.log.With(slog.String("session_id", w.sessionID))
	return w
}

func (w *Widget) SessionID() string { return w.sessionID }

// Open shows the overlay and fetches the greeting the first time it
// succeeds. A failed greeting is retried on the next Open.
func (w *Widget) Open(ctx context.Context) error {
	w.mu.Lock()
	w.open = true
	greeted := w.greeted
	w.mu.Unlock()

	if greeted {
		return nil
	}
	return w.greet(ctx)
}

// Close hides the overlay. Conversation and greeting survive.
func (w *Widget) Close() {
	w.mu.Lock()
	w.open = false
	w.mu.Unlock()
}

func (w *Widget) greet(ctx context.Context) error {
	w.exchange.Lock()
	defer w.exchange.Unlock()

	// Another caller may have greeted while we waited.
	w.mu.Lock()
	greeted := w.greeted
	w.mu.Unlock()
	if greeted {
		return nil
	}

	reply, err := w.backend.Greet(ctx, w.sessionID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.log.Warn("greeting failed", slog.Any("error", err))
		w.messages = append(w.messages, chat.FailedMessage(chat.ClassifyFailure(err)))
		return err
	}

	w.messages = []chat.Message{chat.AgentMessage(reply.Text)}
	w.slots = nil
	w.greeted = true
	w.log.Debug("greeted")
	return nil
}

// Send appends text as a user message, then posts it and appends the reply.
// Blank text is ignored.
func (w *Widget) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	w.mu.Lock()
	w.messages = append(w.messages, chat.UserMessage(text))
	w.mu.Unlock()

	w.exchange.Lock()
	defer w.exchange.Unlock()

	reply, err := w.backend.Send(ctx, w.sessionID, text)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.log.Warn("send failed", slog.Any("error", err))
		w.messages = append(w.messages, chat.FailedMessage(chat.ClassifyFailure(err)))
		return err
	}

	w.messages = append(w.messages, chat.AgentMessage(reply.Text))
	if reply.HasSlots() {
		w.slots = slices.Clone(reply.Slots)
	} else {
		w.slots = nil
	}
	return nil
}

// SelectSlot leaves slot mode and sends the label as if it had been typed.
func (w *Widget) SelectSlot(ctx context.Context, slot string) error {
	w.mu.Lock()
	w.slots = nil
	w.mu.Unlock()

	return w.Send(ctx, slot)
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Widget) stateLocked() State {
	switch {
	case !w.open:
		return StateClosed
	case !w.greeted:
		return StateOpenUngreeted
	case len(w.slots) > 0:
		return StateOpenSlots
	default:
		return StateOpenText
	}
}

func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Snapshot{
		SessionID: w.sessionID,
		State:     w.stateLocked(),
		Open:      w.open,
		Greeted:   w.greeted,
		Messages:  append(make([]chat.Message, 0, len(w.messages)), w.messages...),
		Slots:     append(make([]string, 0, len(w.slots)), w.slots...),
	}
}
