package session

import (
	"context"
	"testing"
	"time"

	"github.com/lojasmm/chatbubble/internal/chat"
	"github.com/lojasmm/chatbubble/internal/widget"
)

type nopBackend struct{}

func (nopBackend) Send(context.Context, string, string) (chat.Reply, error) { return chat.Reply{}, nil }
func (nopBackend) Greet(context.Context, string) (chat.Reply, error)        { return chat.Reply{}, nil }

func TestManager_CreateGetRemove(t *testing.T) {
	m := NewManager()
	w := widget.New(nopBackend{})

	id := m.Create(w)
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 widget, got %d", m.Len())
	}

	got, ok := m.Get(id)
	if !ok || got != w {
		t.Fatalf("expected to get the created widget")
	}

	if _, ok := m.Get("missing"); ok {
		t.Error("expected missing id to be absent")
	}

	if !m.Remove(id) {
		t.Error("expected Remove to report success")
	}
	if m.Remove(id) {
		t.Error("expected second Remove to report absence")
	}
	if m.Len() != 0 {
		t.Errorf("expected 0 widgets, got %d", m.Len())
	}
}

func TestManager_CreateUniqueIDs(t *testing.T) {
	m := NewManager()
	a := m.Create(widget.New(nopBackend{}))
	b := m.Create(widget.New(nopBackend{}))
	if a == b {
		t.Errorf("expected distinct ids, got %q twice", a)
	}
}

func TestManager_Cleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager()
	m.now = func() time.Time { return now }

	stale := m.Create(widget.New(nopBackend{}))
	fresh := m.Create(widget.New(nopBackend{}))

	now = now.Add(45 * time.Minute)
	m.Get(fresh)

	now = now.Add(30 * time.Minute)
	if n := m.Cleanup(time.Hour); n != 1 {
		t.Errorf("expected 1 widget dropped, got %d", n)
	}
	if _, ok := m.Get(stale); ok {
		t.Error("expected stale widget to be dropped")
	}
	if _, ok := m.Get(fresh); !ok {
		t.Error("expected recently used widget to survive")
	}
}
