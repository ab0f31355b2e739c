package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lojasmm/chatbubble/internal/widget"
)

// Manager keeps the live widgets of the widget host, keyed by an opaque id
// handed to the browser. Widgets not touched within the cleanup age are
// dropped.
type Manager struct {
	mu      sync.Mutex
	widgets map[string]*entry
	now     func() time.Time
}

type entry struct {
	widget   *widget.Widget
	lastUsed time.Time
}

func NewManager() *Manager {
	return &Manager{
		widgets: make(map[string]*entry),
		now:     time.Now,
	}
}

// Create registers w and returns its id.
func (m *Manager) Create(w *widget.Widget) string {
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.widgets[id] = &entry{widget: w, lastUsed: m.now()}
	return id
}

// Get returns the widget for id and marks it as used.
func (m *Manager) Get(id string) (*widget.Widget, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.widgets[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = m.now()
	return e.widget, true
}

func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.widgets[id]; !ok {
		return false
	}
	delete(m.widgets, id)
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.widgets)
}

// Cleanup removes widgets not used within maxAge and returns how many were dropped.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.widgets {
		if now.Sub(e.lastUsed) > maxAge {
			delete(m.widgets, id)
			removed++
		}
	}
	return removed
}
