package state

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Greeting is emitted exactly once per session, at session start.
const Greeting = "Hello, welcome to the Nike Store Chat Assistant!"

// Manager is the process-wide session registry. Sessions live only for the
// process lifetime; nothing is persisted.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Start creates a session and returns it together with the fixed greeting.
// An empty id gets a generated one. Starting an existing id returns the
// existing session with an empty greeting (the greeting is emitted once).
func (m *Manager) Start(id string) (*Session, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[id]; ok {
		return sess, ""
	}
	sess := NewSession(id)
	m.sessions[id] = sess
	return sess, Greeting
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// End discards the session and its history.
func (m *Manager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
