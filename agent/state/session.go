package state

import (
	"fmt"
	"sync"

	contractx "github.com/storelane/shopassist/agent/contract"
)

// MaxHistory bounds the per-session conversation window. Truncation always
// drops the oldest entries first.
const MaxHistory = 20

// Session owns one conversation's bounded history. History holds only plain
// user/assistant messages; run-scoped tool traffic never enters it. A
// session supports one active turn at a time: the engine serializes turns
// through BeginTurn/EndTurn.
type Session struct {
	id string

	turnMu sync.Mutex

	mu      sync.Mutex
	history []contractx.Message
}

func NewSession(id string) *Session {
	return &Session{id: id}
}

func (s *Session) ID() string {
	return s.id
}

// BeginTurn blocks until no other turn is running on this session.
func (s *Session) BeginTurn() {
	s.turnMu.Lock()
}

func (s *Session) EndTurn() {
	s.turnMu.Unlock()
}

// Append records a message and enforces the history bound. Only user and
// assistant messages are recordable.
func (s *Session) Append(msg contractx.Message) error {
	if msg.Role != contractx.RoleUser && msg.Role != contractx.RoleAssistant {
		return fmt.Errorf("%w: history accepts only user/assistant messages, got %q", contractx.ErrValidation, msg.Role)
	}
	if len(msg.ToolCalls) > 0 || msg.ToolCallID != "" {
		return fmt.Errorf("%w: history accepts only plain messages", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, msg)
	if excess := len(s.history) - MaxHistory; excess > 0 {
		s.history = append(s.history[:0:0], s.history[excess:]...)
	}
	return nil
}

// History returns a snapshot of the current window, oldest first.
func (s *Session) History() []contractx.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contractx.Message(nil), s.history...)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}
