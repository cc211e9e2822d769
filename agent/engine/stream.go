package engine

import (
	"context"
	"sync"
)

// TurnStream delivers one turn's answer as an ordered, finite sequence of
// text fragments. The stream is lazy and non-restartable: fragments are
// produced while the turn runs and the channel closes when the turn ends.
// Final, Err and Blocked are valid only after Fragments is drained.
type TurnStream struct {
	fragments chan string
	closeOnce sync.Once

	final   string
	err     error
	blocked bool
}

func newTurnStream() *TurnStream {
	return &TurnStream{fragments: make(chan string, 16)}
}

// Fragments yields the answer deltas in arrival order. Concatenating every
// fragment of a successful turn reproduces Final exactly.
func (s *TurnStream) Fragments() <-chan string {
	return s.fragments
}

// Final is the complete answer text. Empty when the turn failed.
func (s *TurnStream) Final() string {
	return s.final
}

func (s *TurnStream) Err() error {
	return s.err
}

// Blocked reports whether the safety gate refused the turn. A blocked turn
// is not an error: the stream carries the fixed refusal text.
func (s *TurnStream) Blocked() bool {
	return s.blocked
}

// emit forwards one fragment, giving up when the turn context ends so an
// abandoned consumer cannot wedge the engine goroutine.
func (s *TurnStream) emit(ctx context.Context, fragment string) bool {
	select {
	case s.fragments <- fragment:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *TurnStream) finish(final string) {
	s.final = final
}

func (s *TurnStream) finishBlocked(refusal string) {
	s.final = refusal
	s.blocked = true
}

func (s *TurnStream) fail(err error) {
	s.err = err
}

// close seals the stream. Outcome fields are written before the channel
// closes, so a reader that drained Fragments observes them safely.
func (s *TurnStream) close() {
	s.closeOnce.Do(func() { close(s.fragments) })
}
