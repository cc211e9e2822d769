package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/storelane/shopassist/agent/contract"
	statex "github.com/storelane/shopassist/agent/state"
)

type fakeGate struct {
	verdict contractx.SafetyVerdict
	calls   int
	lastLen int
}

func (g *fakeGate) Screen(ctx context.Context, history []contractx.Message) contractx.SafetyVerdict {
	g.calls++
	g.lastLen = len(history)
	return g.verdict
}

type fakeResponder struct {
	name contractx.ResponderName
	run  func(ctx context.Context, history []contractx.Message, onDelta func(string)) (contractx.RunOutcome, error)
	runs int
}

func (r *fakeResponder) Name() contractx.ResponderName {
	return r.name
}

func (r *fakeResponder) Run(
	ctx context.Context,
	history []contractx.Message,
	onDelta func(string),
) (contractx.RunOutcome, error) {
	r.runs++
	return r.run(ctx, history, onDelta)
}

type fakeRegistry struct {
	entry      contractx.Responder
	responders map[contractx.ResponderName]contractx.Responder
}

func newFakeRegistry(entry *fakeResponder, others ...*fakeResponder) *fakeRegistry {
	reg := &fakeRegistry{
		entry:      entry,
		responders: map[contractx.ResponderName]contractx.Responder{entry.name: entry},
	}
	for _, r := range others {
		reg.responders[r.name] = r
	}
	return reg
}

func (r *fakeRegistry) Entry() contractx.Responder {
	return r.entry
}

func (r *fakeRegistry) Responder(name contractx.ResponderName) (contractx.Responder, bool) {
	resp, ok := r.responders[name]
	return resp, ok
}

func (r *fakeRegistry) Size() int {
	return len(r.responders)
}

func answering(name contractx.ResponderName, answer string) *fakeResponder {
	return &fakeResponder{name: name, run: func(ctx context.Context, _ []contractx.Message, onDelta func(string)) (contractx.RunOutcome, error) {
		if onDelta != nil {
			for _, piece := range strings.SplitAfter(answer, " ") {
				onDelta(piece)
			}
		}
		return contractx.RunOutcome{Answer: answer}, nil
	}}
}

func delegating(name, target contractx.ResponderName) *fakeResponder {
	return &fakeResponder{name: name, run: func(context.Context, []contractx.Message, func(string)) (contractx.RunOutcome, error) {
		return contractx.RunOutcome{DelegateTo: target}, nil
	}}
}

func drain(t *testing.T, stream *TurnStream) string {
	t.Helper()
	var b strings.Builder
	for fragment := range stream.Fragments() {
		b.WriteString(fragment)
	}
	return b.String()
}

func TestProcessTurnStreamsFullAnswer(t *testing.T) {
	t.Parallel()

	answer := "The Air Max costs PKR 23,900 and is in stock."
	router := delegating(contractx.ResponderRouter, contractx.ResponderProducts)
	products := answering(contractx.ResponderProducts, answer)
	eng, err := New(&fakeGate{}, newFakeRegistry(router, products))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	session := statex.NewSession("s1")
	stream := eng.ProcessTurn(context.Background(), session, "price of the Air Max?")

	got := drain(t, stream)
	if stream.Err() != nil {
		t.Fatalf("stream error = %v", stream.Err())
	}
	if got != answer || stream.Final() != answer {
		t.Fatalf("fragments = %q, Final = %q, want %q", got, stream.Final(), answer)
	}

	history := session.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want user+assistant", len(history))
	}
	if history[1].Role != contractx.RoleAssistant || history[1].Content != answer {
		t.Fatalf("assistant entry = %+v", history[1])
	}
}

func TestProcessTurnBlocked(t *testing.T) {
	t.Parallel()

	router := answering(contractx.ResponderRouter, "should never run")
	gate := &fakeGate{verdict: contractx.SafetyVerdict{Blocked: true, Rationale: "harassment"}}
	eng, _ := New(gate, newFakeRegistry(router))

	session := statex.NewSession("s1")
	stream := eng.ProcessTurn(context.Background(), session, "abusive text")

	got := drain(t, stream)
	if !stream.Blocked() {
		t.Fatal("stream must report the block")
	}
	if got != Refusal || stream.Final() != Refusal {
		t.Fatalf("refusal text = %q, want %q", got, Refusal)
	}
	if strings.Contains(got, "harassment") {
		t.Fatal("classifier rationale leaked to the user")
	}
	if router.runs != 0 {
		t.Fatal("no responder may run on a blocked turn")
	}

	// The offending user message stays; no assistant entry is added.
	history := session.History()
	if len(history) != 1 || history[0].Role != contractx.RoleUser {
		t.Fatalf("blocked turn history = %+v", history)
	}
}

func TestProcessTurnScreensFullHistory(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{}
	eng, _ := New(gate, newFakeRegistry(answering(contractx.ResponderRouter, "hi")))
	session := statex.NewSession("s1")

	drain(t, eng.ProcessTurn(context.Background(), session, "first"))
	drain(t, eng.ProcessTurn(context.Background(), session, "second"))

	if gate.calls != 2 {
		t.Fatalf("gate ran %d times, want 2", gate.calls)
	}
	// Second screen sees user+assistant+user.
	if gate.lastLen != 3 {
		t.Fatalf("gate saw %d messages, want 3", gate.lastLen)
	}
}

func TestProcessTurnDelegationChain(t *testing.T) {
	t.Parallel()

	router := delegating(contractx.ResponderRouter, contractx.ResponderInquiry)
	inquiry := delegating(contractx.ResponderInquiry, contractx.ResponderReturns)
	returns := answering(contractx.ResponderReturns, "Returns are accepted within 30 days.")
	eng, _ := New(&fakeGate{}, newFakeRegistry(router, inquiry, returns))

	stream := eng.ProcessTurn(context.Background(), statex.NewSession("s1"), "can I return these?")
	got := drain(t, stream)
	if stream.Err() != nil {
		t.Fatalf("stream error = %v", stream.Err())
	}
	if got != "Returns are accepted within 30 days." {
		t.Fatalf("unexpected answer: %q", got)
	}
	if router.runs != 1 || inquiry.runs != 1 || returns.runs != 1 {
		t.Fatalf("chain runs = %d/%d/%d", router.runs, inquiry.runs, returns.runs)
	}
}

func TestProcessTurnUnknownTarget(t *testing.T) {
	t.Parallel()

	router := delegating(contractx.ResponderRouter, "billing")
	eng, _ := New(&fakeGate{}, newFakeRegistry(router))

	stream := eng.ProcessTurn(context.Background(), statex.NewSession("s1"), "hello")
	drain(t, stream)
	if !errors.Is(stream.Err(), contractx.ErrUnknownResponder) {
		t.Fatalf("expected ErrUnknownResponder, got %v", stream.Err())
	}
}

func TestProcessTurnHopLimit(t *testing.T) {
	t.Parallel()

	a := delegating(contractx.ResponderRouter, contractx.ResponderInquiry)
	b := delegating(contractx.ResponderInquiry, contractx.ResponderRouter)
	eng, _ := New(&fakeGate{}, newFakeRegistry(a, b))

	stream := eng.ProcessTurn(context.Background(), statex.NewSession("s1"), "hello")
	drain(t, stream)
	if !errors.Is(stream.Err(), contractx.ErrHopLimitExceeded) {
		t.Fatalf("expected ErrHopLimitExceeded, got %v", stream.Err())
	}
}

func TestProcessTurnCancellationKeepsHistoryClean(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	router := &fakeResponder{name: contractx.ResponderRouter, run: func(ctx context.Context, _ []contractx.Message, _ func(string)) (contractx.RunOutcome, error) {
		cancel()
		<-ctx.Done()
		return contractx.RunOutcome{}, ctx.Err()
	}}
	eng, _ := New(&fakeGate{}, newFakeRegistry(router))

	session := statex.NewSession("s1")
	stream := eng.ProcessTurn(ctx, session, "hello")
	drain(t, stream)
	if stream.Err() == nil {
		t.Fatal("cancelled turn must surface an error")
	}
	if history := session.History(); len(history) != 1 {
		t.Fatalf("cancelled turn must not commit an answer, history = %+v", history)
	}
}

func TestProcessTurnRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	eng, _ := New(&fakeGate{}, newFakeRegistry(answering(contractx.ResponderRouter, "hi")))
	session := statex.NewSession("s1")

	stream := eng.ProcessTurn(context.Background(), session, "   \n")
	drain(t, stream)
	if !errors.Is(stream.Err(), contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", stream.Err())
	}
	if session.Len() != 0 {
		t.Fatal("empty input must not enter history")
	}
}

func TestProcessTurnHistoryStaysBounded(t *testing.T) {
	t.Parallel()

	eng, _ := New(&fakeGate{}, newFakeRegistry(answering(contractx.ResponderRouter, "noted")))
	session := statex.NewSession("s1")

	for i := 0; i < statex.MaxHistory; i++ {
		drain(t, eng.ProcessTurn(context.Background(), session, "message"))
	}
	if session.Len() != statex.MaxHistory {
		t.Fatalf("history length = %d, want %d", session.Len(), statex.MaxHistory)
	}
}

func TestProcessTurnSerializesSameSession(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{}, 2)
	slow := &fakeResponder{name: contractx.ResponderRouter, run: func(context.Context, []contractx.Message, func(string)) (contractx.RunOutcome, error) {
		started <- struct{}{}
		<-release
		return contractx.RunOutcome{Answer: "done"}, nil
	}}
	eng, _ := New(&fakeGate{}, newFakeRegistry(slow))
	session := statex.NewSession("s1")

	first := eng.ProcessTurn(context.Background(), session, "one")
	second := eng.ProcessTurn(context.Background(), session, "two")

	<-started
	select {
	case <-started:
		t.Fatal("second turn ran before the first finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	drain(t, first)
	drain(t, second)
	if session.Len() != 4 {
		t.Fatalf("history length = %d, want 4", session.Len())
	}
}
