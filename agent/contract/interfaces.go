package contract

import "context"

// ChatModel is the boundary to the underlying language model. Streamed
// deltas are delivered through onDelta in arrival order; the returned result
// always carries the reassembled text.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResult, error)
	CompleteStream(ctx context.Context, req ChatRequest, onDelta func(delta string)) (ChatResult, error)
}

// SafetyScreener classifies the full conversation before any responder runs.
// Implementations must fail closed: a classifier failure yields a blocked
// verdict, never an allow-through.
type SafetyScreener interface {
	Screen(ctx context.Context, history []Message) SafetyVerdict
}

// LookupGateway executes lookup capability requests on behalf of a responder.
type LookupGateway interface {
	Execute(ctx context.Context, responder ResponderName, reqs []ToolRequest) []LookupResult
}

// Responder owns one turn segment: it may call its lookup capabilities and
// either produce the final answer or delegate to one of its targets. Deltas
// of the final answer are streamed through onDelta; text from non-final
// rounds is never delivered.
type Responder interface {
	Name() ResponderName
	Run(ctx context.Context, history []Message, onDelta func(delta string)) (RunOutcome, error)
}

// Registry resolves responders by name. The delegation graph behind it is
// validated at construction time: escalation is terminal and reachable from
// every other responder.
type Registry interface {
	Entry() Responder
	Responder(name ResponderName) (Responder, bool)
	Size() int
}
