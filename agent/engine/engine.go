package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/storelane/shopassist/agent/contract"
	statex "github.com/storelane/shopassist/agent/state"
)

// Refusal is the only text a blocked turn ever surfaces. The classifier's
// rationale stays in the logs.
const Refusal = "⚠️ Your message contains unsafe content and was blocked."

// Engine drives one conversation turn end to end: screen, route, delegate,
// stream the answer, and commit it to session history.
type Engine struct {
	gate     contractx.SafetyScreener
	registry contractx.Registry
}

func New(gate contractx.SafetyScreener, registry contractx.Registry) (*Engine, error) {
	if gate == nil {
		return nil, fmt.Errorf("%w: safety screener is required", contractx.ErrValidation)
	}
	if registry == nil || registry.Entry() == nil {
		return nil, fmt.Errorf("%w: responder registry with an entry responder is required", contractx.ErrValidation)
	}
	return &Engine{gate: gate, registry: registry}, nil
}

// ProcessTurn starts one turn and returns its stream immediately. Turns on
// the same session are serialized; the caller reads fragments as the answer
// is produced and checks Err/Blocked once the stream closes.
func (e *Engine) ProcessTurn(ctx context.Context, session *statex.Session, text string) *TurnStream {
	stream := newTurnStream()
	go e.run(ctx, session, text, stream)
	return stream
}

func (e *Engine) run(ctx context.Context, session *statex.Session, text string, stream *TurnStream) {
	defer stream.close()

	text = strings.TrimSpace(text)
	if text == "" {
		stream.fail(fmt.Errorf("%w: empty message", contractx.ErrValidation))
		return
	}

	session.BeginTurn()
	defer session.EndTurn()

	if err := session.Append(contractx.Message{Role: contractx.RoleUser, Content: text}); err != nil {
		stream.fail(err)
		return
	}
	history := session.History()

	verdict := e.gate.Screen(ctx, history)
	if verdict.Blocked {
		log.Warn().
			Str("session", session.ID()).
			Str("rationale", verdict.Rationale).
			Msg("turn blocked by safety gate")
		stream.emit(ctx, Refusal)
		stream.finishBlocked(Refusal)
		return
	}

	e.dispatch(ctx, session, history, stream)
}

// dispatch walks the delegation chain starting at the entry responder. The
// hop bound equals the registry size: a valid chain never revisits a
// responder, so anything longer is a loop.
func (e *Engine) dispatch(
	ctx context.Context,
	session *statex.Session,
	history []contractx.Message,
	stream *TurnStream,
) {
	current := e.registry.Entry()
	maxHops := e.registry.Size()

	for hop := 0; hop < maxHops; hop++ {
		out, err := current.Run(ctx, history, func(delta string) {
			stream.emit(ctx, delta)
		})
		if err != nil {
			log.Error().
				Err(err).
				Str("session", session.ID()).
				Str("responder", string(current.Name())).
				Msg("responder run failed")
			stream.fail(err)
			return
		}

		if out.Delegated() {
			next, ok := e.registry.Responder(out.DelegateTo)
			if !ok {
				stream.fail(fmt.Errorf("%w: responder=%s delegated to %s", contractx.ErrUnknownResponder, current.Name(), out.DelegateTo))
				return
			}
			log.Info().
				Str("session", session.ID()).
				Str("from", string(current.Name())).
				Str("to", string(out.DelegateTo)).
				Msg("turn delegated")
			current = next
			continue
		}

		// A turn cancelled mid-answer commits nothing: partial answers
		// never enter history.
		if ctx.Err() != nil {
			stream.fail(fmt.Errorf("%w: %v", contractx.ErrStreamInterrupted, ctx.Err()))
			return
		}
		if err := session.Append(contractx.Message{Role: contractx.RoleAssistant, Content: out.Answer}); err != nil {
			stream.fail(err)
			return
		}
		stream.finish(out.Answer)
		return
	}

	stream.fail(fmt.Errorf("%w: chain exceeded %d hops", contractx.ErrHopLimitExceeded, maxHops))
}
