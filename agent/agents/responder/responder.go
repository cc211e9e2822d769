package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/storelane/shopassist/agent/contract"
)

// maxToolRounds bounds one responder run. Each round is one model call that
// either requests lookups, hands off, or produces the final answer.
const maxToolRounds = 6

type responderImpl struct {
	desc     Descriptor
	model    contractx.ChatModel
	gateway  contractx.LookupGateway
	tools    []contractx.ToolDef
	handoffs map[string]contractx.ResponderName
	lookups  map[string]struct{}
}

var _ contractx.Responder = (*responderImpl)(nil)

func newResponder(
	desc Descriptor,
	model contractx.ChatModel,
	gateway contractx.LookupGateway,
) (*responderImpl, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: chat model is required for responder=%s", contractx.ErrValidation, desc.Name)
	}
	if len(desc.Tools) > 0 && gateway == nil {
		return nil, fmt.Errorf("%w: lookup gateway is required for responder=%s", contractx.ErrValidation, desc.Name)
	}

	lookups := make(map[string]struct{}, len(desc.Tools))
	tools := make([]contractx.ToolDef, 0, len(desc.Tools)+len(desc.Targets))
	for _, def := range desc.Tools {
		if strings.TrimSpace(def.Name) == "" {
			continue
		}
		lookups[def.Name] = struct{}{}
		tools = append(tools, def)
	}

	handoffs := make(map[string]contractx.ResponderName, len(desc.Targets))
	for _, target := range desc.Targets {
		name := handoffToolName(target)
		handoffs[name] = target
		tools = append(tools, contractx.ToolDef{
			Name:        name,
			Description: handoffDescription(target),
		})
	}

	for _, name := range desc.MandatoryTools {
		if _, ok := lookups[name]; !ok {
			return nil, fmt.Errorf("%w: mandatory tool=%s is not owned by responder=%s", contractx.ErrValidation, name, desc.Name)
		}
	}

	return &responderImpl{
		desc:     desc,
		model:    model,
		gateway:  gateway,
		tools:    tools,
		handoffs: handoffs,
		lookups:  lookups,
	}, nil
}

func (r *responderImpl) Name() contractx.ResponderName {
	return r.desc.Name
}

// Run drives the tool loop for one turn segment. Text deltas are buffered
// per round and only flushed for the round that turns out to be final, so
// handoff preambles never reach the caller.
func (r *responderImpl) Run(
	ctx context.Context,
	history []contractx.Message,
	onDelta func(delta string),
) (contractx.RunOutcome, error) {
	msgs := append([]contractx.Message(nil), history...)
	invoked := make(map[string]struct{})
	mandatoryEnforced := false

	for round := 0; round < maxToolRounds; round++ {
		var buffered []string
		res, err := r.model.CompleteStream(ctx, contractx.ChatRequest{
			System:   r.desc.Instructions,
			Messages: msgs,
			Tools:    r.tools,
		}, func(delta string) {
			buffered = append(buffered, delta)
		})
		if err != nil {
			return contractx.RunOutcome{}, err
		}

		if target, ok := r.pickHandoff(res.ToolCalls); ok {
			log.Debug().
				Str("responder", string(r.desc.Name)).
				Str("target", string(target)).
				Msg("responder delegating")
			return contractx.RunOutcome{DelegateTo: target}, nil
		}

		if len(res.ToolCalls) == 0 {
			answer := strings.TrimSpace(res.Text)
			if answer == "" {
				return contractx.RunOutcome{}, fmt.Errorf("%w: responder=%s produced an empty answer", contractx.ErrSchemaViolation, r.desc.Name)
			}

			// Post-condition: a domain answer without the mandatory lookups
			// is not trusted. Force the lookups once and ask again.
			if missing := r.missingMandatory(invoked); len(missing) > 0 && !mandatoryEnforced {
				mandatoryEnforced = true
				log.Warn().
					Str("responder", string(r.desc.Name)).
					Strs("missing", missing).
					Msg("answer produced before mandatory lookups, forcing them")
				msgs = append(msgs, r.forceMandatory(ctx, missing, invoked))
				continue
			}

			for _, delta := range buffered {
				if onDelta != nil {
					onDelta(delta)
				}
			}
			return contractx.RunOutcome{Answer: answer}, nil
		}

		next, err := r.executeLookups(ctx, msgs, res, invoked)
		if err != nil {
			return contractx.RunOutcome{}, err
		}
		msgs = next
	}

	return contractx.RunOutcome{}, fmt.Errorf("%w: responder=%s exceeded %d rounds", contractx.ErrRoundLimit, r.desc.Name, maxToolRounds)
}

// pickHandoff returns the first requested handoff target. A handoff mixed
// with lookup calls wins: the receiving responder re-plans its own lookups.
func (r *responderImpl) pickHandoff(calls []contractx.ToolCall) (contractx.ResponderName, bool) {
	for _, call := range calls {
		if target, ok := r.handoffs[call.Name]; ok {
			return target, true
		}
	}
	return "", false
}

func (r *responderImpl) executeLookups(
	ctx context.Context,
	msgs []contractx.Message,
	res contractx.ChatResult,
	invoked map[string]struct{},
) ([]contractx.Message, error) {
	reqs := make([]contractx.ToolRequest, 0, len(res.ToolCalls))
	for _, call := range res.ToolCalls {
		if _, ok := r.lookups[call.Name]; !ok {
			return nil, fmt.Errorf("%w: tool=%s is not allowed for responder=%s", contractx.ErrSchemaViolation, call.Name, r.desc.Name)
		}
		reqs = append(reqs, contractx.ToolRequest{ID: call.ID, Tool: call.Name, Args: call.Args})
	}

	results := r.gateway.Execute(ctx, r.desc.Name, reqs)
	if len(results) != len(reqs) {
		return nil, fmt.Errorf("%w: gateway returned %d results for %d requests", contractx.ErrValidation, len(results), len(reqs))
	}

	msgs = append(msgs, contractx.Message{
		Role:      contractx.RoleAssistant,
		Content:   res.Text,
		ToolCalls: res.ToolCalls,
	})
	for i, call := range res.ToolCalls {
		invoked[call.Name] = struct{}{}
		msgs = append(msgs, contractx.Message{
			Role:       contractx.RoleTool,
			ToolCallID: call.ID,
			Content:    results[i].Text(),
		})
	}
	return msgs, nil
}

func (r *responderImpl) missingMandatory(invoked map[string]struct{}) []string {
	var missing []string
	for _, name := range r.desc.MandatoryTools {
		if _, ok := invoked[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// forceMandatory runs the skipped mandatory lookups directly and folds
// their output into the conversation so the next round answers from data.
func (r *responderImpl) forceMandatory(
	ctx context.Context,
	missing []string,
	invoked map[string]struct{},
) contractx.Message {
	reqs := make([]contractx.ToolRequest, 0, len(missing))
	for _, name := range missing {
		reqs = append(reqs, contractx.ToolRequest{ID: "forced_" + name, Tool: name})
	}

	results := r.gateway.Execute(ctx, r.desc.Name, reqs)

	var b strings.Builder
	b.WriteString("Before answering, use this fresh data from your required sources:\n")
	for i, res := range results {
		invoked[reqs[i].Tool] = struct{}{}
		fmt.Fprintf(&b, "\n[%s]\n%s\n", res.Tool, res.Text())
	}
	b.WriteString("\nAnswer the customer strictly from this data. If it reports an error, say the information is currently unavailable instead of guessing.")

	return contractx.Message{Role: contractx.RoleUser, Content: b.String()}
}
