package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/storelane/shopassist/agent/contract"
)

// Gate screens the full conversation before any responder runs. It fails
// closed: when the classifier call or its output cannot be trusted, the
// verdict is blocked rather than letting unchecked content through.
type Gate struct {
	model        contractx.ChatModel
	instructions string
}

var _ contractx.SafetyScreener = (*Gate)(nil)

type classifierOutput struct {
	IsInappropriate bool   `json:"is_inappropriate"`
	Reasoning       string `json:"reasoning"`
}

func NewGate(model contractx.ChatModel, instructions string) (*Gate, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(instructions) == "" {
		return nil, fmt.Errorf("%w: safety instructions are required", contractx.ErrValidation)
	}
	return &Gate{model: model, instructions: instructions}, nil
}

func (g *Gate) Screen(ctx context.Context, history []contractx.Message) contractx.SafetyVerdict {
	res, err := g.model.Complete(ctx, contractx.ChatRequest{
		System:     g.instructions,
		Messages:   history,
		JSONOutput: true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("safety classifier call failed, failing closed")
		return contractx.SafetyVerdict{
			Blocked:   true,
			Rationale: fmt.Sprintf("classifier unavailable: %v", err),
		}
	}

	var out classifierOutput
	if err := json.Unmarshal([]byte(stripFences(res.Text)), &out); err != nil {
		log.Warn().Err(err).Str("raw", res.Text).Msg("safety classifier output unreadable, failing closed")
		return contractx.SafetyVerdict{
			Blocked:   true,
			Rationale: fmt.Sprintf("classifier output unreadable: %v", err),
		}
	}

	return contractx.SafetyVerdict{
		Blocked:   out.IsInappropriate,
		Rationale: strings.TrimSpace(out.Reasoning),
	}
}

// Some models wrap JSON answers in markdown fences despite the response
// format hint.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
