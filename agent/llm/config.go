package llm

import (
	"fmt"
	"strings"

	contractx "github.com/storelane/shopassist/agent/contract"
)

// AgentKind selects which model settings a component runs with. The safety
// gate and the router usually want a cheaper, colder model than the
// responders that write customer-facing prose.
type AgentKind string

const (
	AgentKindSafety    AgentKind = "safety"
	AgentKindRouter    AgentKind = "router"
	AgentKindResponder AgentKind = "responder"
)

type Config struct {
	Model              string  `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int     `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32 `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`

	SafetyModel          string  `envconfig:"SAFETY_MODEL" split_words:"true"`
	RouterModel          string  `envconfig:"ROUTER_MODEL" split_words:"true"`
	ResponderModel       string  `envconfig:"RESPONDER_MODEL" split_words:"true"`
	SafetyTemperature    float32 `envconfig:"SAFETY_TEMPERATURE" split_words:"true" default:"-1"`
	RouterTemperature    float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"-1"`
	ResponderTemperature float32 `envconfig:"RESPONDER_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// Settings are the per-call model parameters resolved for one agent kind.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

func (c Config) SettingsFor(kind AgentKind) Settings {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch kind {
	case AgentKindSafety:
		if v := strings.TrimSpace(c.SafetyModel); v != "" {
			modelName = v
		}
		if c.SafetyTemperature >= 0 {
			temp = c.SafetyTemperature
		}
	case AgentKindRouter:
		if v := strings.TrimSpace(c.RouterModel); v != "" {
			modelName = v
		}
		if c.RouterTemperature >= 0 {
			temp = c.RouterTemperature
		}
	case AgentKindResponder:
		if v := strings.TrimSpace(c.ResponderModel); v != "" {
			modelName = v
		}
		if c.ResponderTemperature >= 0 {
			temp = c.ResponderTemperature
		}
	}

	return Settings{
		Model:       modelName,
		MaxTokens:   c.MaxCompletionToken,
		Temperature: temp,
	}
}
