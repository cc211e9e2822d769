package contract

type ResponderName string

const (
	ResponderRouter        ResponderName = "router"
	ResponderProducts      ResponderName = "products"
	ResponderOrderTracking ResponderName = "order_tracking"
	ResponderReturns       ResponderName = "returns"
	ResponderInquiry       ResponderName = "inquiry"
	ResponderEscalation    ResponderName = "escalation"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one conversation entry. History holds only plain user and
// assistant messages; ToolCalls/ToolCallID appear only on the run-scoped
// messages exchanged with the model within a single turn.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// SafetyVerdict is produced fresh per turn and never persisted. Rationale is
// diagnostic only and must not reach the end user.
type SafetyVerdict struct {
	Blocked   bool   `json:"blocked"`
	Rationale string `json:"rationale"`
}

type ToolRequest struct {
	ID   string         `json:"id"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// LookupResult is the outcome of one capability invocation. Exactly one of
// the success fields (Payload, plus optional typed Data) or Error is set.
// Payload is the rendered text handed back to the model.
type LookupResult struct {
	Tool    string `json:"tool"`
	Payload string `json:"payload,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns what the owning responder feeds back to the model: the
// payload on success, the error description otherwise. Capability failures
// stay descriptive text so the responder can phrase unavailability instead
// of surfacing an internal error.
func (r LookupResult) Text() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Payload
}

// ChatRequest is one call to the underlying chat model.
type ChatRequest struct {
	System     string
	Messages   []Message
	Tools      []ToolDef
	JSONOutput bool
}

type ChatResult struct {
	Text      string
	ToolCalls []ToolCall
}

type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolDef describes a callable tool bound to a model call. Parameters is a
// JSON schema object; nil means the tool takes no arguments.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// RunOutcome is what one responder run produces: either a final answer or a
// delegation to another responder, never both.
type RunOutcome struct {
	Answer     string
	DelegateTo ResponderName
}

func (o RunOutcome) Delegated() bool {
	return o.DelegateTo != ""
}
