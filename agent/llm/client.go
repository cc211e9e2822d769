package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	oshared "github.com/openai/openai-go/shared"
	contractx "github.com/storelane/shopassist/agent/contract"
)

// Client adapts the OpenAI SDK to the contract.ChatModel boundary. One
// Client is bound to one model/temperature profile; components holding
// different profiles hold different Clients over the same SDK client.
type Client struct {
	api      *openaisdk.Client
	settings Settings
}

var _ contractx.ChatModel = (*Client)(nil)

func NewClient(api *openaisdk.Client, settings Settings) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: sdk client is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(settings.Model) == "" {
		return nil, fmt.Errorf("%w: model name is required", contractx.ErrValidation)
	}
	return &Client{api: api, settings: settings}, nil
}

func (c *Client) Complete(ctx context.Context, req contractx.ChatRequest) (contractx.ChatResult, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return contractx.ChatResult{}, err
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.ChatResult{}, fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.ChatResult{}, fmt.Errorf("%w: completion has no choices", contractx.ErrSchemaViolation)
	}

	return resultFromMessage(resp.Choices[0].Message)
}

func (c *Client) CompleteStream(
	ctx context.Context,
	req contractx.ChatRequest,
	onDelta func(delta string),
) (contractx.ChatResult, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return contractx.ChatResult{}, err
	}

	stream := c.api.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	acc := openaisdk.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if onDelta == nil || len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			onDelta(delta)
		}
	}
	if err := stream.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return contractx.ChatResult{}, fmt.Errorf("%w: %v", contractx.ErrStreamInterrupted, err)
		}
		return contractx.ChatResult{}, fmt.Errorf("%w: streaming completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(acc.Choices) == 0 {
		return contractx.ChatResult{}, fmt.Errorf("%w: streamed completion has no choices", contractx.ErrSchemaViolation)
	}

	return resultFromMessage(acc.Choices[0].Message)
}

func (c *Client) buildParams(req contractx.ChatRequest) (openaisdk.ChatCompletionNewParams, error) {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if sys := strings.TrimSpace(req.System); sys != "" {
		messages = append(messages, openaisdk.SystemMessage(sys))
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case contractx.RoleUser:
			messages = append(messages, openaisdk.UserMessage(msg.Content))
		case contractx.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				messages = append(messages, openaisdk.AssistantMessage(msg.Content))
				continue
			}
			assistant := openaisdk.ChatCompletionAssistantMessageParam{
				ToolCalls: toSDKToolCalls(msg.ToolCalls),
			}
			if content := strings.TrimSpace(msg.Content); content != "" {
				assistant.Content = openaisdk.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openaisdk.String(content),
				}
			}
			messages = append(messages, openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case contractx.RoleTool:
			if strings.TrimSpace(msg.ToolCallID) == "" {
				return openaisdk.ChatCompletionNewParams{}, fmt.Errorf("%w: tool message without tool_call_id", contractx.ErrValidation)
			}
			content := msg.Content
			if content == "" {
				content = "{}"
			}
			messages = append(messages, openaisdk.ToolMessage(content, msg.ToolCallID))
		default:
			return openaisdk.ChatCompletionNewParams{}, fmt.Errorf("%w: unsupported role %q", contractx.ErrValidation, msg.Role)
		}
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    oshared.ChatModel(c.settings.Model),
		Messages: messages,
	}
	if c.settings.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(c.settings.MaxTokens))
	}
	if c.settings.Temperature >= 0 {
		params.Temperature = openaisdk.Float(float64(c.settings.Temperature))
	}
	if req.JSONOutput {
		obj := oshared.NewResponseFormatJSONObjectParam()
		params.ResponseFormat = openaisdk.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &obj}
	}
	if len(req.Tools) > 0 {
		params.Tools = toSDKTools(req.Tools)
	}

	return params, nil
}

func toSDKTools(defs []contractx.ToolDef) []openaisdk.ChatCompletionToolParam {
	out := make([]openaisdk.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			continue
		}
		fn := oshared.FunctionDefinitionParam{
			Name:        name,
			Description: openaisdk.String(strings.TrimSpace(def.Description)),
		}
		if len(def.Parameters) > 0 {
			fn.Parameters = oshared.FunctionParameters(def.Parameters)
		}
		out = append(out, openaisdk.ChatCompletionToolParam{Function: fn})
	}
	return out
}

func toSDKToolCalls(calls []contractx.ToolCall) []openaisdk.ChatCompletionMessageToolCallParam {
	out := make([]openaisdk.ChatCompletionMessageToolCallParam, 0, len(calls))
	for _, call := range calls {
		args := "{}"
		if len(call.Args) > 0 {
			if raw, err := json.Marshal(call.Args); err == nil {
				args = string(raw)
			}
		}
		out = append(out, openaisdk.ChatCompletionMessageToolCallParam{
			ID: call.ID,
			Function: openaisdk.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Name,
				Arguments: args,
			},
		})
	}
	return out
}

func resultFromMessage(msg openaisdk.ChatCompletionMessage) (contractx.ChatResult, error) {
	result := contractx.ChatResult{Text: msg.Content}

	for _, tc := range msg.ToolCalls {
		name := strings.TrimSpace(tc.Function.Name)
		if name == "" {
			return contractx.ChatResult{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return contractx.ChatResult{}, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}
		result.ToolCalls = append(result.ToolCalls, contractx.ToolCall{
			ID:   tc.ID,
			Name: name,
			Args: args,
		})
	}

	return result, nil
}
