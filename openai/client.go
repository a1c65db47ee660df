package openai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fwojciec/streamable"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

// Interface compliance check.
var _ streamable.Provider = (*Client)(nil)

// Client implements [streamable.Provider] for the OpenAI API.
type Client struct {
	client oai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gpt-5.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new OpenAI [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		client: oai.NewClient(option.WithAPIKey(apiKey)),
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming chat completion request and returns a
// [streamable.CompletionStream] that emits semantic events.
func (c *Client) Stream(ctx context.Context, req streamable.Request) (streamable.CompletionStream, error) {
	params := BuildParams(req)
	if params.Model == "" {
		params.Model = c.model
	}
	sse := c.client.Chat.Completions.NewStreaming(ctx, params)
	return newStream(sse, req.FunctionMode), nil
}

// BuildParams converts a streamable Request to chat completion params.
// Exported for testing.
func BuildParams(req streamable.Request) oai.ChatCompletionNewParams {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := oai.ChatCompletionNewParams{
		Model:               req.Model,
		Messages:            ConvertMessages(req.SystemPrompt, req.Messages),
		Tools:               ConvertTools(req.Tools),
		MaxCompletionTokens: param.NewOpt(int64(maxTokens)),
	}
	if req.Temperature != nil {
		params.Temperature = param.NewOpt(*req.Temperature)
	}
	return params
}

// ConvertMessages converts streamable Messages to chat completion
// message params. A non-empty system prompt becomes the leading system
// message. Exported for testing.
func ConvertMessages(systemPrompt string, msgs []streamable.Message) []oai.ChatCompletionMessageParamUnion {
	var result []oai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		result = append(result, oai.SystemMessage(systemPrompt))
	}
	for _, msg := range msgs {
		switch m := msg.(type) {
		case streamable.UserMessage:
			result = append(result, oai.UserMessage(blockText(m.Content)))
		case streamable.AssistantMessage:
			result = append(result, convertAssistant(m))
		case streamable.FunctionResultMessage:
			result = append(result, oai.ToolMessage(m.Content, m.CallID))
		}
	}
	return result
}

func convertAssistant(m streamable.AssistantMessage) oai.ChatCompletionMessageParamUnion {
	assistant := &oai.ChatCompletionAssistantMessageParam{}
	if text := blockText(m.Content); text != "" {
		assistant.Content = oai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: param.NewOpt(text),
		}
	}
	for _, b := range m.Content {
		call, ok := b.(streamable.FunctionCallBlock)
		if !ok {
			continue
		}
		assistant.ToolCalls = append(assistant.ToolCalls, oai.ChatCompletionMessageToolCallParam{
			ID: call.Call.ID,
			Function: oai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Call.Name,
				Arguments: string(call.Call.Arguments),
			},
		})
	}
	return oai.ChatCompletionMessageParamUnion{OfAssistant: assistant}
}

func blockText(blocks []streamable.ContentBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		if t, ok := b.(streamable.TextBlock); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}

// ConvertTools converts streamable tool descriptors to chat completion
// tool params. Exported for testing.
func ConvertTools(tools []streamable.ToolDef) []oai.ChatCompletionToolParam {
	if len(tools) == 0 {
		return nil
	}
	result := make([]oai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		fn := oai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: param.NewOpt(t.Description),
		}
		if len(t.Parameters) > 0 {
			// Parameters is json.RawMessage — always valid JSON from domain types.
			var schema oai.FunctionParameters
			_ = json.Unmarshal(t.Parameters, &schema)
			fn.Parameters = schema
		}
		result[i] = oai.ChatCompletionToolParam{Function: fn}
	}
	return result
}
