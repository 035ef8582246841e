// Package llm adapts langchaingo's provider-agnostic llms.Model interface
// to the shapes the agent graph nodes need: a system-prompt-plus-history
// completion call, optionally tool-bound, returning content, tool calls, and
// token usage in one shot.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// Tool describes one callable tool exposed to the model for a single call.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Turn is one role/content pair in the conversation sent to the model.
type Turn struct {
	Role    string
	Content string
}

// Response is the normalized result of one completion call.
type Response struct {
	Content      string
	ToolCalls    []llms.ToolCall
	TokensUsed   int
	StopReason   string
}

// Client wraps a langchaingo llms.Model with the completion shape the agent
// nodes consume. The concrete model (OpenAI, Anthropic, ...) is supplied by
// the caller per tenant LLMConfig, keeping this package provider-agnostic.
type Client struct {
	model llms.Model
}

// New builds a Client around an already-configured langchaingo model.
func New(model llms.Model) *Client {
	return &Client{model: model}
}

// Complete sends systemPrompt followed by history to the model, optionally
// bound to tools, and returns the normalized response.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []Turn, tools []Tool, temperature float64, maxTokens int) (*Response, error) {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	for _, turn := range history {
		messages = append(messages, llms.TextParts(roleToMessageType(turn.Role), turn.Content))
	}

	opts := []llms.CallOption{
		llms.WithTemperature(temperature),
	}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(toLangchainTools(tools)))
	}

	resp, err := c.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("llm generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	choice := resp.Choices[0]
	tokens := 0
	if info := choice.GenerationInfo; info != nil {
		if v, ok := info["CompletionTokens"].(int); ok {
			tokens += v
		}
		if v, ok := info["PromptTokens"].(int); ok {
			tokens += v
		}
	}

	return &Response{
		Content:    choice.Content,
		ToolCalls:  choice.ToolCalls,
		TokensUsed: tokens,
		StopReason: choice.StopReason,
	}, nil
}

func roleToMessageType(role string) llms.ChatMessageType {
	switch role {
	case "assistant":
		return llms.ChatMessageTypeAI
	case "tool":
		return llms.ChatMessageTypeTool
	case "system":
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeHuman
	}
}

func toLangchainTools(tools []Tool) []llms.Tool {
	out := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
