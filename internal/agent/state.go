// Package agent implements the fixed moderation -> router -> {main |
// followup | fallback} node graph that turns one buffered customer message
// into one assistant response, wrapped in the resilience sandwich.
package agent

import "github.com/tmc/langchaingo/llms"

// Message is one turn in the conversation passed to/from the LLM.
type Message struct {
	Role      string
	Content   string
	ToolCalls []llms.ToolCall
	ToolID    string
}

// ToolResult is the outcome of one executed tool call, tagged with the
// originating tool_call_id so it can be threaded back as a tool message.
type ToolResult struct {
	ToolCallID string
	Name       string
	Result     map[string]interface{}
	Error      string
}

// ModerationVerdict is the structured outcome of the moderation node.
type ModerationVerdict struct {
	IsSafe     bool
	Violations []string
	Confidence float64
	Reason     string
}

// State is the ephemeral per-invocation tuple threaded through the graph.
// It lives only for the duration of one graph execution.
type State struct {
	Messages           []Message
	TenantID           string
	CustomerID         string
	ConversationID     string
	CustomerContext    map[string]interface{}
	ConversationState  string
	Intent             string
	AvailableTools     []string
	ToolResults        []ToolResult
	FinalResponse      string
	NeedsClarification bool
	Error              string

	Moderation    ModerationVerdict
	AgentType     string
	TokensUsed    int
	NewConvState  string
	ToolsUsed     []string
}

// LastUserMessage returns the content of the most recent "user" message, or
// "" if none exists.
func (s *State) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == "user" {
			return s.Messages[i].Content
		}
	}
	return ""
}
