package agent

import (
	"context"
	"fmt"

	"github.com/tokowa/commerce-agent/internal/agent/llm"
	"github.com/tokowa/commerce-agent/internal/agent/tools"
	"github.com/tokowa/commerce-agent/internal/resilience"
)

// runMain is the default tool-bound path.
func (g *Graph) runMain(ctx context.Context, state *State, componentPrompt string, settings LLMSettings) (*State, error) {
	state.AgentType = string(NodeMain)
	return g.runToolBoundNode(ctx, state, "main", componentPrompt, settings)
}

// runFollowup additionally injects previous_topic from context when present.
func (g *Graph) runFollowup(ctx context.Context, state *State, componentPrompt string, settings LLMSettings) (*State, error) {
	state.AgentType = string(NodeFollowup)
	if topic, ok := state.CustomerContext["previous_topic"].(string); ok && topic != "" {
		componentPrompt = componentPrompt + "\n\nPrevious topic: " + topic
	}
	return g.runToolBoundNode(ctx, state, "followup", componentPrompt, settings)
}

// runFallback uses a simpler, non-tool-bound prompt. If even this fails, it
// returns the hard-coded apology so the pipeline always produces output.
func (g *Graph) runFallback(ctx context.Context, state *State, settings LLMSettings) (*State, error) {
	state.AgentType = string(NodeFallback)

	cfg := NodeConfig{LLMSettings: settings, Component: "fallback"}
	resp, err := g.callLLM(ctx, "fallback", cfg, fallbackPrompt, historyFromState(state), nil)
	if err != nil {
		state.FinalResponse = fallbackApology
		state.TokensUsed = 0
		return state, nil
	}

	validation := resilience.Validate(resp.Content, resilience.DefaultMinLength)
	if !validation.IsValid {
		state.FinalResponse = fallbackApology
		state.TokensUsed = 0
		return state, nil
	}

	state.FinalResponse = resp.Content
	state.TokensUsed = resp.TokensUsed
	state.Messages = append(state.Messages, Message{Role: "assistant", Content: resp.Content})
	return state, nil
}

// runToolBoundNode implements §4.4.4's tool-calling loop shared by main and followup.
func (g *Graph) runToolBoundNode(ctx context.Context, state *State, component, componentPrompt string, settings LLMSettings) (*State, error) {
	cfg := NodeConfig{LLMSettings: settings, Component: component}
	prompt := systemPrompt(componentPrompt, state)

	state.AvailableTools = tools.AvailableToolNames(state.ConversationState)
	toolSpecs := toLLMTools(g.toolRegistry.SpecsFor(state.AvailableTools))

	for round := 0; round < g.toolRoundCap; round++ {
		resp, err := g.callLLM(ctx, component, cfg, prompt, historyFromState(state), toolSpecs)
		if err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			validation := resilience.Validate(resp.Content, resilience.DefaultMinLength)
			if !validation.IsValid {
				if resilience.IsRetryableFailure(validation) {
					return nil, fmt.Errorf("%w: %s response %s", resilience.ErrTransientInfra, component, validation.Quality)
				}
				return nil, fmt.Errorf("%s response rejected: %s", component, validation.Quality)
			}
			state.FinalResponse = resp.Content
			state.TokensUsed += resp.TokensUsed
			state.Messages = append(state.Messages, Message{Role: "assistant", Content: resp.Content})
			return state, nil
		}

		state.TokensUsed += resp.TokensUsed
		state.Messages = append(state.Messages, Message{Role: "assistant", Content: resp.Content, ToolCalls: resp.ToolCalls})

		for _, call := range resp.ToolCalls {
			result := tools.Dispatch(ctx, g.toolRegistry, call.FunctionCall.Name, decodeToolArgs(call.FunctionCall.Arguments), state.TenantID, state.CustomerID, state.ConversationID)
			state.ToolResults = append(state.ToolResults, ToolResult{ToolCallID: call.ID, Name: call.FunctionCall.Name, Result: result})
			state.ToolsUsed = append(state.ToolsUsed, call.FunctionCall.Name)
			state.Messages = append(state.Messages, Message{Role: "tool", Content: encodeToolResult(result), ToolID: call.ID})
		}
	}

	// Tool-round cap reached: use the last AI content produced, if any.
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == "assistant" && state.Messages[i].Content != "" {
			state.FinalResponse = state.Messages[i].Content
			return state, nil
		}
	}
	return nil, fmt.Errorf("%s tool loop exhausted its round cap with no AI content", component)
}

func historyFromState(state *State) []llm.Turn {
	turns := make([]llm.Turn, 0, len(state.Messages))
	for _, m := range state.Messages {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

func toLLMTools(specs []tools.Spec) []llm.Tool {
	out := make([]llm.Tool, 0, len(specs))
	for _, s := range specs {
		out = append(out, llm.Tool{Name: s.Name, Description: s.Description, Parameters: s.Parameters})
	}
	return out
}
