package agent

import (
	"fmt"
	"strings"
)

// buildEnhancedContext renders the {conversation_id, conversation_state,
// customer.name?, customer.total_orders?, is_vip?, available_tools} context
// string appended to every tool-bound node's system prompt.
func buildEnhancedContext(state *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "conversation_id=%s conversation_state=%s", state.ConversationID, state.ConversationState)

	if name, ok := state.CustomerContext["customer_name"].(string); ok && name != "" {
		fmt.Fprintf(&b, " customer_name=%s", name)
	}
	if total, ok := state.CustomerContext["total_orders"]; ok {
		fmt.Fprintf(&b, " total_orders=%v", total)
	}
	if vip, ok := state.CustomerContext["is_vip"].(bool); ok {
		fmt.Fprintf(&b, " is_vip=%v", vip)
	}
	if len(state.AvailableTools) > 0 {
		fmt.Fprintf(&b, " available_tools=%s", strings.Join(state.AvailableTools, ","))
	}
	return b.String()
}

// systemPrompt joins a node's component prompt with the enhanced context string.
func systemPrompt(componentPrompt string, state *State) string {
	return componentPrompt + "\n\n" + buildEnhancedContext(state)
}

const fallbackApology = "Sorry, I'm having trouble responding right now. Please try again in a moment, or let us know if you'd like to speak with a human agent."

const fallbackPrompt = "You are a brief, apologetic customer support assistant. The primary assistant is unavailable; respond helpfully and concisely without using any tools."
