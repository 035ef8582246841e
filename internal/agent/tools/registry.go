// Package tools implements the 15 tool executors the agent graph's
// tool-calling loop dispatches to, plus the process-wide registry and the
// conversation_state-gated exposure table.
package tools

import (
	"context"
	"fmt"
	"strings"
)

// Executor is one tool's implementation. args always carries the LLM's
// supplied arguments plus the tenant_id/customer_id/conversation_id the
// dispatch loop injects before invocation.
type Executor func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

// Spec pairs an Executor with the JSON-schema-shaped description the LLM
// needs to decide when and how to call it.
type Spec struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
	Run         Executor
}

// Registry is the process-wide set of known tools, keyed by name.
type Registry struct {
	tools map[string]Spec
}

// NewRegistry builds a Registry from specs.
func NewRegistry(specs []Spec) *Registry {
	r := &Registry{tools: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		r.tools[s.Name] = s
	}
	return r
}

// Get looks up a tool spec by name.
func (r *Registry) Get(name string) (Spec, bool) {
	s, ok := r.tools[name]
	return s, ok
}

// SpecsFor returns the Spec for every name in names, skipping unknown names.
func (r *Registry) SpecsFor(names []string) []Spec {
	out := make([]Spec, 0, len(names))
	for _, name := range names {
		if s, ok := r.tools[name]; ok {
			out = append(out, s)
		}
	}
	return out
}

// toolsByConversationState is the exposure table: the tool set available to
// a call is determined solely by conversation_state.
var toolsByConversationState = map[string][]string{
	"greeting": {"get_customer_profile"},
	"browsing": {"search_products", "get_product_details", "check_stock", "create_order"},
	"ordering": {"add_to_order", "get_order_status", "get_customer_orders", "create_order", "cancel_order"},
	"checkout": {"confirm_order", "get_order_status", "cancel_order"},
	"payment":  {"initiate_payment", "check_payment_status"},
	"support":  {"get_customer_profile", "get_order_status", "get_customer_orders", "label_conversation", "get_available_labels"},
}

// AvailableToolNames returns the tool names exposed for conversationState,
// or nil if the state exposes none. The state is matched case-insensitively,
// so domain states such as "BROWSING" select the "browsing" row.
func AvailableToolNames(conversationState string) []string {
	return toolsByConversationState[strings.ToLower(conversationState)]
}

// Dispatch injects tenant_id, customer_id, and (if non-empty) conversation_id
// into args, looks up name in the registry, and runs it. An unknown tool
// name or an executor error both synthesize an {"error": ...} result rather
// than propagating, per the tool-calling loop's contract.
func Dispatch(ctx context.Context, registry *Registry, name string, args map[string]interface{}, tenantID, customerID, conversationID string) map[string]interface{} {
	injected := make(map[string]interface{}, len(args)+3)
	for k, v := range args {
		injected[k] = v
	}
	injected["tenant_id"] = tenantID
	injected["customer_id"] = customerID
	if conversationID != "" {
		injected["conversation_id"] = conversationID
	}

	spec, ok := registry.Get(name)
	if !ok {
		return map[string]interface{}{"error": fmt.Sprintf("Tool %s not available", name)}
	}

	result, err := spec.Run(ctx, injected)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}
	return result
}
