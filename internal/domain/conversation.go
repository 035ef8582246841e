package domain

import (
	"fmt"
	"time"
)

// ConversationState enumerates the stages of a customer conversation.
type ConversationState string

const (
	ConversationGreeting  ConversationState = "GREETING"
	ConversationBrowsing  ConversationState = "BROWSING"
	ConversationOrdering  ConversationState = "ORDERING"
	ConversationCheckout  ConversationState = "CHECKOUT"
	ConversationPayment   ConversationState = "PAYMENT"
	ConversationSupport   ConversationState = "SUPPORT"
	ConversationCompleted ConversationState = "COMPLETED"
)

// conversationTransitions follows the original conversation_state.can_transition_to
// edges: any pre-completion state may drop into SUPPORT and back out to BROWSING,
// the commerce funnel moves forward GREETING->BROWSING->ORDERING->CHECKOUT->PAYMENT,
// PAYMENT resolves to COMPLETED, and COMPLETED is terminal.
var conversationTransitions = map[ConversationState]map[ConversationState]bool{
	ConversationGreeting: {
		ConversationBrowsing: true,
		ConversationSupport:  true,
	},
	ConversationBrowsing: {
		ConversationOrdering: true,
		ConversationSupport:  true,
	},
	ConversationOrdering: {
		ConversationBrowsing: true,
		ConversationCheckout: true,
		ConversationSupport:  true,
	},
	ConversationCheckout: {
		ConversationOrdering: true,
		ConversationPayment:  true,
		ConversationSupport:  true,
	},
	ConversationPayment: {
		ConversationCheckout:  true,
		ConversationCompleted: true,
		ConversationSupport:   true,
	},
	ConversationSupport: {
		ConversationBrowsing:  true,
		ConversationOrdering:  true,
		ConversationCompleted: true,
	},
	ConversationCompleted: {},
}

// CanTransitionTo reports whether a conversation in state from may move to state to.
func CanTransitionTo(from, to ConversationState) bool {
	edges, ok := conversationTransitions[from]
	if !ok {
		return false
	}
	return edges[to]
}

// Conversation tracks where a customer sits in the commerce funnel.
type Conversation struct {
	ID         string            `json:"id" db:"id"`
	TenantID   string            `json:"tenant_id" db:"tenant_id"`
	CustomerID string            `json:"customer_id" db:"customer_id"`
	State      ConversationState `json:"state" db:"state"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

// NewConversation starts a conversation in the GREETING state.
func NewConversation(id, tenantID, customerID string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:         id,
		TenantID:   tenantID,
		CustomerID: customerID,
		State:      ConversationGreeting,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TransitionTo moves the conversation to a new state, rejecting non-adjacent moves without mutation.
func (c *Conversation) TransitionTo(to ConversationState) error {
	if !CanTransitionTo(c.State, to) {
		return fmt.Errorf("invalid conversation transition: %s -> %s", c.State, to)
	}
	c.State = to
	c.UpdatedAt = time.Now()
	return nil
}

// IsCompleted reports whether the conversation has reached its terminal state.
func (c *Conversation) IsCompleted() bool {
	return c.State == ConversationCompleted
}
