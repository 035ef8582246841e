package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates the lifecycle states of a support Ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

var ticketTransitions = map[TicketStatus]map[TicketStatus]bool{
	TicketOpen: {
		TicketInProgress: true,
		TicketClosed:     true,
	},
	TicketInProgress: {
		TicketResolved: true,
		TicketClosed:   true,
	},
	TicketResolved: {
		TicketClosed:     true,
		TicketInProgress: true,
	},
	TicketClosed: {},
}

// IsTicketTransitionValid reports whether from -> to is an adjacent, allowed Ticket transition.
func IsTicketTransitionValid(from, to TicketStatus) bool {
	edges, ok := ticketTransitions[from]
	if !ok {
		return false
	}
	return edges[to]
}

// Ticket is a support escalation raised against a customer's conversation.
type Ticket struct {
	ID             string       `json:"id" db:"id"`
	TenantID       string       `json:"tenant_id" db:"tenant_id"`
	CustomerID     string       `json:"customer_id" db:"customer_id"`
	ConversationID string       `json:"conversation_id" db:"conversation_id"`
	Subject        string       `json:"subject" db:"subject"`
	Status         TicketStatus `json:"status" db:"status"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// NewTicket opens a ticket in the OPEN state.
func NewTicket(id, tenantID, customerID, conversationID, subject string) *Ticket {
	now := time.Now()
	return &Ticket{
		ID:             id,
		TenantID:       tenantID,
		CustomerID:     customerID,
		ConversationID: conversationID,
		Subject:        subject,
		Status:         TicketOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TransitionTo applies a Ticket status transition, rejecting non-adjacent moves without mutation.
func (t *Ticket) TransitionTo(to TicketStatus) error {
	if !IsTicketTransitionValid(t.Status, to) {
		return fmt.Errorf("invalid ticket transition: %s -> %s", t.Status, to)
	}
	t.Status = to
	t.UpdatedAt = time.Now()
	return nil
}
