package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/domain"
)

func TestTicketTransitionAdjacentMovesSucceed(t *testing.T) {
	ticket := domain.NewTicket("ticket-1", "tenant-1", "cust-1", "conv-1", "Refund question")
	require.Equal(t, domain.TicketOpen, ticket.Status)

	require.NoError(t, ticket.TransitionTo(domain.TicketInProgress))
	assert.Equal(t, domain.TicketInProgress, ticket.Status)

	require.NoError(t, ticket.TransitionTo(domain.TicketResolved))
	require.NoError(t, ticket.TransitionTo(domain.TicketClosed))
}

func TestTicketTransitionAllowsReopeningFromResolved(t *testing.T) {
	ticket := domain.NewTicket("ticket-2", "tenant-1", "cust-1", "conv-1", "Late delivery")
	require.NoError(t, ticket.TransitionTo(domain.TicketInProgress))
	require.NoError(t, ticket.TransitionTo(domain.TicketResolved))

	require.NoError(t, ticket.TransitionTo(domain.TicketInProgress))
	assert.Equal(t, domain.TicketInProgress, ticket.Status)
}

func TestTicketTransitionRejectsSkippedStates(t *testing.T) {
	ticket := domain.NewTicket("ticket-3", "tenant-1", "cust-1", "conv-1", "Damaged item")

	err := ticket.TransitionTo(domain.TicketResolved)

	assert.Error(t, err)
	assert.Equal(t, domain.TicketOpen, ticket.Status)
}

func TestTicketTransitionRejectsFromTerminalState(t *testing.T) {
	ticket := domain.NewTicket("ticket-4", "tenant-1", "cust-1", "conv-1", "Wrong size")
	require.NoError(t, ticket.TransitionTo(domain.TicketClosed))

	assert.Error(t, ticket.TransitionTo(domain.TicketOpen))
}

func TestIsTicketTransitionValidUnknownFromState(t *testing.T) {
	assert.False(t, domain.IsTicketTransitionValid("BOGUS", domain.TicketOpen))
}
