package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/domain"
)

func TestConversationTransitionFollowsCommerceFunnel(t *testing.T) {
	conv := domain.NewConversation("conv-1", "tenant-1", "cust-1")
	require.Equal(t, domain.ConversationGreeting, conv.State)

	require.NoError(t, conv.TransitionTo(domain.ConversationBrowsing))
	require.NoError(t, conv.TransitionTo(domain.ConversationOrdering))
	require.NoError(t, conv.TransitionTo(domain.ConversationCheckout))
	require.NoError(t, conv.TransitionTo(domain.ConversationPayment))
	require.NoError(t, conv.TransitionTo(domain.ConversationCompleted))
	assert.True(t, conv.IsCompleted())
}

func TestConversationTransitionAllowsDroppingIntoSupportFromAnyPreCompletionState(t *testing.T) {
	conv := domain.NewConversation("conv-2", "tenant-1", "cust-1")
	require.NoError(t, conv.TransitionTo(domain.ConversationBrowsing))
	require.NoError(t, conv.TransitionTo(domain.ConversationOrdering))

	require.NoError(t, conv.TransitionTo(domain.ConversationSupport))
	assert.Equal(t, domain.ConversationSupport, conv.State)
}

func TestConversationTransitionRejectsSkippedStates(t *testing.T) {
	conv := domain.NewConversation("conv-3", "tenant-1", "cust-1")

	err := conv.TransitionTo(domain.ConversationPayment)

	assert.Error(t, err)
	assert.Equal(t, domain.ConversationGreeting, conv.State)
}

func TestConversationTransitionRejectsFromTerminalState(t *testing.T) {
	conv := domain.NewConversation("conv-4", "tenant-1", "cust-1")
	require.NoError(t, conv.TransitionTo(domain.ConversationBrowsing))
	require.NoError(t, conv.TransitionTo(domain.ConversationOrdering))
	require.NoError(t, conv.TransitionTo(domain.ConversationCheckout))
	require.NoError(t, conv.TransitionTo(domain.ConversationPayment))
	require.NoError(t, conv.TransitionTo(domain.ConversationCompleted))

	assert.Error(t, conv.TransitionTo(domain.ConversationBrowsing))
}

func TestCanTransitionToUnknownFromState(t *testing.T) {
	assert.False(t, domain.CanTransitionTo("BOGUS", domain.ConversationBrowsing))
}
