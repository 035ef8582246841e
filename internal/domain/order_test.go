package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/domain"
)

func TestOrderTransitionAdjacentMovesSucceed(t *testing.T) {
	order := domain.NewOrder("order-1", "tenant-1", "cust-1", "IDR")
	require.Equal(t, domain.OrderPending, order.Status)

	require.NoError(t, order.TransitionTo(domain.OrderConfirmed))
	assert.Equal(t, domain.OrderConfirmed, order.Status)

	require.NoError(t, order.TransitionTo(domain.OrderProcessing))
	require.NoError(t, order.TransitionTo(domain.OrderShipped))
	require.NoError(t, order.TransitionTo(domain.OrderDelivered))
	assert.True(t, order.IsTerminal())
}

func TestOrderTransitionRejectsSkippedStates(t *testing.T) {
	order := domain.NewOrder("order-2", "tenant-1", "cust-1", "IDR")
	err := order.TransitionTo(domain.OrderShipped)
	assert.Error(t, err)
	assert.Equal(t, domain.OrderPending, order.Status)
}

func TestOrderTransitionRejectsFromTerminalState(t *testing.T) {
	order := domain.NewOrder("order-3", "tenant-1", "cust-1", "IDR")
	require.NoError(t, order.TransitionTo(domain.OrderCancelled))
	assert.True(t, order.IsTerminal())
	assert.Error(t, order.TransitionTo(domain.OrderConfirmed))
}

func TestIsOrderTransitionValidUnknownFromState(t *testing.T) {
	assert.False(t, domain.IsOrderTransitionValid("BOGUS", domain.OrderConfirmed))
}
