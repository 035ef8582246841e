package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tokowa/commerce-agent/internal/domain"
)

func TestCustomerHasLabelFindsExistingLabel(t *testing.T) {
	cust := &domain.Customer{Labels: []string{"vip", "wholesale"}}

	assert.True(t, cust.HasLabel("vip"))
	assert.False(t, cust.HasLabel("spam"))
}

func TestCustomerHasLabelOnEmptyLabelsReturnsFalse(t *testing.T) {
	cust := &domain.Customer{}

	assert.False(t, cust.HasLabel("vip"))
}
