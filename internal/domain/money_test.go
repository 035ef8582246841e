package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/domain"
)

func TestNewMoneyDefaultsCurrency(t *testing.T) {
	m, err := domain.NewMoney(1000, "")
	require.NoError(t, err)
	assert.Equal(t, "IDR", m.Currency)
	assert.Equal(t, int64(1000), m.Amount)
}

func TestNewMoneyRejectsNegativeAmount(t *testing.T) {
	_, err := domain.NewMoney(-1, "USD")
	assert.Error(t, err)
}

func TestNewMoneyRejectsBadCurrencyCode(t *testing.T) {
	_, err := domain.NewMoney(100, "US")
	assert.Error(t, err)
}

func TestMoneyAddSameCurrency(t *testing.T) {
	a, _ := domain.NewMoney(500, "IDR")
	b, _ := domain.NewMoney(250, "IDR")
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(750), sum.Amount)
}

func TestMoneyAddMismatchedCurrencyErrors(t *testing.T) {
	a, _ := domain.NewMoney(500, "IDR")
	b, _ := domain.NewMoney(250, "USD")
	_, err := a.Add(b)
	assert.Error(t, err)
}

func TestMoneyMultiplyByQuantity(t *testing.T) {
	unit, _ := domain.NewMoney(1500, "IDR")
	total, err := unit.MultiplyByQuantity(3)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), total.Amount)
}

func TestMoneyMultiplyByQuantityRejectsNegative(t *testing.T) {
	unit, _ := domain.NewMoney(1500, "IDR")
	_, err := unit.MultiplyByQuantity(-1)
	assert.Error(t, err)
}

func TestMoneyStringFormatsMajorUnits(t *testing.T) {
	m, _ := domain.NewMoney(150000, "IDR")
	assert.Equal(t, "Rp1500.00", m.String())
}
