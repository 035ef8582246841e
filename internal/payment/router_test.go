package payment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/domain"
	"github.com/tokowa/commerce-agent/internal/payment"
)

type fakeGateway struct {
	externalID string
	status     domain.PaymentStatus
	err        error
}

func (f fakeGateway) CreateTransaction(ctx context.Context, pay *domain.Payment) (string, error) {
	return f.externalID, f.err
}

func (f fakeGateway) CheckStatus(ctx context.Context, externalID string) (domain.PaymentStatus, error) {
	return f.status, f.err
}

func TestRouterCreateTransactionDispatchesByGatewayName(t *testing.T) {
	router := payment.NewRouter(map[string]payment.Gateway{
		"midtrans": fakeGateway{externalID: "mt-123"},
		"xendit":   fakeGateway{externalID: "xd-456"},
	})
	amount, _ := domain.NewMoney(10000, "IDR")
	pay := domain.NewPayment("pay-1", "tenant-1", "order-1", "xendit", amount)

	id, err := router.CreateTransaction(context.Background(), pay)

	require.NoError(t, err)
	assert.Equal(t, "xd-456", id)
}

func TestRouterCreateTransactionRejectsUnconfiguredGateway(t *testing.T) {
	router := payment.NewRouter(map[string]payment.Gateway{"midtrans": fakeGateway{}})
	amount, _ := domain.NewMoney(10000, "IDR")
	pay := domain.NewPayment("pay-2", "tenant-1", "order-1", "stripe", amount)

	_, err := router.CreateTransaction(context.Background(), pay)

	assert.Error(t, err)
}

func TestRouterCheckStatusDispatchesByProviderName(t *testing.T) {
	router := payment.NewRouter(map[string]payment.Gateway{
		"midtrans": fakeGateway{status: domain.PaymentPaid},
	})

	status, err := router.CheckStatus(context.Background(), "midtrans", "mt-123")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, status)
}

func TestRouterCheckStatusRejectsUnconfiguredProvider(t *testing.T) {
	router := payment.NewRouter(map[string]payment.Gateway{})

	_, err := router.CheckStatus(context.Background(), "stripe", "xyz")

	assert.Error(t, err)
}
