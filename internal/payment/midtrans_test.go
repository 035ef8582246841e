package payment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/domain"
	"github.com/tokowa/commerce-agent/internal/payment"
)

func TestMidtransCreateTransactionReturnsTransactionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/snap/v1/transactions", r.URL.Path)
		w.Write([]byte(`{"transaction_id":"mt-999","redirect_url":"https://example.com/pay"}`))
	}))
	defer srv.Close()

	gw := payment.NewMidtransGateway(srv.URL, "server-key")
	amount, _ := domain.NewMoney(25000, "IDR")
	pay := domain.NewPayment("pay-1", "tenant-1", "order-1", "midtrans", amount)

	id, err := gw.CreateTransaction(context.Background(), pay)

	require.NoError(t, err)
	assert.Equal(t, "mt-999", id)
}

func TestMidtransCreateTransactionSurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid order id"}`))
	}))
	defer srv.Close()

	gw := payment.NewMidtransGateway(srv.URL, "server-key")
	amount, _ := domain.NewMoney(25000, "IDR")
	pay := domain.NewPayment("pay-2", "tenant-1", "order-2", "midtrans", amount)

	_, err := gw.CreateTransaction(context.Background(), pay)

	assert.Error(t, err)
}

func TestMidtransCheckStatusMapsSettlementToPaid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transaction_status":"settlement"}`))
	}))
	defer srv.Close()

	gw := payment.NewMidtransGateway(srv.URL, "server-key")

	status, err := gw.CheckStatus(context.Background(), "mt-999")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, status)
}

func TestMidtransCheckStatusMapsExpireToExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transaction_status":"expire"}`))
	}))
	defer srv.Close()

	gw := payment.NewMidtransGateway(srv.URL, "server-key")

	status, err := gw.CheckStatus(context.Background(), "mt-999")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentExpired, status)
}
