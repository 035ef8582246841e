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

func TestXenditCreateTransactionReturnsInvoiceID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/invoices", r.URL.Path)
		w.Write([]byte(`{"id":"xd-777","status":"PENDING"}`))
	}))
	defer srv.Close()

	gw := payment.NewXenditGateway(srv.URL, "api-key")
	amount, _ := domain.NewMoney(40000, "IDR")
	pay := domain.NewPayment("pay-1", "tenant-1", "order-1", "xendit", amount)

	id, err := gw.CreateTransaction(context.Background(), pay)

	require.NoError(t, err)
	assert.Equal(t, "xd-777", id)
}

func TestXenditCreateTransactionSurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal"}`))
	}))
	defer srv.Close()

	gw := payment.NewXenditGateway(srv.URL, "api-key")
	amount, _ := domain.NewMoney(40000, "IDR")
	pay := domain.NewPayment("pay-2", "tenant-1", "order-2", "xendit", amount)

	_, err := gw.CreateTransaction(context.Background(), pay)

	assert.Error(t, err)
}

func TestXenditCheckStatusMapsPaidStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/invoices/xd-777", r.URL.Path)
		w.Write([]byte(`{"id":"xd-777","status":"PAID"}`))
	}))
	defer srv.Close()

	gw := payment.NewXenditGateway(srv.URL, "api-key")

	status, err := gw.CheckStatus(context.Background(), "xd-777")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, status)
}

func TestXenditCheckStatusMapsUnknownStatusToFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"xd-777","status":"SOMETHING_NEW"}`))
	}))
	defer srv.Close()

	gw := payment.NewXenditGateway(srv.URL, "api-key")

	status, err := gw.CheckStatus(context.Background(), "xd-777")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, status)
}
