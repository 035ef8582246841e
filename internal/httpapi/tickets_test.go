package httpapi_test

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func ticketColumns() []string {
	return []string{"id", "tenant_id", "customer_id", "conversation_id", "subject", "status", "created_at", "updated_at"}
}

func TestListTicketsReturns200(t *testing.T) {
	r, mock := newTestServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets")).
		WithArgs("tenant-1").
		WillReturnRows(sqlmock.NewRows(ticketColumns()).
			AddRow("ticket-1", "tenant-1", "cust-1", "conv-1", "Refund question", "OPEN", time.Now(), time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/tenant-1/tickets", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetTicketReturns200WhenFound(t *testing.T) {
	r, mock := newTestServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets")).
		WithArgs("tenant-1", "ticket-1").
		WillReturnRows(sqlmock.NewRows(ticketColumns()).
			AddRow("ticket-1", "tenant-1", "cust-1", "conv-1", "Refund question", "OPEN", time.Now(), time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/tenant-1/tickets/ticket-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetTicketReturns404WhenMissing(t *testing.T) {
	r, mock := newTestServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets")).
		WithArgs("tenant-1", "missing").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/tenant-1/tickets/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
