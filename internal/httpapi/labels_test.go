package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestListLabelsReturns200(t *testing.T) {
	r, mock := newTestServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM labels")).
		WithArgs("tenant-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "color"}).
			AddRow("lbl-1", "tenant-1", "vip", "#ffd700"))

	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/tenant-1/labels", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
