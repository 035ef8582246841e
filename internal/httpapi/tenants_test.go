package httpapi_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/httpapi"
	"github.com/tokowa/commerce-agent/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	srv := httpapi.NewServer(
		repository.NewTenantRepo(sqlxDB),
		repository.NewProductRepo(sqlxDB),
		repository.NewOrderRepo(sqlxDB),
		repository.NewLabelRepo(sqlxDB),
		repository.NewQuickReplyRepo(sqlxDB),
		repository.NewTicketRepo(sqlxDB),
		nil, nil, "",
	)

	r := gin.New()
	srv.RegisterRoutes(r)
	return r, mock
}

func tenantColumns() []string {
	return []string{"id", "name", "currency", "timezone", "active", "wa_session", "llm_config_name", "agent_prompt", "created_at", "updated_at"}
}

func TestGetTenantReturns200WhenFound(t *testing.T) {
	r, mock := newTestServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tenants")).
		WithArgs("tenant-1").
		WillReturnRows(sqlmock.NewRows(tenantColumns()).
			AddRow("tenant-1", "Acme", "IDR", "Asia/Jakarta", true, "acme-session", "default", "", time.Now(), time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/tenant-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetTenantReturns404WhenMissing(t *testing.T) {
	r, mock := newTestServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tenants")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/v1/tenants/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateTenantReturns201OnValidBody(t *testing.T) {
	r, mock := newTestServer(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tenants")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Acme", "currency": "IDR", "timezone": "Asia/Jakarta",
		"wa_session": "acme-session", "llm_config_name": "default",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateTenantReturns400OnMissingRequiredField(t *testing.T) {
	r, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]interface{}{"name": "Acme"})
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTenantsReturns200(t *testing.T) {
	r, mock := newTestServer(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tenants")).
		WillReturnRows(sqlmock.NewRows(tenantColumns()).
			AddRow("tenant-1", "Acme", "IDR", "Asia/Jakarta", true, "acme-session", "default", "", time.Now(), time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/v1/tenants", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
