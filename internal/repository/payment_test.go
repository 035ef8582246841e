package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/domain"
	"github.com/tokowa/commerce-agent/internal/repository"
)

func newSQLXMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func paymentRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "order_id", "gateway", "status",
		"amount_amount", "amount_currency", "external_id", "created_at", "updated_at",
	}).AddRow("pay-1", "tenant-1", "order-1", "midtrans", domain.PaymentPaid,
		50000, "IDR", "mt-123", time.Now(), time.Now())
}

func TestPaymentRepoCreateExecutesInsert(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewPaymentRepo(db)
	amount, _ := domain.NewMoney(50000, "IDR")
	pay := domain.NewPayment("pay-1", "tenant-1", "order-1", "midtrans", amount)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs(pay.ID, pay.TenantID, pay.OrderID, pay.Gateway, pay.Status,
			pay.Amount.Amount, pay.Amount.Currency, pay.ExternalID, pay.CreatedAt, pay.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), pay)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepoGetByIDReturnsNilWhenNotFound(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewPaymentRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payments")).
		WithArgs("tenant-1", "missing").
		WillReturnError(sql.ErrNoRows)

	pay, err := repo.GetByID(context.Background(), "tenant-1", "missing")

	require.NoError(t, err)
	assert.Nil(t, pay)
}

func TestPaymentRepoGetByExternalIDScansRow(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewPaymentRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payments")).
		WithArgs("midtrans", "mt-123").
		WillReturnRows(paymentRow())

	pay, err := repo.GetByExternalID(context.Background(), "midtrans", "mt-123")

	require.NoError(t, err)
	require.NotNil(t, pay)
	assert.Equal(t, "pay-1", pay.ID)
	assert.Equal(t, domain.PaymentPaid, pay.Status)
	assert.Equal(t, int64(50000), pay.Amount.Amount)
}

func TestPaymentRepoUpdateExecutesUpdate(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewPaymentRepo(db)
	amount, _ := domain.NewMoney(50000, "IDR")
	pay := domain.NewPayment("pay-1", "tenant-1", "order-1", "midtrans", amount)
	pay.Status = domain.PaymentPaid

	mock.ExpectExec(regexp.QuoteMeta("UPDATE payments")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), pay)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
