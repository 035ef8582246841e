package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/domain"
	"github.com/tokowa/commerce-agent/internal/repository"
)

func ticketRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "customer_id", "conversation_id", "subject", "status", "created_at", "updated_at",
	}).AddRow("ticket-1", "tenant-1", "cust-1", "conv-1", "Refund question", domain.TicketOpen, time.Now(), time.Now())
}

func TestTicketRepoCreateExecutesInsert(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewTicketRepo(db)
	ticket := domain.NewTicket("ticket-1", "tenant-1", "cust-1", "conv-1", "Refund question")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
		WithArgs(ticket.ID, ticket.TenantID, ticket.CustomerID, ticket.ConversationID,
			ticket.Subject, ticket.Status, ticket.CreatedAt, ticket.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), ticket)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepoGetByIDScansRow(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewTicketRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets")).
		WithArgs("tenant-1", "ticket-1").
		WillReturnRows(ticketRow())

	ticket, err := repo.GetByID(context.Background(), "tenant-1", "ticket-1")

	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, domain.TicketOpen, ticket.Status)
}

func TestTicketRepoGetByIDReturnsNilWhenNotFound(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewTicketRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets")).
		WithArgs("tenant-1", "missing").
		WillReturnError(sql.ErrNoRows)

	ticket, err := repo.GetByID(context.Background(), "tenant-1", "missing")

	require.NoError(t, err)
	assert.Nil(t, ticket)
}

func TestTicketRepoListReturnsAllRows(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewTicketRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets")).
		WithArgs("tenant-1").
		WillReturnRows(ticketRow())

	tickets, err := repo.List(context.Background(), "tenant-1")

	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "ticket-1", tickets[0].ID)
}

func TestTicketRepoUpdateStatusExecutesUpdate(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewTicketRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tickets")).
		WithArgs("tenant-1", "ticket-1", domain.TicketClosed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "tenant-1", "ticket-1", domain.TicketClosed)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
