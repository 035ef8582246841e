package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tokowa/commerce-agent/internal/domain"
)

const (
	createTicketSQL = `
		INSERT INTO tickets (id, tenant_id, customer_id, conversation_id, subject, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	getTicketByIDSQL = `
		SELECT id, tenant_id, customer_id, conversation_id, subject, status, created_at, updated_at
		FROM tickets
		WHERE tenant_id = $1 AND id = $2`

	listTicketsSQL = `
		SELECT id, tenant_id, customer_id, conversation_id, subject, status, created_at, updated_at
		FROM tickets
		WHERE tenant_id = $1
		ORDER BY created_at DESC`

	updateTicketStatusSQL = `
		UPDATE tickets SET status = $3, updated_at = $4 WHERE tenant_id = $1 AND id = $2`
)

// TicketRepo is the Postgres-backed support-ticket store.
type TicketRepo struct {
	db *sqlx.DB
}

// NewTicketRepo builds a TicketRepo over db.
func NewTicketRepo(db *sqlx.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// Create opens a new ticket.
func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, createTicketSQL,
		t.ID, t.TenantID, t.CustomerID, t.ConversationID, t.Subject, t.Status, t.CreatedAt, t.UpdatedAt)
	observe("ticket", "create", start, err)
	if err != nil {
		return errors.Wrap(err, "create ticket")
	}
	return nil
}

// GetByID fetches one ticket scoped to its tenant.
func (r *TicketRepo) GetByID(ctx context.Context, tenantID, ticketID string) (*domain.Ticket, error) {
	start := time.Now()
	var t domain.Ticket
	err := r.db.GetContext(ctx, &t, getTicketByIDSQL, tenantID, ticketID)
	observe("ticket", "get_by_id", start, err)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get ticket by id")
	}
	return &t, nil
}

// List returns a tenant's tickets, most recent first.
func (r *TicketRepo) List(ctx context.Context, tenantID string) ([]*domain.Ticket, error) {
	start := time.Now()
	var tickets []*domain.Ticket
	err := r.db.SelectContext(ctx, &tickets, listTicketsSQL, tenantID)
	observe("ticket", "list", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "list tickets")
	}
	return tickets, nil
}

// UpdateStatus transitions a ticket's status. Transition validity is the
// caller's responsibility (domain.IsTicketTransitionValid).
func (r *TicketRepo) UpdateStatus(ctx context.Context, tenantID, ticketID string, status domain.TicketStatus) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, updateTicketStatusSQL, tenantID, ticketID, status, time.Now())
	observe("ticket", "update_status", start, err)
	if err != nil {
		return errors.Wrap(err, "update ticket status")
	}
	return nil
}
