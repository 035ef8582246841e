package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tokowa/commerce-agent/internal/domain"
)

const (
	getCustomerByIDSQL = `
		SELECT id, tenant_id, phone_number, display_name, labels, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND id = $2`

	getCustomerByChatSQL = `
		SELECT id, tenant_id, phone_number, display_name, labels, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND phone_number = $2`

	createCustomerSQL = `
		INSERT INTO customers (id, tenant_id, phone_number, display_name, labels, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	setDisplayNameIfEmptySQL = `
		UPDATE customers
		SET display_name = $3, updated_at = $4
		WHERE tenant_id = $1 AND id = $2 AND (display_name IS NULL OR display_name = '')`

	orderHistorySQL = `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE tenant_id = $1 AND customer_id = $2 AND status NOT IN ('CANCELLED')`

	vipSpendThreshold = int64(500000)
)

// CustomerRepo is the Postgres-backed store satisfying both
// tools.CustomerStore and orchestrator.CustomerStore.
type CustomerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo builds a CustomerRepo over db.
func NewCustomerRepo(db *sqlx.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

func (r *CustomerRepo) scanOne(ctx context.Context, query string, args ...interface{}) (*domain.Customer, error) {
	row := r.db.QueryRowxContext(ctx, query, args...)
	var c domain.Customer
	var labels pq.StringArray
	err := row.Scan(&c.ID, &c.TenantID, &c.PhoneNumber, &c.DisplayName, &labels, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Labels = []string(labels)
	return &c, nil
}

// GetByID fetches a customer scoped to its tenant.
func (r *CustomerRepo) GetByID(ctx context.Context, tenantID, customerID string) (*domain.Customer, error) {
	start := time.Now()
	c, err := r.scanOne(ctx, getCustomerByIDSQL, tenantID, customerID)
	observe("customer", "get_by_id", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "get customer by id")
	}
	return c, nil
}

// GetOrCreateByChat resolves the customer for a (tenant, WhatsApp chat)
// pair, creating a bare record keyed by phone number on first contact.
func (r *CustomerRepo) GetOrCreateByChat(ctx context.Context, tenantID, waChatID string) (*domain.Customer, error) {
	start := time.Now()
	existing, err := r.scanOne(ctx, getCustomerByChatSQL, tenantID, waChatID)
	if err != nil {
		observe("customer", "get_or_create_by_chat", start, err)
		return nil, errors.Wrap(err, "get customer by chat")
	}
	if existing != nil {
		observe("customer", "get_or_create_by_chat", start, nil)
		return existing, nil
	}

	now := time.Now()
	c := &domain.Customer{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		PhoneNumber: waChatID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = r.db.ExecContext(ctx, createCustomerSQL,
		c.ID, c.TenantID, c.PhoneNumber, c.DisplayName, pq.StringArray(c.Labels), c.CreatedAt, c.UpdatedAt)
	observe("customer", "get_or_create_by_chat", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "create customer")
	}
	return c, nil
}

// SetDisplayNameIfEmpty sets the customer's display name only if currently unset.
func (r *CustomerRepo) SetDisplayNameIfEmpty(ctx context.Context, tenantID, customerID, name string) error {
	if name == "" {
		return nil
	}
	start := time.Now()
	_, err := r.db.ExecContext(ctx, setDisplayNameIfEmptySQL, tenantID, customerID, name, time.Now())
	observe("customer", "set_display_name_if_empty", start, err)
	if err != nil {
		return errors.Wrap(err, "set display name")
	}
	return nil
}

// ListOrderHistory aggregates a customer's non-cancelled order count/spend
// and derives a VIP flag from the configured spend threshold.
func (r *CustomerRepo) ListOrderHistory(ctx context.Context, tenantID, customerID string) (int, int64, bool, error) {
	start := time.Now()
	var count int
	var totalSpent int64
	err := r.db.QueryRowContext(ctx, orderHistorySQL, tenantID, customerID).Scan(&count, &totalSpent)
	observe("customer", "list_order_history", start, err)
	if err != nil {
		return 0, 0, false, errors.Wrap(err, "list order history")
	}
	return count, totalSpent, totalSpent >= vipSpendThreshold, nil
}

// ContextSummary renders the compact customer context tools/prompts consume.
func (r *CustomerRepo) ContextSummary(ctx context.Context, tenantID, customerID string) (map[string]interface{}, error) {
	c, err := r.GetByID(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return map[string]interface{}{}, nil
	}
	totalOrders, totalSpent, isVIP, err := r.ListOrderHistory(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"customer_name": c.DisplayName,
		"phone_number":  c.PhoneNumber,
		"labels":        c.Labels,
		"total_orders":  totalOrders,
		"total_spent":   totalSpent,
		"is_vip":        isVIP,
	}, nil
}
