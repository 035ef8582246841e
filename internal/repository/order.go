package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tokowa/commerce-agent/internal/domain"
)

const (
	createOrderSQL = `
		INSERT INTO orders (id, tenant_id, customer_id, status, items,
		                     subtotal_amount, subtotal_currency, total_amount, total_currency,
		                     created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	getOrderByIDSQL = `
		SELECT id, tenant_id, customer_id, status, items,
		       subtotal_amount, subtotal_currency, total_amount, total_currency,
		       created_at, updated_at
		FROM orders
		WHERE tenant_id = $1 AND id = $2`

	updateOrderSQL = `
		UPDATE orders
		SET status = $3, items = $4, subtotal_amount = $5, subtotal_currency = $6,
		    total_amount = $7, total_currency = $8, updated_at = $9
		WHERE tenant_id = $1 AND id = $2`

	listOrdersByCustomerSQL = `
		SELECT id, tenant_id, customer_id, status, items,
		       subtotal_amount, subtotal_currency, total_amount, total_currency,
		       created_at, updated_at
		FROM orders
		WHERE tenant_id = $1 AND customer_id = $2
		ORDER BY created_at DESC`
)

// OrderRepo is the Postgres-backed tools.OrderStore.
type OrderRepo struct {
	db *sqlx.DB
}

// NewOrderRepo builds an OrderRepo over db.
func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func scanOrder(scan func(dest ...interface{}) error) (*domain.Order, error) {
	var o domain.Order
	var itemsJSON []byte
	var subtotalAmount, totalAmount int64
	var subtotalCurrency, totalCurrency string

	if err := scan(&o.ID, &o.TenantID, &o.CustomerID, &o.Status, &itemsJSON,
		&subtotalAmount, &subtotalCurrency, &totalAmount, &totalCurrency,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, errors.Wrap(err, "unmarshal order items")
		}
	}
	o.Subtotal = domain.Money{Amount: subtotalAmount, Currency: subtotalCurrency}
	o.Total = domain.Money{Amount: totalAmount, Currency: totalCurrency}
	return &o, nil
}

// Create persists a new order, including its item lines.
func (r *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	start := time.Now()
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}
	_, err = r.db.ExecContext(ctx, createOrderSQL,
		order.ID, order.TenantID, order.CustomerID, order.Status, itemsJSON,
		order.Subtotal.Amount, order.Subtotal.Currency, order.Total.Amount, order.Total.Currency,
		order.CreatedAt, order.UpdatedAt)
	observe("order", "create", start, err)
	if err != nil {
		return errors.Wrap(err, "create order")
	}
	return nil
}

// GetByID fetches one order scoped to its tenant.
func (r *OrderRepo) GetByID(ctx context.Context, tenantID, orderID string) (*domain.Order, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, getOrderByIDSQL, tenantID, orderID)
	o, err := scanOrder(row.Scan)
	if err == sql.ErrNoRows {
		observe("order", "get_by_id", start, nil)
		return nil, nil
	}
	observe("order", "get_by_id", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "get order by id")
	}
	return o, nil
}

// Update persists changes to an existing order, including its item lines.
func (r *OrderRepo) Update(ctx context.Context, order *domain.Order) error {
	start := time.Now()
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}
	order.UpdatedAt = time.Now()
	_, err = r.db.ExecContext(ctx, updateOrderSQL,
		order.TenantID, order.ID, order.Status, itemsJSON,
		order.Subtotal.Amount, order.Subtotal.Currency, order.Total.Amount, order.Total.Currency,
		order.UpdatedAt)
	observe("order", "update", start, err)
	if err != nil {
		return errors.Wrap(err, "update order")
	}
	return nil
}

// ListByCustomer lists a customer's orders, most recent first.
func (r *OrderRepo) ListByCustomer(ctx context.Context, tenantID, customerID string) ([]*domain.Order, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, listOrdersByCustomerSQL, tenantID, customerID)
	if err != nil {
		observe("order", "list_by_customer", start, err)
		return nil, errors.Wrap(err, "list orders by customer")
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			observe("order", "list_by_customer", start, err)
			return nil, errors.Wrap(err, "scan order row")
		}
		out = append(out, o)
	}
	observe("order", "list_by_customer", start, rows.Err())
	return out, errors.Wrap(rows.Err(), "iterate order rows")
}
