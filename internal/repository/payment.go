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
	createPaymentSQL = `
		INSERT INTO payments (id, tenant_id, order_id, gateway, status,
		                       amount_amount, amount_currency, external_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getPaymentByIDSQL = `
		SELECT id, tenant_id, order_id, gateway, status,
		       amount_amount, amount_currency, external_id, created_at, updated_at
		FROM payments
		WHERE tenant_id = $1 AND id = $2`

	updatePaymentSQL = `
		UPDATE payments
		SET status = $3, external_id = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2`

	getPaymentByExternalIDSQL = `
		SELECT id, tenant_id, order_id, gateway, status,
		       amount_amount, amount_currency, external_id, created_at, updated_at
		FROM payments
		WHERE gateway = $1 AND external_id = $2`
)

// PaymentRepo is the Postgres-backed tools.PaymentStore.
type PaymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo builds a PaymentRepo over db.
func NewPaymentRepo(db *sqlx.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

func scanPayment(scan func(dest ...interface{}) error) (*domain.Payment, error) {
	var p domain.Payment
	var amount int64
	var currency string
	var externalID sql.NullString
	if err := scan(&p.ID, &p.TenantID, &p.OrderID, &p.Gateway, &p.Status,
		&amount, &currency, &externalID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Amount = domain.Money{Amount: amount, Currency: currency}
	p.ExternalID = externalID.String
	return &p, nil
}

// Create persists a new payment.
func (r *PaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, createPaymentSQL,
		payment.ID, payment.TenantID, payment.OrderID, payment.Gateway, payment.Status,
		payment.Amount.Amount, payment.Amount.Currency, payment.ExternalID,
		payment.CreatedAt, payment.UpdatedAt)
	observe("payment", "create", start, err)
	if err != nil {
		return errors.Wrap(err, "create payment")
	}
	return nil
}

// GetByID fetches one payment scoped to its tenant.
func (r *PaymentRepo) GetByID(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, getPaymentByIDSQL, tenantID, paymentID)
	p, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		observe("payment", "get_by_id", start, nil)
		return nil, nil
	}
	observe("payment", "get_by_id", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "get payment by id")
	}
	return p, nil
}

// GetByExternalID resolves a payment by its gateway transaction id, used
// when reconciling an asynchronous gateway callback.
func (r *PaymentRepo) GetByExternalID(ctx context.Context, gateway, externalID string) (*domain.Payment, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, getPaymentByExternalIDSQL, gateway, externalID)
	p, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		observe("payment", "get_by_external_id", start, nil)
		return nil, nil
	}
	observe("payment", "get_by_external_id", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "get payment by external id")
	}
	return p, nil
}

// Update persists a payment's status/external_id change.
func (r *PaymentRepo) Update(ctx context.Context, payment *domain.Payment) error {
	start := time.Now()
	payment.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, updatePaymentSQL,
		payment.TenantID, payment.ID, payment.Status, payment.ExternalID, payment.UpdatedAt)
	observe("payment", "update", start, err)
	if err != nil {
		return errors.Wrap(err, "update payment")
	}
	return nil
}
