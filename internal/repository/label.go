package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tokowa/commerce-agent/internal/domain"
)

const (
	listLabelsSQL = `SELECT id, tenant_id, name, color FROM labels WHERE tenant_id = $1 ORDER BY name`

	appendCustomerLabelSQL = `
		UPDATE customers
		SET labels = ARRAY(SELECT DISTINCT unnest(labels || $3::text[])), updated_at = $4
		FROM conversations
		WHERE customers.tenant_id = $1
		  AND conversations.id = $2
		  AND conversations.customer_id = customers.id`
)

// LabelRepo is the Postgres-backed tools.LabelStore.
type LabelRepo struct {
	db *sqlx.DB
}

// NewLabelRepo builds a LabelRepo over db.
func NewLabelRepo(db *sqlx.DB) *LabelRepo {
	return &LabelRepo{db: db}
}

// ListAvailable lists a tenant's configured labels.
func (r *LabelRepo) ListAvailable(ctx context.Context, tenantID string) ([]domain.Label, error) {
	start := time.Now()
	var labels []domain.Label
	err := r.db.SelectContext(ctx, &labels, listLabelsSQL, tenantID)
	observe("label", "list_available", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "list available labels")
	}
	return labels, nil
}

// ApplyToConversation tags the customer behind a conversation with a label.
func (r *LabelRepo) ApplyToConversation(ctx context.Context, tenantID, conversationID, labelName string) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, appendCustomerLabelSQL,
		tenantID, conversationID, pq.StringArray{labelName}, time.Now())
	observe("label", "apply_to_conversation", start, err)
	if err != nil {
		return errors.Wrap(err, "apply label to conversation")
	}
	return nil
}
