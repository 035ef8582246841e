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
	createQuickReplySQL = `
		INSERT INTO quick_replies (id, tenant_id, shortcut, body) VALUES ($1, $2, $3, $4)`

	listQuickRepliesSQL = `
		SELECT id, tenant_id, shortcut, body FROM quick_replies WHERE tenant_id = $1 ORDER BY shortcut`

	getQuickReplyByShortcutSQL = `
		SELECT id, tenant_id, shortcut, body FROM quick_replies WHERE tenant_id = $1 AND shortcut = $2`

	deleteQuickReplySQL = `DELETE FROM quick_replies WHERE tenant_id = $1 AND id = $2`
)

// QuickReplyRepo is the Postgres-backed canned-response store.
type QuickReplyRepo struct {
	db *sqlx.DB
}

// NewQuickReplyRepo builds a QuickReplyRepo over db.
func NewQuickReplyRepo(db *sqlx.DB) *QuickReplyRepo {
	return &QuickReplyRepo{db: db}
}

// Create persists a new quick reply.
func (r *QuickReplyRepo) Create(ctx context.Context, q *domain.QuickReply) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, createQuickReplySQL, q.ID, q.TenantID, q.Shortcut, q.Body)
	observe("quick_reply", "create", start, err)
	if err != nil {
		return errors.Wrap(err, "create quick reply")
	}
	return nil
}

// List returns a tenant's quick replies.
func (r *QuickReplyRepo) List(ctx context.Context, tenantID string) ([]domain.QuickReply, error) {
	start := time.Now()
	var out []domain.QuickReply
	err := r.db.SelectContext(ctx, &out, listQuickRepliesSQL, tenantID)
	observe("quick_reply", "list", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "list quick replies")
	}
	return out, nil
}

// GetByShortcut resolves a quick reply by its invocation shortcut.
func (r *QuickReplyRepo) GetByShortcut(ctx context.Context, tenantID, shortcut string) (*domain.QuickReply, error) {
	start := time.Now()
	var q domain.QuickReply
	err := r.db.GetContext(ctx, &q, getQuickReplyByShortcutSQL, tenantID, shortcut)
	observe("quick_reply", "get_by_shortcut", start, err)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get quick reply by shortcut")
	}
	return &q, nil
}

// Delete removes a quick reply.
func (r *QuickReplyRepo) Delete(ctx context.Context, tenantID, id string) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, deleteQuickReplySQL, tenantID, id)
	observe("quick_reply", "delete", start, err)
	if err != nil {
		return errors.Wrap(err, "delete quick reply")
	}
	return nil
}
