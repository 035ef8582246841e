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
	getTenantByWASessionSQL = `
		SELECT id, name, currency, timezone, active, wa_session,
		       llm_config_name, agent_prompt, created_at, updated_at
		FROM tenants
		WHERE wa_session = $1`

	getTenantByIDSQL = `
		SELECT id, name, currency, timezone, active, wa_session,
		       llm_config_name, agent_prompt, created_at, updated_at
		FROM tenants
		WHERE id = $1`

	listTenantsSQL = `
		SELECT id, name, currency, timezone, active, wa_session,
		       llm_config_name, agent_prompt, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC`

	createTenantSQL = `
		INSERT INTO tenants (id, name, currency, timezone, active, wa_session,
		                      llm_config_name, agent_prompt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateTenantSQL = `
		UPDATE tenants
		SET name = $2, currency = $3, timezone = $4, active = $5, wa_session = $6,
		    llm_config_name = $7, agent_prompt = $8, updated_at = $9
		WHERE id = $1`
)

// TenantRepo is the Postgres-backed orchestrator.TenantStore.
type TenantRepo struct {
	db *sqlx.DB
}

// NewTenantRepo builds a TenantRepo over db.
func NewTenantRepo(db *sqlx.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

// GetByWASession resolves the tenant owning a WhatsApp bridge session.
func (r *TenantRepo) GetByWASession(ctx context.Context, waSession string) (*domain.Tenant, error) {
	start := time.Now()
	var t domain.Tenant
	err := r.db.GetContext(ctx, &t, getTenantByWASessionSQL, waSession)
	observe("tenant", "get_by_wa_session", start, err)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get tenant by wa_session")
	}
	return &t, nil
}

// GetByID fetches a tenant by its primary key.
func (r *TenantRepo) GetByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	start := time.Now()
	var t domain.Tenant
	err := r.db.GetContext(ctx, &t, getTenantByIDSQL, tenantID)
	observe("tenant", "get_by_id", start, err)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get tenant by id")
	}
	return &t, nil
}

// List returns every tenant, most recently created first.
func (r *TenantRepo) List(ctx context.Context) ([]*domain.Tenant, error) {
	start := time.Now()
	var tenants []*domain.Tenant
	err := r.db.SelectContext(ctx, &tenants, listTenantsSQL)
	observe("tenant", "list", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "list tenants")
	}
	return tenants, nil
}

// Create persists a new tenant.
func (r *TenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, createTenantSQL,
		t.ID, t.Name, t.Currency, t.Timezone, t.Active, t.WASession,
		t.LLMConfigName, t.AgentPrompt, t.CreatedAt, t.UpdatedAt)
	observe("tenant", "create", start, err)
	if err != nil {
		return errors.Wrap(err, "create tenant")
	}
	return nil
}

// Update persists changes to an existing tenant.
func (r *TenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	start := time.Now()
	t.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, updateTenantSQL,
		t.ID, t.Name, t.Currency, t.Timezone, t.Active, t.WASession,
		t.LLMConfigName, t.AgentPrompt, t.UpdatedAt)
	observe("tenant", "update", start, err)
	if err != nil {
		return errors.Wrap(err, "update tenant")
	}
	return nil
}
