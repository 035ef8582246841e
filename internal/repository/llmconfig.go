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
	getLLMConfigByNameSQL = `
		SELECT tenant_id, name, provider, model, api_key_env, temperature,
		       max_tokens, timeout_seconds, moderation_mode
		FROM llm_configs
		WHERE tenant_id = $1 AND name = $2`

	upsertLLMConfigSQL = `
		INSERT INTO llm_configs (tenant_id, name, provider, model, api_key_env,
		                          temperature, max_tokens, timeout_seconds, moderation_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, name) DO UPDATE SET
		    provider = EXCLUDED.provider, model = EXCLUDED.model,
		    api_key_env = EXCLUDED.api_key_env, temperature = EXCLUDED.temperature,
		    max_tokens = EXCLUDED.max_tokens, timeout_seconds = EXCLUDED.timeout_seconds,
		    moderation_mode = EXCLUDED.moderation_mode`
)

// LLMConfigRepo is the Postgres-backed orchestrator.LLMConfigStore.
type LLMConfigRepo struct {
	db *sqlx.DB
}

// NewLLMConfigRepo builds an LLMConfigRepo over db.
func NewLLMConfigRepo(db *sqlx.DB) *LLMConfigRepo {
	return &LLMConfigRepo{db: db}
}

// GetByName resolves a tenant's named LLM configuration.
func (r *LLMConfigRepo) GetByName(ctx context.Context, tenantID, name string) (*domain.LLMConfig, error) {
	start := time.Now()
	var cfg domain.LLMConfig
	err := r.db.GetContext(ctx, &cfg, getLLMConfigByNameSQL, tenantID, name)
	observe("llm_config", "get_by_name", start, err)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get llm_config by name")
	}
	return &cfg, nil
}

// Upsert creates or replaces a tenant's named LLM configuration.
func (r *LLMConfigRepo) Upsert(ctx context.Context, cfg *domain.LLMConfig) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, upsertLLMConfigSQL,
		cfg.TenantID, cfg.Name, cfg.Provider, cfg.Model, cfg.APIKeyEnv,
		cfg.Temperature, cfg.MaxTokens, cfg.TimeoutSeconds, cfg.ModerationMode)
	observe("llm_config", "upsert", start, err)
	if err != nil {
		return errors.Wrap(err, "upsert llm_config")
	}
	return nil
}
