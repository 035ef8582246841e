package domain

import "time"

// Tenant is a merchant operating on the platform, scoping every other entity.
type Tenant struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Currency      string    `json:"currency" db:"currency"`
	Timezone      string    `json:"timezone" db:"timezone"`
	Active        bool      `json:"active" db:"active"`
	WASession     string    `json:"wa_session" db:"wa_session"`
	LLMConfigName string    `json:"llm_config_name" db:"llm_config_name"`
	AgentPrompt   string    `json:"agent_prompt" db:"agent_prompt"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// LLMConfig is a tenant's configured language model backend and prompt scaffolding.
type LLMConfig struct {
	TenantID       string  `json:"tenant_id" db:"tenant_id"`
	Name           string  `json:"name" db:"name"`
	Provider       string  `json:"provider" db:"provider"`
	Model          string  `json:"model" db:"model"`
	APIKeyEnv      string  `json:"api_key_env" db:"api_key_env"`
	Temperature    float64 `json:"temperature" db:"temperature"`
	MaxTokens      int     `json:"max_tokens" db:"max_tokens"`
	TimeoutSeconds int     `json:"timeout_seconds" db:"timeout_seconds"`
	ModerationMode string  `json:"moderation_mode" db:"moderation_mode"`
}
