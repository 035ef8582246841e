// Package orchestrator implements the flush-callback: the ten-step pipeline
// that turns one combined buffered message into a customer-visible reply.
package orchestrator

import (
	"context"

	"github.com/tokowa/commerce-agent/internal/domain"
)

// TenantStore resolves tenants by their WhatsApp bridge session.
type TenantStore interface {
	GetByWASession(ctx context.Context, waSession string) (*domain.Tenant, error)
}

// CustomerStore resolves or creates customers by (tenant, chat) and
// supplies the context summary tool nodes and prompts need.
type CustomerStore interface {
	GetOrCreateByChat(ctx context.Context, tenantID, waChatID string) (*domain.Customer, error)
	SetDisplayNameIfEmpty(ctx context.Context, tenantID, customerID, name string) error
	ContextSummary(ctx context.Context, tenantID, customerID string) (map[string]interface{}, error)
}

// HistoryEntry is one message in a conversation's hot-state history.
type HistoryEntry struct {
	Role     string
	Content  string
	Metadata map[string]interface{}
}

// ConversationStore resolves or creates the hot conversation state and
// maintains its bounded message history.
type ConversationStore interface {
	GetOrCreate(ctx context.Context, tenantID, customerID, waChatID string) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, conversationID string, entry HistoryEntry) error
	RecentHistory(ctx context.Context, conversationID string, limit int) ([]HistoryEntry, error)
	SetState(ctx context.Context, conversationID string, state domain.ConversationState) error
}

// LLMConfigStore resolves a tenant's named LLM configuration.
type LLMConfigStore interface {
	GetByName(ctx context.Context, tenantID, name string) (*domain.LLMConfig, error)
}
