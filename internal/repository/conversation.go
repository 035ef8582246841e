package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tokowa/commerce-agent/internal/domain"
	"github.com/tokowa/commerce-agent/internal/orchestrator"
)

const (
	getConversationByChatSQL = `
		SELECT id, tenant_id, customer_id, state, created_at, updated_at
		FROM conversations
		WHERE tenant_id = $1 AND customer_id = $2
		ORDER BY created_at DESC
		LIMIT 1`

	createConversationSQL = `
		INSERT INTO conversations (id, tenant_id, customer_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	setConversationStateSQL = `
		UPDATE conversations SET state = $2, updated_at = $3 WHERE id = $1`

	appendMessageSQL = `
		INSERT INTO conversation_messages (id, conversation_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	recentHistorySQL = `
		SELECT role, content, metadata
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
)

// ConversationRepo is the Postgres-backed orchestrator.ConversationStore.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo builds a ConversationRepo over db.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// GetOrCreate resolves the most recent conversation for a (tenant, customer)
// pair, starting a fresh one in GREETING if none exists. waChatID is not
// stored separately: conversations are identified by customer, who is
// already resolved by chat.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, tenantID, customerID, waChatID string) (*domain.Conversation, error) {
	start := time.Now()
	var conv domain.Conversation
	err := r.db.GetContext(ctx, &conv, getConversationByChatSQL, tenantID, customerID)
	if err == nil {
		observe("conversation", "get_or_create", start, nil)
		return &conv, nil
	}
	if err != sql.ErrNoRows {
		observe("conversation", "get_or_create", start, err)
		return nil, errors.Wrap(err, "get conversation")
	}

	created := domain.NewConversation(uuid.NewString(), tenantID, customerID)
	_, err = r.db.ExecContext(ctx, createConversationSQL,
		created.ID, created.TenantID, created.CustomerID, created.State, created.CreatedAt, created.UpdatedAt)
	observe("conversation", "get_or_create", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "create conversation")
	}
	return created, nil
}

// SetState persists a new conversation_state. Validity is the caller's
// responsibility (domain.CanTransitionTo is checked before this is called).
func (r *ConversationRepo) SetState(ctx context.Context, conversationID string, state domain.ConversationState) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, setConversationStateSQL, conversationID, state, time.Now())
	observe("conversation", "set_state", start, err)
	if err != nil {
		return errors.Wrap(err, "set conversation state")
	}
	return nil
}

// AppendMessage records one turn of a conversation's history.
func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID string, entry orchestrator.HistoryEntry) error {
	start := time.Now()
	metaJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return errors.Wrap(err, "marshal message metadata")
	}
	_, err = r.db.ExecContext(ctx, appendMessageSQL,
		uuid.NewString(), conversationID, entry.Role, entry.Content, metaJSON, time.Now())
	observe("conversation", "append_message", start, err)
	if err != nil {
		return errors.Wrap(err, "append conversation message")
	}
	return nil
}

// RecentHistory returns the last limit messages, oldest first.
func (r *ConversationRepo) RecentHistory(ctx context.Context, conversationID string, limit int) ([]orchestrator.HistoryEntry, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, recentHistorySQL, conversationID, limit)
	if err != nil {
		observe("conversation", "recent_history", start, err)
		return nil, errors.Wrap(err, "query recent history")
	}
	defer rows.Close()

	var reversed []orchestrator.HistoryEntry
	for rows.Next() {
		var entry orchestrator.HistoryEntry
		var metaJSON []byte
		if err := rows.Scan(&entry.Role, &entry.Content, &metaJSON); err != nil {
			observe("conversation", "recent_history", start, err)
			return nil, errors.Wrap(err, "scan history row")
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &entry.Metadata)
		}
		reversed = append(reversed, entry)
	}
	observe("conversation", "recent_history", start, rows.Err())
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "iterate history rows")
	}

	history := make([]orchestrator.HistoryEntry, len(reversed))
	for i, e := range reversed {
		history[len(reversed)-1-i] = e
	}
	return history, nil
}
