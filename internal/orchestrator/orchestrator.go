package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/agent"
	"github.com/tokowa/commerce-agent/internal/agent/llm"
	"github.com/tokowa/commerce-agent/internal/buffer"
	"github.com/tokowa/commerce-agent/internal/domain"
	"github.com/tokowa/commerce-agent/internal/events"
	"github.com/tokowa/commerce-agent/internal/outgoing"
)

const (
	historyLimit           = 20
	unavailableMessage     = "This number isn't currently active. Please contact us another way."
	configurationErrorText = "We're unable to respond right now due to a configuration issue. Our team has been notified."
	apologyText            = "Sorry, something went wrong on our end. Please try again in a moment."
)

// ModelFactory builds a langchaingo model for a resolved LLMConfig, e.g.
// selecting and configuring the openai/anthropic/etc. client named by
// cfg.Provider. Supplied by the caller so this package stays provider-agnostic.
type ModelFactory func(cfg *domain.LLMConfig) (llms.Model, error)

// Orchestrator implements the flush-callback pipeline (§4.9): it is the
// buffer.Callback invoked once per coalesced chat message.
type Orchestrator struct {
	tenants      TenantStore
	customers    CustomerStore
	conversations ConversationStore
	llmConfigs   LLMConfigStore

	graph        *agent.Graph
	modelFactory ModelFactory
	pacer        *outgoing.Pacer
	eventPub     *events.Publisher
	logger       *zap.Logger
}

// New builds an Orchestrator from its collaborators.
func New(
	tenants TenantStore,
	customers CustomerStore,
	conversations ConversationStore,
	llmConfigs LLMConfigStore,
	graph *agent.Graph,
	modelFactory ModelFactory,
	pacer *outgoing.Pacer,
	eventPub *events.Publisher,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		tenants:       tenants,
		customers:     customers,
		conversations: conversations,
		llmConfigs:    llmConfigs,
		graph:         graph,
		modelFactory:  modelFactory,
		pacer:         pacer,
		eventPub:      eventPub,
		logger:        logger,
	}
}

// HandleFlush is the buffer.Callback: it runs the full ten-step pipeline for
// one flushed chat buffer. Any internal error is caught and converted into
// a minimal customer-visible apology; the customer is never left silent.
func (o *Orchestrator) HandleFlush(ctx context.Context, chatID string, combined buffer.Combined) (err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("flush callback panicked", zap.String("chat_id", chatID), zap.Any("panic", r))
			o.sendStatic(ctx, "", chatID, apologyText)
			err = fmt.Errorf("flush callback panic: %v", r)
		}
	}()

	session, _, messageID := lastEntryRouting(combined.Entries)

	// Step 1: resolve tenant by wa_session.
	tenant, tErr := o.tenants.GetByWASession(ctx, session)
	if tErr != nil || tenant == nil || !tenant.Active {
		o.logger.Warn("flush: tenant unavailable", zap.String("session", session), zap.Error(tErr))
		o.sendStatic(ctx, session, chatID, unavailableMessage)
		return nil
	}

	// Step 2: resolve/create customer. The stored display name is not updated:
	// the buffered entries carry no sender name, so SetDisplayNameIfEmpty is
	// not called here.
	customer, cErr := o.customers.GetOrCreateByChat(ctx, tenant.ID, chatID)
	if cErr != nil {
		o.logger.Error("flush: resolve customer failed", zap.Error(cErr))
		o.sendStatic(ctx, session, chatID, apologyText)
		return nil
	}

	// Step 3: resolve/create conversation, keyed by (tenant, customer), identified by wa_chat_id.
	conversation, convErr := o.conversations.GetOrCreate(ctx, tenant.ID, customer.ID, chatID)
	if convErr != nil {
		o.logger.Error("flush: resolve conversation failed", zap.Error(convErr))
		o.sendStatic(ctx, session, chatID, apologyText)
		return nil
	}

	// Step 4: append the user message with its routing metadata.
	if appendErr := o.conversations.AppendMessage(ctx, conversation.ID, HistoryEntry{
		Role:    "user",
		Content: combined.Text,
		Metadata: map[string]interface{}{
			"message_id": messageID,
			"buffered":   len(combined.Entries) > 1,
		},
	}); appendErr != nil {
		o.logger.Error("flush: append user message failed", zap.Error(appendErr))
	}

	// Step 5: fetch last-20 messages and the customer context summary.
	history, histErr := o.conversations.RecentHistory(ctx, conversation.ID, historyLimit)
	if histErr != nil {
		o.logger.Error("flush: recent history fetch failed", zap.Error(histErr))
	}
	customerContext, ctxErr := o.customers.ContextSummary(ctx, tenant.ID, customer.ID)
	if ctxErr != nil {
		o.logger.Warn("flush: customer context summary failed", zap.Error(ctxErr))
		customerContext = map[string]interface{}{}
	}

	// Step 6: resolve llm_config.
	llmConfig, cfgErr := o.llmConfigs.GetByName(ctx, tenant.ID, tenant.LLMConfigName)
	if cfgErr != nil || llmConfig == nil {
		o.logger.Error("flush: llm_config resolution failed", zap.Error(cfgErr))
		o.sendStatic(ctx, session, chatID, configurationErrorText)
		return nil
	}

	model, modelErr := o.modelFactory(llmConfig)
	if modelErr != nil {
		o.logger.Error("flush: model factory failed", zap.Error(modelErr))
		o.sendStatic(ctx, session, chatID, configurationErrorText)
		return nil
	}

	state := &agent.State{
		TenantID:          tenant.ID,
		CustomerID:        customer.ID,
		ConversationID:    conversation.ID,
		CustomerContext:   customerContext,
		ConversationState: string(conversation.State),
		Messages:          toAgentMessages(history),
	}

	timeout := time.Duration(llmConfig.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	settings := agent.LLMSettings{
		ConfigName:  llmConfig.Name,
		Client:      llm.New(model),
		Temperature: llmConfig.Temperature,
		MaxTokens:   llmConfig.MaxTokens,
		Timeout:     timeout,
	}

	// Step 7: run the agent graph.
	result := o.graph.Run(ctx, state, tenant.AgentPrompt, settings)

	// Step 8: apply a new conversation_state only if legal.
	if result.NewConvState != "" {
		candidate := domain.ConversationState(result.NewConvState)
		if domain.CanTransitionTo(conversation.State, candidate) {
			if setErr := o.conversations.SetState(ctx, conversation.ID, candidate); setErr != nil {
				o.logger.Warn("flush: conversation state persist failed", zap.Error(setErr))
			}
		}
	}

	// Step 9: append the assistant response.
	if appendErr := o.conversations.AppendMessage(ctx, conversation.ID, HistoryEntry{
		Role:    "assistant",
		Content: result.FinalResponse,
	}); appendErr != nil {
		o.logger.Warn("flush: append assistant message failed", zap.Error(appendErr))
	}

	// Step 10: publish the response via the splitter/pacer.
	publishErr := o.pacer.PublishSplit(ctx, session, chatID, result.FinalResponse, messageID, map[string]interface{}{
		"conversation_id": conversation.ID,
		"intent":          result.Intent,
		"tools_used":      result.ToolsUsed,
	})
	if publishErr != nil {
		o.logger.Error("flush: publish response failed", zap.Error(publishErr))
	}

	o.publishProcessingEvent(ctx, tenant.ID, conversation.ID, result)
	return nil
}

// sendStatic publishes a single static message bypassing the agent graph
// entirely, for cases where the pipeline cannot even begin.
func (o *Orchestrator) sendStatic(ctx context.Context, session, chatID, text string) {
	if err := o.pacer.PublishSplit(ctx, session, chatID, text, "", nil); err != nil {
		o.logger.Error("flush: static message publish failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}

func (o *Orchestrator) publishProcessingEvent(ctx context.Context, tenantID, conversationID string, result *agent.State) {
	if o.eventPub == nil {
		return
	}
	evType := events.TypeProcessingCompleted
	if result.Error != "" {
		evType = events.TypeProcessingFailed
	}
	_ = o.eventPub.Publish(ctx, events.New(evType, tenantID, time.Now(), map[string]interface{}{
		"conversation_id": conversationID,
		"agent_type":      result.AgentType,
		"tokens_used":     result.TokensUsed,
	}))
}

func lastEntryRouting(entries []buffer.Entry) (session, tenantID, messageID string) {
	if len(entries) == 0 {
		return "", "", ""
	}
	last := entries[len(entries)-1]
	if v, ok := last.Metadata["session"].(string); ok {
		session = v
	}
	if v, ok := last.Metadata["tenant_id"].(string); ok {
		tenantID = v
	}
	if v, ok := last.Metadata["message_id"].(string); ok {
		messageID = v
	}
	return session, tenantID, messageID
}

func toAgentMessages(history []HistoryEntry) []agent.Message {
	out := make([]agent.Message, 0, len(history))
	for _, h := range history {
		out = append(out, agent.Message{Role: h.Role, Content: h.Content})
	}
	return out
}
