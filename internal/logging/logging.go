// Package logging builds the process-wide structured logger shared by all three processes.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap logger; pass true for development to get console output.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// WithChat returns a child logger scoped to a chat/tenant pair.
func WithChat(log *zap.Logger, tenantID, chatID string) *zap.Logger {
	return log.With(zap.String("tenant_id", tenantID), zap.String("chat_id", chatID))
}

// WithConversation returns a child logger scoped to a conversation.
func WithConversation(log *zap.Logger, conversationID string) *zap.Logger {
	return log.With(zap.String("conversation_id", conversationID))
}
