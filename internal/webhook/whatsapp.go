package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tokowa/commerce-agent/internal/bus"
)

// maxWebhookPayloadSize bounds the body gin will read for a webhook request.
const maxWebhookPayloadSize = 1024 * 1024 * 16

// TenantSecretLookup resolves the configured webhook secret for a tenant.
type TenantSecretLookup func(tenantID string) (secret string, taskQueue string, err error)

// WhatsAppHandler accepts the bridge's inbound message and verification
// webhooks and publishes exactly one task message per inbound event.
type WhatsAppHandler struct {
	publisher   *bus.Publisher
	secrets     TenantSecretLookup
	payloadPool sync.Pool
	tracer      trace.Tracer
	verifyToken string
}

// NewWhatsAppHandler builds a WhatsAppHandler.
func NewWhatsAppHandler(publisher *bus.Publisher, secrets TenantSecretLookup, verifyToken string) *WhatsAppHandler {
	return &WhatsAppHandler{
		publisher: publisher,
		secrets:   secrets,
		payloadPool: sync.Pool{
			New: func() interface{} { return make([]byte, 0, maxWebhookPayloadSize) },
		},
		tracer:      otel.Tracer("whatsapp-webhook"),
		verifyToken: verifyToken,
	}
}

// taskMessage is the crm_tasks queue wire shape.
type taskMessage struct {
	Type        string                 `json:"type"`
	Session     string                 `json:"session"`
	ChatID      string                 `json:"chat_id"`
	MessageType string                 `json:"message_type"`
	Content     string                 `json:"content"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	TenantID    string                 `json:"tenant_id"`
	WebhookType string                 `json:"webhook_type"`
}

// HandleWebhook authenticates, parses, and enqueues one inbound WhatsApp event.
func (h *WhatsAppHandler) HandleWebhook(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handle_whatsapp_webhook",
		trace.WithAttributes(attribute.String("handler", "whatsapp_webhook")))
	defer span.End()

	tenantID := c.Param("tenant_id")
	secret, taskQueue, err := h.secrets(tenantID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "ignored", "reason": "unknown tenant"})
		return
	}

	pooled := h.payloadPool.Get().([]byte)
	buf := bytes.NewBuffer(pooled[:0])
	defer func() { h.payloadPool.Put(buf.Bytes()[:0]) }()

	if _, err := buf.ReadFrom(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookPayloadSize)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "ignored", "reason": "body too large or unreadable"})
		return
	}
	body := buf.Bytes()

	signature := c.GetHeader("X-Webhook-Signature")
	if !verifySignature(secret, body, signature) {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "ignored", "reason": "invalid signature"})
		return
	}

	var event map[string]interface{}
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "ignored", "reason": "invalid json"})
		return
	}

	msg := taskMessage{
		Type:        "inbound_message",
		Session:     stringField(event, "session"),
		ChatID:      stringField(event, "chat_id"),
		MessageType: stringField(event, "message_type"),
		Content:     stringField(event, "content"),
		Metadata:    mapField(event, "metadata"),
		TenantID:    tenantID,
		WebhookType: "whatsapp",
	}

	encoded, err := json.Marshal(msg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "ignored", "reason": "encode failure"})
		return
	}

	if err := h.publisher.PublishTask(ctx, taskQueue, encoded); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "ignored", "reason": "publish failure"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "queued"})
}

// VerifyWebhook answers the bridge's verification challenge, echoing the
// challenge value if the caller's verify_token matches.
func (h *WhatsAppHandler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.JSON(http.StatusForbidden, gin.H{"status": "ignored", "reason": "verification failed"})
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func mapField(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}
