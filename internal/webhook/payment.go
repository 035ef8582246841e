package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tokowa/commerce-agent/internal/bus"
)

// PaymentTaskQueueLookup resolves which task queue a provider's webhooks
// should land on.
type PaymentTaskQueueLookup func(provider string) (taskQueue string, err error)

// PaymentHandler accepts gateway callbacks and enqueues them for async
// verification and processing. It acknowledges before the gateway signature
// is checked, matching the gateways' own fast-ack expectations; full
// verification happens downstream in the worker.
type PaymentHandler struct {
	publisher *bus.Publisher
	queueFor  PaymentTaskQueueLookup
	tracer    trace.Tracer
}

// NewPaymentHandler builds a PaymentHandler.
func NewPaymentHandler(publisher *bus.Publisher, queueFor PaymentTaskQueueLookup) *PaymentHandler {
	return &PaymentHandler{
		publisher: publisher,
		queueFor:  queueFor,
		tracer:    otel.Tracer("payment-webhook"),
	}
}

type paymentTaskMessage struct {
	Type        string          `json:"type"`
	Provider    string          `json:"provider"`
	WebhookType string          `json:"webhook_type"`
	OrderID     string          `json:"order_id"`
	Payload     json.RawMessage `json:"payload"`
}

// HandleWebhook enqueues a payment-gateway callback and returns immediately
// with a queued status, before the gateway's own signature is verified.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handle_payment_webhook",
		trace.WithAttributes(attribute.String("handler", "payment_webhook")))
	defer span.End()

	provider := c.Param("provider")
	if provider != "midtrans" && provider != "xendit" {
		c.JSON(http.StatusNotFound, gin.H{"status": "ignored", "reason": "unknown provider"})
		return
	}

	taskQueue, err := h.queueFor(provider)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "ignored", "reason": "unknown provider"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookPayloadSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "ignored", "reason": "body too large or unreadable"})
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "ignored", "reason": "invalid json"})
		return
	}
	orderID := orderIDFromPayload(provider, payload)

	msg := paymentTaskMessage{
		Type:        "payment_callback",
		Provider:    provider,
		WebhookType: "payment",
		OrderID:     orderID,
		Payload:     json.RawMessage(body),
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "ignored", "reason": "encode failure"})
		return
	}

	// Acknowledge the gateway immediately; gateway-signature verification
	// and idempotent order-status application happen in the worker.
	c.JSON(http.StatusOK, gin.H{"status": "queued", "provider": provider, "order_id": orderID})

	if err := h.publisher.PublishTask(ctx, taskQueue, encoded); err != nil {
		span.SetAttributes(attribute.String("publish_error", err.Error()))
	}
}

func orderIDFromPayload(provider string, payload map[string]interface{}) string {
	var key string
	switch provider {
	case "midtrans":
		key = "order_id"
	case "xendit":
		key = "external_id"
	default:
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
