package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/buffer"
	"github.com/tokowa/commerce-agent/internal/bus"
	"github.com/tokowa/commerce-agent/internal/config"
	"github.com/tokowa/commerce-agent/internal/dedup"
	"github.com/tokowa/commerce-agent/internal/domain"
	"github.com/tokowa/commerce-agent/internal/payment"
	"github.com/tokowa/commerce-agent/internal/repository"
)

// taskHandler builds the bus.Handler that dispatches ai_tasks/crm_tasks
// deliveries by their wire "type": inbound chat messages feed the
// buffer-and-flush engine after the dedup gate, payment-gateway callbacks
// reconcile order/payment status.
func taskHandler(
	buf *buffer.Buffer,
	dedupGate *dedup.Deduplicator,
	retry *bus.DelayedRetry,
	queue string,
	payments *repository.PaymentRepo,
	orders *repository.OrderRepo,
	gateways *payment.Router,
	logger *zap.Logger,
	cfg *config.Config,
) bus.Handler {
	return func(ctx context.Context, body []byte) error {
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(body, &probe); err != nil {
			logger.Warn("task handler: malformed message, dead-lettering", zap.Error(err))
			return err
		}

		switch probe.Type {
		case "inbound_message":
			return handleInboundMessage(ctx, buf, dedupGate, body)
		case "payment_callback":
			return handlePaymentCallback(ctx, payments, orders, gateways, retry, queue, body)
		default:
			logger.Warn("task handler: unknown message type, dead-lettering", zap.String("type", probe.Type))
			return fmt.Errorf("unknown task type %q", probe.Type)
		}
	}
}

func handleInboundMessage(ctx context.Context, buf *buffer.Buffer, dedupGate *dedup.Deduplicator, body []byte) error {
	var msg inboundTask
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode inbound task: %w", err)
	}

	messageID := metadataString(msg.Metadata, "message_id")
	if dedupGate.CheckAndMark(ctx, msg.TenantID, msg.ChatID, messageID) {
		return nil
	}

	metadata := map[string]interface{}{
		"session":      msg.Session,
		"tenant_id":    msg.TenantID,
		"message_id":   messageID,
		"message_type": msg.MessageType,
	}
	_, err := buf.AddMessage(ctx, msg.ChatID, msg.Content, time.Now(), metadata)
	if err != nil {
		return fmt.Errorf("buffer inbound message: %w", err)
	}
	return nil
}

const paymentCallbackRetryDelay = 5 * time.Second

func handlePaymentCallback(ctx context.Context, payments *repository.PaymentRepo, orders *repository.OrderRepo, gateways *payment.Router, retry *bus.DelayedRetry, queue string, body []byte) error {
	var msg inboundTask
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode payment callback: %w", err)
	}

	pay, err := payments.GetByExternalID(ctx, msg.Provider, msg.OrderID)
	if err != nil {
		return fmt.Errorf("lookup payment by external id: %w", err)
	}
	if pay == nil || pay.IsTerminal() {
		return nil
	}

	status, err := gateways.CheckStatus(ctx, msg.Provider, pay.ExternalID)
	if err != nil {
		// CheckStatus runs behind the gateway client's own circuit breaker and
		// rate limiter; any failure, an open breaker included, is rescheduled
		// rather than dead-lettered on the first miss.
		if scheduleErr := retry.Schedule(ctx, queue, paymentCallbackRetryDelay, body); scheduleErr != nil {
			return fmt.Errorf("check gateway status: %w (reschedule failed: %v)", err, scheduleErr)
		}
		return nil
	}
	if !domain.IsPaymentTransitionValid(pay.Status, status) {
		return nil
	}
	if err := pay.TransitionTo(status); err != nil {
		return nil
	}
	if err := payments.Update(ctx, pay); err != nil {
		return fmt.Errorf("persist payment status: %w", err)
	}

	if status != domain.PaymentPaid {
		return nil
	}
	order, err := orders.GetByID(ctx, pay.TenantID, pay.OrderID)
	if err != nil || order == nil {
		return fmt.Errorf("lookup order for paid payment: %w", err)
	}
	if domain.IsOrderTransitionValid(order.Status, domain.OrderConfirmed) {
		order.Status = domain.OrderConfirmed
		order.UpdatedAt = time.Now()
		if err := orders.Update(ctx, order); err != nil {
			return fmt.Errorf("persist confirmed order: %w", err)
		}
	}
	return nil
}

func metadataString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
