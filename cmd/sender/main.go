// Command sender is the outbound delivery process: it drains wa_messages,
// the queue internal/outgoing's pacer publishes paced chunks onto, and
// delivers each chunk through the WAHA bridge client.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/bus"
	"github.com/tokowa/commerce-agent/internal/config"
	"github.com/tokowa/commerce-agent/internal/logging"
	"github.com/tokowa/commerce-agent/internal/outgoing"
	"github.com/tokowa/commerce-agent/internal/shutdown"
	"github.com/tokowa/commerce-agent/pkg/whatsapp"
)

const sendRetryDelay = 3 * time.Second

// chatIDKey is the bus.KeyFunc that keeps a chat's outgoing chunks on one
// worker, so chunk 2 can never be picked up and sent ahead of chunk 1 by a
// different goroutine. A malformed body (rejected by the handler anyway)
// hashes to an empty key, which is harmless beyond losing ordering for that
// single delivery.
func chatIDKey(body []byte) string {
	var msg outgoing.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return ""
	}
	return msg.ChatID
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	topology := bus.Topology{
		TaskQueue:     cfg.Bus.TaskQueue,
		CRMQueue:      cfg.Bus.CRMQueue,
		WAQueue:       cfg.Bus.WAQueue,
		EventExchange: cfg.Bus.EventExchange,
	}
	conn, err := bus.Dial(cfg.Bus.URL, topology, logger)
	if err != nil {
		logger.Fatal("dial message bus", zap.Error(err))
	}
	retry := bus.NewDelayedRetry(conn)

	bridge := whatsapp.NewClient(cfg.WhatsApp.ServerURL, cfg.WhatsApp.APIKey)

	handler := deliveryHandler(bridge, retry, cfg.Bus.WAQueue, logger)
	consumer := bus.NewConsumer(conn, cfg.Bus.WAQueue, 20, logger)
	if err := consumer.StartKeyed(handler, 20, chatIDKey); err != nil {
		logger.Fatal("start wa_messages consumer", zap.Error(err))
	}

	supervisor := shutdown.New(30*time.Second, logger)
	supervisor.Register(conn)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("sender received shutdown signal")

	if err := consumer.Stop(); err != nil {
		logger.Warn("wa_messages consumer stop timed out", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := supervisor.Shutdown(shutdownCtx); err != nil {
		logger.Error("sender shutdown sequence failed", zap.Error(err))
	}
}

func deliveryHandler(bridge *whatsapp.Client, retry *bus.DelayedRetry, queue string, logger *zap.Logger) bus.Handler {
	return func(ctx context.Context, body []byte) error {
		var msg outgoing.Message
		if err := json.Unmarshal(body, &msg); err != nil {
			logger.Warn("sender: malformed chunk, dead-lettering", zap.Error(err))
			return err
		}

		_, err := bridge.SendText(ctx, whatsapp.OutboundMessage{
			Session: msg.WASession,
			ChatID:  msg.ChatID,
			Text:    msg.Text,
			ReplyTo: msg.ReplyTo,
		})
		if err == nil {
			return nil
		}

		logger.Warn("sender: bridge delivery failed, rescheduling",
			zap.String("chat_id", msg.ChatID), zap.Error(err))
		if scheduleErr := retry.Schedule(ctx, queue, sendRetryDelay, body); scheduleErr != nil {
			return fmt.Errorf("deliver chunk: %w (reschedule failed: %v)", err, scheduleErr)
		}
		return nil
	}
}
