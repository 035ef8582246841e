// Command worker is the Agent Worker process: it consumes inbound
// WhatsApp and payment-callback tasks, runs the dedup gate, the
// buffer-and-flush engine, and the agent graph, then hands the reply to
// the outgoing pacer.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/agent"
	"github.com/tokowa/commerce-agent/internal/agent/tools"
	"github.com/tokowa/commerce-agent/internal/buffer"
	"github.com/tokowa/commerce-agent/internal/bus"
	"github.com/tokowa/commerce-agent/internal/cache"
	"github.com/tokowa/commerce-agent/internal/config"
	"github.com/tokowa/commerce-agent/internal/dedup"
	"github.com/tokowa/commerce-agent/internal/domain"
	"github.com/tokowa/commerce-agent/internal/events"
	"github.com/tokowa/commerce-agent/internal/geocode"
	"github.com/tokowa/commerce-agent/internal/logging"
	"github.com/tokowa/commerce-agent/internal/orchestrator"
	"github.com/tokowa/commerce-agent/internal/outgoing"
	"github.com/tokowa/commerce-agent/internal/payment"
	"github.com/tokowa/commerce-agent/internal/repository"
	"github.com/tokowa/commerce-agent/internal/resilience"
	"github.com/tokowa/commerce-agent/internal/shutdown"
)

// inboundTask mirrors the crm_tasks wire shape internal/webhook publishes.
type inboundTask struct {
	Type        string                 `json:"type"`
	Session     string                 `json:"session"`
	ChatID      string                 `json:"chat_id"`
	MessageType string                 `json:"message_type"`
	Content     string                 `json:"content"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	TenantID    string                 `json:"tenant_id"`
	WebhookType string                 `json:"webhook_type"`
	// payment_callback fields
	Provider string          `json:"provider,omitempty"`
	OrderID  string          `json:"order_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
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

	db, err := repository.Open(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	cacheClient, err := cache.New(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("connect to cache", zap.Error(err))
	}

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
	publisher := bus.NewPublisher(conn, logger)
	retry := bus.NewDelayedRetry(conn)

	tenants := repository.NewTenantRepo(db)
	customers := repository.NewCustomerRepo(db)
	conversations := repository.NewConversationRepo(db)
	llmConfigs := repository.NewLLMConfigRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)
	payments := repository.NewPaymentRepo(db)
	labels := repository.NewLabelRepo(db)

	gateways := map[string]payment.Gateway{}
	if cfg.Payment.MidtransServerKey != "" {
		gateways["midtrans"] = payment.NewMidtransGateway(midtransBaseURL(cfg.Payment.MidtransProduction), cfg.Payment.MidtransServerKey)
	}
	if cfg.Payment.XenditSecretKey != "" {
		gateways["xendit"] = payment.NewXenditGateway("https://api.xendit.co", cfg.Payment.XenditSecretKey)
	}
	gatewayRouter := payment.NewRouter(gateways)

	geo := geocode.New(cfg.Geocoding.APIKey)

	toolSpecs := tools.CatalogSpecs(customers, products)
	toolSpecs = append(toolSpecs, tools.OrderSpecs(orders, products, "IDR")...)
	toolSpecs = append(toolSpecs, tools.PaymentSpecs(orders, payments, gatewayRouter)...)
	toolSpecs = append(toolSpecs, tools.SupportSpecs(labels)...)
	toolSpecs = append(toolSpecs, tools.GeocodeSpecs(geoResolver{geo})...)
	toolRegistry := tools.NewRegistry(toolSpecs)

	circuits := resilience.NewRegistry(resilience.CircuitConfig{
		FailureThreshold: cfg.Circuit.FailureThreshold,
		SuccessThreshold: cfg.Circuit.SuccessThreshold,
		Timeout:          cfg.Circuit.Timeout,
	})
	nodeBackoff := resilience.BackoffConfig{
		Initial:    cfg.LLM.RetryInitial,
		Max:        cfg.LLM.RetryMax,
		Multiplier: cfg.LLM.RetryMultiplier,
		Jitter:     0.1,
		MaxRetries: cfg.LLM.MaxRetries,
	}
	graphBackoff := nodeBackoff
	graph := agent.NewGraph(circuits, nodeBackoff, graphBackoff, toolRegistry, logger)

	pacer := outgoing.NewPacer(publisher, cfg.Bus.WAQueue)
	eventPub := events.NewPublisher(publisher, cfg.Bus.EventExchange)

	orch := orchestrator.New(tenants, customers, conversations, llmConfigs, graph, modelFactory, pacer, eventPub, logger)

	buf := buffer.New(cacheClient, buffer.Config{
		InitialDelay: cfg.Buffer.InitialDelay,
		ExtendDelay:  cfg.Buffer.ExtendDelay,
		MaxDelay:     cfg.Buffer.MaxDelay,
		Grace:        cfg.Buffer.Grace,
	})
	flushWorker := buffer.NewFlushWorker(buf, cfg.Buffer.FlushInterval, orch.HandleFlush, logger)
	flushWorker.Start()

	dedupGate := dedup.New(cacheClient, dedup.DefaultTTL, false, logger)

	crmHandler := taskHandler(buf, dedupGate, retry, cfg.Bus.CRMQueue, payments, orders, gatewayRouter, logger, cfg)
	crmConsumer := bus.NewConsumer(conn, cfg.Bus.CRMQueue, 10, logger)
	if err := crmConsumer.Start(crmHandler, 10); err != nil {
		logger.Fatal("start crm_tasks consumer", zap.Error(err))
	}
	taskHandlerFn := taskHandler(buf, dedupGate, retry, cfg.Bus.TaskQueue, payments, orders, gatewayRouter, logger, cfg)
	taskConsumer := bus.NewConsumer(conn, cfg.Bus.TaskQueue, 1, logger)
	if err := taskConsumer.Start(taskHandlerFn, 4); err != nil {
		logger.Fatal("start ai_tasks consumer", zap.Error(err))
	}

	metricsSrv := &http.Server{Addr: ":9100", Handler: promhttp.Handler()}
	go func() {
		if serveErr := metricsSrv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Warn("metrics server stopped", zap.Error(serveErr))
		}
	}()

	supervisor := shutdown.New(30*time.Second, logger)
	supervisor.Register(flushWorker)
	supervisor.Register(db)
	supervisor.Register(cacheClient)
	supervisor.Register(conn)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("worker received shutdown signal")

	if err := crmConsumer.Stop(); err != nil {
		logger.Warn("crm_tasks consumer stop timed out", zap.Error(err))
	}
	if err := taskConsumer.Stop(); err != nil {
		logger.Warn("ai_tasks consumer stop timed out", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	if err := supervisor.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker shutdown sequence failed", zap.Error(err))
	}
}

func midtransBaseURL(production bool) string {
	if production {
		return "https://api.midtrans.com"
	}
	return "https://api.sandbox.midtrans.com"
}

// modelFactory selects and configures a langchaingo chat model for a
// tenant's resolved LLM configuration. Only the openai-compatible provider
// family is wired; an unknown provider is a configuration error surfaced
// to the caller rather than silently defaulting.
func modelFactory(cfg *domain.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "openai", "":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		return openai.New(openai.WithToken(apiKey), openai.WithModel(cfg.Model))
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// geoResolver adapts geocode.Client to tools.AddressResolver.
type geoResolver struct {
	client *geocode.Client
}

func (g geoResolver) Resolve(ctx context.Context, address string) (float64, float64, bool, error) {
	coords, err := g.client.Resolve(ctx, address)
	if err != nil {
		return 0, 0, false, err
	}
	if coords == nil {
		return 0, 0, false, nil
	}
	return coords.Lat, coords.Lng, true, nil
}
