// Command gateway runs the HTTP-facing process: webhook ingress for the
// WhatsApp bridge and payment gateways, the tenant/catalog CRUD surface,
// and the /v1/jobs submit/poll API. It never touches the agent graph or
// the broker's consume side directly.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/bus"
	"github.com/tokowa/commerce-agent/internal/cache"
	"github.com/tokowa/commerce-agent/internal/config"
	"github.com/tokowa/commerce-agent/internal/httpapi"
	"github.com/tokowa/commerce-agent/internal/jobs"
	"github.com/tokowa/commerce-agent/internal/logging"
	"github.com/tokowa/commerce-agent/internal/repository"
	"github.com/tokowa/commerce-agent/internal/shutdown"
	"github.com/tokowa/commerce-agent/internal/webhook"
)

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(gin.Mode() == gin.DebugMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := repository.Open(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}

	if err := repository.Migrate(db.DB, migrationsPath); err != nil {
		logger.Fatal("apply database migrations", zap.Error(err))
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

	tenants := repository.NewTenantRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)
	labels := repository.NewLabelRepo(db)
	quickReplies := repository.NewQuickReplyRepo(db)
	tickets := repository.NewTicketRepo(db)
	jobStore := jobs.NewStore(cacheClient)

	api := httpapi.NewServer(tenants, products, orders, labels, quickReplies, tickets, jobStore, publisher, cfg.Bus.TaskQueue)

	waHandler := webhook.NewWhatsAppHandler(publisher, tenantSecretLookup(tenants, cfg), cfg.WhatsApp.WebhookSecret)
	payHandler := webhook.NewPaymentHandler(publisher, paymentQueueLookup(cfg))

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	webhook.RegisterRoutes(router, waHandler, payHandler)
	api.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("gateway listening", zap.String("addr", srv.Addr))
		if serveErr := srv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Fatal("gateway server failed", zap.Error(serveErr))
		}
	}()

	supervisor := shutdown.New(cfg.Server.ShutdownTimeout, logger)
	supervisor.Register(db)
	supervisor.Register(cacheClient)
	supervisor.Register(conn)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("gateway received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	if err := supervisor.Shutdown(shutdownCtx); err != nil {
		logger.Error("gateway shutdown sequence failed", zap.Error(err))
	}
}

func tenantSecretLookup(tenants *repository.TenantRepo, cfg *config.Config) webhook.TenantSecretLookup {
	return func(tenantID string) (string, string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tenant, err := tenants.GetByID(ctx, tenantID)
		if err != nil {
			return "", "", err
		}
		if tenant == nil || !tenant.Active {
			return "", "", fmt.Errorf("tenant %s is not active", tenantID)
		}
		return cfg.WhatsApp.WebhookSecret, cfg.Bus.CRMQueue, nil
	}
}

func paymentQueueLookup(cfg *config.Config) webhook.PaymentTaskQueueLookup {
	return func(provider string) (string, error) {
		return cfg.Bus.CRMQueue, nil
	}
}
