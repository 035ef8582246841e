package payment

import (
	"context"
	"fmt"

	"github.com/tokowa/commerce-agent/internal/domain"
)

// Router dispatches to one of a tenant's configured gateways by name,
// satisfying the same Gateway contract as each individual client so the
// agent's payment tools and the worker's callback reconciliation can stay
// gateway-agnostic.
type Router struct {
	gateways map[string]Gateway
}

// NewRouter builds a Router over named gateways, e.g. {"midtrans": ..., "xendit": ...}.
func NewRouter(gateways map[string]Gateway) *Router {
	return &Router{gateways: gateways}
}

// CreateTransaction dispatches to the gateway named by payment.Gateway.
func (r *Router) CreateTransaction(ctx context.Context, pay *domain.Payment) (string, error) {
	gw, ok := r.gateways[pay.Gateway]
	if !ok {
		return "", fmt.Errorf("payment router: unconfigured gateway %q", pay.Gateway)
	}
	return gw.CreateTransaction(ctx, pay)
}

// CheckStatus dispatches to the named gateway.
func (r *Router) CheckStatus(ctx context.Context, provider, externalID string) (domain.PaymentStatus, error) {
	gw, ok := r.gateways[provider]
	if !ok {
		return "", fmt.Errorf("payment router: unconfigured gateway %q", provider)
	}
	return gw.CheckStatus(ctx, externalID)
}
