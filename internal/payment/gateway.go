// Package payment implements thin HTTP clients for the payment gateways
// tenants can configure, each behind the same Gateway contract the agent's
// payment tools depend on.
package payment

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tokowa/commerce-agent/internal/domain"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultRatePerSecond = 10
	defaultBurst         = 20
)

// Gateway creates and reconciles payment transactions against an external
// provider. Satisfies internal/agent/tools.PaymentGateway.
type Gateway interface {
	CreateTransaction(ctx context.Context, payment *domain.Payment) (externalID string, err error)
	CheckStatus(ctx context.Context, externalID string) (domain.PaymentStatus, error)
}

// newHTTPClient builds a pooled client matching the teacher's transport tuning.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

func newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(defaultRatePerSecond), defaultBurst)
}
