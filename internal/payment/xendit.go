package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tokowa/commerce-agent/internal/domain"
)

// XenditGateway creates invoices against the Xendit API.
type XenditGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

// NewXenditGateway builds a XenditGateway over the given base URL and
// secret API key (sent as HTTP basic-auth username per Xendit convention).
func NewXenditGateway(baseURL, apiKey string) *XenditGateway {
	return &XenditGateway{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(defaultTimeout),
		breaker:    newBreaker("xendit"),
		limiter:    newLimiter(),
	}
}

type xenditInvoiceRequest struct {
	ExternalID string `json:"external_id"`
	Amount     int64  `json:"amount"`
}

type xenditInvoiceResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateTransaction opens an invoice for the payment's order/amount.
func (g *XenditGateway) CreateTransaction(ctx context.Context, payment *domain.Payment) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "xendit rate limit")
	}

	reqBody := xenditInvoiceRequest{ExternalID: payment.OrderID, Amount: payment.Amount.Amount}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "marshal xendit request")
	}

	var out xenditInvoiceResponse
	_, err = g.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v2/invoices", bytes.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(g.apiKey, "")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("xendit create invoice failed: %d %s", resp.StatusCode, string(body))
		}
		return nil, json.Unmarshal(body, &out)
	})
	if err != nil {
		return "", errors.Wrap(err, "xendit create transaction")
	}
	return out.ID, nil
}

// CheckStatus polls a Xendit invoice's current status.
func (g *XenditGateway) CheckStatus(ctx context.Context, externalID string) (domain.PaymentStatus, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "xendit rate limit")
	}

	var out xenditInvoiceResponse
	_, err := g.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/v2/invoices/%s", g.baseURL, externalID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(g.apiKey, "")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("xendit status check failed: %d %s", resp.StatusCode, string(body))
		}
		return nil, json.Unmarshal(body, &out)
	})
	if err != nil {
		return "", errors.Wrap(err, "xendit check status")
	}
	return mapXenditStatus(out.Status), nil
}

func mapXenditStatus(s string) domain.PaymentStatus {
	switch s {
	case "PAID", "SETTLED":
		return domain.PaymentPaid
	case "PENDING":
		return domain.PaymentPendingPayment
	case "EXPIRED":
		return domain.PaymentExpired
	default:
		return domain.PaymentFailed
	}
}
