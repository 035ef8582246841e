package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/tokowa/commerce-agent/internal/domain"
)

// MidtransGateway creates Snap transactions against the Midtrans API.
type MidtransGateway struct {
	baseURL    string
	serverKey  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

// NewMidtransGateway builds a MidtransGateway over the given Snap base URL
// and server key (sent as HTTP basic-auth username per Midtrans convention).
func NewMidtransGateway(baseURL, serverKey string) *MidtransGateway {
	return &MidtransGateway{
		baseURL:    baseURL,
		serverKey:  serverKey,
		httpClient: newHTTPClient(defaultTimeout),
		breaker:    newBreaker("midtrans"),
		limiter:    newLimiter(),
	}
}

type midtransChargeRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
}

type midtransChargeResponse struct {
	TransactionID string `json:"transaction_id"`
	RedirectURL   string `json:"redirect_url"`
}

type midtransStatusResponse struct {
	TransactionStatus string `json:"transaction_status"`
}

// CreateTransaction opens a Snap transaction for the payment's order/amount.
func (g *MidtransGateway) CreateTransaction(ctx context.Context, payment *domain.Payment) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "midtrans rate limit")
	}

	reqBody := midtransChargeRequest{}
	reqBody.TransactionDetails.OrderID = payment.OrderID
	reqBody.TransactionDetails.GrossAmount = payment.Amount.Amount
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "marshal midtrans request")
	}

	var out midtransChargeResponse
	_, err = g.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/snap/v1/transactions", bytes.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(g.serverKey, "")

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
			return nil, fmt.Errorf("midtrans charge failed: %d %s", resp.StatusCode, string(body))
		}
		return nil, json.Unmarshal(body, &out)
	})
	if err != nil {
		return "", errors.Wrap(err, "midtrans create transaction")
	}
	return out.TransactionID, nil
}

// CheckStatus polls a Midtrans transaction's current status.
func (g *MidtransGateway) CheckStatus(ctx context.Context, externalID string) (domain.PaymentStatus, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "midtrans rate limit")
	}

	var out midtransStatusResponse
	_, err := g.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/v2/%s/status", g.baseURL, externalID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(g.serverKey, "")

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
			return nil, fmt.Errorf("midtrans status check failed: %d %s", resp.StatusCode, string(body))
		}
		return nil, json.Unmarshal(body, &out)
	})
	if err != nil {
		return "", errors.Wrap(err, "midtrans check status")
	}
	return mapMidtransStatus(out.TransactionStatus), nil
}

func mapMidtransStatus(s string) domain.PaymentStatus {
	switch s {
	case "settlement", "capture":
		return domain.PaymentPaid
	case "pending":
		return domain.PaymentPendingPayment
	case "expire":
		return domain.PaymentExpired
	case "cancel", "deny":
		return domain.PaymentCancelled
	case "refund":
		return domain.PaymentRefunded
	default:
		return domain.PaymentFailed
	}
}
