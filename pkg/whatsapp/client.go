package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultRatePerSecond = 20
	defaultBurst         = 40
)

// Client delivers outgoing text messages through a WAHA bridge instance and
// polls their delivery status, behind a circuit breaker and rate limiter so
// a stalled bridge degrades the sender process instead of wedging it.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

// NewClient builds a Client against a WAHA bridge at baseURL, authenticating
// with apiKey via the X-Api-Key header.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "whatsapp-bridge",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		limiter: rate.NewLimiter(rate.Limit(defaultRatePerSecond), defaultBurst),
	}
}

type sendTextRequest struct {
	Session string `json:"session"`
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// SendText delivers one text message through session to chatID, returning
// the bridge's assigned message id for later status polling.
func (c *Client) SendText(ctx context.Context, msg OutboundMessage) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "whatsapp bridge rate limit")
	}

	reqBody := sendTextRequest{Session: msg.Session, ChatID: msg.ChatID, Text: msg.Text, ReplyTo: msg.ReplyTo}
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "marshal send request")
	}

	var out SendResult
	_, err = c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sendText", bytes.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("whatsapp bridge sendText failed: %d %s", resp.StatusCode, string(body))
		}
		return nil, json.Unmarshal(body, &out)
	})
	if err != nil {
		return "", errors.Wrap(err, "whatsapp bridge send text")
	}
	return out.ID, nil
}

type statusResponse struct {
	Status string `json:"status"`
}

// MessageStatus polls the bridge for a previously sent message's current ack state.
func (c *Client) MessageStatus(ctx context.Context, messageID string) (MessageStatus, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "whatsapp bridge rate limit")
	}

	var out statusResponse
	_, err := c.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/api/messages/%s", c.baseURL, messageID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("whatsapp bridge status check failed: %d %s", resp.StatusCode, string(body))
		}
		return nil, json.Unmarshal(body, &out)
	})
	if err != nil {
		return "", errors.Wrap(err, "whatsapp bridge message status")
	}
	return MessageStatus(out.Status), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
}
