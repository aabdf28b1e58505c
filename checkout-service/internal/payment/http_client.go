package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
)

type gatewayResponse struct {
	status int
	body   []byte
}

type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPClient talks JSON to the payment gateway. Transport errors, 5xx and
// auth failures count against the circuit breaker; 4xx declines and calls
// abandoned by the caller do not.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*gatewayResponse]
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		breaker: circuitbreaker.New[*gatewayResponse](circuitbreaker.Options{
			Name:             "payment-gateway",
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
			IsSuccessful:     countsAsHealthy,
			Logger:           logger,
		}),
	}
}

// countsAsHealthy keeps a caller's own cancellation from tripping the breaker.
func countsAsHealthy(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func (c *HTTPClient) ChargeCard(ctx context.Context, req ChargeRequest) (string, error) {
	payload := map[string]string{
		"amount":      req.Amount.StringFixed(2),
		"currency":    req.Currency,
		"card_id":     req.CardID,
		"token":       req.Token,
		"customer_id": req.CustomerID,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/v1/charges", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: charge response without id", ErrUnavailable)
	}
	return out.ID, nil
}

func (c *HTTPClient) RefundCharge(ctx context.Context, chargeID string) error {
	return c.call(ctx, http.MethodPost, "/v1/charges/"+url.PathEscape(chargeID)+"/refund", nil, nil)
}

func (c *HTTPClient) CreateCard(ctx context.Context, member *domain.Member, token string) (*CardRef, error) {
	payload := map[string]string{
		"customer_id": member.PaymentCustomerID,
		"email":       member.Email,
		"token":       token,
	}
	var out struct {
		CardID string `json:"card_id"`
		Last4  string `json:"last4"`
	}
	if err := c.call(ctx, http.MethodPost, "/v1/cards", payload, &out); err != nil {
		return nil, err
	}
	return &CardRef{CardID: out.CardID, Last4: out.Last4}, nil
}

func (c *HTTPClient) Last4ForToken(ctx context.Context, token string) (string, error) {
	var out struct {
		Last4 string `json:"last4"`
	}
	if err := c.call(ctx, http.MethodGet, "/v1/tokens/"+url.PathEscape(token), nil, &out); err != nil {
		return "", err
	}
	return out.Last4, nil
}

func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("marshal gateway request: %w", err)
		}
	}

	resp, err := c.breaker.Execute(func() (*gatewayResponse, error) {
		return c.send(ctx, method, path, body)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if resp.status >= 400 {
		var ge gatewayError
		if err := json.Unmarshal(resp.body, &ge); err != nil || ge.Message == "" {
			ge = gatewayError{Code: "rejected", Message: http.StatusText(resp.status)}
		}
		return &DeclinedError{Code: ge.Code, Message: ge.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%w: decode gateway response: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body []byte) (*gatewayResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	switch {
	case res.StatusCode >= 500:
		return nil, fmt.Errorf("gateway returned %d", res.StatusCode)
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, errors.New("gateway rejected credentials")
	}
	return &gatewayResponse{status: res.StatusCode, body: data}, nil
}
