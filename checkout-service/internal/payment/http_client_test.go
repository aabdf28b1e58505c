package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/pkg/circuitbreaker"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, "secret", 2*time.Second, nil)
}

func TestHTTPClient_ChargeCard_Success(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ch_123"}`))
	})

	id, err := client.ChargeCard(context.Background(), ChargeRequest{
		Amount:     decimal.RequireFromString("79.1"),
		Currency:   "CAD",
		CardID:     "card_1",
		CustomerID: "cus_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ch_123", id)
	assert.Equal(t, "79.10", got["amount"])
	assert.Equal(t, "cus_1", got["customer_id"])
}

func TestHTTPClient_ChargeCard_Declined(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"code":"card_declined","message":"Insufficient funds"}`))
	})

	_, err := client.ChargeCard(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(1), Token: "tok"})

	var declined *DeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, "card_declined", declined.Code)
	assert.Equal(t, "Insufficient funds", declined.Message)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_ServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ChargeCard(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(1), Token: "tok"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_UnauthorizedIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.RefundCharge(context.Background(), "ch_1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 8; i++ {
		_, err := client.Last4ForToken(context.Background(), "tok_1234")
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, 5, calls)
}

func TestHTTPClient_RefundAndCards(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/charges/ch_9/refund":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		case "/v1/cards":
			_, _ = w.Write([]byte(`{"card_id":"card_7","last4":"1881"}`))
		case "/v1/tokens/tok_1881":
			_, _ = w.Write([]byte(`{"last4":"1881"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	require.NoError(t, client.RefundCharge(ctx, "ch_9"))

	ref, err := client.CreateCard(ctx, &domain.Member{ID: 1, Email: "a@b.c"}, "tok_1881")
	require.NoError(t, err)
	assert.Equal(t, "card_7", ref.CardID)

	last4, err := client.Last4ForToken(ctx, "tok_1881")
	require.NoError(t, err)
	assert.Equal(t, "1881", last4)
}

func TestHTTPClient_OpenBreakerErrorIsDetectable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	var err error
	for i := 0; i < 5; i++ {
		_, err = client.Last4ForToken(context.Background(), "tok_1234")
		assert.False(t, circuitbreaker.IsOpen(err), "call %d reached the gateway", i)
	}

	_, err = client.Last4ForToken(context.Background(), "tok_1234")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.True(t, circuitbreaker.IsOpen(err))
}

func TestHTTPClient_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"last4":"4242"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 8; i++ {
		_, err := client.Last4ForToken(ctx, "tok_4242")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.False(t, circuitbreaker.IsOpen(err))
	}

	last4, err := client.Last4ForToken(context.Background(), "tok_4242")
	require.NoError(t, err)
	assert.Equal(t, "4242", last4)
	assert.Equal(t, 1, calls)
}
