package payment

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrUnknownCharge = errors.New("unknown charge")

// Simulator is an in-process gateway for local runs. Tokens and card ids
// starting with "tok_decline" are declined and ones starting with
// "tok_unavailable" fail as if the gateway were down. Refunds always succeed
// for known charges.
type Simulator struct {
	mu       sync.Mutex
	charges  map[string]decimal.Decimal
	refunded map[string]bool
	cards    map[string]string
}

func NewSimulator() *Simulator {
	return &Simulator{
		charges:  make(map[string]decimal.Decimal),
		refunded: make(map[string]bool),
		cards:    make(map[string]string),
	}
}

func (s *Simulator) ChargeCard(_ context.Context, req ChargeRequest) (string, error) {
	source := req.Token
	if source == "" {
		source = req.CardID
	}
	if err := outcomeFor(source); err != nil {
		return "", err
	}
	if !req.Amount.IsPositive() {
		return "", &DeclinedError{Code: "invalid_amount", Message: "amount must be positive"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.CardID != "" {
		if _, ok := s.cards[req.CardID]; !ok {
			return "", &DeclinedError{Code: "invalid_card", Message: "card not found"}
		}
	}
	id := "ch_" + uuid.NewString()
	s.charges[id] = req.Amount
	return id, nil
}

func (s *Simulator) RefundCharge(_ context.Context, chargeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.charges[chargeID]; !ok {
		return ErrUnknownCharge
	}
	s.refunded[chargeID] = true
	return nil
}

func (s *Simulator) CreateCard(_ context.Context, _ *domain.Member, token string) (*CardRef, error) {
	if err := outcomeFor(token); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := "card_" + uuid.NewString()
	s.cards[id] = token
	return &CardRef{CardID: id, Last4: last4(token)}, nil
}

func (s *Simulator) Last4ForToken(_ context.Context, token string) (string, error) {
	if err := outcomeFor(token); err != nil {
		return "", err
	}
	return last4(token), nil
}

// Refunded reports whether the charge was refunded.
func (s *Simulator) Refunded(chargeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refunded[chargeID]
}

func outcomeFor(source string) error {
	switch {
	case strings.HasPrefix(source, "tok_decline"):
		return &DeclinedError{Code: "card_declined", Message: "Your card was declined."}
	case strings.HasPrefix(source, "tok_unavailable"):
		return ErrUnavailable
	case strings.TrimSpace(source) == "":
		return &DeclinedError{Code: "invalid_token", Message: "A payment method is required."}
	}
	return nil
}

// last4 takes the trailing digits of the token, defaulting to the test card.
func last4(token string) string {
	var digits []byte
	for i := len(token) - 1; i >= 0 && len(digits) < 4; i-- {
		if token[i] >= '0' && token[i] <= '9' {
			digits = append([]byte{token[i]}, digits...)
		}
	}
	if len(digits) < 4 {
		return "4242"
	}
	return string(digits)
}
