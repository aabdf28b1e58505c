package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/shopspring/decimal"
)

// ErrUnavailable covers an unreachable, failing or unauthorized gateway.
var ErrUnavailable = errors.New("payment service unavailable")

// DeclinedError is a domain failure reported by the gateway, such as a
// declined card or an invalid token. Message is safe to show the customer.
type DeclinedError struct {
	Code    string
	Message string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("payment declined (%s): %s", e.Code, e.Message)
}

type ChargeRequest struct {
	Amount   decimal.Decimal
	Currency string
	// Exactly one of CardID and Token is set.
	CardID string
	Token  string
	// CustomerID is the member's gateway customer. Empty for one-off tokens.
	CustomerID string
}

type CardRef struct {
	CardID string
	Last4  string
}

type Gateway interface {
	ChargeCard(ctx context.Context, req ChargeRequest) (chargeID string, err error)
	RefundCharge(ctx context.Context, chargeID string) error
	CreateCard(ctx context.Context, member *domain.Member, token string) (*CardRef, error)
	Last4ForToken(ctx context.Context, token string) (string, error)
}
