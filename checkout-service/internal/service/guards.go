package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	d "github.com/fjod/go_cart/checkout-service/domain"
	r "github.com/fjod/go_cart/checkout-service/internal/repository"
	"github.com/fjod/go_cart/checkout-service/internal/session"
)

// Every step re-runs the guards of the steps before it. A saved reference that
// no longer resolves counts as an unset field.

func (s *CheckoutServiceImpl) requireCart(ctx context.Context, memberID int64) (*d.Cart, error) {
	cart, err := s.Cart(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, s.redirect(d.StepNoCart, ErrEmptyCart, "Your cart is empty.")
	}
	return cart, nil
}

// loadSession returns an empty state when the session has none yet.
func (s *CheckoutServiceImpl) loadSession(ctx context.Context, sessionID string) (*d.CheckoutSessionState, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if errors.Is(err, session.ErrNoSession) {
		return &d.CheckoutSessionState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}
	return state, nil
}

func (s *CheckoutServiceImpl) resolveShipping(ctx context.Context, memberID int64, state *d.CheckoutSessionState) (d.Address, error) {
	missing := func() (d.Address, error) {
		return d.Address{}, s.redirect(d.StepShippingInfo, ErrMissingShipping, "Please choose a shipping address.")
	}
	if state.Shipping == nil {
		return missing()
	}

	switch state.Shipping.Kind {
	case d.ShippingSavedAddress:
		saved, err := s.repo.FindAddress(ctx, memberID, state.Shipping.AddressID)
		if errors.Is(err, r.ErrNotFound) {
			return missing()
		}
		if err != nil {
			return d.Address{}, fmt.Errorf("failed to load address: %w", err)
		}
		return saved.Address, nil
	case d.ShippingInlineAddress:
		if state.Shipping.Inline == nil || !state.Shipping.Inline.Complete() {
			return missing()
		}
		return *state.Shipping.Inline, nil
	default:
		return missing()
	}
}

// resolvedBilling is the payment method behind a session's billing choice.
// Card is set for saved cards, Token for one-off tokens.
type resolvedBilling struct {
	Card  *d.SavedCard
	Token string
}

func (s *CheckoutServiceImpl) resolveBilling(ctx context.Context, memberID int64, state *d.CheckoutSessionState) (*resolvedBilling, error) {
	missing := func() (*resolvedBilling, error) {
		return nil, s.redirect(d.StepBillingInfo, ErrMissingBilling, "Please choose a payment method.")
	}
	if state.Billing == nil {
		return missing()
	}

	switch state.Billing.Kind {
	case d.BillingSavedCard:
		card, err := s.repo.FindCard(ctx, memberID, state.Billing.CardID)
		if errors.Is(err, r.ErrNotFound) {
			return missing()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load card: %w", err)
		}
		return &resolvedBilling{Card: card}, nil
	case d.BillingPaymentToken:
		token := strings.TrimSpace(state.Billing.Token)
		if token == "" {
			return missing()
		}
		return &resolvedBilling{Token: token}, nil
	default:
		return missing()
	}
}

// region prefers the codes copied into the session at the shipping step.
func region(state *d.CheckoutSessionState, addr d.Address) (province, country string) {
	province, country = state.ProvinceCode, state.CountryCode
	if province == "" || country == "" {
		province, country = addr.ProvinceCode, addr.CountryCode
	}
	return province, country
}
