package service

import (
	"context"
	"errors"
	"fmt"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/pricing"
	r "github.com/fjod/go_cart/checkout-service/internal/repository"
)

type ConfirmView struct {
	Address   d.Address     `json:"address"`
	CardLast4 string        `json:"card_last4"`
	Lines     []d.OrderLine `json:"lines"`
	Totals    d.Totals      `json:"totals"`
	Currency  string        `json:"currency"`
}

func (s *CheckoutServiceImpl) Confirm(ctx context.Context, memberID int64, sessionID string) (*ConfirmView, error) {
	cart, err := s.requireCart(ctx, memberID)
	if err != nil {
		return nil, err
	}
	state, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	addr, err := s.resolveShipping(ctx, memberID, state)
	if err != nil {
		return nil, err
	}
	billing, err := s.resolveBilling(ctx, memberID, state)
	if err != nil {
		return nil, err
	}

	last4 := ""
	if billing.Card != nil {
		last4 = billing.Card.Last4
	} else {
		last4, err = s.last4ForToken(ctx, billing.Token)
		if err != nil {
			return nil, s.paymentRedirect(memberID, "last4", err)
		}
	}

	products, err := s.repo.GetProducts(ctx, d.ProductIDs(cart.Lines))
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	lines, totals, err := s.quote(ctx, cart.Lines, products, state, addr)
	if err != nil {
		return nil, err
	}

	return &ConfirmView{
		Address:   addr,
		CardLast4: last4,
		Lines:     lines,
		Totals:    totals,
		Currency:  s.currency,
	}, nil
}

// quote prices the lines for the shipping region. Confirm and placement both
// go through here so the preview matches the charge.
func (s *CheckoutServiceImpl) quote(ctx context.Context, lines []d.CartLine, products map[int64]*d.Product, state *d.CheckoutSessionState, addr d.Address) ([]d.OrderLine, d.Totals, error) {
	province, country := region(state, addr)
	rates, err := s.repo.Rates(ctx, province, country)
	if errors.Is(err, r.ErrNotFound) {
		return nil, d.Totals{}, s.redirect(d.StepShippingInfo, ErrUnsupportedRegion, "We do not ship to that region.")
	}
	if err != nil {
		return nil, d.Totals{}, fmt.Errorf("failed to load tax rates: %w", err)
	}
	orderLines, totals, err := pricing.Quote(ctx, lines, products, rates, s.shipping)
	if err != nil {
		return nil, d.Totals{}, fmt.Errorf("failed to price order: %w", err)
	}
	return orderLines, totals, nil
}
