package service

import (
	"context"
	"fmt"
	"time"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/payment"
	"github.com/google/uuid"
)

type PlacementResult struct {
	Order   *d.Order
	Outcome d.SettlementOutcome
}

// PlaceOrder turns the confirmed cart into a paid order. echoed is the cart the
// customer saw on the confirm page; any difference from the live cart sends
// them back to confirm before anything is checked or charged.
//
// No charge is made until every line passes the stock policy, and no stock is
// decremented unless the charge succeeded. A failed save is compensated by a
// refund of the charge.
func (s *CheckoutServiceImpl) PlaceOrder(ctx context.Context, memberID int64, sessionID string, echoed []d.CartLine) (*PlacementResult, error) {
	p := s.newPlacement(memberID)
	defer p.abortUnlessTerminal()

	cart, err := s.requireCart(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !d.SameLines(echoed, cart.Lines) {
		return nil, s.redirect(d.StepConfirm, ErrStaleCart, "Your cart changed. Please review your order.")
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
	member, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	if err := p.advance(d.PlacementInventoryChecking); err != nil {
		return nil, err
	}
	checked, err := s.checkInventory(ctx, cart.Lines, state, addr)
	if err != nil {
		return nil, err
	}

	if err := p.advance(d.PlacementCharging); err != nil {
		return nil, err
	}
	chargeID, err := s.charge(ctx, s.chargeRequest(checked.totals, billing, member))
	if err != nil {
		return nil, s.paymentRedirect(memberID, "charge", err)
	}

	if err := p.advance(d.PlacementPersisting); err != nil {
		return nil, err
	}
	order := &d.Order{
		ID:              uuid.New(),
		MemberID:        memberID,
		ShippingAddress: addr,
		PaymentChargeID: chargeID,
		Lines:           checked.lines,
		Status:          d.OrderStatusPlaced,
		Totals:          checked.totals,
		Currency:        s.currency,
		CreatedAt:       time.Now().UTC(),
	}
	outcome, err := s.settle(ctx, p, order, checked.decrements)
	if outcome != "" {
		s.metrics.ObservePlacement(outcome.String())
	}
	if err != nil {
		return nil, s.redirect(d.StepConfirm, fmt.Errorf("%w: %w", ErrCouldNotComplete, err),
			"We could not complete your order. Please try again.")
	}

	s.complete(ctx, memberID, sessionID, order)
	return &PlacementResult{Order: order, Outcome: outcome}, nil
}

// chargeRequest sends the customer reference only with saved cards.
func (s *CheckoutServiceImpl) chargeRequest(totals d.Totals, billing *resolvedBilling, member *d.Member) payment.ChargeRequest {
	req := payment.ChargeRequest{
		Amount:   totals.Total,
		Currency: s.currency,
	}
	if billing.Card != nil {
		req.CardID = billing.Card.GatewayCardID
		req.CustomerID = member.PaymentCustomerID
	} else {
		req.Token = billing.Token
	}
	return req
}
