package service

import (
	"context"
	"fmt"
	"time"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/inventory"
)

const saveTimeout = 10 * time.Second

// settle saves the order with its stock decrements, or refunds the charge when
// the save fails. The refund is attempted exactly once.
func (s *CheckoutServiceImpl) settle(ctx context.Context, p *placement, order *d.Order, decrements []inventory.StockDecrement) (d.SettlementOutcome, error) {
	if p.state != d.PlacementPersisting {
		return "", fmt.Errorf("%w: settle from %s", IllegalTransitionError, p.state)
	}

	// The card is already charged, so the save outlives the request.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	saveErr := s.repo.SaveOrder(saveCtx, order, decrements)
	cancel()
	if saveErr == nil {
		p.enter(d.PlacementCommitted)
		p.log.InfoContext(ctx, "order committed",
			"order_id", order.ID.String(),
			"charge_id", order.PaymentChargeID,
			"total", order.Totals.Total.StringFixed(2),
		)
		return d.SettlementCommitted, nil
	}

	p.enter(d.PlacementRefunding)
	// The refund goes out even if the request has been cancelled.
	refundErr := s.refund(context.WithoutCancel(ctx), order.PaymentChargeID)
	p.enter(d.PlacementAborted)

	if refundErr != nil {
		p.log.ErrorContext(ctx, "refund after failed order save failed, charge needs manual reversal",
			"charge_id", order.PaymentChargeID,
			"amount", order.Totals.Total.StringFixed(2),
			"currency", order.Currency,
			"save_error", saveErr,
			"refund_error", refundErr,
		)
		return d.SettlementRefundFailedCritical, &SettlementError{
			Outcome:   d.SettlementRefundFailedCritical,
			ChargeID:  order.PaymentChargeID,
			Err:       saveErr,
			RefundErr: refundErr,
		}
	}

	p.log.WarnContext(ctx, "order save failed, charge refunded",
		"charge_id", order.PaymentChargeID,
		"error", saveErr,
	)
	return d.SettlementRefundedAfterFailure, &SettlementError{
		Outcome:  d.SettlementRefundedAfterFailure,
		ChargeID: order.PaymentChargeID,
		Err:      saveErr,
	}
}

// complete runs after the order is committed. Failures here are logged only;
// the customer has paid and the order exists.
func (s *CheckoutServiceImpl) complete(ctx context.Context, memberID int64, sessionID string, order *d.Order) {
	if err := s.carts.ClearCart(ctx, memberID); err != nil {
		s.log.ErrorContext(ctx, "failed to clear cart after order",
			"member_id", memberID, "order_id", order.ID.String(), "error", err)
	}
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		s.log.ErrorContext(ctx, "failed to clear checkout session after order",
			"member_id", memberID, "order_id", order.ID.String(), "error", err)
	}
	s.notify(ctx, order)
}

func (s *CheckoutServiceImpl) notify(ctx context.Context, order *d.Order) {
	if s.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifier.timeout)
	defer cancel()

	subject := fmt.Sprintf("Order %s confirmed", order.ID)
	body := fmt.Sprintf("Thank you for your order. %d line(s), total charged %s %s.",
		len(order.Lines), order.Totals.Total.StringFixed(2), order.Currency)
	if err := s.notifier.notifier.SendEmail(notifyCtx, order.MemberID, subject, body); err != nil {
		s.log.WarnContext(ctx, "order confirmation email failed",
			"member_id", order.MemberID, "order_id", order.ID.String(), "error", err)
	}
}
