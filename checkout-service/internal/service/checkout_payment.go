package service

import (
	"context"
	"errors"
	"time"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/payment"
	"github.com/fjod/go_cart/pkg/circuitbreaker"
)

func (s *CheckoutServiceImpl) charge(ctx context.Context, req payment.ChargeRequest) (string, error) {
	paymentCtx, cancel := context.WithTimeout(ctx, s.payment.timeout)
	defer cancel()
	started := time.Now()
	chargeID, err := s.payment.gateway.ChargeCard(paymentCtx, req)
	s.metrics.ObservePayment("charge", started, err)
	return chargeID, err
}

func (s *CheckoutServiceImpl) refund(ctx context.Context, chargeID string) error {
	paymentCtx, cancel := context.WithTimeout(ctx, s.payment.timeout)
	defer cancel()
	started := time.Now()
	err := s.payment.gateway.RefundCharge(paymentCtx, chargeID)
	s.metrics.ObservePayment("refund", started, err)
	return err
}

func (s *CheckoutServiceImpl) createCard(ctx context.Context, member *d.Member, token string) (*payment.CardRef, error) {
	paymentCtx, cancel := context.WithTimeout(ctx, s.payment.timeout)
	defer cancel()
	started := time.Now()
	ref, err := s.payment.gateway.CreateCard(paymentCtx, member, token)
	s.metrics.ObservePayment("create_card", started, err)
	return ref, err
}

func (s *CheckoutServiceImpl) last4ForToken(ctx context.Context, token string) (string, error) {
	paymentCtx, cancel := context.WithTimeout(ctx, s.payment.timeout)
	defer cancel()
	started := time.Now()
	last4, err := s.payment.gateway.Last4ForToken(paymentCtx, token)
	s.metrics.ObservePayment("last4", started, err)
	return last4, err
}

// paymentRedirect sends any gateway failure back to billing. Declines carry
// the gateway's message; everything else is treated as an outage. A call
// refused by the open breaker never reached the gateway and is logged apart
// from real gateway errors.
func (s *CheckoutServiceImpl) paymentRedirect(memberID int64, operation string, err error) *StepError {
	var declined *payment.DeclinedError
	if errors.As(err, &declined) {
		return s.redirect(d.StepBillingInfo, declined, declined.Message)
	}
	if circuitbreaker.IsOpen(err) {
		s.log.Warn("payment call rejected by open circuit breaker",
			"operation", operation,
			"member_id", memberID,
			"breaker_open", true,
			"error", err,
		)
	} else {
		s.log.Error("payment service failure",
			"operation", operation,
			"member_id", memberID,
			"breaker_open", false,
			"error", err,
		)
	}
	return s.redirect(d.StepBillingInfo, errors.Join(ErrPaymentUnavailable, err),
		"Payments are temporarily unavailable. Please try again shortly.")
}
