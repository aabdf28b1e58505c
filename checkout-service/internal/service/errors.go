package service

import (
	"errors"
	"fmt"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/inventory"
	"github.com/fjod/go_cart/checkout-service/internal/payment"
)

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	IllegalTransitionError = errors.New("illegal transition of placement state")

	ErrStaleCart          = errors.New("cart changed since confirmation")
	ErrMissingShipping    = errors.New("shipping address missing or incomplete")
	ErrMissingBilling     = errors.New("payment method missing or unknown")
	ErrUnsupportedRegion  = errors.New("no tax rates for shipping region")
	ErrPaymentUnavailable = errors.New("payment service unavailable")
	ErrCouldNotComplete   = errors.New("order could not be completed")
	ErrOrderNotFound      = errors.New("order not found")
)

// StepError sends the customer back to Step. It is the only way a wizard
// precondition failure leaves the service; callers render it as a redirect.
type StepError struct {
	Step d.Step
	// Code is a short machine-readable reason, e.g. "stale_cart".
	Code    string
	Message string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("redirect to %s (%s): %v", e.Step, e.Code, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// SettlementError reports a save that failed after money was taken.
type SettlementError struct {
	Outcome   d.SettlementOutcome
	ChargeID  string
	Err       error
	RefundErr error
}

func (e *SettlementError) Error() string {
	if e.RefundErr != nil {
		return fmt.Sprintf("save order failed: %v; refund of %s failed: %v", e.Err, e.ChargeID, e.RefundErr)
	}
	return fmt.Sprintf("save order failed: %v; charge %s refunded", e.Err, e.ChargeID)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}

var reasonCodes = []struct {
	err  error
	code string
}{
	{ErrCouldNotComplete, "could_not_complete"},
	{ErrEmptyCart, "empty_cart"},
	{ErrStaleCart, "stale_cart"},
	{ErrMissingShipping, "missing_shipping"},
	{ErrMissingBilling, "missing_billing"},
	{ErrUnsupportedRegion, "unsupported_region"},
	{inventory.ErrInsufficientStock, "insufficient_stock"},
	{ErrPaymentUnavailable, "payment_unavailable"},
}

func reasonCode(err error) string {
	var declined *payment.DeclinedError
	if errors.As(err, &declined) {
		return "payment_declined"
	}
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "unknown"
}
