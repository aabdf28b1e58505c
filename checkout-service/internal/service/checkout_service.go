package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/metrics"
	"github.com/fjod/go_cart/checkout-service/internal/pricing"
	r "github.com/fjod/go_cart/checkout-service/internal/repository"
	"github.com/fjod/go_cart/checkout-service/internal/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutService drives the checkout wizard for one member and one browsing
// session. Precondition failures come back as *StepError.
type CheckoutService interface {
	Cart(ctx context.Context, memberID int64) (*d.Cart, error)

	ShippingInfo(ctx context.Context, memberID int64, sessionID string) (*ShippingView, error)
	SubmitShipping(ctx context.Context, memberID int64, sessionID string, form ShippingForm) (d.Step, error)

	BillingInfo(ctx context.Context, memberID int64, sessionID string) (*BillingView, error)
	SubmitBilling(ctx context.Context, memberID int64, sessionID string, form BillingForm) (d.Step, error)

	Confirm(ctx context.Context, memberID int64, sessionID string) (*ConfirmView, error)
	PlaceOrder(ctx context.Context, memberID int64, sessionID string, echoed []d.CartLine) (*PlacementResult, error)

	GetOrder(ctx context.Context, memberID int64, orderID uuid.UUID) (*d.Order, error)
}

type Deps struct {
	Repo     r.RepoInterface
	Carts    r.CartStore
	Sessions session.Store
	Payment  *PaymentHandler
	Notifier *NotificationHandler
	// Shipping defaults to free shipping.
	Shipping   pricing.ShippingCalculator
	LocationID int64
	Currency   string
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

type CheckoutServiceImpl struct {
	repo       r.RepoInterface
	carts      r.CartStore
	sessions   session.Store
	payment    *PaymentHandler
	notifier   *NotificationHandler
	shipping   pricing.ShippingCalculator
	locationID int64
	currency   string
	metrics    *metrics.Metrics
	log        *slog.Logger
}

func NewCheckoutService(deps Deps) *CheckoutServiceImpl {
	s := &CheckoutServiceImpl{
		repo:       deps.Repo,
		carts:      deps.Carts,
		sessions:   deps.Sessions,
		payment:    deps.Payment,
		notifier:   deps.Notifier,
		shipping:   deps.Shipping,
		locationID: deps.LocationID,
		currency:   deps.Currency,
		metrics:    deps.Metrics,
		log:        deps.Logger,
	}
	if s.shipping == nil {
		s.shipping = pricing.FlatRate{Fee: decimal.Zero}
	}
	if s.currency == "" {
		s.currency = "CAD"
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "checkout")
	return s
}

// redirect builds the StepError for a failed guard and counts it.
func (s *CheckoutServiceImpl) redirect(step d.Step, reason error, message string) *StepError {
	code := reasonCode(reason)
	s.metrics.ObserveRedirect(step.String(), code)
	return &StepError{Step: step, Code: code, Message: message, Err: reason}
}

func (s *CheckoutServiceImpl) Cart(ctx context.Context, memberID int64) (*d.Cart, error) {
	cart, err := s.carts.GetCart(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

func (s *CheckoutServiceImpl) GetOrder(ctx context.Context, memberID int64, orderID uuid.UUID) (*d.Order, error) {
	order, err := s.repo.GetOrder(ctx, memberID, orderID)
	if errors.Is(err, r.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}
