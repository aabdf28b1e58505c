package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/metrics"
	"github.com/fjod/go_cart/checkout-service/internal/payment"
	"github.com/fjod/go_cart/checkout-service/internal/pricing"
	r "github.com/fjod/go_cart/checkout-service/internal/repository"
	"github.com/fjod/go_cart/checkout-service/internal/session"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMember   int64 = 7
	testSession        = "sess-1"
	testLocation int64 = 1
)

var (
	boardGameNew  = d.CartLine{ProductID: 1, Condition: d.ConditionNew, Quantity: 1}
	boardGameUsed = d.CartLine{ProductID: 1, Condition: d.ConditionUsed, Quantity: 1}

	ontario = d.Address{
		Name:         "Ada",
		Line1:        "1 Main St",
		City:         "Ottawa",
		PostalCode:   "k1a0b1",
		ProvinceCode: "on",
		CountryCode:  "ca",
	}
)

type fixture struct {
	svc      *CheckoutServiceImpl
	repo     *MockRepository
	carts    *r.MemoryCartStore
	sessions *session.MemoryStore
	gateway  *MockGateway
	notifier *MockNotifier
	metrics  *metrics.Metrics
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := &MockRepository{MemoryRepository: r.NewMemoryRepository()}
	repo.PutMember(d.Member{ID: testMember, Email: "ada@example.com", Name: "Ada", PaymentCustomerID: "cus_7"})
	repo.PutProduct(d.Product{
		ID:           1,
		Name:         "Board game",
		NewPrice:     decimal.RequireFromString("60.00"),
		UsedPrice:    decimal.RequireFromString("10.00"),
		Availability: d.AvailabilityAvailable,
	})
	repo.PutProduct(d.Product{
		ID:           2,
		Name:         "Vintage console",
		NewPrice:     decimal.RequireFromString("100.00"),
		UsedPrice:    decimal.RequireFromString("50.00"),
		Availability: d.AvailabilityDiscontinued,
	})
	repo.SetStock(d.InventoryRecord{ProductID: 1, LocationID: testLocation, NewOnHand: 5, UsedOnHand: 10})
	repo.SetStock(d.InventoryRecord{ProductID: 2, LocationID: testLocation, NewOnHand: 10, UsedOnHand: 0})
	repo.PutRates("ON", "CA", pricing.TaxRates{
		Province: decimal.RequireFromString("0.08"),
		Federal:  decimal.RequireFromString("0.05"),
	})

	carts := r.NewMemoryCartStore()
	carts.SetLines(testMember, boardGameNew, boardGameUsed)

	sessions := session.NewMemoryStore()
	gateway := &MockGateway{ChargeID: "ch_1", Last4: "4242"}
	notifier := &MockNotifier{}
	m := metrics.New(prometheus.NewRegistry())
	logs := &bytes.Buffer{}

	svc := NewCheckoutService(Deps{
		Repo:       repo,
		Carts:      carts,
		Sessions:   sessions,
		Payment:    NewPaymentHandler(gateway, 0),
		Notifier:   NewNotificationHandler(notifier, 0),
		Shipping:   pricing.FlatRate{},
		LocationID: testLocation,
		Currency:   "CAD",
		Metrics:    m,
		Logger:     slog.New(slog.NewJSONHandler(logs, nil)),
	})

	return &fixture{
		svc:      svc,
		repo:     repo,
		carts:    carts,
		sessions: sessions,
		gateway:  gateway,
		notifier: notifier,
		metrics:  m,
		logs:     logs,
	}
}

// readyToPlace walks shipping and billing with an inline address and a token.
func (f *fixture) readyToPlace(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	addr := ontario
	_, err := f.svc.SubmitShipping(ctx, testMember, testSession, ShippingForm{Address: &addr})
	require.NoError(t, err)
	_, err = f.svc.SubmitBilling(ctx, testMember, testSession, BillingForm{Token: "tok_visa_4242"})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, productID int64) *d.InventoryRecord {
	t.Helper()
	recs, err := f.repo.MemoryRepository.Records(context.Background(), testLocation, []int64{productID})
	require.NoError(t, err)
	require.Contains(t, recs, productID)
	return recs[productID]
}

func requireStep(t *testing.T, err error, step d.Step, code string) *StepError {
	t.Helper()
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr), "expected StepError, got %v", err)
	assert.Equal(t, step, stepErr.Step)
	assert.Equal(t, code, stepErr.Code)
	return stepErr
}

func TestNewCheckoutService_Defaults(t *testing.T) {
	svc := NewCheckoutService(Deps{})

	assert.Equal(t, "CAD", svc.currency)
	assert.NotNil(t, svc.shipping)
	assert.NotNil(t, svc.log)
}

func TestCart_ReturnsLiveCart(t *testing.T) {
	f := newFixture(t)

	cart, err := f.svc.Cart(context.Background(), testMember)

	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetOrder(context.Background(), testMember, uuid.New())

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrder_OtherMember(t *testing.T) {
	f := newFixture(t)
	f.readyToPlace(t)
	res, err := f.svc.PlaceOrder(context.Background(), testMember, testSession, []d.CartLine{boardGameNew, boardGameUsed})
	require.NoError(t, err)

	_, err = f.svc.GetOrder(context.Background(), testMember+1, res.Order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	order, err := f.svc.GetOrder(context.Background(), testMember, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ch_1", order.PaymentChargeID)
}

func TestReasonCode(t *testing.T) {
	assert.Equal(t, "stale_cart", reasonCode(ErrStaleCart))
	assert.Equal(t, "payment_declined", reasonCode(&payment.DeclinedError{Code: "x"}))
	assert.Equal(t, "could_not_complete", reasonCode(errors.Join(ErrCouldNotComplete, r.ErrStockChanged)))
	assert.Equal(t, "unknown", reasonCode(errors.New("boom")))
}
