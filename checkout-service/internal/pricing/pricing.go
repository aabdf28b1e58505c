package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/shopspring/decimal"
)

var ErrUnknownProduct = errors.New("unknown product in cart")

// TaxRates are fractions, e.g. 0.08 for 8%.
type TaxRates struct {
	Province decimal.Decimal
	Federal  decimal.Decimal
}

func (r TaxRates) Combined() decimal.Decimal {
	return r.Province.Add(r.Federal)
}

type TaxTable interface {
	Rates(ctx context.Context, provinceCode, countryCode string) (TaxRates, error)
}

type ShippingCalculator interface {
	Cost(ctx context.Context, subtotal decimal.Decimal, lines []domain.CartLine) (decimal.Decimal, error)
}

// Quote prices the lines and computes
// subtotal × (1 + province rate + federal rate) + shipping(subtotal, lines).
// The confirm preview and the charged amount both come from here.
func Quote(ctx context.Context, lines []domain.CartLine, products map[int64]*domain.Product, rates TaxRates, shipping ShippingCalculator) ([]domain.OrderLine, domain.Totals, error) {
	orderLines := make([]domain.OrderLine, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, domain.Totals{}, fmt.Errorf("%w: %d", ErrUnknownProduct, line.ProductID)
		}
		ol := domain.OrderLine{
			ProductID: line.ProductID,
			Condition: line.Condition,
			Quantity:  line.Quantity,
			UnitPrice: product.UnitPrice(line.Condition),
		}
		subtotal = subtotal.Add(ol.Total())
		orderLines = append(orderLines, ol)
	}

	ship, err := shipping.Cost(ctx, subtotal, lines)
	if err != nil {
		return nil, domain.Totals{}, fmt.Errorf("shipping cost: %w", err)
	}
	ship = ship.Round(2)

	tax := subtotal.Mul(rates.Combined()).Round(2)
	return orderLines, domain.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: ship,
		Total:    subtotal.Add(tax).Add(ship),
	}, nil
}
