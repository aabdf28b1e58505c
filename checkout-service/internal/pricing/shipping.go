package pricing

import (
	"context"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/shopspring/decimal"
)

// FlatRate charges Fee per order, waived once the pre-tax subtotal reaches
// FreeOver. A zero FreeOver never waives the fee.
type FlatRate struct {
	Fee      decimal.Decimal
	FreeOver decimal.Decimal
}

func (f FlatRate) Cost(_ context.Context, subtotal decimal.Decimal, lines []domain.CartLine) (decimal.Decimal, error) {
	if len(lines) == 0 {
		return decimal.Zero, nil
	}
	if f.FreeOver.IsPositive() && subtotal.GreaterThanOrEqual(f.FreeOver) {
		return decimal.Zero, nil
	}
	return f.Fee, nil
}

