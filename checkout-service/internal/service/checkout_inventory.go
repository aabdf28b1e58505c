package service

import (
	"context"
	"errors"
	"fmt"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/inventory"
)

type checkedOrder struct {
	decrements []inventory.StockDecrement
	lines      []d.OrderLine
	totals     d.Totals
}

// checkInventory runs the stock policy over every line and prices the order.
// Nothing is written; the decrements ride along with the order save.
func (s *CheckoutServiceImpl) checkInventory(ctx context.Context, lines []d.CartLine, state *d.CheckoutSessionState, addr d.Address) (*checkedOrder, error) {
	ids := d.ProductIDs(lines)
	products, err := s.repo.GetProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	records, err := s.repo.Records(ctx, s.locationID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	decrements, err := inventory.Plan(s.locationID, lines, products, records)
	var shortage *inventory.ShortageError
	if errors.As(err, &shortage) {
		return nil, s.redirect(d.StepConfirm, shortage, shortageMessage(shortage, products))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check inventory: %w", err)
	}

	orderLines, totals, err := s.quote(ctx, lines, products, state, addr)
	if err != nil {
		return nil, err
	}
	return &checkedOrder{decrements: decrements, lines: orderLines, totals: totals}, nil
}

func shortageMessage(e *inventory.ShortageError, products map[int64]*d.Product) string {
	name := fmt.Sprintf("product %d", e.ProductID)
	if p, ok := products[e.ProductID]; ok && p.Name != "" {
		name = p.Name
	}
	if e.OnHand <= 0 {
		return fmt.Sprintf("%s (%s) is out of stock.", name, e.Condition)
	}
	return fmt.Sprintf("Only %d of %s (%s) available, you asked for %d.", e.OnHand, name, e.Condition, e.Requested)
}
