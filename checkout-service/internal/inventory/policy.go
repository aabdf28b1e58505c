package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/checkout-service/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Ledger reads on-hand counters for one fulfillment location.
type Ledger interface {
	// Records returns the records keyed by product id. Products with no
	// record at the location are absent from the map.
	Records(ctx context.Context, locationID int64, productIDs []int64) (map[int64]*domain.InventoryRecord, error)
}

type Verdict int

const (
	Reject Verdict = iota
	Decrement
)

// Decide applies the stock rule for a single line. Used stock must cover the
// request. New stock on an Available or PreOrder product is back-orderable;
// any other status must be covered by on-hand stock.
func Decide(condition domain.Condition, availability domain.Availability, requested, onHand int32) Verdict {
	switch condition {
	case domain.ConditionUsed:
		if requested <= onHand {
			return Decrement
		}
	case domain.ConditionNew:
		if availability.Unrestricted() || requested <= onHand {
			return Decrement
		}
	}
	return Reject
}

// StockDecrement is one counter change applied with the order save.
type StockDecrement struct {
	ProductID  int64
	LocationID int64
	Condition  domain.Condition
	Quantity   int32
	// Constrained decrements must not take the counter below zero.
	Constrained bool
}

type ShortageError struct {
	ProductID int64
	Condition domain.Condition
	Requested int32
	OnHand    int32
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("product %d (%s): requested %d, on hand %d", e.ProductID, e.Condition, e.Requested, e.OnHand)
}

func (e *ShortageError) Unwrap() error {
	return ErrInsufficientStock
}

// Plan evaluates every line before producing any decrement. A single rejected
// line rejects the whole order.
func Plan(locationID int64, lines []domain.CartLine, products map[int64]*domain.Product, records map[int64]*domain.InventoryRecord) ([]StockDecrement, error) {
	decrements := make([]StockDecrement, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, line.ProductID)
		}

		var onHand int32
		if rec, ok := records[line.ProductID]; ok {
			onHand = rec.OnHand(line.Condition)
		}

		if Decide(line.Condition, product.Availability, line.Quantity, onHand) == Reject {
			return nil, &ShortageError{
				ProductID: line.ProductID,
				Condition: line.Condition,
				Requested: line.Quantity,
				OnHand:    onHand,
			}
		}

		decrements = append(decrements, StockDecrement{
			ProductID:   line.ProductID,
			LocationID:  locationID,
			Condition:   line.Condition,
			Quantity:    line.Quantity,
			Constrained: line.Condition == domain.ConditionUsed || !product.Availability.Unrestricted(),
		})
	}
	return decrements, nil
}
