package repository

import (
	"testing"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/inventory"
	"github.com/stretchr/testify/assert"
)

func TestSortDecrements_LockOrder(t *testing.T) {
	in := []inventory.StockDecrement{
		{ProductID: 9, LocationID: 1, Condition: domain.ConditionUsed, Quantity: 1},
		{ProductID: 2, LocationID: 1, Condition: domain.ConditionUsed, Quantity: 2},
		{ProductID: 9, LocationID: 1, Condition: domain.ConditionNew, Quantity: 3},
		{ProductID: 2, LocationID: 1, Condition: domain.ConditionNew, Quantity: 4},
	}

	got := sortDecrements(in)

	assert.Equal(t, []inventory.StockDecrement{
		{ProductID: 2, LocationID: 1, Condition: domain.ConditionNew, Quantity: 4},
		{ProductID: 2, LocationID: 1, Condition: domain.ConditionUsed, Quantity: 2},
		{ProductID: 9, LocationID: 1, Condition: domain.ConditionNew, Quantity: 3},
		{ProductID: 9, LocationID: 1, Condition: domain.ConditionUsed, Quantity: 1},
	}, got)
	assert.Equal(t, int64(9), in[0].ProductID, "input left in cart order")
}

func TestSortDecrements_SameOrderRegardlessOfCart(t *testing.T) {
	a := []inventory.StockDecrement{
		{ProductID: 1, LocationID: 1, Condition: domain.ConditionNew, Quantity: 1},
		{ProductID: 5, LocationID: 1, Condition: domain.ConditionNew, Quantity: 1},
	}
	b := []inventory.StockDecrement{a[1], a[0]}

	assert.Equal(t, sortDecrements(a), sortDecrements(b))
	assert.Empty(t, sortDecrements(nil))
}
