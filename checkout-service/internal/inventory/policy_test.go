package inventory

import (
	"testing"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		condition    domain.Condition
		availability domain.Availability
		requested    int32
		onHand       int32
		want         Verdict
	}{
		{"used within stock", domain.ConditionUsed, domain.AvailabilityAvailable, 10, 10, Decrement},
		{"used over stock", domain.ConditionUsed, domain.AvailabilityAvailable, 11, 10, Reject},
		{"used ignores availability", domain.ConditionUsed, domain.AvailabilityDiscontinued, 1, 0, Reject},
		{"new available back-orders", domain.ConditionNew, domain.AvailabilityAvailable, 50, 0, Decrement},
		{"new pre-order back-orders", domain.ConditionNew, domain.AvailabilityPreOrder, 5, -3, Decrement},
		{"new discontinued within stock", domain.ConditionNew, domain.AvailabilityDiscontinued, 10, 10, Decrement},
		{"new discontinued over stock", domain.ConditionNew, domain.AvailabilityDiscontinued, 11, 10, Reject},
		{"new not for sale over stock", domain.ConditionNew, domain.AvailabilityNotForSale, 1, 0, Reject},
		{"unknown status is constrained", domain.ConditionNew, domain.Availability("RECALLED"), 2, 1, Reject},
		{"unknown condition", domain.Condition("refurbished"), domain.AvailabilityAvailable, 1, 100, Reject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.condition, tt.availability, tt.requested, tt.onHand))
		})
	}
}

func TestPlan_AllLinesPass(t *testing.T) {
	products := map[int64]*domain.Product{
		1: {ID: 1, Availability: domain.AvailabilityAvailable},
		2: {ID: 2, Availability: domain.AvailabilityDiscontinued},
	}
	records := map[int64]*domain.InventoryRecord{
		1: {ProductID: 1, LocationID: 7, NewOnHand: 0, UsedOnHand: 3},
		2: {ProductID: 2, LocationID: 7, NewOnHand: 4},
	}
	lines := []domain.CartLine{
		{ProductID: 1, Condition: domain.ConditionNew, Quantity: 2},
		{ProductID: 1, Condition: domain.ConditionUsed, Quantity: 3},
		{ProductID: 2, Condition: domain.ConditionNew, Quantity: 4},
	}

	decs, err := Plan(7, lines, products, records)
	require.NoError(t, err)
	require.Len(t, decs, 3)

	assert.False(t, decs[0].Constrained)
	assert.True(t, decs[1].Constrained)
	assert.True(t, decs[2].Constrained)
	for _, d := range decs {
		assert.Equal(t, int64(7), d.LocationID)
	}
}

func TestPlan_OneShortLineRejectsOrder(t *testing.T) {
	products := map[int64]*domain.Product{
		1: {ID: 1, Availability: domain.AvailabilityAvailable},
	}
	records := map[int64]*domain.InventoryRecord{
		1: {ProductID: 1, UsedOnHand: 10},
	}
	lines := []domain.CartLine{
		{ProductID: 1, Condition: domain.ConditionNew, Quantity: 1},
		{ProductID: 1, Condition: domain.ConditionUsed, Quantity: 11},
	}

	decs, err := Plan(1, lines, products, records)
	assert.Nil(t, decs)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var shortage *ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, int32(11), shortage.Requested)
	assert.Equal(t, int32(10), shortage.OnHand)
}

func TestPlan_MissingRecordCountsAsZero(t *testing.T) {
	products := map[int64]*domain.Product{
		1: {ID: 1, Availability: domain.AvailabilityNotForSale},
	}
	_, err := Plan(1, []domain.CartLine{{ProductID: 1, Condition: domain.ConditionNew, Quantity: 1}}, products, nil)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestPlan_UnknownProduct(t *testing.T) {
	_, err := Plan(1, []domain.CartLine{{ProductID: 9, Condition: domain.ConditionNew, Quantity: 1}}, nil, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
