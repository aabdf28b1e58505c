package domain

import "github.com/shopspring/decimal"

// Availability is the catalog status that drives the new-condition inventory rule.
type Availability string

const (
	AvailabilityAvailable    Availability = "AVAILABLE"
	AvailabilityPreOrder     Availability = "PRE_ORDER"
	AvailabilityDiscontinued Availability = "DISCONTINUED_BY_MANUFACTURER"
	AvailabilityNotForSale   Availability = "NOT_FOR_SALE"
)

// Unrestricted reports whether new stock may be back-ordered past zero.
func (a Availability) Unrestricted() bool {
	return a == AvailabilityAvailable || a == AvailabilityPreOrder
}

type Product struct {
	ID           int64
	Name         string
	NewPrice     decimal.Decimal
	UsedPrice    decimal.Decimal
	Availability Availability
}

func (p *Product) UnitPrice(c Condition) decimal.Decimal {
	if c == ConditionUsed {
		return p.UsedPrice
	}
	return p.NewPrice
}

// InventoryRecord holds the on-hand counters for one product at one location.
type InventoryRecord struct {
	ProductID  int64
	LocationID int64
	NewOnHand  int32
	UsedOnHand int32
}

func (r InventoryRecord) OnHand(c Condition) int32 {
	if c == ConditionUsed {
		return r.UsedOnHand
	}
	return r.NewOnHand
}
