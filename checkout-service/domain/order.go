package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced OrderStatus = "PLACED"
)

type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Condition Condition       `json:"condition"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type Order struct {
	ID              uuid.UUID   `json:"id"`
	MemberID        int64       `json:"member_id"`
	ShippingAddress Address     `json:"shipping_address"`
	PaymentChargeID string      `json:"payment_charge_id"`
	Lines           []OrderLine `json:"lines"`
	Status          OrderStatus `json:"status"`
	Totals          Totals      `json:"totals"`
	Currency        string      `json:"currency"`
	CreatedAt       time.Time   `json:"created_at"`
}
