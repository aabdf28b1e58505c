package domain

import "time"

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

func (c Condition) Valid() bool {
	return c == ConditionNew || c == ConditionUsed
}

// CartLine is unique per (product, condition) within a cart.
type CartLine struct {
	ProductID int64     `json:"product_id" bson:"product_id"`
	Condition Condition `json:"condition" bson:"condition"`
	Quantity  int32     `json:"quantity" bson:"quantity"`
}

type Cart struct {
	MemberID  int64      `json:"member_id" bson:"member_id"`
	Lines     []CartLine `json:"lines" bson:"lines"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// ProductIDs returns the distinct product ids referenced by the lines.
func ProductIDs(lines []CartLine) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}

type lineKey struct {
	productID int64
	condition Condition
}

// SameLines reports whether a and b hold the same (product, condition, quantity)
// entries, ignoring order.
func SameLines(a, b []CartLine) bool {
	if len(a) != len(b) {
		return false
	}
	want := make(map[lineKey]int32, len(a))
	for _, l := range a {
		want[lineKey{l.ProductID, l.Condition}] = l.Quantity
	}
	for _, l := range b {
		k := lineKey{l.ProductID, l.Condition}
		q, ok := want[k]
		if !ok || q != l.Quantity {
			return false
		}
		delete(want, k)
	}
	return len(want) == 0
}
