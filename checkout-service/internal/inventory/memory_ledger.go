package inventory

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/checkout-service/domain"
)

type recordKey struct {
	productID  int64
	locationID int64
}

// MemoryLedger implements Ledger with in-memory storage
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[recordKey]*domain.InventoryRecord
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[recordKey]*domain.InventoryRecord)}
}

// SetStock replaces the record for the product at the location
func (l *MemoryLedger) SetStock(rec domain.InventoryRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[recordKey{rec.ProductID, rec.LocationID}] = &rec
}

// Records returns copies, so callers can't mutate the ledger behind its lock
func (l *MemoryLedger) Records(_ context.Context, locationID int64, productIDs []int64) (map[int64]*domain.InventoryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[int64]*domain.InventoryRecord, len(productIDs))
	for _, id := range productIDs {
		if rec, ok := l.records[recordKey{id, locationID}]; ok {
			cp := *rec
			result[id] = &cp
		}
	}
	return result, nil
}

// Apply writes all decrements or none of them
func (l *MemoryLedger) Apply(decrements []StockDecrement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// First pass: constrained counters must still cover the request
	for _, d := range decrements {
		if !d.Constrained {
			continue
		}
		var onHand int32
		if rec, ok := l.records[recordKey{d.ProductID, d.LocationID}]; ok {
			onHand = rec.OnHand(d.Condition)
		}
		if onHand < d.Quantity {
			return &ShortageError{ProductID: d.ProductID, Condition: d.Condition, Requested: d.Quantity, OnHand: onHand}
		}
	}

	// Second pass: mutate
	for _, d := range decrements {
		key := recordKey{d.ProductID, d.LocationID}
		rec, ok := l.records[key]
		if !ok {
			rec = &domain.InventoryRecord{ProductID: d.ProductID, LocationID: d.LocationID}
			l.records[key] = rec
		}
		if d.Condition == domain.ConditionUsed {
			rec.UsedOnHand -= d.Quantity
		} else {
			rec.NewOnHand -= d.Quantity
		}
	}
	return nil
}
