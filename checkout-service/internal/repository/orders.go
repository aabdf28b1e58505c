package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/inventory"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	decrementUsedQuery = `UPDATE inventory SET used_on_hand = used_on_hand - $1
	                      WHERE product_id = $2 AND location_id = $3 AND used_on_hand >= $1`
	decrementNewQuery = `UPDATE inventory SET new_on_hand = new_on_hand - $1
	                     WHERE product_id = $2 AND location_id = $3 AND new_on_hand >= $1`
	backorderNewQuery = `INSERT INTO inventory (product_id, location_id, new_on_hand, used_on_hand)
	                     VALUES ($1, $2, $3, 0)
	                     ON CONFLICT (product_id, location_id)
	                     DO UPDATE SET new_on_hand = inventory.new_on_hand + EXCLUDED.new_on_hand`
)

func (r *Repository) SaveOrder(ctx context.Context, order *domain.Order, decrements []inventory.StockDecrement) error {
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO orders (id, member_id, shipping_address, payment_charge_id, status, currency,
	                              subtotal, tax, shipping, total, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = tx.ExecContext(ctx, query,
		order.ID,
		order.MemberID,
		addressJSON,
		order.PaymentChargeID,
		order.Status,
		order.Currency,
		order.Totals.Subtotal,
		order.Totals.Tax,
		order.Totals.Shipping,
		order.Totals.Total,
		order.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	lineQuery := `INSERT INTO order_lines (order_id, product_id, condition, quantity, unit_price)
	              VALUES ($1, $2, $3, $4, $5)`
	for _, line := range order.Lines {
		if _, err := tx.ExecContext(ctx, lineQuery, order.ID, line.ProductID, line.Condition, line.Quantity, line.UnitPrice); err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	for _, d := range sortDecrements(decrements) {
		if err := applyDecrement(ctx, tx, d); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// sortDecrements orders decrements by inventory row and then condition, so
// concurrent saves lock rows in the same order.
func sortDecrements(decrements []inventory.StockDecrement) []inventory.StockDecrement {
	sorted := append([]inventory.StockDecrement(nil), decrements...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.LocationID != b.LocationID {
			return a.LocationID < b.LocationID
		}
		return a.Condition < b.Condition
	})
	return sorted
}

// applyDecrement guards constrained counters with a conditional UPDATE, so a
// concurrent placement that already consumed the stock fails this save rather
// than driving the counter negative.
func applyDecrement(ctx context.Context, tx *sql.Tx, d inventory.StockDecrement) error {
	if !d.Constrained && d.Condition == domain.ConditionNew {
		if _, err := tx.ExecContext(ctx, backorderNewQuery, d.ProductID, d.LocationID, -d.Quantity); err != nil {
			return fmt.Errorf("failed to decrement product %d: %w", d.ProductID, err)
		}
		return nil
	}

	query := decrementNewQuery
	if d.Condition == domain.ConditionUsed {
		query = decrementUsedQuery
	}
	res, err := tx.ExecContext(ctx, query, d.Quantity, d.ProductID, d.LocationID)
	if err != nil {
		return fmt.Errorf("failed to decrement product %d: %w", d.ProductID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: product %d (%s)", ErrStockChanged, d.ProductID, d.Condition)
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, memberID int64, orderID uuid.UUID) (*domain.Order, error) {
	query := `SELECT id, member_id, shipping_address, payment_charge_id, status, currency,
	                 subtotal, tax, shipping, total, created_at
	          FROM orders WHERE id = $1 AND member_id = $2`

	order := &domain.Order{}
	var addressJSON []byte
	err := r.db.QueryRowContext(ctx, query, orderID, memberID).Scan(
		&order.ID,
		&order.MemberID,
		&addressJSON,
		&order.PaymentChargeID,
		&order.Status,
		&order.Currency,
		&order.Totals.Subtotal,
		&order.Totals.Tax,
		&order.Totals.Shipping,
		&order.Totals.Total,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, condition, quantity, unit_price FROM order_lines WHERE order_id = $1 ORDER BY product_id, condition`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductID, &line.Condition, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return order, rows.Err()
}
