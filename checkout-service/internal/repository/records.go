package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/pricing"
	"github.com/lib/pq"
)

func (r *Repository) GetMember(ctx context.Context, memberID int64) (*domain.Member, error) {
	query := `SELECT id, email, name, COALESCE(payment_customer_id, '') FROM members WHERE id = $1`

	m := &domain.Member{}
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(&m.ID, &m.Email, &m.Name, &m.PaymentCustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member %d: %w", memberID, err)
	}
	return m, nil
}

const addressColumns = `id, member_id, name, line1, line2, city, postal_code, province_code, country_code`

func scanAddress(row interface{ Scan(...any) error }) (*domain.SavedAddress, error) {
	a := &domain.SavedAddress{}
	err := row.Scan(&a.ID, &a.MemberID, &a.Address.Name, &a.Address.Line1, &a.Address.Line2,
		&a.Address.City, &a.Address.PostalCode, &a.Address.ProvinceCode, &a.Address.CountryCode)
	return a, err
}

func (r *Repository) ListAddresses(ctx context.Context, memberID int64) ([]domain.SavedAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE member_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var out []domain.SavedAddress
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repository) FindAddress(ctx context.Context, memberID, addressID int64) (*domain.SavedAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND member_id = $2`

	a, err := scanAddress(r.db.QueryRowContext(ctx, query, addressID, memberID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get address %d: %w", addressID, err)
	}
	return a, nil
}

func (r *Repository) AddAddress(ctx context.Context, memberID int64, addr domain.Address) (int64, error) {
	query := `INSERT INTO addresses (member_id, name, line1, line2, city, postal_code, province_code, country_code)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, memberID, addr.Name, addr.Line1, addr.Line2, addr.City,
		addr.PostalCode, addr.ProvinceCode, addr.CountryCode).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert address: %w", err)
	}
	return id, nil
}

func (r *Repository) ListCards(ctx context.Context, memberID int64) ([]domain.SavedCard, error) {
	query := `SELECT id, member_id, gateway_card_id, last4 FROM saved_cards WHERE member_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var out []domain.SavedCard
	for rows.Next() {
		var c domain.SavedCard
		if err := rows.Scan(&c.ID, &c.MemberID, &c.GatewayCardID, &c.Last4); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) FindCard(ctx context.Context, memberID, cardID int64) (*domain.SavedCard, error) {
	query := `SELECT id, member_id, gateway_card_id, last4 FROM saved_cards WHERE id = $1 AND member_id = $2`

	c := &domain.SavedCard{}
	err := r.db.QueryRowContext(ctx, query, cardID, memberID).Scan(&c.ID, &c.MemberID, &c.GatewayCardID, &c.Last4)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", cardID, err)
	}
	return c, nil
}

func (r *Repository) AddCard(ctx context.Context, card *domain.SavedCard) (int64, error) {
	query := `INSERT INTO saved_cards (member_id, gateway_card_id, last4) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, card.MemberID, card.GatewayCardID, card.Last4).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert card: %w", err)
	}
	return id, nil
}

func (r *Repository) GetProducts(ctx context.Context, productIDs []int64) (map[int64]*domain.Product, error) {
	query := `SELECT id, name, new_price, used_price, availability FROM products WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.Product, len(productIDs))
	for rows.Next() {
		p := &domain.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.NewPrice, &p.UsedPrice, &p.Availability); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *Repository) Records(ctx context.Context, locationID int64, productIDs []int64) (map[int64]*domain.InventoryRecord, error) {
	query := `SELECT product_id, location_id, new_on_hand, used_on_hand
	          FROM inventory WHERE location_id = $1 AND product_id = ANY($2)`

	rows, err := r.db.QueryContext(ctx, query, locationID, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.InventoryRecord, len(productIDs))
	for rows.Next() {
		rec := &domain.InventoryRecord{}
		if err := rows.Scan(&rec.ProductID, &rec.LocationID, &rec.NewOnHand, &rec.UsedOnHand); err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		out[rec.ProductID] = rec
	}
	return out, rows.Err()
}

func (r *Repository) Rates(ctx context.Context, provinceCode, countryCode string) (pricing.TaxRates, error) {
	query := `SELECT p.rate, c.federal_rate
	          FROM provinces p JOIN countries c ON c.code = p.country_code
	          WHERE p.country_code = $1 AND p.code = $2`

	var rates pricing.TaxRates
	err := r.db.QueryRowContext(ctx, query, countryCode, provinceCode).Scan(&rates.Province, &rates.Federal)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.TaxRates{}, ErrNotFound
	}
	if err != nil {
		return pricing.TaxRates{}, fmt.Errorf("failed to get tax rates: %w", err)
	}
	return rates, nil
}
