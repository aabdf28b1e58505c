package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/inventory"
	"github.com/fjod/go_cart/checkout-service/internal/pricing"
	"github.com/google/uuid"
)

// MemoryRepository implements RepoInterface in process. Stock lives in the
// embedded MemoryLedger, which applies an order's decrements all-or-nothing.
type MemoryRepository struct {
	*inventory.MemoryLedger

	mu        sync.RWMutex
	nextID    int64
	members   map[int64]*domain.Member
	addresses map[int64]*domain.SavedAddress
	cards     map[int64]*domain.SavedCard
	products  map[int64]*domain.Product
	rates     map[string]pricing.TaxRates
	orders    map[uuid.UUID]*domain.Order
	charges   map[string]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		MemoryLedger: inventory.NewMemoryLedger(),
		members:      make(map[int64]*domain.Member),
		addresses:    make(map[int64]*domain.SavedAddress),
		cards:        make(map[int64]*domain.SavedCard),
		products:     make(map[int64]*domain.Product),
		rates:        make(map[string]pricing.TaxRates),
		orders:       make(map[uuid.UUID]*domain.Order),
		charges:      make(map[string]uuid.UUID),
	}
}

func (m *MemoryRepository) Close() error {
	return nil
}

func (m *MemoryRepository) RunMigrations(*Credentials) error {
	return nil
}

func (m *MemoryRepository) PutMember(member domain.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.ID] = &member
}

func (m *MemoryRepository) PutProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = &p
}

func (m *MemoryRepository) PutRates(provinceCode, countryCode string, rates pricing.TaxRates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[countryCode+"/"+provinceCode] = rates
}

// RemoveAddress deletes a saved address, as an account page would.
func (m *MemoryRepository) RemoveAddress(addressID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.addresses, addressID)
}

// RemoveCard deletes a saved card.
func (m *MemoryRepository) RemoveCard(cardID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cards, cardID)
}

func (m *MemoryRepository) GetMember(_ context.Context, memberID int64) (*domain.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	member, ok := m.members[memberID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *member
	return &cp, nil
}

func (m *MemoryRepository) ListAddresses(_ context.Context, memberID int64) ([]domain.SavedAddress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.SavedAddress
	for _, a := range m.addresses {
		if a.MemberID == memberID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) FindAddress(_ context.Context, memberID, addressID int64) (*domain.SavedAddress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.addresses[addressID]
	if !ok || a.MemberID != memberID {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryRepository) AddAddress(_ context.Context, memberID int64, addr domain.Address) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.addresses[m.nextID] = &domain.SavedAddress{ID: m.nextID, MemberID: memberID, Address: addr}
	return m.nextID, nil
}

func (m *MemoryRepository) ListCards(_ context.Context, memberID int64) ([]domain.SavedCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.SavedCard
	for _, c := range m.cards {
		if c.MemberID == memberID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) FindCard(_ context.Context, memberID, cardID int64) (*domain.SavedCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cards[cardID]
	if !ok || c.MemberID != memberID {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryRepository) AddCard(_ context.Context, card *domain.SavedCard) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *card
	cp.ID = m.nextID
	m.cards[cp.ID] = &cp
	return cp.ID, nil
}

func (m *MemoryRepository) GetProducts(_ context.Context, productIDs []int64) (map[int64]*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]*domain.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := m.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *MemoryRepository) Rates(_ context.Context, provinceCode, countryCode string) (pricing.TaxRates, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rates, ok := m.rates[countryCode+"/"+provinceCode]
	if !ok {
		return pricing.TaxRates{}, ErrNotFound
	}
	return rates, nil
}

func (m *MemoryRepository) SaveOrder(_ context.Context, order *domain.Order, decrements []inventory.StockDecrement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.charges[order.PaymentChargeID]; exists {
		return ErrDuplicateOrder
	}
	if err := m.Apply(decrements); err != nil {
		return err
	}

	cp := *order
	cp.Lines = append([]domain.OrderLine(nil), order.Lines...)
	m.orders[order.ID] = &cp
	m.charges[order.PaymentChargeID] = order.ID
	return nil
}

func (m *MemoryRepository) GetOrder(_ context.Context, memberID int64, orderID uuid.UUID) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderID]
	if !ok || o.MemberID != memberID {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// OrderCount is the number of orders saved so far.
func (m *MemoryRepository) OrderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}
