package service

import (
	"context"
	"sync"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/inventory"
	"github.com/fjod/go_cart/checkout-service/internal/payment"
	r "github.com/fjod/go_cart/checkout-service/internal/repository"
)

// MockRepository wraps the in-memory repository to count ledger traffic and
// fail saves on demand.
type MockRepository struct {
	*r.MemoryRepository

	SaveErr      error
	AddCardErr   error
	RecordsCalls int
	SaveCalls    int
	// SaveCtxErr is ctx.Err() as SaveOrder saw it.
	SaveCtxErr error
}

func (m *MockRepository) Records(ctx context.Context, locationID int64, productIDs []int64) (map[int64]*d.InventoryRecord, error) {
	m.RecordsCalls++
	return m.MemoryRepository.Records(ctx, locationID, productIDs)
}

func (m *MockRepository) SaveOrder(ctx context.Context, order *d.Order, decrements []inventory.StockDecrement) error {
	m.SaveCalls++
	m.SaveCtxErr = ctx.Err()
	if m.SaveCtxErr != nil {
		return m.SaveCtxErr
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}
	return m.MemoryRepository.SaveOrder(ctx, order, decrements)
}

func (m *MockRepository) AddCard(ctx context.Context, card *d.SavedCard) (int64, error) {
	if m.AddCardErr != nil {
		return 0, m.AddCardErr
	}
	return m.MemoryRepository.AddCard(ctx, card)
}

// MockGateway implements payment.Gateway for testing
type MockGateway struct {
	mu sync.Mutex

	ChargeID  string
	ChargeErr error
	RefundErr error
	CardRef   *payment.CardRef
	CardErr   error
	Last4     string
	Last4Err  error

	Charges     []payment.ChargeRequest
	Refunds     []string
	CardsMade   int
	Last4Lookup int
}

func (m *MockGateway) ChargeCard(_ context.Context, req payment.ChargeRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Charges = append(m.Charges, req)
	if m.ChargeErr != nil {
		return "", m.ChargeErr
	}
	return m.ChargeID, nil
}

func (m *MockGateway) RefundCharge(_ context.Context, chargeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Refunds = append(m.Refunds, chargeID)
	return m.RefundErr
}

func (m *MockGateway) CreateCard(_ context.Context, _ *d.Member, _ string) (*payment.CardRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CardsMade++
	return m.CardRef, m.CardErr
}

func (m *MockGateway) Last4ForToken(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Last4Lookup++
	return m.Last4, m.Last4Err
}

// MockNotifier implements notification.Notifier for testing
type MockNotifier struct {
	Err      error
	Subjects []string
}

func (m *MockNotifier) SendEmail(_ context.Context, _ int64, subject, _ string) error {
	m.Subjects = append(m.Subjects, subject)
	return m.Err
}
