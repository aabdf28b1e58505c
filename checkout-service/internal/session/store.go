package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/checkout-service/domain"
)

var ErrNoSession = errors.New("no checkout session")

// Store holds one CheckoutSessionState per browsing session.
type Store interface {
	// Load returns ErrNoSession when nothing is stored for the session.
	Load(ctx context.Context, sessionID string) (*domain.CheckoutSessionState, error)
	Save(ctx context.Context, sessionID string, state *domain.CheckoutSessionState) error
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore keeps serialized states, so callers never share a pointer with
// the store.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*domain.CheckoutSessionState, error) {
	m.mu.RLock()
	data, ok := m.states[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}

	var state domain.CheckoutSessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &state, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, state *domain.CheckoutSessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[sessionID] = data
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	return nil
}
