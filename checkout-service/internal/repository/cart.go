package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/checkout-service/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CartStore reads and clears the live cart. Adding and removing lines belongs
// to the cart pages, not to checkout.
type CartStore interface {
	// GetCart returns an empty cart when the member has none yet.
	GetCart(ctx context.Context, memberID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context, memberID int64) error
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type MongoCartStore struct {
	collection *mongo.Collection
}

func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{collection: db.Collection("carts")}
}

func (m *MongoCartStore) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "member_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create cart index: %w", err)
	}
	return nil
}

func (m *MongoCartStore) GetCart(ctx context.Context, memberID int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := m.collection.FindOne(ctx, bson.M{"member_id": memberID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &domain.Cart{MemberID: memberID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

func (m *MongoCartStore) ClearCart(ctx context.Context, memberID int64) error {
	update := bson.M{"$set": bson.M{
		"lines":      []domain.CartLine{},
		"updated_at": time.Now(),
	}}
	if _, err := m.collection.UpdateOne(ctx, bson.M{"member_id": memberID}, update); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// PutCart upserts the whole cart. Seeding and tests use it.
func (m *MongoCartStore) PutCart(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now()
	opts := options.Update().SetUpsert(true)
	_, err := m.collection.UpdateOne(ctx, bson.M{"member_id": cart.MemberID}, bson.M{"$set": cart}, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[int64][]domain.CartLine
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[int64][]domain.CartLine)}
}

func (s *MemoryCartStore) SetLines(memberID int64, lines ...domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[memberID] = append([]domain.CartLine(nil), lines...)
}

func (s *MemoryCartStore) GetCart(_ context.Context, memberID int64) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &domain.Cart{
		MemberID: memberID,
		Lines:    append([]domain.CartLine(nil), s.carts[memberID]...),
	}, nil
}

func (s *MemoryCartStore) ClearCart(_ context.Context, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, memberID)
	return nil
}
