package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/inventory"
	"github.com/fjod/go_cart/checkout-service/internal/pricing"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateOrder = errors.New("order already exists for this charge")
	// ErrStockChanged is returned by SaveOrder when a constrained counter no
	// longer covers the decrement at write time.
	ErrStockChanged = errors.New("inventory changed since it was checked")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// RepoInterface is the transactional record store used by checkout.
type RepoInterface interface {
	inventory.Ledger
	pricing.TaxTable

	Close() error
	RunMigrations(*Credentials) error

	GetMember(ctx context.Context, memberID int64) (*domain.Member, error)

	ListAddresses(ctx context.Context, memberID int64) ([]domain.SavedAddress, error)
	FindAddress(ctx context.Context, memberID, addressID int64) (*domain.SavedAddress, error)
	AddAddress(ctx context.Context, memberID int64, addr domain.Address) (int64, error)

	ListCards(ctx context.Context, memberID int64) ([]domain.SavedCard, error)
	FindCard(ctx context.Context, memberID, cardID int64) (*domain.SavedCard, error)
	AddCard(ctx context.Context, card *domain.SavedCard) (int64, error)

	GetProducts(ctx context.Context, productIDs []int64) (map[int64]*domain.Product, error)

	// SaveOrder creates the order and applies every decrement in one
	// transaction. Either all of it is written or none of it is.
	SaveOrder(ctx context.Context, order *domain.Order, decrements []inventory.StockDecrement) error
	GetOrder(ctx context.Context, memberID int64, orderID uuid.UUID) (*domain.Order, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "checkout_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
