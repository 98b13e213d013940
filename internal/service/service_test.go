package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/testutil"
	"go-inventory-ledger/pkg/jwt"
)

var (
	adminSession    = service.Session{UserID: 1, Username: "admin", Role: model.RoleAdmin}
	employeeSession = service.Session{UserID: 2, Username: "clerk", Role: model.RoleEmployee}
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.StockEvent
}

func (n *recordingNotifier) Notify(e model.StockEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) Events() []model.StockEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.StockEvent(nil), n.events...)
}

// memoryIdempotency mirrors the Redis store's contract in memory.
type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]uint
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: map[string]uint{}}
}

func (m *memoryIdempotency) Reserve(_ context.Context, key string) (uint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.keys[key]; ok {
		return id, false, nil
	}
	m.keys[key] = 0
	return 0, true, nil
}

func (m *memoryIdempotency) Complete(_ context.Context, key string, entryID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = entryID
	return nil
}

func (m *memoryIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

type harness struct {
	db        *gorm.DB
	products  repository.ProductRepository
	ledger    repository.LedgerRepository
	users     repository.UserRepository
	notifier  *recordingNotifier
	catalog   service.CatalogService
	inventory service.InventoryService
	auth      service.AuthService
	userSvc   service.UserService
	tokens    *jwt.Manager
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	products    func(repository.ProductRepository) repository.ProductRepository
	ledger      func(repository.LedgerRepository) repository.LedgerRepository
	idempotency service.IdempotencyStore
}

func withLedger(wrap func(repository.LedgerRepository) repository.LedgerRepository) harnessOption {
	return func(c *harnessConfig) { c.ledger = wrap }
}

func withProducts(wrap func(repository.ProductRepository) repository.ProductRepository) harnessOption {
	return func(c *harnessConfig) { c.products = wrap }
}

func withIdempotency(store service.IdempotencyStore) harnessOption {
	return func(c *harnessConfig) { c.idempotency = store }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	cfg := harnessConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	db := testutil.NewDB(t)
	log := testutil.Logger()
	h := &harness{
		db:       db,
		products: repository.NewProductRepo(db),
		ledger:   repository.NewLedgerRepo(db),
		users:    repository.NewUserRepo(db),
		notifier: &recordingNotifier{},
	}

	engineProducts := h.products
	if cfg.products != nil {
		engineProducts = cfg.products(h.products)
	}
	engineLedger := h.ledger
	if cfg.ledger != nil {
		engineLedger = cfg.ledger(h.ledger)
	}

	tokens, err := jwt.NewManager("test-secret", time.Hour, "test")
	require.NoError(t, err)
	h.tokens = tokens

	h.catalog = service.NewCatalogService(db, h.products, h.ledger, h.notifier, log)
	h.inventory = service.NewInventoryService(db, engineProducts, engineLedger, cfg.idempotency, h.notifier, log)
	h.auth = service.NewAuthService(h.users, tokens, log)
	h.userSvc = service.NewUserService(h.users, log)
	return h
}

func (h *harness) addProduct(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	p, err := h.catalog.AddProduct(context.Background(), adminSession, service.CreateProductRequest{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func (h *harness) stockOf(t *testing.T, id uint) int {
	t.Helper()
	p, err := h.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (h *harness) ledgerLen(t *testing.T) int {
	t.Helper()
	entries, err := h.ledger.List(context.Background(), repository.LedgerFilter{})
	require.NoError(t, err)
	return len(entries)
}
