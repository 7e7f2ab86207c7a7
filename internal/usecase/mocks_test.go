package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/skinlens/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string]interface{}
	getError error
	setError error
	getCalls int
	setCalls int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockStateStore is a mock implementation of domain.StateStore
type MockStateStore struct {
	mu       sync.Mutex
	data     map[string]string
	getError error
	setError error
	sets     int
}

func NewMockStateStore() *MockStateStore {
	return &MockStateStore{data: make(map[string]string)}
}

func (m *MockStateStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return "", m.getError
	}
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrStateNotFound
	}
	return v, nil
}

func (m *MockStateStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockStateStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockStateStore) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// mockCatalog is an in-memory domain.Catalog preserving insertion order
type mockCatalog struct {
	products []domain.Product
	help     map[string]string
}

func newMockCatalog(products ...domain.Product) *mockCatalog {
	return &mockCatalog{products: products, help: map[string]string{}}
}

func (c *mockCatalog) Products() []domain.Product {
	return c.products
}

func (c *mockCatalog) Product(id string) (domain.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (c *mockCatalog) IngredientHelp(tag string) (string, bool) {
	h, ok := c.help[tag]
	return h, ok
}

func testProduct(id string, category domain.Category, rating float64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "Product " + id,
		Brand:    "Brand",
		Category: category,
		Price:    domain.PriceMid,
		Rating:   rating,
	}
}
