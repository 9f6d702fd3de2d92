package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lyne-commerce/lyne-platform/internal/models"
)

var errCacheDown = errors.New("cache backend down")

// fakeCache is an in-memory stand-in for the Redis backend, with switches to
// simulate an outage and counters to prove which layer served a read.
type fakeCache struct {
	entries map[string][]byte
	sets    map[string]map[string]struct{}

	failReads  bool
	failWrites bool

	getCalls int
	setCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string][]byte),
		sets:    make(map[string]map[string]struct{}),
	}
}

func (f *fakeCache) Get(_ context.Context, key string, value any) (bool, error) {
	f.getCalls++

	if f.failReads {
		return false, errCacheDown
	}

	data, ok := f.entries[key]
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}

	return true, nil
}

func (f *fakeCache) Set(_ context.Context, key, prefix string, value any, _ time.Duration) error {
	f.setCalls++

	if f.failWrites {
		return errCacheDown
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	f.entries[key] = data

	if f.sets[prefix] == nil {
		f.sets[prefix] = make(map[string]struct{})
	}

	f.sets[prefix][key] = struct{}{}

	return nil
}

func (f *fakeCache) Delete(_ context.Context, key, prefix string) error {
	if f.failWrites {
		return errCacheDown
	}

	delete(f.entries, key)

	if set := f.sets[prefix]; set != nil {
		delete(set, key)
	}

	return nil
}

func (f *fakeCache) GetAll(_ context.Context, prefix string) ([][]byte, error) {
	if f.failReads {
		return nil, errCacheDown
	}

	var payloads [][]byte

	for key := range f.sets[prefix] {
		if data, ok := f.entries[key]; ok {
			payloads = append(payloads, data)
		}
	}

	return payloads, nil
}

func (f *fakeCache) Close() error { return nil }

// fakeProductStore implements the primary-store contract in memory and
// counts lookups so tests can assert a read never reached the store.
type fakeProductStore struct {
	rows map[uuid.UUID]*models.Product

	findCalls    int
	findAllCalls int
	insertCalls  int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{rows: make(map[uuid.UUID]*models.Product)}
}

func (s *fakeProductStore) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.findCalls++

	product, ok := s.rows[id]
	if !ok {
		return nil, nil
	}

	copied := *product

	return &copied, nil
}

func (s *fakeProductStore) FindAll(_ context.Context) ([]*models.Product, error) {
	s.findAllCalls++

	products := make([]*models.Product, 0, len(s.rows))
	for _, product := range s.rows {
		copied := *product
		products = append(products, &copied)
	}

	return products, nil
}

func (s *fakeProductStore) Insert(_ context.Context, product *models.Product) error {
	s.insertCalls++

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	copied := *product
	s.rows[product.ID] = &copied

	return nil
}

func (s *fakeProductStore) UpdateRow(_ context.Context, product *models.Product) error {
	copied := *product
	s.rows[product.ID] = &copied

	return nil
}

func (s *fakeProductStore) DeleteRow(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)

	return nil
}

func (s *fakeProductStore) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.rows[id]

	return ok, nil
}

// stubValidator lets tests pick predicate outcomes without a database.
type stubValidator struct {
	allowCreate bool
	allowUpdate bool
	err         error
}

func (v *stubValidator) ValidateForCreate(context.Context, *models.Product) (bool, error) {
	return v.allowCreate, v.err
}

func (v *stubValidator) ValidateForUpdate(context.Context, *models.Product) (bool, error) {
	return v.allowUpdate, v.err
}

func validProduct() *models.Product {
	return &models.Product{
		ID:            uuid.New(),
		CategoryID:    uuid.New(),
		Name:          "Shirt",
		Brand:         "Lyne",
		Description:   "Plain cotton shirt",
		Price:         10,
		StockQuantity: 25,
		ImageURL:      "https://cdn.example.com/shirt.png",
		Size:          "M",
		Color:         "white",
		IsActive:      true,
	}
}
