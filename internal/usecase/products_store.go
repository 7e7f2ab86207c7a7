package usecase

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/skinlens/backend/internal/domain"
)

const (
	productsStateName    = "products"
	productsStateVersion = 1

	// MaxCompare is the capacity of the comparison set
	MaxCompare = 2
)

// ProductsState holds favorites (newest first) and the comparison set
type ProductsState struct {
	Favorites []string `json:"favorites"`
	Compare   []string `json:"compare"`
}

func cloneProducts(s ProductsState) ProductsState {
	return ProductsState{
		Favorites: append([]string{}, s.Favorites...),
		Compare:   append([]string{}, s.Compare...),
	}
}

// ProductsStore tracks favorite products and the side-by-side comparison set
type ProductsStore struct {
	c *stateContainer[ProductsState]
}

// NewProductsStore creates an empty products store
func NewProductsStore(opts StateOptions) *ProductsStore {
	return &ProductsStore{
		c: newStateContainer(productsStateName, productsStateVersion, ProductsState{}, cloneProducts, migrateProducts, opts),
	}
}

func migrateProducts(raw json.RawMessage, _ int) (ProductsState, error) {
	state, err := decodeState[ProductsState](raw)
	if err != nil {
		return ProductsState{}, err
	}
	return cloneProducts(state), nil
}

// Hydrate restores favorites and the comparison set from the state store
func (s *ProductsStore) Hydrate(ctx context.Context) error {
	return s.c.hydrate(ctx)
}

// AddCompare adds id to the comparison set. Adding an id already present succeeds
// without change; adding to a full set returns ErrCompareCapacity and leaves the
// set untouched.
func (s *ProductsStore) AddCompare(id string) error {
	var err error
	s.c.update(func(state ProductsState) (ProductsState, bool) {
		if slices.Contains(state.Compare, id) {
			return state, false
		}
		if len(state.Compare) >= MaxCompare {
			err = domain.ErrCompareCapacity
			return state, false
		}
		state.Compare = append(state.Compare, id)
		return state, true
	})
	return err
}

// RemoveCompare drops id from the comparison set if present
func (s *ProductsStore) RemoveCompare(id string) {
	s.c.update(func(state ProductsState) (ProductsState, bool) {
		if !slices.Contains(state.Compare, id) {
			return state, false
		}
		state.Compare = slices.DeleteFunc(state.Compare, func(x string) bool { return x == id })
		return state, true
	})
}

// ClearCompare empties the comparison set
func (s *ProductsStore) ClearCompare() {
	s.c.update(func(state ProductsState) (ProductsState, bool) {
		if len(state.Compare) == 0 {
			return state, false
		}
		state.Compare = []string{}
		return state, true
	})
}

// ToggleFavorite flips the membership of id and reports whether it is now a favorite
func (s *ProductsStore) ToggleFavorite(id string) bool {
	state := s.c.update(func(state ProductsState) (ProductsState, bool) {
		if slices.Contains(state.Favorites, id) {
			state.Favorites = slices.DeleteFunc(state.Favorites, func(x string) bool { return x == id })
		} else {
			state.Favorites = append([]string{id}, state.Favorites...)
		}
		return state, true
	})
	return slices.Contains(state.Favorites, id)
}

// IsFavorite reports whether id is a favorite
func (s *ProductsStore) IsFavorite(id string) bool {
	return slices.Contains(s.c.snapshot().Favorites, id)
}

// Snapshot returns a copy of favorites and the comparison set
func (s *ProductsStore) Snapshot() ProductsState {
	return s.c.snapshot()
}

// Subscribe calls fn after every favorites or comparison change
func (s *ProductsStore) Subscribe(fn func(ProductsState)) (unsubscribe func()) {
	return s.c.subscribe(fn)
}

// ResolveProducts maps ids to catalog products, dropping ids no longer in the catalog
func ResolveProducts(ids []string, catalog domain.Catalog) []domain.Product {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := catalog.Product(id); ok {
			out = append(out, p)
		}
	}
	return out
}
