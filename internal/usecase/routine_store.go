package usecase

import (
	"context"
	"encoding/json"
	"slices"
	"sort"

	"github.com/skinlens/backend/internal/domain"
)

const (
	routineStateName    = "routine"
	routineStateVersion = 1
)

// RoutineState holds the AM and PM routines. Within each slot there is at most
// one entry per step and per product.
type RoutineState struct {
	AM []domain.RoutineEntry `json:"am"`
	PM []domain.RoutineEntry `json:"pm"`
}

func (s RoutineState) slot(slot domain.RoutineSlot) []domain.RoutineEntry {
	if slot == domain.SlotPM {
		return s.PM
	}
	return s.AM
}

func (s *RoutineState) setSlot(slot domain.RoutineSlot, entries []domain.RoutineEntry) {
	if slot == domain.SlotPM {
		s.PM = entries
		return
	}
	s.AM = entries
}

func cloneRoutine(s RoutineState) RoutineState {
	return RoutineState{
		AM: append([]domain.RoutineEntry{}, s.AM...),
		PM: append([]domain.RoutineEntry{}, s.PM...),
	}
}

// RoutineStore is the AM/PM routine assignment state
type RoutineStore struct {
	c *stateContainer[RoutineState]
}

// NewRoutineStore creates an empty routine store
func NewRoutineStore(opts StateOptions) *RoutineStore {
	return &RoutineStore{
		c: newStateContainer(routineStateName, routineStateVersion, RoutineState{}, cloneRoutine, migrateRoutine, opts),
	}
}

func migrateRoutine(raw json.RawMessage, _ int) (RoutineState, error) {
	state, err := decodeState[RoutineState](raw)
	if err != nil {
		return RoutineState{}, err
	}
	return cloneRoutine(state), nil
}

// Hydrate restores the routine from the state store
func (s *RoutineStore) Hydrate(ctx context.Context) error {
	return s.c.hydrate(ctx)
}

// AddToRoutine assigns entry to slot. A product already in the slot is left where
// it is, even when entry names a different step. Otherwise any entry occupying
// the same step is evicted and entry is appended.
func (s *RoutineStore) AddToRoutine(slot domain.RoutineSlot, entry domain.RoutineEntry) {
	s.c.update(func(state RoutineState) (RoutineState, bool) {
		list := state.slot(slot)

		if slices.ContainsFunc(list, func(x domain.RoutineEntry) bool { return x.ProductID == entry.ProductID }) {
			return state, false
		}

		next := slices.DeleteFunc(list, func(x domain.RoutineEntry) bool { return x.Step == entry.Step })
		next = append(next, entry)
		state.setSlot(slot, next)
		return state, true
	})
}

// RemoveFromRoutine drops productID from slot if present
func (s *RoutineStore) RemoveFromRoutine(slot domain.RoutineSlot, productID string) {
	s.c.update(func(state RoutineState) (RoutineState, bool) {
		list := state.slot(slot)
		n := len(list)
		next := slices.DeleteFunc(list, func(x domain.RoutineEntry) bool { return x.ProductID == productID })
		if len(next) == n {
			return state, false
		}
		state.setSlot(slot, next)
		return state, true
	})
}

// ClearRoutine empties both slots
func (s *RoutineStore) ClearRoutine() {
	s.c.update(func(state RoutineState) (RoutineState, bool) {
		if len(state.AM) == 0 && len(state.PM) == 0 {
			return state, false
		}
		return RoutineState{AM: []domain.RoutineEntry{}, PM: []domain.RoutineEntry{}}, true
	})
}

// Snapshot returns a copy of both routines
func (s *RoutineStore) Snapshot() RoutineState {
	return s.c.snapshot()
}

// Subscribe calls fn after every routine change
func (s *RoutineStore) Subscribe(fn func(RoutineState)) (unsubscribe func()) {
	return s.c.subscribe(fn)
}

// ResolveRoutine joins slot entries with catalog products in step order.
// Entries whose product is no longer in the catalog are dropped.
func ResolveRoutine(entries []domain.RoutineEntry, catalog domain.Catalog) []domain.ResolvedRoutineEntry {
	out := make([]domain.ResolvedRoutineEntry, 0, len(entries))
	for _, e := range entries {
		p, ok := catalog.Product(e.ProductID)
		if !ok {
			continue
		}
		out = append(out, domain.ResolvedRoutineEntry{RoutineEntry: e, Product: p})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return domain.StepOrder(out[i].Step) < domain.StepOrder(out[j].Step)
	})
	return out
}
