package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skinlens/backend/internal/domain"
)

const defaultSaveTimeout = 5 * time.Second

// StateOptions configures how a state container persists itself.
// A nil Store keeps state in process memory only.
type StateOptions struct {
	Store       domain.StateStore
	KeyPrefix   string
	SaveTimeout time.Duration
	Logger      *zap.Logger
}

// persistedState is the envelope written to the state store
type persistedState struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// stateContainer owns one piece of user state. Every change is serialized to the
// state store before subscribers are notified; Hydrate restores the last write.
// Subscribers see commits in order and never a snapshot older than one already
// delivered. They must not update the same container from the callback.
type stateContainer[T any] struct {
	mu      sync.Mutex
	state   T
	seq     uint64
	key     string
	version int
	clone   func(T) T
	migrate func(raw json.RawMessage, version int) (T, error)

	store       domain.StateStore
	saveTimeout time.Duration
	logger      *zap.Logger

	subMu   sync.Mutex
	subs    map[int]func(T)
	nextSub int

	notifyMu     sync.Mutex
	deliveredSeq uint64
}

func newStateContainer[T any](
	name string,
	version int,
	initial T,
	clone func(T) T,
	migrate func(raw json.RawMessage, version int) (T, error),
	opts StateOptions,
) *stateContainer[T] {
	key := name
	if opts.KeyPrefix != "" {
		key = opts.KeyPrefix + ":" + name
	}
	timeout := opts.SaveTimeout
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &stateContainer[T]{
		state:       initial,
		key:         key,
		version:     version,
		clone:       clone,
		migrate:     migrate,
		store:       opts.Store,
		saveTimeout: timeout,
		logger:      logger.With(zap.String("state", key)),
		subs:        make(map[int]func(T)),
	}
}

// snapshot returns a copy of the current state
func (c *stateContainer[T]) snapshot() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clone(c.state)
}

// update applies fn atomically. fn returns the next state and whether it changed;
// unchanged results are neither persisted nor broadcast.
func (c *stateContainer[T]) update(fn func(current T) (T, bool)) T {
	c.mu.Lock()
	next, changed := fn(c.clone(c.state))
	if !changed {
		out := c.clone(c.state)
		c.mu.Unlock()
		return out
	}
	c.state = next
	c.seq++
	seq := c.seq
	c.persistLocked()
	out := c.clone(c.state)
	c.mu.Unlock()

	c.notify(seq, out)
	return out
}

// persistLocked writes the current state; failures are logged and the in-memory
// state stays authoritative.
func (c *stateContainer[T]) persistLocked() {
	if c.store == nil {
		return
	}

	raw, err := json.Marshal(c.state)
	if err != nil {
		c.logger.Error("failed to encode state", zap.Error(err))
		return
	}
	blob, err := json.Marshal(persistedState{Version: c.version, State: raw})
	if err != nil {
		c.logger.Error("failed to encode state envelope", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	defer cancel()
	if err := c.store.Set(ctx, c.key, string(blob)); err != nil {
		c.logger.Error("failed to persist state", zap.Error(err))
	}
}

// hydrate loads the last persisted state. A missing key leaves the initial state.
func (c *stateContainer[T]) hydrate(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	blob, err := c.store.Get(ctx, c.key)
	if errors.Is(err, domain.ErrStateNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", c.key, err)
	}

	var env persistedState
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return fmt.Errorf("decode %s: %w", c.key, err)
	}

	state, err := c.migrate(env.State, env.Version)
	if err != nil {
		return fmt.Errorf("migrate %s from v%d: %w", c.key, env.Version, err)
	}

	c.mu.Lock()
	c.state = state
	c.seq++
	seq := c.seq
	out := c.clone(c.state)
	c.mu.Unlock()

	c.logger.Debug("state hydrated", zap.Int("version", env.Version))
	c.notify(seq, out)
	return nil
}

// subscribe registers fn for every committed change and returns its cancel func
func (c *stateContainer[T]) subscribe(fn func(T)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// notify delivers the snapshot committed as seq. A snapshot that lost the race
// to a newer commit is dropped.
func (c *stateContainer[T]) notify(seq uint64, state T) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.deliveredSeq {
		return
	}
	c.deliveredSeq = seq

	c.subMu.Lock()
	fns := make([]func(T), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(c.clone(state))
	}
}

// decodeState unmarshals raw into T; an absent payload yields the zero value
func decodeState[T any](raw json.RawMessage) (T, error) {
	var state T
	if len(raw) == 0 || string(raw) == "null" {
		return state, nil
	}
	err := json.Unmarshal(raw, &state)
	return state, err
}
