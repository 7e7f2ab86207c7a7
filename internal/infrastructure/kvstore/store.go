package kvstore

import (
	"context"
	"fmt"

	"github.com/skinlens/backend/internal/domain"
)

// Backend types
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
	TypeSQLite = "sqlite"
)

// Store is a state store with a connection lifecycle
type Store interface {
	domain.StateStore
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend
type Options struct {
	Type       string
	RedisURL   string
	SQLitePath string
}

// Open connects the backend named by opts.Type
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "", TypeMemory:
		return NewMemoryStore(), nil
	case TypeRedis:
		client, err := NewRedisClient(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client), nil
	case TypeSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store type %q", opts.Type)
	}
}
