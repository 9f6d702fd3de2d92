package cache

import (
	"context"
	"time"
)

// Cache is the key-value backend the repositories orchestrate around. It is
// an optimization, never a source of truth: callers must be prepared to treat
// any error as a miss and fall through to the primary store.
type Cache interface {
	Get(ctx context.Context, key string, value interface{}) (bool, error)
	Set(ctx context.Context, key, prefix string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key, prefix string) error
	GetAll(ctx context.Context, prefix string) ([][]byte, error)
	Close() error
}

// Key builds the entry key for a single entity. The format is wire-stable:
// entries written by one process must be found by another.
func Key(prefix string, id string) string {
	return prefix + ":" + id
}

// CollectionKey names the set tracking which entry keys belong to a prefix.
func CollectionKey(prefix string) string {
	return prefix + "_keys"
}

const (
	AddressKeyPrefix  = "address"
	CategoryKeyPrefix = "category"
	OrderKeyPrefix    = "order"
	ProductKeyPrefix  = "product"
	UserKeyPrefix     = "user"
)

const (
	EntryTTL         = 15 * time.Minute
	CategoryEntryTTL = time.Hour
)
