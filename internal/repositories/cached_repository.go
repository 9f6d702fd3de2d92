package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lyne-commerce/lyne-platform/internal/cache"
	appErrors "github.com/lyne-commerce/lyne-platform/internal/errors"
	"github.com/lyne-commerce/lyne-platform/internal/metrics"
)

// Store is the primary-store contract a cached repository drives. FindByID
// and the other lookups report an absent row as (nil, nil); only real store
// faults come back as errors.
type Store[T any, ID comparable] interface {
	FindByID(ctx context.Context, id ID) (*T, error)
	FindAll(ctx context.Context) ([]*T, error)
	Insert(ctx context.Context, entity *T) error
	UpdateRow(ctx context.Context, entity *T) error
	DeleteRow(ctx context.Context, id ID) error
	ExistsByID(ctx context.Context, id ID) (bool, error)
}

// Validator holds the per-entity domain predicates. Both run against
// committed store state, never the cache. An error means the store could not
// be consulted; a false result means the entity failed the predicate.
type Validator[T any] interface {
	ValidateForCreate(ctx context.Context, entity *T) (bool, error)
	ValidateForUpdate(ctx context.Context, entity *T) (bool, error)
}

// CachedRepository layers read-through caching and write-invalidation over a
// primary store. One instance per entity type; the prefix and TTL pin the
// entity's slice of the cache keyspace.
//
// The cache is best effort: every backend failure is absorbed and the
// operation completes against the store alone.
type CachedRepository[T any, ID comparable] struct {
	store     Store[T, ID]
	validator Validator[T]
	cache     cache.Cache
	prefix    string
	ttl       time.Duration
	idOf      func(*T) ID
}

func NewCachedRepository[T any, ID comparable](
	store Store[T, ID],
	validator Validator[T],
	c cache.Cache,
	prefix string,
	ttl time.Duration,
	idOf func(*T) ID,
) *CachedRepository[T, ID] {
	return &CachedRepository[T, ID]{
		store:     store,
		validator: validator,
		cache:     c,
		prefix:    prefix,
		ttl:       ttl,
		idOf:      idOf,
	}
}

func (r *CachedRepository[T, ID]) key(id ID) string {
	return cache.Key(r.prefix, fmt.Sprint(id))
}

// GetByID serves from the cache when it can and falls through to the store
// otherwise. Absent rows are reported as (nil, nil) and are not cached.
func (r *CachedRepository[T, ID]) GetByID(ctx context.Context, id ID) (*T, error) {

	key := r.key(id)
	entity := new(T)

	found, err := r.cache.Get(ctx, key, entity)
	if err != nil {
		metrics.CacheDegradedTotal.WithLabelValues(r.prefix).Inc()
		slog.WarnContext(ctx, "cache read failed, falling back to store",
			slog.String("key", key), slog.Any("error", err))
	}

	if err == nil && found {
		metrics.CacheHitsTotal.WithLabelValues(r.prefix).Inc()

		return entity, nil
	}

	metrics.CacheMissesTotal.WithLabelValues(r.prefix).Inc()

	entity, err = r.store.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.DatabaseError("failed to load "+r.prefix).WithError(err)
	}

	if entity == nil {
		slog.InfoContext(ctx, "entity not found",
			slog.String("entity", r.prefix), slog.String("id", fmt.Sprint(id)))

		return nil, nil
	}

	r.cacheSet(ctx, key, entity)

	return entity, nil
}

// GetAll returns every decodable entry under the prefix's membership set, or
// the store's full table when the cache holds nothing.
//
// A non-empty membership set is trusted as the whole collection. A partially
// warmed cache is indistinguishable from a full one here, so callers may see
// a subset until the cached entries expire.
func (r *CachedRepository[T, ID]) GetAll(ctx context.Context) ([]*T, error) {

	payloads, err := r.cache.GetAll(ctx, r.prefix)
	if err != nil {
		metrics.CacheDegradedTotal.WithLabelValues(r.prefix).Inc()
		slog.WarnContext(ctx, "cache collection read failed, falling back to store",
			slog.String("entity", r.prefix), slog.Any("error", err))
	}

	if err == nil {
		if entities := cache.DecodeAll[T](payloads); len(entities) > 0 {
			metrics.CacheHitsTotal.WithLabelValues(r.prefix).Inc()

			return entities, nil
		}
	}

	metrics.CacheMissesTotal.WithLabelValues(r.prefix).Inc()

	entities, err := r.store.FindAll(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("failed to list "+r.prefix).WithError(err)
	}

	return entities, nil
}

// Add validates, inserts, then writes the cache entry. The row is durable
// before the cache learns about it, so a crash between the two steps can
// only cost a miss, never expose a phantom entity.
func (r *CachedRepository[T, ID]) Add(ctx context.Context, entity *T) (bool, error) {

	if entity == nil {
		slog.WarnContext(ctx, "attempted to add a nil entity", slog.String("entity", r.prefix))

		return false, nil
	}

	valid, err := r.validator.ValidateForCreate(ctx, entity)
	if err != nil {
		return false, appErrors.DatabaseError("failed to validate "+r.prefix).WithError(err)
	}

	if !valid {
		slog.InfoContext(ctx, "entity failed creation validation", slog.String("entity", r.prefix))

		return false, nil
	}

	if err := r.store.Insert(ctx, entity); err != nil {
		return false, appErrors.DatabaseError("failed to insert "+r.prefix).WithError(err)
	}

	id := r.idOf(entity)
	r.cacheSet(ctx, r.key(id), entity)

	slog.InfoContext(ctx, "entity added",
		slog.String("entity", r.prefix), slog.String("id", fmt.Sprint(id)))

	return true, nil
}

// Update refreshes both the row and its cache entry with a fresh TTL.
func (r *CachedRepository[T, ID]) Update(ctx context.Context, entity *T) (bool, error) {

	if entity == nil {
		slog.WarnContext(ctx, "attempted to update a nil entity", slog.String("entity", r.prefix))

		return false, nil
	}

	id := r.idOf(entity)

	exists, err := r.store.ExistsByID(ctx, id)
	if err != nil {
		return false, appErrors.DatabaseError("failed to check "+r.prefix+" existence").WithError(err)
	}

	if !exists {
		slog.InfoContext(ctx, "entity not found for update",
			slog.String("entity", r.prefix), slog.String("id", fmt.Sprint(id)))

		return false, nil
	}

	valid, err := r.validator.ValidateForUpdate(ctx, entity)
	if err != nil {
		return false, appErrors.DatabaseError("failed to validate "+r.prefix).WithError(err)
	}

	if !valid {
		slog.InfoContext(ctx, "entity failed update validation",
			slog.String("entity", r.prefix), slog.String("id", fmt.Sprint(id)))

		return false, nil
	}

	if err := r.store.UpdateRow(ctx, entity); err != nil {
		return false, appErrors.DatabaseError("failed to update "+r.prefix).WithError(err)
	}

	r.cacheSet(ctx, r.key(id), entity)

	slog.InfoContext(ctx, "entity updated",
		slog.String("entity", r.prefix), slog.String("id", fmt.Sprint(id)))

	return true, nil
}

// Delete removes the cache entry, its membership record, and the row.
func (r *CachedRepository[T, ID]) Delete(ctx context.Context, entity *T) (bool, error) {

	if entity == nil {
		slog.WarnContext(ctx, "attempted to delete a nil entity", slog.String("entity", r.prefix))

		return false, nil
	}

	id := r.idOf(entity)

	exists, err := r.store.ExistsByID(ctx, id)
	if err != nil {
		return false, appErrors.DatabaseError("failed to check "+r.prefix+" existence").WithError(err)
	}

	if !exists {
		slog.InfoContext(ctx, "entity not found for delete",
			slog.String("entity", r.prefix), slog.String("id", fmt.Sprint(id)))

		return false, nil
	}

	valid, err := r.validateForDelete(ctx, entity)
	if err != nil {
		return false, appErrors.DatabaseError("failed to validate "+r.prefix).WithError(err)
	}

	if !valid {
		slog.InfoContext(ctx, "entity failed delete precondition",
			slog.String("entity", r.prefix), slog.String("id", fmt.Sprint(id)))

		return false, nil
	}

	if err := r.cache.Delete(ctx, r.key(id), r.prefix); err != nil {
		metrics.CacheDegradedTotal.WithLabelValues(r.prefix).Inc()
		slog.WarnContext(ctx, "cache delete failed, entry will expire via TTL",
			slog.String("key", r.key(id)), slog.Any("error", err))
	}

	if err := r.store.DeleteRow(ctx, id); err != nil {
		return false, appErrors.DatabaseError("failed to delete "+r.prefix).WithError(err)
	}

	slog.InfoContext(ctx, "entity deleted",
		slog.String("entity", r.prefix), slog.String("id", fmt.Sprint(id)))

	return true, nil
}

// validateForDelete gates deletion on the update predicate: the row must
// still look like a valid entity before it is removed.
//
// TODO: this does not verify inbound references (e.g. orders holding a
// product being deleted); a real referential check is needed before this can
// be trusted as a safety gate.
func (r *CachedRepository[T, ID]) validateForDelete(ctx context.Context, entity *T) (bool, error) {
	return r.validator.ValidateForUpdate(ctx, entity)
}

// Exists always consults the primary store. Existence is consistency
// sensitive and must not be answered from a possibly stale cache entry.
func (r *CachedRepository[T, ID]) Exists(ctx context.Context, id ID) (bool, error) {

	exists, err := r.store.ExistsByID(ctx, id)
	if err != nil {
		return false, appErrors.DatabaseError("failed to check "+r.prefix+" existence").WithError(err)
	}

	return exists, nil
}

func (r *CachedRepository[T, ID]) ValidateForCreate(ctx context.Context, entity *T) (bool, error) {
	return r.validator.ValidateForCreate(ctx, entity)
}

func (r *CachedRepository[T, ID]) ValidateForUpdate(ctx context.Context, entity *T) (bool, error) {
	return r.validator.ValidateForUpdate(ctx, entity)
}

// cacheSet is the write-through half of every successful read and write.
// Failures are absorbed: the entry simply stays cold until the next read.
func (r *CachedRepository[T, ID]) cacheSet(ctx context.Context, key string, entity *T) {
	if err := r.cache.Set(ctx, key, r.prefix, entity, r.ttl); err != nil {
		metrics.CacheDegradedTotal.WithLabelValues(r.prefix).Inc()
		slog.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.Any("error", err))
	}
}
