package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD operations for any domain type.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []Index[T]
}

// Index defines a secondary index on an entity. Unique indexes map one value
// to one entity id and reject conflicting writes; multi indexes append the
// entity id to the key so many entities can share a value.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string
	unique          bool
}

// keysFor returns the full storage keys this index contributes for an entity.
func (idx Index[T]) keysFor(prefix, id string, entity *T) []string {
	values := idx.keyGen(entity)
	keys := make([]string, 0, len(values))
	for _, v := range values {
		if idx.unique {
			keys = append(keys, indexKeyString(prefix, idx.name, v))
		} else {
			keys = append(keys, indexKeyString(prefix, idx.name, v)+":"+id)
		}
	}
	return keys
}

func indexKeyString(prefix, name, value string) string {
	return prefix + "idx:" + name + ":" + value
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{
		store:   s,
		prefix:  prefix,
		indexes: make([]Index[T], 0),
	}
}

// WithIndex adds a unique secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
		unique: true,
	})
	return e
}

// WithIndexTransform adds a unique secondary index with a lookup
// transformation. The transform is applied to search values before lookup,
// enabling case-insensitive matching and the like.
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
		unique:          true,
	})
	return e
}

// WithMultiIndex adds a non-unique secondary index: several entities may
// share one index value. Use ListByIndex to read it back.
func (e *Entity[T]) WithMultiIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

// Create creates a new entity with the given ID.
// Returns ErrAlreadyExists if an entity with this ID already exists or a
// unique index value is taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	// Keys are pooled; they must stay valid until Create commits, so the
	// release happens after it returns.
	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	var indexKeys []string
	for _, idx := range e.indexes {
		indexKeys = append(indexKeys, idx.keysFor(e.prefix, id, entity)...)
	}

	return e.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		// Unique index conflicts first, before any write.
		for _, idx := range e.indexes {
			if !idx.unique {
				continue
			}
			for _, k := range idx.keysFor(e.prefix, id, entity) {
				_, err := txn.Get([]byte(k))
				if err == nil {
					return fmt.Errorf("index %s conflict: %w", idx.name, ErrAlreadyExists)
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("failed to check index key: %w", err)
				}
			}
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		for _, k := range indexKeys {
			if err := txn.Set([]byte(k), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
		return nil
	})
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	var entity T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entity); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetByIndex retrieves an entity by a unique secondary index. If the index
// has a lookup transform it is applied to the value first.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transformed := value
	for _, idx := range e.indexes {
		if idx.name == indexName && idx.lookupTransform != nil {
			transformed = idx.lookupTransform(value)
			break
		}
	}

	indexKey := buildIndexKey(e.prefix, indexName, transformed)
	defer releaseKey(indexKey)

	var id string
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return e.Get(ctx, id)
}

// Update updates an existing entity.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	return e.store.db.Update(func(txn *badger.Txn) error {
		var oldEntity T
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get existing key: %w", err)
		}
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &oldEntity)
		})
		if err != nil {
			return fmt.Errorf("failed to unmarshal old entity: %w", err)
		}

		for _, idx := range e.indexes {
			oldKeys := idx.keysFor(e.prefix, id, &oldEntity)
			newKeys := idx.keysFor(e.prefix, id, entity)

			oldSet := make(map[string]bool, len(oldKeys))
			for _, k := range oldKeys {
				oldSet[k] = true
			}
			newSet := make(map[string]bool, len(newKeys))
			for _, k := range newKeys {
				newSet[k] = true
			}

			// Drop index keys the new entity no longer claims.
			for _, k := range oldKeys {
				if newSet[k] {
					continue
				}
				if err := txn.Delete([]byte(k)); err != nil {
					return fmt.Errorf("failed to delete old index key: %w", err)
				}
			}

			// Conflict-check freshly claimed unique keys.
			for _, k := range newKeys {
				if oldSet[k] {
					continue
				}
				if idx.unique {
					_, err := txn.Get([]byte(k))
					if err == nil {
						return fmt.Errorf("index %s conflict: %w", idx.name, ErrAlreadyExists)
					}
					if !errors.Is(err, badger.ErrKeyNotFound) {
						return fmt.Errorf("failed to check index key: %w", err)
					}
				}
				if err := txn.Set([]byte(k), []byte(id)); err != nil {
					return fmt.Errorf("failed to set index key: %w", err)
				}
			}
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return nil
	})
}

// Delete deletes an entity by ID.
// This operation is idempotent and does not fail when the entity is absent.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	return e.store.db.Update(func(txn *badger.Txn) error {
		var entity T
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entity)
		})
		if err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}

		for _, idx := range e.indexes {
			for _, k := range idx.keysFor(e.prefix, id, &entity) {
				if err := txn.Delete([]byte(k)); err != nil {
					return fmt.Errorf("failed to delete index key: %w", err)
				}
			}
		}

		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				// Skip index keys.
				key := string(it.Item().Key())
				if strings.HasPrefix(key[len(e.prefix):], "idx:") {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, err)
					return err
				}
				if !yield(&entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// ListByIndex returns an iterator over entities sharing a multi-index value.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		scanPrefix := []byte(indexKeyString(e.prefix, indexName, value) + ":")

		var ids []string
		err := e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = scanPrefix

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(scanPrefix); it.ValidForPrefix(scanPrefix); it.Next() {
				err := it.Item().Value(func(val []byte) error {
					ids = append(ids, string(val))
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			yield(nil, err)
			return
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}
			entity, err := e.Get(ctx, id)
			if err != nil {
				// The index may briefly point at an entity deleted in a
				// concurrent transaction; skip it.
				if errors.Is(err, ErrNotFound) {
					continue
				}
				yield(nil, err)
				return
			}
			if !yield(entity, nil) {
				return
			}
		}
	}
}
