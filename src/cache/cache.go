// Package cache holds raw entity payloads keyed by snowflake id.
//
// A Store is shared by every shard of one client. Writes are whole-value
// upserts keyed by id, so concurrent writers for the same entity converge on
// whichever payload was written last.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is used when a store is created with a non-positive size.
const DefaultSize = 10000

// Store is a bounded, goroutine-safe map from id to payload.
type Store[V any] struct {
	name  string
	items *lru.Cache[string, V]
}

func New[V any](name string, size int) (*Store[V], error) {
	if size <= 0 {
		size = DefaultSize
	}
	items, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", name, err)
	}
	return &Store[V]{name: name, items: items}, nil
}

func (s *Store[V]) Name() string { return s.name }

func (s *Store[V]) Get(id string) (V, bool) {
	return s.items.Get(id)
}

// Set inserts or replaces the payload stored under id.
func (s *Store[V]) Set(id string, v V) {
	s.items.Add(id, v)
}

// Delete removes id and reports the payload it held, if any. Of several
// concurrent deletes of the same id only one reports ok.
func (s *Store[V]) Delete(id string) (V, bool) {
	var zero V
	v, ok := s.items.Peek(id)
	if !ok || !s.items.Remove(id) {
		return zero, false
	}
	return v, true
}

// Values returns a snapshot of every cached payload, oldest first.
func (s *Store[V]) Values() []V {
	return s.items.Values()
}

func (s *Store[V]) Len() int { return s.items.Len() }

func (s *Store[V]) Purge() { s.items.Purge() }
