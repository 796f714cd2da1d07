package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID   string
	Name string
}

func TestStoreSetGetDelete(t *testing.T) {
	s, err := New[payload]("channels", 10)
	require.NoError(t, err)
	assert.Equal(t, "channels", s.Name())

	_, ok := s.Get("1")
	assert.False(t, ok)

	s.Set("1", payload{ID: "1", Name: "general"})
	s.Set("1", payload{ID: "1", Name: "renamed"})
	got, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, 1, s.Len())

	old, ok := s.Delete("1")
	require.True(t, ok)
	assert.Equal(t, "renamed", old.Name)
	_, ok = s.Delete("1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStoreValues(t *testing.T) {
	s, err := New[payload]("guilds", 0)
	require.NoError(t, err)

	s.Set("a", payload{ID: "a"})
	s.Set("b", payload{ID: "b"})
	assert.ElementsMatch(t, []payload{{ID: "a"}, {ID: "b"}}, s.Values())

	s.Purge()
	assert.Empty(t, s.Values())
}

func TestStoreBounded(t *testing.T) {
	s, err := New[int]("small", 2)
	require.NoError(t, err)

	s.Set("1", 1)
	s.Set("2", 2)
	s.Set("3", 3)
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("1")
	assert.False(t, ok)
}

func TestStoreConcurrentUpsertsConverge(t *testing.T) {
	s, err := New[payload]("channels", 100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for shard := 0; shard < 4; shard++ {
		wg.Add(1)
		go func(shard int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Set("42", payload{ID: "42", Name: fmt.Sprintf("shard-%d", shard)})
			}
		}(shard)
	}
	wg.Wait()

	got, ok := s.Get("42")
	require.True(t, ok)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, 1, s.Len())
}

func TestStoreConcurrentDeleteReportsOnce(t *testing.T) {
	s, err := New[payload]("guilds", 100)
	require.NoError(t, err)

	for round := 0; round < 50; round++ {
		s.Set("7", payload{ID: "7"})

		var (
			wg      sync.WaitGroup
			removed atomic.Int32
		)
		for shard := 0; shard < 8; shard++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok := s.Delete("7"); ok {
					removed.Add(1)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), removed.Load(), "round %d", round)
	}
}
