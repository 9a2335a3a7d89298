package challenge

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	s := NewStore(time.Minute)

	s.Set("alice", "challenge-1")

	got, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "challenge-1", got)

	s.Delete("alice")
	_, ok = s.Get("alice")
	assert.False(t, ok)

	// deleting an absent key is a no-op
	s.Delete("alice")
}

func TestSetReplacesPrevious(t *testing.T) {
	s := NewStore(time.Minute)

	s.Set("alice", "first")
	s.Set("alice", "second")

	got, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, s.Len())
}

func TestGetDropsExpiredEntry(t *testing.T) {
	s := NewStore(time.Minute)

	now := time.Now()
	s.now = func() time.Time { return now }
	s.Set("alice", "challenge-1")

	// advance past the TTL
	s.now = func() time.Time { return now.Add(2 * time.Minute) }

	_, ok := s.Get("alice")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	s := NewStore(time.Minute)

	now := time.Now()
	s.now = func() time.Time { return now }
	s.Set("old", "a")

	s.now = func() time.Time { return now.Add(30 * time.Second) }
	s.Set("fresh", "b")

	s.now = func() time.Time { return now.Add(70 * time.Second) }
	removed := s.Sweep()

	assert.Equal(t, 1, removed)
	_, ok := s.Get("fresh")
	assert.True(t, ok)
	_, ok = s.Get("old")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("user-%d", n%8)
			s.Set(key, "challenge")
			s.Get(key)
			s.Delete(key)
			s.Sweep()
		}(i)
	}
	wg.Wait()
}
