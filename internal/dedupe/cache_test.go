// ABOUTME: Tests for the message-id dedupe cache: TTL, atomic check, capacity eviction.

package dedupe

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeen_FirstTimeFalseThenTrue(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	assert.False(t, c.Seen("msg-1"))
	assert.True(t, c.Seen("msg-1"))
	assert.False(t, c.Seen("msg-2"))
}

func TestSeen_ExpiredIDIsFreshAgain(t *testing.T) {
	c := New(10*time.Millisecond, 10)
	defer c.Close()

	assert.False(t, c.Seen("msg-1"))
	time.Sleep(25 * time.Millisecond)
	assert.False(t, c.Seen("msg-1"), "an id past its TTL counts as new")
}

func TestSeen_EvictsOldestAtCapacity(t *testing.T) {
	c := New(time.Minute, 2)
	defer c.Close()

	c.Seen("a")
	c.Seen("b")
	c.Seen("c") // evicts a

	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Seen("a"), "evicted id must count as new")
}

func TestSeen_ConcurrentSameIDProcessedOnce(t *testing.T) {
	c := New(time.Minute, 100)
	defer c.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	fresh := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !c.Seen("same-id") {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fresh, "exactly one delivery wins")
}

func TestClose_Idempotent(t *testing.T) {
	c := New(time.Minute, 10)
	c.Close()
	c.Close()
}
