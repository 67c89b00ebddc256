package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextIsStrictlyIncreasingUnderFrozenClock(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	g := NewWithClock(func() time.Time { return frozen })

	seen := map[int64]bool{}
	prev := int64(0)
	for i := 0; i < 100; i++ {
		id := g.Next()
		assert.False(t, seen[id], "duplicate id %d", id)
		assert.Greater(t, id, prev)
		seen[id] = true
		prev = id
	}
	assert.Equal(t, frozen.UnixMilli(), int64(1_700_000_000_000))
}

func TestNextFollowsClockWhenAhead(t *testing.T) {
	now := time.UnixMilli(1000)
	g := NewWithClock(func() time.Time { return now })
	assert.Equal(t, int64(1000), g.Next())
	now = time.UnixMilli(5000)
	assert.Equal(t, int64(5000), g.Next())
}

func TestObserveRaisesFloor(t *testing.T) {
	g := NewWithClock(func() time.Time { return time.UnixMilli(10) })
	g.Observe(1, 500, 42)
	assert.Equal(t, int64(501), g.Next())
}
