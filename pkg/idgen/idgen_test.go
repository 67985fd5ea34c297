package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextUniqueWithFrozenClock(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	g := New("job", func() time.Time { return frozen })

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Next(nil)
		if seen[id] {
			t.Fatalf("duplicate id %s at iteration %d", id, i)
		}
		seen[id] = true
	}
	assert.Len(t, seen, 1000)
}

func TestNextSkipsTaken(t *testing.T) {
	frozen := time.UnixMilli(5)
	g := New("app", func() time.Time { return frozen })

	taken := map[string]bool{"app5": true, "app6": true}
	id := g.Next(func(id string) bool { return taken[id] })
	assert.Equal(t, "app7", id)
	assert.Equal(t, "app8", g.Next(nil))
}

func TestNextFollowsClock(t *testing.T) {
	now := time.UnixMilli(100)
	g := New("job", func() time.Time { return now })
	assert.Equal(t, "job100", g.Next(nil))
	now = time.UnixMilli(250)
	assert.Equal(t, "job250", g.Next(nil))
}
