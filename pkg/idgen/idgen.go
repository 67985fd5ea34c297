// Package idgen produces time-based record ids such as "job1713190000000".
package idgen

import (
	"strconv"
	"sync"
	"time"
)

// Generator hands out prefix+unix-millis tokens. Tokens are strictly
// increasing per generator: when two calls land in the same millisecond the
// second one borrows the next millisecond.
type Generator struct {
	mu     sync.Mutex
	prefix string
	now    func() time.Time
	last   int64
}

func New(prefix string, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{prefix: prefix, now: now}
}

// Next returns a token for which taken reports false. taken may be nil.
func (g *Generator) Next(taken func(id string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	for {
		id := g.prefix + strconv.FormatInt(ms, 10)
		if taken == nil || !taken(id) {
			g.last = ms
			return id
		}
		ms++
	}
}
