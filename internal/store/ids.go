package store

import "time"

// idGenerator hands out millisecond timestamps, bumped past the last
// issued or observed ID so two adds in the same millisecond never collide.
type idGenerator struct {
	now  func() time.Time
	last int64
}

func (g *idGenerator) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

func (g *idGenerator) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}
