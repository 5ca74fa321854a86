package xid

import (
	"fmt"
	"sync/atomic"
)

// Generator hands out prefixed ids from a counter seeded with the wall clock.
// Ids are unique for the lifetime of one Generator.
type Generator struct {
	last atomic.Int64
}

func NewGenerator(seed int64) *Generator {
	g := &Generator{}
	g.last.Store(seed)
	return g
}

func (g *Generator) Next(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, g.last.Add(1))
}
