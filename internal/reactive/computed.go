package reactive

import (
	"vuecore/internal/trace"
)

// Computed is a memoized pure function of other nodes.
type Computed[T any] struct {
	n         node
	value     T
	fn        func(*Tracker) T
	equal     func(a, b T) bool
	deps      []*node
	ready     bool
	computing bool
	runs      int
}

// NewComputed declares a derived value; nothing runs until the first Get.
func NewComputed[T any](g *Graph, fn func(*Tracker) T, opts ...Option[T]) *Computed[T] {
	o := buildOptions(opts)
	c := &Computed[T]{fn: fn, equal: o.equal}
	c.n = node{g: g, name: o.name, dirty: true}
	c.n.refresh = c.ensure
	return c
}

// Get returns the up-to-date value, recording the read in tr.
func (c *Computed[T]) Get(tr *Tracker) T {
	c.ensure()
	tr.track(&c.n)
	return c.value
}

// Runs is how many times the compute function has executed.
func (c *Computed[T]) Runs() int {
	return c.runs
}

// Dirty reports whether the next Get must re-validate dependencies.
func (c *Computed[T]) Dirty() bool {
	return c.n.dirty
}

// Dispose detaches the computed from its dependencies.
func (c *Computed[T]) Dispose() {
	for _, d := range c.deps {
		delete(d.subs, &c.n)
	}
	c.deps = nil
	c.ready = false
	c.n.dirty = true
}

func (c *Computed[T]) ensure() {
	if c.computing {
		panic(ErrCycle)
	}
	g := c.n.g
	if c.ready && !c.n.dirty {
		return
	}
	if c.ready && !c.depsChanged() {
		c.n.dirty = false
		c.n.computedAt = g.stamp()
		return
	}
	c.recompute()
}

// depsChanged refreshes dependencies in read order and stops at the first
// one whose change stamp is newer than our last verification.
func (c *Computed[T]) depsChanged() bool {
	c.computing = true
	defer func() { c.computing = false }()
	for _, d := range c.deps {
		if d.refresh != nil {
			d.refresh()
		}
		if d.changedAt > c.n.computedAt {
			return true
		}
	}
	return false
}

func (c *Computed[T]) recompute() {
	g := c.n.g
	tr := &Tracker{}
	c.computing = true
	g.computing++
	func() {
		defer func() {
			c.computing = false
			g.computing--
		}()
		v := c.fn(tr)
		if !c.ready || !c.equal(c.value, v) {
			c.value = v
			c.n.changedAt = g.gen
		}
	}()
	c.runs++
	if c.n.name != "" {
		trace.Point(g.tracer, trace.ScopeNode, "recompute:"+c.n.name, "")
	}

	for _, d := range c.deps {
		delete(d.subs, &c.n)
	}
	c.deps = tr.deps
	for _, d := range c.deps {
		d.addSub(&c.n)
	}
	c.ready = true
	c.n.dirty = false
	c.n.computedAt = g.stamp()
}
