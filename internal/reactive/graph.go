// Package reactive is the memoization layer under every derived artifact.
//
// Sources are mutable leaves; Computeds are pure functions of other nodes.
// Writes bump the graph generation and mark transitive dependents dirty
// without running anything. Reads pull: a dirty Computed first brings its
// recorded dependencies up to date and re-runs only if one of them changed
// after its own last verification. A Computed whose new value equals the old
// one keeps its change stamp, so dependents further down do not re-run.
//
// Dependencies are explicit. The compute function receives a *Tracker and
// must read every input through Get(tr).
package reactive

import (
	"errors"
	"fmt"

	"vuecore/internal/trace"
)

var (
	// ErrCycle is the panic value when a Computed reads itself.
	ErrCycle = errors.New("reactive: dependency cycle")
	// ErrWriteInCompute is the panic value when a compute function writes a Source.
	ErrWriteInCompute = errors.New("reactive: source written during computation")
)

// Graph owns the generation counter shared by its nodes.
// It is not safe for concurrent use.
type Graph struct {
	gen       uint64
	stamped   uint64 // last generation some Computed was verified at
	batching  int
	computing int
	tracer    trace.Tracer
}

// NewGraph creates a graph; tr may be nil.
func NewGraph(tr trace.Tracer) *Graph {
	if tr == nil {
		tr = trace.Nop
	}
	return &Graph{tracer: tr}
}

// Generation is the number of write generations so far.
func (g *Graph) Generation() uint64 {
	return g.gen
}

// Batch runs fn with all Source writes inside sharing one generation;
// dirty marking still completes before any read recomputes.
func (g *Graph) Batch(fn func()) {
	g.batching++
	defer func() { g.batching-- }()
	fn()
}

// nextWriteGen shares the generation between writes of one batch unless a
// Computed was verified at the current generation in between.
func (g *Graph) nextWriteGen() uint64 {
	if g.batching == 0 || g.stamped == g.gen {
		g.gen++
	}
	return g.gen
}

func (g *Graph) stamp() uint64 {
	g.stamped = g.gen
	return g.gen
}

// node is the type-erased part shared by Source and Computed.
type node struct {
	g          *Graph
	name       string
	changedAt  uint64
	computedAt uint64
	dirty      bool
	subs       map[*node]struct{}
	refresh    func() // brings the node up to date; nil for sources
}

func (n *node) addSub(sub *node) {
	if n.subs == nil {
		n.subs = make(map[*node]struct{})
	}
	n.subs[sub] = struct{}{}
}

// markDirty walks dependents iteratively so deep chains cannot blow the stack.
func (n *node) markDirty() {
	stack := make([]*node, 0, len(n.subs))
	for s := range n.subs {
		stack = append(stack, s)
	}
	seen := make(map[*node]struct{})
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		cur.dirty = true
		for s := range cur.subs {
			stack = append(stack, s)
		}
	}
}

// Tracker records the nodes a compute function reads.
type Tracker struct {
	deps []*node
	seen map[*node]struct{}
}

func (tr *Tracker) track(n *node) {
	if tr == nil {
		return
	}
	if tr.seen == nil {
		tr.seen = make(map[*node]struct{})
	}
	if _, ok := tr.seen[n]; ok {
		return
	}
	tr.seen[n] = struct{}{}
	tr.deps = append(tr.deps, n)
}

type options[T any] struct {
	equal func(a, b T) bool
	name  string
}

// Option configures a Source or Computed.
type Option[T any] func(*options[T])

// WithEqual replaces the default reflect.DeepEqual comparison.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(o *options[T]) { o.equal = eq }
}

// WithName labels the node in traces.
func WithName[T any](name string) Option[T] {
	return func(o *options[T]) { o.name = name }
}

func buildOptions[T any](opts []Option[T]) options[T] {
	o := options[T]{equal: deepEqual[T]}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (n *node) String() string {
	return fmt.Sprintf("%s@%d", n.name, n.changedAt)
}
