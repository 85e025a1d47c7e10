package reactive

import "reflect"

// Source is a mutable leaf value.
type Source[T any] struct {
	n     node
	value T
	equal func(a, b T) bool
}

// NewSource creates a leaf holding initial.
func NewSource[T any](g *Graph, initial T, opts ...Option[T]) *Source[T] {
	o := buildOptions(opts)
	s := &Source[T]{value: initial, equal: o.equal}
	s.n = node{g: g, name: o.name, changedAt: g.gen}
	return s
}

// Get returns the value and records the read in tr (nil outside computations).
func (s *Source[T]) Get(tr *Tracker) T {
	tr.track(&s.n)
	return s.value
}

// Set stores v. Writing an equal value is a no-op.
func (s *Source[T]) Set(v T) {
	if s.n.g.computing > 0 {
		panic(ErrWriteInCompute)
	}
	if s.equal(s.value, v) {
		return
	}
	s.value = v
	s.n.changedAt = s.n.g.nextWriteGen()
	s.n.markDirty()
}

// Update sets the result of fn applied to the current value.
func (s *Source[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// ChangedAt is the generation of the last effective write.
func (s *Source[T]) ChangedAt() uint64 {
	return s.n.changedAt
}

func deepEqual[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}
