package mapping

import (
	"sort"

	"vuecore/internal/code"
)

// Filter selects mappings by capability; nil accepts everything.
type Filter func(code.Capabilities) bool

// Require builds a filter accepting mappings that carry all of f.
func Require(f code.Flag) Filter {
	return func(c code.Capabilities) bool { return c.Has(f) }
}

type span struct {
	src, gen, srcLen, genLen int
	data                     *code.Capabilities
}

// Mapper answers offset queries against one artifact.
type Mapper struct {
	byGen  []span
	bySrc  []span
	linked map[int][]int
	links  []LinkedMapping
}

func NewMapper(a *Artifact) *Mapper {
	m := &Mapper{linked: map[int][]int{}}
	for i := range a.Mappings {
		mp := &a.Mappings[i]
		for j := range mp.SourceOffsets {
			m.byGen = append(m.byGen, span{
				src:    mp.SourceOffsets[j],
				gen:    mp.GeneratedOffsets[j],
				srcLen: mp.Lengths[j],
				genLen: mp.genLen(j),
				data:   &mp.Data,
			})
		}
	}
	m.bySrc = append([]span(nil), m.byGen...)
	sort.SliceStable(m.byGen, func(i, j int) bool { return m.byGen[i].gen < m.byGen[j].gen })
	sort.SliceStable(m.bySrc, func(i, j int) bool { return m.bySrc[i].src < m.bySrc[j].src })
	m.links = a.LinkedMappings
	return m
}

// ToSource maps a generated offset to a source offset. Range ends are
// inclusive so a cursor right after a name still maps.
func (m *Mapper) ToSource(gen int, filter Filter) (int, code.Capabilities, bool) {
	for _, s := range m.byGen {
		if s.gen > gen {
			break
		}
		if gen > s.gen+s.genLen || (filter != nil && !filter(*s.data)) {
			continue
		}
		return s.src + min(gen-s.gen, s.srcLen), *s.data, true
	}
	return 0, code.Capabilities{}, false
}

// ToGenerated returns every generated offset a source offset maps to.
func (m *Mapper) ToGenerated(src int, filter Filter) []int {
	var out []int
	for _, s := range m.bySrc {
		if s.src > src {
			break
		}
		if src > s.src+s.srcLen || (filter != nil && !filter(*s.data)) {
			continue
		}
		out = append(out, s.gen+min(src-s.src, s.genLen))
	}
	return out
}

// LinkedOf returns generated offsets linked to gen, in either direction.
func (m *Mapper) LinkedOf(gen int) []int {
	var out []int
	for _, l := range m.links {
		for k := range l.Lengths {
			a, b, n := l.SourceOffsets[k], l.GeneratedOffsets[k], l.Lengths[k]
			switch {
			case gen >= a && gen <= a+n:
				out = append(out, b+gen-a)
			case gen >= b && gen <= b+n:
				out = append(out, a+gen-b)
			}
		}
	}
	return out
}

// SpanAt returns the mapped generated range containing gen.
func (m *Mapper) SpanAt(gen int) (start, end int, ok bool) {
	for _, s := range m.byGen {
		if gen >= s.gen && gen < s.gen+s.genLen {
			return s.gen, s.gen + s.genLen, true
		}
	}
	return 0, 0, false
}
