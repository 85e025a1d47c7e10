package mapping

import (
	"sort"

	"vuecore/internal/code"
)

// Verifier decides which checker diagnostics reach the user. Diagnostics
// inside an expect-error group are swallowed and mark the group used; the
// directive's own "unused directive" diagnostic is kept only for unused groups.
type Verifier struct {
	m      *Mapper
	used   map[int]bool
	groups map[int]bool
}

func NewVerifier(m *Mapper) *Verifier {
	return &Verifier{m: m, used: map[int]bool{}, groups: map[int]bool{}}
}

// ShouldReport processes one diagnostic at generated offset gen.
// Directive diagnostics must be passed after the ordinary ones; Filter does that.
func (v *Verifier) ShouldReport(gen int) bool {
	_, caps, ok := v.m.ToSource(gen, nil)
	if !ok {
		return false
	}
	if g := caps.ExpectErrorDirective; g > 0 {
		v.groups[g] = true
		return !v.used[g]
	}
	if g := caps.ExpectError; g > 0 {
		v.used[g] = true
		return false
	}
	return caps.Has(code.Verification) && !caps.Suppress
}

// Filter keeps the diagnostics worth reporting, given their generated offsets.
func (v *Verifier) Filter(gens []int) []int {
	var directives, keep []int
	for _, g := range gens {
		if _, caps, ok := v.m.ToSource(g, nil); ok && caps.ExpectErrorDirective > 0 {
			directives = append(directives, g)
			continue
		}
		if v.ShouldReport(g) {
			keep = append(keep, g)
		}
	}
	for _, g := range directives {
		if v.ShouldReport(g) {
			keep = append(keep, g)
		}
	}
	sort.Ints(keep)
	return keep
}

// Unused lists directive groups seen without a swallowed diagnostic.
func (v *Verifier) Unused() []int {
	var out []int
	for g := range v.groups {
		if !v.used[g] {
			out = append(out, g)
		}
	}
	sort.Ints(out)
	return out
}
