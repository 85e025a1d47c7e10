package testkit

import (
	"errors"
	"fmt"

	"vuecore/internal/code"
	"vuecore/internal/mapping"
)

// CheckInvariants validates an artifact against the segment stream it was
// built from and the original file text:
// 1) mapping arrays are parallel and every range lies inside its text
// 2) generated offsets never go backwards in stream order
// 3) every mapped segment round-trips: the source range holds the text the
// segment claims to represent
// 4) merge tokens occur at least twice, linked tokens exactly twice
func CheckInvariants(a *mapping.Artifact, segs []code.Segment, resolve mapping.BlockResolver, sourceText string) error {
	if a == nil {
		return errors.New("nil artifact")
	}
	var errs []error

	// 1) параллельные массивы и границы
	for i, m := range a.Mappings {
		n := len(m.SourceOffsets)
		if len(m.GeneratedOffsets) != n || len(m.Lengths) != n {
			errs = append(errs, fmt.Errorf("mapping %d: arrays differ in length", i))
			continue
		}
		if m.GeneratedLengths != nil && len(m.GeneratedLengths) != n {
			errs = append(errs, fmt.Errorf("mapping %d: generated lengths differ in length", i))
			continue
		}
		for j := range n {
			genLen := m.Lengths[j]
			if m.GeneratedLengths != nil {
				genLen = m.GeneratedLengths[j]
			}
			if src := m.SourceOffsets[j]; src < 0 || src+m.Lengths[j] > len(sourceText) {
				errs = append(errs, fmt.Errorf("mapping %d[%d]: source range %d+%d outside text", i, j, src, m.Lengths[j]))
			}
			if gen := m.GeneratedOffsets[j]; gen < 0 || gen+genLen > len(a.Text) {
				errs = append(errs, fmt.Errorf("mapping %d[%d]: generated range %d+%d outside text", i, j, gen, genLen))
			}
			if j > 0 && m.GeneratedOffsets[j] <= m.GeneratedOffsets[j-1] {
				errs = append(errs, fmt.Errorf("mapping %d: merged offsets not increasing at %d", i, j))
			}
		}
	}
	for i, l := range a.LinkedMappings {
		if len(l.SourceOffsets) != len(l.GeneratedOffsets) || len(l.Lengths) != len(l.SourceOffsets) {
			errs = append(errs, fmt.Errorf("linked mapping %d: arrays differ in length", i))
		}
	}

	// 2) и 3) проходим поток так же, как его собирает mapping.Build
	var (
		gen     int
		lastGen = -1
		merges  = map[code.Token]int{}
		links   = map[code.Token]int{}
	)
	for _, s := range segs {
		at := gen
		gen += len(s.Text)
		if s.Merge != code.NoToken {
			merges[s.Merge]++
		}
		if s.Linked != code.NoToken {
			links[s.Linked]++
		}
		if s.Kind != code.KindMapped {
			continue
		}
		if at < lastGen {
			errs = append(errs, fmt.Errorf("segment %s: generated offset %d goes back from %d", s, at, lastGen))
		}
		lastGen = at
		if at+len(s.Text) > len(a.Text) || a.Text[at:at+len(s.Text)] != s.Text {
			errs = append(errs, fmt.Errorf("segment %s: artifact text differs at %d", s, at))
		}
		base := 0
		if resolve != nil {
			off, ok := resolve(s.Block)
			if !ok {
				errs = append(errs, fmt.Errorf("segment %s: unknown block %q", s, s.Block))
				continue
			}
			base = off
		}
		want := s.Text
		if s.Source != "" {
			want = s.Source
		}
		src := base + s.Offset
		if src < 0 || src+len(want) > len(sourceText) {
			errs = append(errs, fmt.Errorf("segment %s: source offset %d outside text", s, src))
			continue
		}
		if got := sourceText[src : src+len(want)]; got != want {
			errs = append(errs, fmt.Errorf("segment %s: source holds %q", s, got))
		}
	}
	if gen != len(a.Text) {
		errs = append(errs, fmt.Errorf("stream length %d, artifact text %d", gen, len(a.Text)))
	}

	// 4) токены
	for tok, n := range merges {
		if n < 2 {
			errs = append(errs, fmt.Errorf("merge token %d occurs once", tok))
		}
	}
	for tok, n := range links {
		if n != 2 {
			errs = append(errs, fmt.Errorf("linked token %d occurs %d times", tok, n))
		}
	}
	return errors.Join(errs...)
}
