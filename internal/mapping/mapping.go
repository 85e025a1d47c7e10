// Package mapping turns a generated segment stream into a virtual file:
// the text plus positional and linked mapping tables.
package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"vuecore/internal/code"
)

// ErrUnclosedToken reports a merge or linked token without its counterpart.
var ErrUnclosedToken = errors.New("unclosed code token")

// Mapping relates source ranges to generated ranges; the arrays are parallel.
// GeneratedLengths is set only when some generated length differs from
// the source length.
type Mapping struct {
	Source           string            `json:"source,omitempty" yaml:"source,omitempty" msgpack:"src,omitempty"`
	SourceOffsets    []int             `json:"sourceOffsets" yaml:"sourceOffsets,flow" msgpack:"so"`
	GeneratedOffsets []int             `json:"generatedOffsets" yaml:"generatedOffsets,flow" msgpack:"go"`
	Lengths          []int             `json:"lengths" yaml:"lengths,flow" msgpack:"l"`
	GeneratedLengths []int             `json:"generatedLengths,omitempty" yaml:"generatedLengths,omitempty,flow" msgpack:"gl,omitempty"`
	Data             code.Capabilities `json:"data" yaml:"data" msgpack:"d"`
}

func (m *Mapping) genLen(i int) int {
	if m.GeneratedLengths != nil {
		return m.GeneratedLengths[i]
	}
	return m.Lengths[i]
}

// LinkedMapping relates two generated ranges of the same artifact.
type LinkedMapping struct {
	SourceOffsets    []int `json:"sourceOffsets" yaml:"sourceOffsets,flow" msgpack:"so"`
	GeneratedOffsets []int `json:"generatedOffsets" yaml:"generatedOffsets,flow" msgpack:"go"`
	Lengths          []int `json:"lengths" yaml:"lengths,flow" msgpack:"l"`
}

// Artifact is one compiled virtual file.
type Artifact struct {
	ID             string          `json:"id" yaml:"id" msgpack:"id"`
	LanguageID     string          `json:"languageId" yaml:"languageId" msgpack:"lang"`
	Text           string          `json:"text" yaml:"text" msgpack:"text"`
	Mappings       []Mapping       `json:"mappings" yaml:"mappings" msgpack:"m"`
	LinkedMappings []LinkedMapping `json:"linkedMappings,omitempty" yaml:"linkedMappings,omitempty" msgpack:"lm,omitempty"`
}

// BlockResolver maps a block key to the file offset of the block content.
type BlockResolver func(block string) (int, bool)

// Offsets adapts a key->offset table.
func Offsets(starts map[string]int) BlockResolver {
	return func(block string) (int, bool) {
		off, ok := starts[block]
		return off, ok
	}
}

// Build scans segs in order. Every merge token must occur at least twice
// and every linked token exactly twice, otherwise the artifact is still
// returned together with an error wrapping ErrUnclosedToken.
func Build(id, languageID string, segs []code.Segment, resolve BlockResolver) (*Artifact, error) {
	var (
		text    strings.Builder
		out     = &Artifact{ID: id, LanguageID: languageID}
		merged  = map[code.Token]int{} // token -> index in out.Mappings
		mergeN  = map[code.Token]int{}
		pending = map[code.Token][2]int{} // token -> generated offset, length
		linkedN = map[code.Token]int{}
		errs    []error
	)
	for _, s := range segs {
		gen := text.Len()
		text.WriteString(s.Text)
		switch s.Kind {
		case code.KindMapped:
			base, ok := 0, true
			if resolve != nil {
				base, ok = resolve(s.Block)
			}
			if !ok {
				// tokens still count, so the unknown block is the only error
				errs = append(errs, fmt.Errorf("segment %s: unknown block %q", s, s.Block))
				if s.Merge != code.NoToken {
					mergeN[s.Merge]++
				}
				break
			}
			src := base + s.Offset
			if s.Merge != code.NoToken {
				mergeN[s.Merge]++
				if idx, ok := merged[s.Merge]; ok {
					out.Mappings[idx].add(src, gen, s.SourceLen(), len(s.Text))
				} else {
					merged[s.Merge] = len(out.Mappings)
					out.Mappings = append(out.Mappings, newMapping(src, gen, s.SourceLen(), len(s.Text), s.Caps))
				}
			} else {
				out.Mappings = append(out.Mappings, newMapping(src, gen, s.SourceLen(), len(s.Text), s.Caps))
			}
		case code.KindPlain:
			continue
		}
		if s.Linked == code.NoToken {
			continue
		}
		linkedN[s.Linked]++
		first, ok := pending[s.Linked]
		if !ok {
			pending[s.Linked] = [2]int{gen, len(s.Text)}
			continue
		}
		if linkedN[s.Linked] == 2 {
			out.LinkedMappings = append(out.LinkedMappings, LinkedMapping{
				SourceOffsets:    []int{first[0]},
				GeneratedOffsets: []int{gen},
				Lengths:          []int{min(first[1], len(s.Text))},
			})
		}
	}
	out.Text = text.String()

	for _, tok := range sortedTokens(mergeN) {
		if mergeN[tok] < 2 {
			errs = append(errs, fmt.Errorf("%w: merge token %d used once", ErrUnclosedToken, tok))
		}
	}
	for _, tok := range sortedTokens(linkedN) {
		if n := linkedN[tok]; n != 2 {
			errs = append(errs, fmt.Errorf("%w: linked token %d used %d times", ErrUnclosedToken, tok, n))
		}
	}
	if len(errs) > 0 {
		return out, fmt.Errorf("build %s: %w", id, errors.Join(errs...))
	}
	return out, nil
}

func newMapping(src, gen, srcLen, genLen int, caps code.Capabilities) Mapping {
	m := Mapping{
		SourceOffsets:    []int{src},
		GeneratedOffsets: []int{gen},
		Lengths:          []int{srcLen},
		Data:             caps,
	}
	if srcLen != genLen {
		m.GeneratedLengths = []int{genLen}
	}
	return m
}

func (m *Mapping) add(src, gen, srcLen, genLen int) {
	if m.GeneratedLengths == nil && srcLen != genLen {
		m.GeneratedLengths = append([]int(nil), m.Lengths...)
	}
	m.SourceOffsets = append(m.SourceOffsets, src)
	m.GeneratedOffsets = append(m.GeneratedOffsets, gen)
	m.Lengths = append(m.Lengths, srcLen)
	if m.GeneratedLengths != nil {
		m.GeneratedLengths = append(m.GeneratedLengths, genLen)
	}
}

func sortedTokens(m map[code.Token]int) []code.Token {
	out := make([]code.Token, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
