package scriptgen

import (
	"cmp"
	"slices"

	"vuecore/internal/code"
)

// edit replaces src[start:end) with whatever emit writes. Zero-width
// edits insert; edits at the same start keep their order.
type edit struct {
	start, end int
	emit       func(out *code.Codes)
}

// splice copies src[from:to) of block as mapped passthrough, applying
// edits. Edits that overlap an earlier one or leave the range are dropped.
func splice(out *code.Codes, block, src string, from, to int, edits []edit) {
	edits = slices.Clone(edits)
	slices.SortStableFunc(edits, func(a, b edit) int { return cmp.Compare(a.start, b.start) })
	pos := from
	for _, e := range edits {
		if e.start < pos || e.end > to || e.end < e.start {
			continue
		}
		passthrough(out, block, src, pos, e.start)
		e.emit(out)
		pos = e.end
	}
	passthrough(out, block, src, pos, to)
}

func passthrough(out *code.Codes, block, src string, from, to int) {
	if to > from {
		out.Map(src[from:to], block, from, code.PresetAll.Caps())
	}
}

func text(parts ...string) func(*code.Codes) {
	return func(out *code.Codes) { out.Text(parts...) }
}
