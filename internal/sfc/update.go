package sfc

import (
	"strings"

	"vuecore/internal/diag"
	"vuecore/internal/source"
)

// Update applies change to the snapshot prev was parsed from. When the change
// stays inside one block's content and cannot create or remove a tag
// boundary, only that block is patched and later blocks are shifted; the
// second result reports whether that incremental path was taken.
func Update(prev *Descriptor, change source.Change, opts ParseOptions) (*Descriptor, bool) {
	next, err := source.Snapshot{Text: prev.Source}.Apply(change)
	if err != nil || prev.Kind != source.KindSFC || opts.Kind != prev.Kind {
		return Parse(next.Text, opts), false
	}
	idx := -1
	for i, b := range prev.Blocks {
		if b.Closed && change.Start >= b.Start && change.End <= b.End {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Parse(next.Text, opts), false
	}
	b := prev.Blocks[idx]
	removed := prev.Source[change.Start:change.End]
	if !safeEdit(b, removed, change.NewText) {
		return Parse(next.Text, opts), false
	}
	patched := b.Content[:change.Start-b.Start] + change.NewText + b.Content[change.End-b.Start:]
	if b.Type != "template" && strings.Contains(strings.ToLower(patched), "</"+strings.ToLower(b.Type)) {
		return Parse(next.Text, opts), false
	}
	delta := change.Delta()
	// Comment delimiters decide where a template ends without any angle
	// bracket being edited ("<!-" + "-"), so the close tag is located again.
	if closeStart, closeEnd := findClose(next.Text, b.Type, b.Start); closeStart != b.End+delta || closeEnd != b.TagEnd+delta {
		return Parse(next.Text, opts), false
	}

	desc := &Descriptor{Source: next.Text, Kind: prev.Kind}
	for i, old := range prev.Blocks {
		var nb *Block
		switch {
		case i < idx:
			nb = old
		case i == idx:
			cp := *old
			cp.Content = patched
			cp.End += delta
			cp.TagEnd += delta
			nb = &cp
		default:
			nb = old.shifted(delta)
		}
		desc.Blocks = append(desc.Blocks, nb)
		switch old {
		case prev.Template:
			desc.Template = nb
		case prev.Script:
			desc.Script = nb
		case prev.ScriptSetup:
			desc.ScriptSetup = nb
		default:
			if old.Type == "style" {
				desc.Styles = append(desc.Styles, nb)
			} else {
				desc.CustomBlocks = append(desc.CustomBlocks, nb)
			}
		}
	}
	desc.Errors = shiftErrors(prev.Errors, change, delta)
	return desc, true
}

// safeEdit rejects edits that might touch markup structure: for templates any
// angle bracket, for other blocks a '<' followed by '/'.
func safeEdit(b *Block, removed, inserted string) bool {
	if b.Type == "template" {
		return !strings.ContainsAny(removed, "<>") && !strings.ContainsAny(inserted, "<>")
	}
	return !strings.Contains(removed, "</") && !strings.Contains(inserted, "</")
}

func shiftErrors(errs []diag.Diagnostic, change source.Change, delta int) []diag.Diagnostic {
	if len(errs) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, 0, len(errs))
	for _, e := range errs {
		if int(e.Primary.Start) >= change.End {
			e.Primary = e.Primary.Shift(delta)
		}
		out = append(out, e)
	}
	return out
}
