package source

import (
	"unicode/utf8"
)

// PositionAt converts a byte offset of file into an editor position.
func (f *File) PositionAt(offset uint32) Position {
	if f == nil {
		return Position{}
	}
	content := f.Content
	if int(offset) > len(content) {
		offset = Offset(len(content))
	}
	lc := toLineCol(f.LineIdx, offset)
	lineStart := offset - (lc.Col - 1)
	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRune(content[off:offset])
		if off+Offset(size) > offset {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += Offset(size)
	}
	return Position{Line: int(lc.Line - 1), Character: units}
}

// OffsetAt converts an editor position into a byte offset, clamping to the line end.
func (f *File) OffsetAt(pos Position) uint32 {
	if f == nil || pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	content := f.Content
	if pos.Line > len(f.LineIdx) {
		return Offset(len(content))
	}
	start, end, ok := lineBounds(f.LineIdx, len(content), pos.Line)
	if !ok {
		return Offset(len(content))
	}
	units := 0
	off := start
	for off < end && units < pos.Character {
		r, size := utf8.DecodeRune(content[off:end])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		off += Offset(size)
	}
	return off
}
