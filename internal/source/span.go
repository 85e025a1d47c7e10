package source

import (
	"fmt"
)

// Span is a half-open byte range inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Contains reports whether off lies inside the span; End is inclusive so
// a cursor right after the last byte still belongs to it.
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off <= s.End
}

// Overlaps reports whether two spans of the same file share at least one byte.
func (s Span) Overlaps(other Span) bool {
	if s.File != other.File {
		return false
	}
	return s.Start < other.End && other.Start < s.End
}

func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Shift moves the span by delta bytes, clamping at zero.
func (s Span) Shift(delta int) Span {
	return Span{
		File:  s.File,
		Start: shiftOffset(s.Start, delta),
		End:   shiftOffset(s.End, delta),
	}
}

func shiftOffset(off uint32, delta int) uint32 {
	v := int64(off) + int64(delta)
	if v < 0 {
		return 0
	}
	return uint32(v)
}
