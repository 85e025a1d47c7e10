package source

import "fmt"

// Snapshot is one immutable version of a file's text.
type Snapshot struct {
	Text    string
	Version int
}

// NewSnapshot wraps text as version 0.
func NewSnapshot(text string) Snapshot {
	return Snapshot{Text: text}
}

// Change replaces Text[Start:End] of the old snapshot with NewText.
type Change struct {
	Start   int
	End     int
	NewText string
}

// Delta is how far bytes after the change move.
func (c Change) Delta() int {
	return len(c.NewText) - (c.End - c.Start)
}

func (c Change) String() string {
	return fmt.Sprintf("[%d,%d)->%q", c.Start, c.End, c.NewText)
}

// Apply returns the next snapshot with the change applied.
func (s Snapshot) Apply(c Change) (Snapshot, error) {
	if c.Start < 0 || c.End < c.Start || c.End > len(s.Text) {
		return s, fmt.Errorf("change %s out of range for %d bytes", c, len(s.Text))
	}
	return Snapshot{
		Text:    s.Text[:c.Start] + c.NewText + s.Text[c.End:],
		Version: s.Version + 1,
	}, nil
}

// Diff computes the smallest single change turning oldText into newText
// by trimming the common prefix and suffix. ok is false when the texts are equal.
func Diff(oldText, newText string) (Change, bool) {
	if oldText == newText {
		return Change{}, false
	}
	prefix := 0
	limit := min(len(oldText), len(newText))
	for prefix < limit && oldText[prefix] == newText[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < limit-prefix &&
		oldText[len(oldText)-1-suffix] == newText[len(newText)-1-suffix] {
		suffix++
	}
	return Change{
		Start:   prefix,
		End:     len(oldText) - suffix,
		NewText: newText[prefix : len(newText)-suffix],
	}, true
}
