// Package code is the generated-code model shared by the template and script
// generators: a stream of segments that are plain text, text mapped to a
// source block, or synthetic mirrors linked to another generated span.
package code

import (
	"fmt"
	"strings"
)

// Kind tags the Segment union.
type Kind uint8

const (
	KindPlain Kind = iota
	KindMapped
	KindLinked
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindMapped:
		return "mapped"
	case KindLinked:
		return "linked"
	}
	return "unknown"
}

// Token is a merge or linked token id. Zero means no token.
type Token uint32

const NoToken Token = 0

// Segment is one piece of generated text.
type Segment struct {
	Kind Kind
	Text string
	// Source is the represented source text when it differs from Text.
	Source string
	// Block is the key of the source block Offset is relative to.
	Block  string
	Offset int
	Caps   Capabilities
	Merge  Token
	Linked Token
}

// SourceLen is the length of the mapped source range.
func (s Segment) SourceLen() int {
	if s.Source != "" {
		return len(s.Source)
	}
	return len(s.Text)
}

func (s Segment) String() string {
	switch s.Kind {
	case KindMapped:
		var extra string
		if s.Merge != NoToken {
			extra += fmt.Sprintf(" merge=%d", s.Merge)
		}
		if s.Linked != NoToken {
			extra += fmt.Sprintf(" linked=%d", s.Linked)
		}
		return fmt.Sprintf("%q@%s+%d[%s]%s", s.Text, s.Block, s.Offset, s.Caps, extra)
	case KindLinked:
		return fmt.Sprintf("%q linked=%d", s.Text, s.Linked)
	}
	return fmt.Sprintf("%q", s.Text)
}

// Plain is unmapped text.
func Plain(text string) Segment {
	return Segment{Kind: KindPlain, Text: text}
}

// Mapped is text mapped to block[offset:offset+len(text)].
func Mapped(text, block string, offset int, caps Capabilities) Segment {
	return Segment{Kind: KindMapped, Text: text, Block: block, Offset: offset, Caps: caps}
}

// Linked is a synthetic mirror with no source position.
func Linked(text string, tok Token) Segment {
	return Segment{Kind: KindLinked, Text: text, Linked: tok}
}

// WithMerge joins the segment into merge token tok.
func (s Segment) WithMerge(tok Token) Segment {
	s.Merge = tok
	return s
}

// WithLinked pairs the segment with another generated span.
func (s Segment) WithLinked(tok Token) Segment {
	s.Linked = tok
	return s
}

// WithSource records the represented source text.
func (s Segment) WithSource(src string) Segment {
	s.Source = src
	return s
}

// Tokens hands out merge and linked token ids.
type Tokens struct {
	next Token
}

func (t *Tokens) New() Token {
	t.next++
	return t.next
}

// Issued reports how many tokens were created.
func (t *Tokens) Issued() int { return int(t.next) }

// Codes is an append-only segment stream.
type Codes struct {
	segs []Segment
}

func (c *Codes) Len() int { return len(c.segs) }

func (c *Codes) Segments() []Segment { return c.segs }

// Add appends segments; empty plain text is dropped.
func (c *Codes) Add(segs ...Segment) {
	for _, s := range segs {
		if s.Kind == KindPlain && s.Text == "" {
			continue
		}
		c.segs = append(c.segs, s)
	}
}

// Text appends plain text pieces.
func (c *Codes) Text(parts ...string) {
	for _, p := range parts {
		c.Add(Plain(p))
	}
}

// Map appends a mapped segment.
func (c *Codes) Map(text, block string, offset int, caps Capabilities) {
	c.Add(Mapped(text, block, offset, caps))
}

// Append moves every segment of other onto c.
func (c *Codes) Append(other *Codes) {
	if other == nil {
		return
	}
	c.segs = append(c.segs, other.segs...)
}

// String concatenates the generated text.
func (c *Codes) String() string {
	var sb strings.Builder
	for _, s := range c.segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Dump renders every segment on its own line; used by golden tests and the CLI.
func (c *Codes) Dump() string {
	var sb strings.Builder
	for i, s := range c.segs {
		fmt.Fprintf(&sb, "%4d %s\n", i, s)
	}
	return sb.String()
}
