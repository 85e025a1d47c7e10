// Package sfc splits a component file into its top-level blocks.
package sfc

import (
	"fmt"
	"strings"

	"vuecore/internal/diag"
	"vuecore/internal/source"
)

// Attr is one attribute of a block's start tag. Offsets are file offsets;
// ValueStart points past the opening quote.
type Attr struct {
	Name       string
	Value      string
	HasValue   bool
	NameStart  int
	ValueStart int
}

// Block is one top-level block. Start/End delimit Content (tags excluded);
// TagStart/TagEnd cover the whole element.
type Block struct {
	Key      string // template, script, scriptSetup, style_N, customBlock_N
	Type     string // tag name
	Content  string
	Start    int
	End      int
	TagStart int
	TagEnd   int
	Closed   bool
	Lang     string
	Attrs    []Attr

	Setup         bool
	Scoped        bool
	Module        string // имя CSS-модуля, "$style" для голого module
	Src           string
	Generic       string
	GenericOffset int // file offset of the generic value, -1 when absent
}

// Attr returns the attribute by name.
func (b *Block) Attr(name string) (Attr, bool) {
	for _, a := range b.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// LangOr returns the block language, or def when the lang attribute is missing.
func (b *Block) LangOr(def string) string {
	if b == nil || b.Lang == "" {
		return def
	}
	return b.Lang
}

func (b *Block) String() string {
	return fmt.Sprintf("%s[%d,%d)", b.Key, b.Start, b.End)
}

// shifted returns a copy with every offset moved by delta.
func (b *Block) shifted(delta int) *Block {
	cp := *b
	cp.Start += delta
	cp.End += delta
	cp.TagStart += delta
	cp.TagEnd += delta
	if cp.GenericOffset >= 0 {
		cp.GenericOffset += delta
	}
	cp.Attrs = make([]Attr, len(b.Attrs))
	for i, a := range b.Attrs {
		a.NameStart += delta
		a.ValueStart += delta
		cp.Attrs[i] = a
	}
	return &cp
}

// Relative returns a copy whose offsets are measured from the content
// start, so two blocks differing only in position compare equal.
func (b *Block) Relative() *Block {
	if b == nil {
		return nil
	}
	return b.shifted(-b.Start)
}

// Descriptor is the parsed form of one file snapshot.
type Descriptor struct {
	Source       string
	Kind         source.Kind
	Template     *Block
	Script       *Block
	ScriptSetup  *Block
	Styles       []*Block
	CustomBlocks []*Block
	Blocks       []*Block // document order
	Errors       []diag.Diagnostic
}

// BlockByKey finds a block by its stable key.
func (d *Descriptor) BlockByKey(key string) *Block {
	for _, b := range d.Blocks {
		if b.Key == key {
			return b
		}
	}
	return nil
}

// BlockAt returns the block whose content contains off.
func (d *Descriptor) BlockAt(off int) *Block {
	for _, b := range d.Blocks {
		if off >= b.Start && off <= b.End {
			return b
		}
	}
	return nil
}

// BlockStarts maps block keys to content start offsets.
func (d *Descriptor) BlockStarts() map[string]int {
	out := make(map[string]int, len(d.Blocks))
	for _, b := range d.Blocks {
		out[b.Key] = b.Start
	}
	return out
}

// ScriptLang is the language shared by the script blocks, "js" by default.
func (d *Descriptor) ScriptLang() string {
	if d.ScriptSetup != nil && d.ScriptSetup.Lang != "" {
		return d.ScriptSetup.Lang
	}
	if d.Script != nil && d.Script.Lang != "" {
		return d.Script.Lang
	}
	return "js"
}

func (d *Descriptor) HasErrors() bool {
	for _, e := range d.Errors {
		if e.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
