package code

import (
	"fmt"
	"strings"
)

// Flag is one IDE feature a mapped segment participates in.
type Flag uint16

const (
	Verification Flag = 1 << iota
	Completion
	CompletionAdditional
	Semantic
	Highlight
	Navigation
	Rename
	Structure
	Format
)

var flagNames = []struct {
	f    Flag
	name string
}{
	{Verification, "verification"},
	{Completion, "completion"},
	{CompletionAdditional, "additional"},
	{Semantic, "semantic"},
	{Highlight, "highlight"},
	{Navigation, "navigation"},
	{Rename, "rename"},
	{Structure, "structure"},
	{Format, "format"},
}

func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	parts := make([]string, 0, len(flagNames))
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseFlag accepts a "|" or "," separated list of flag names.
func ParseFlag(s string) (Flag, error) {
	var out Flag
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.TrimSpace(strings.ToLower(part))
		found := false
		for _, fn := range flagNames {
			if fn.name == part {
				out |= fn.f
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown capability %q", part)
		}
	}
	return out, nil
}

// Capabilities describe what tooling may do with a mapped segment.
type Capabilities struct {
	Flags Flag `json:"flags" yaml:"flags" msgpack:"f"`
	// NewName and EditText transform names during rename through this segment.
	NewName  RenameHook `json:"newName,omitempty" yaml:"newName,omitempty" msgpack:"n,omitempty"`
	EditText RenameHook `json:"editText,omitempty" yaml:"editText,omitempty" msgpack:"e,omitempty"`
	// Suppress drops verification diagnostics (@vue-ignore).
	Suppress bool `json:"suppress,omitempty" yaml:"suppress,omitempty" msgpack:"s,omitempty"`
	// ExpectError is the @vue-expect-error group whose diagnostics are swallowed.
	ExpectError int `json:"expectError,omitempty" yaml:"expectError,omitempty" msgpack:"x,omitempty"`
	// ExpectErrorDirective marks the directive comment reported when group stays unused.
	ExpectErrorDirective int `json:"expectErrorDirective,omitempty" yaml:"expectErrorDirective,omitempty" msgpack:"d,omitempty"`
}

func (c Capabilities) Has(f Flag) bool { return c.Flags&f == f }

func (c Capabilities) Any(f Flag) bool { return c.Flags&f != 0 }

// Verifies reports whether diagnostics at this segment reach the user unfiltered.
func (c Capabilities) Verifies() bool {
	return c.Has(Verification) && !c.Suppress && c.ExpectError == 0
}

// Without clears flags.
func (c Capabilities) Without(f Flag) Capabilities {
	c.Flags &^= f
	return c
}

// With sets flags.
func (c Capabilities) With(f Flag) Capabilities {
	c.Flags |= f
	return c
}

// WithRename attaches rename hooks.
func (c Capabilities) WithRename(newName, editText RenameHook) Capabilities {
	c.NewName, c.EditText = newName, editText
	return c
}

// Suppressed copies c with verification turned off for @vue-ignore.
func (c Capabilities) Suppressed() Capabilities {
	c.Suppress = true
	return c
}

// InGroup routes verification into an expect-error group.
func (c Capabilities) InGroup(group int) Capabilities {
	if group > 0 && c.Has(Verification) {
		c.ExpectError = group
	}
	return c
}

func (c Capabilities) String() string {
	var sb strings.Builder
	sb.WriteString(c.Flags.String())
	if c.NewName != HookNone || c.EditText != HookNone {
		sb.WriteString(" rename(" + c.NewName.String() + "," + c.EditText.String() + ")")
	}
	if c.Suppress {
		sb.WriteString(" suppressed")
	}
	if c.ExpectError > 0 {
		sb.WriteString(" expect-error")
	}
	if c.ExpectErrorDirective > 0 {
		sb.WriteString(" expect-error-directive")
	}
	return sb.String()
}
