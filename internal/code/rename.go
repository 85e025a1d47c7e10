package code

import "strings"

// RenameHook rewrites a name while renaming across a segment.
type RenameHook uint8

const (
	HookNone RenameHook = iota
	HookCamelize
	HookHyphenate
	HookPascal
	// HookHyphenateIfKebab hyphenates only when the original text was kebab-case.
	HookHyphenateIfKebab
	// HookForbid rejects the rename.
	HookForbid
)

func (h RenameHook) String() string {
	switch h {
	case HookNone:
		return "none"
	case HookCamelize:
		return "camelize"
	case HookHyphenate:
		return "hyphenate"
	case HookPascal:
		return "pascal"
	case HookHyphenateIfKebab:
		return "hyphenate-if-kebab"
	case HookForbid:
		return "forbid"
	}
	return "unknown"
}

func (h RenameHook) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *RenameHook) UnmarshalText(b []byte) error {
	for c := HookNone; c <= HookForbid; c++ {
		if c.String() == string(b) {
			*h = c
			return nil
		}
	}
	*h = HookNone
	return nil
}

// Apply transforms name; original is the source text of the segment.
// ok is false when the hook forbids the rename.
func (h RenameHook) Apply(name, original string) (string, bool) {
	switch h {
	case HookCamelize:
		return Camelize(name), true
	case HookHyphenate:
		return Hyphenate(name), true
	case HookPascal:
		return Capitalize(Camelize(name)), true
	case HookHyphenateIfKebab:
		if strings.Contains(original, "-") {
			return Hyphenate(name), true
		}
		return name, true
	case HookForbid:
		return "", false
	}
	return name, true
}
