package code

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// Camelize turns "foo-bar" into "fooBar".
func Camelize(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	upper := false
	for _, r := range s {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Hyphenate turns "fooBar" into "foo-bar".
func Hyphenate(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Capitalize upper-cases the first letter. Non-ASCII names go through the
// Unicode title caser so digraphs such as "ǆ" become "ǅ".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r < utf8.RuneSelf {
		return string(unicode.ToUpper(r)) + s[size:]
	}
	return titleCaser.String(s[:size]) + s[size:]
}

// Pascalize turns "my-comp" into "MyComp".
func Pascalize(s string) string {
	return Capitalize(Camelize(s))
}

// IsKebab reports whether s is written in kebab-case.
func IsKebab(s string) bool {
	return strings.Contains(s, "-") && strings.ToLower(s) == s
}

// VariableName makes a valid identifier out of a component or tag name:
// "el-button" becomes "elButton", "foo.bar" becomes "foo_bar".
func VariableName(s string) string {
	s = Camelize(s)
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
			sb.WriteRune(r)
		case unicode.IsDigit(r) && i > 0:
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
