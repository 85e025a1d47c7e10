package template

import "strings"

// Expr is an expression slice of the template with its location.
type Expr struct {
	Text string
	Loc  Loc
}

func (e Expr) Empty() bool { return strings.TrimSpace(e.Text) == "" }

// ForParse is a decomposed v-for expression "(value, key, index) in source".
type ForParse struct {
	Source Expr
	Value  Expr
	Key    Expr
	Index  Expr
	// Aliases is the alias list without parentheses
	Aliases Expr
}

// ParseVFor splits a v-for expression; offset is the template offset of exp.
func ParseVFor(exp string, offset int) (*ForParse, bool) {
	inAt, opLen := findInOf(exp)
	if inAt < 0 {
		return &ForParse{Source: trimmed(exp, offset)}, false
	}
	fp := &ForParse{Source: trimmed(exp[inAt+opLen:], offset+inAt+opLen)}
	lhs := exp[:inAt]
	lhsOff := offset
	ls := strings.TrimSpace(lhs)
	lead := strings.Index(lhs, ls)
	lhsOff += lead
	if strings.HasPrefix(ls, "(") && strings.HasSuffix(ls, ")") {
		ls = ls[1 : len(ls)-1]
		lhsOff++
	}
	fp.Aliases = trimmed(ls, lhsOff)
	parts := splitTopLevel(ls)
	pos := 0
	for i, part := range parts {
		e := trimmed(part, lhsOff+pos)
		switch i {
		case 0:
			fp.Value = e
		case 1:
			fp.Key = e
		case 2:
			fp.Index = e
		}
		pos += len(part) + 1
	}
	return fp, !fp.Source.Empty() && len(parts) <= 3
}

// findInOf locates the " in " / " of " separator outside brackets.
func findInOf(exp string) (int, int) {
	depth := 0
	for i := 0; i < len(exp); i++ {
		switch exp[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ' ', '\t', '\n':
			if depth != 0 || i+4 > len(exp) {
				continue
			}
			w := exp[i+1 : i+3]
			if (w == "in" || w == "of") && i+3 < len(exp) && isSpace(exp[i+3]) {
				return i + 1, 2
			}
		}
	}
	return -1, 0
}

// splitTopLevel splits on commas that are not nested in brackets.
func splitTopLevel(s string) []string {
	var out []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	return append(out, s[last:])
}

func trimmed(s string, offset int) Expr {
	t := strings.TrimSpace(s)
	if t == "" {
		return Expr{Loc: Loc{offset, offset}}
	}
	lead := strings.Index(s, t)
	return Expr{Text: t, Loc: Loc{offset + lead, offset + lead + len(t)}}
}
