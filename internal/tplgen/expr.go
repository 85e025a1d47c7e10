package tplgen

import (
	"regexp"

	"vuecore/internal/code"
	"vuecore/internal/jslex"
)

type arrowScope struct {
	from, to int // token range where names are visible
	names    map[string]struct{}
}

type exprWalk struct {
	toks   []jslex.Token
	match  []int
	params map[int]struct{} // tokens declaring arrow parameters
	arrows []arrowScope
}

func newExprWalk(text string) *exprWalk {
	toks := jslex.Tokenize(text, jslex.Options{})
	w := &exprWalk{toks: toks, match: bracketPairs(toks), params: map[int]struct{}{}}
	w.findArrows()
	return w
}

func bracketPairs(toks []jslex.Token) []int {
	match := make([]int, len(toks))
	var stack []int
	for i, t := range toks {
		match[i] = -1
		switch {
		case t.Kind == jslex.TemplateHead:
			stack = append(stack, i)
		case t.Kind == jslex.TemplateTail && len(stack) > 0:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			match[i], match[top] = top, i
		case t.Kind == jslex.Punct && (t.Text == "(" || t.Text == "[" || t.Text == "{"):
			stack = append(stack, i)
		case t.Kind == jslex.Punct && (t.Text == ")" || t.Text == "]" || t.Text == "}") && len(stack) > 0:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			match[i], match[top] = top, i
		}
	}
	return match
}

func (w *exprWalk) next(i int) int {
	if m := w.match[i]; m > i {
		return m + 1
	}
	return i + 1
}

func (w *exprWalk) findArrows() {
	for i, t := range w.toks {
		if !t.Is("=>") || i == 0 {
			continue
		}
		sc := arrowScope{names: map[string]struct{}{}}
		prev := w.toks[i-1]
		switch {
		case prev.IsIdent():
			sc.from = i - 1
			w.params[i-1] = struct{}{}
			sc.names[prev.Text] = struct{}{}
		case prev.Is(")") && w.match[i-1] >= 0:
			sc.from = w.match[i-1]
			for _, k := range bindingTokens(w.toks, sc.from+1, i-1) {
				w.params[k] = struct{}{}
				sc.names[w.toks[k].Text] = struct{}{}
			}
		default:
			continue
		}
		sc.to = w.bodyEnd(i + 1)
		w.arrows = append(w.arrows, sc)
	}
}

// bodyEnd returns the last token index of an arrow body starting at j.
func (w *exprWalk) bodyEnd(j int) int {
	if j < len(w.toks) && w.toks[j].Is("{") && w.match[j] > j {
		return w.match[j]
	}
	k := j
	for k < len(w.toks) {
		t := w.toks[k]
		if t.Kind == jslex.EOF || t.Is(",") || t.Is(";") {
			break
		}
		if w.match[k] >= 0 && w.match[k] < k {
			break // closes an enclosing group
		}
		k = w.next(k)
	}
	return k - 1
}

// bindingTokens picks identifiers declared by a pattern or parameter list in [from, to).
func bindingTokens(toks []jslex.Token, from, to int) []int {
	var out []int
	for k := from; k < to; k++ {
		t := toks[k]
		if !t.IsIdent() {
			continue
		}
		enc := enclosing(toks, from, k)
		if k > from {
			prev := toks[k-1]
			if !(prev.Is("(") || prev.Is(",") || prev.Is("{") || prev.Is("[") || prev.Is("...") ||
				(prev.Is(":") && enc == "{")) {
				continue
			}
		}
		// ключ объектного паттерна: { key: alias }
		if k+1 < len(toks) && toks[k+1].Is(":") && enc == "{" {
			continue
		}
		out = append(out, k)
	}
	return out
}

// enclosing returns the innermost bracket open before k within [from, k).
func enclosing(toks []jslex.Token, from, k int) string {
	depth := 0
	for j := k - 1; j >= from; j-- {
		switch {
		case toks[j].Is("}") || toks[j].Is("]") || toks[j].Is(")"):
			depth++
		case toks[j].Is("{") || toks[j].Is("[") || toks[j].Is("("):
			if depth == 0 {
				return toks[j].Text
			}
			depth--
		}
	}
	return ""
}

// patternNames returns the names a v-for alias list or slot props pattern declares.
func patternNames(text string) []string {
	toks := jslex.Tokenize(text, jslex.Options{})
	var out []string
	for _, k := range bindingTokens(toks, 0, len(toks)-1) {
		out = append(out, toks[k].Text)
	}
	return out
}

func (w *exprWalk) arrowLocal(k int, name string) bool {
	for _, sc := range w.arrows {
		if k >= sc.from && k <= sc.to {
			if _, ok := sc.names[name]; ok {
				return true
			}
		}
	}
	return false
}

// typeTailEnd skips an "as T" or "satisfies T" tail starting at k.
func (w *exprWalk) typeTailEnd(k int) int {
	for k < len(w.toks) {
		t := w.toks[k]
		if t.Kind == jslex.EOF || t.Is(",") || t.Is(";") {
			return k
		}
		if w.match[k] >= 0 && w.match[k] < k {
			return k
		}
		k = w.next(k)
	}
	return k
}

// expr emits text (template offset off) with every free identifier
// routed through __VLS_ctx.
func (g *gen) expr(out *code.Codes, text string, off int, caps code.Capabilities) {
	caps = g.caps(caps)
	w := newExprWalk(text)
	last := 0
	flush := func(to int) {
		if to > last {
			out.Map(text[last:to], g.block, off+last, caps)
		}
		last = to
	}
	var braces []bool // true for object literal braces
	for k := 0; k < len(w.toks); k++ {
		t := w.toks[k]
		var prev jslex.Token
		if k > 0 {
			prev = w.toks[k-1]
		}
		switch {
		case t.Is("{"):
			braces = append(braces, !prev.Is("=>"))
			continue
		case t.Is("}"):
			if len(braces) > 0 {
				braces = braces[:len(braces)-1]
			}
			continue
		case t.Kind != jslex.Ident:
			continue
		}
		if prev.Is(".") || prev.Is("?.") {
			continue
		}
		if (t.Text == "as" || t.Text == "satisfies") && k > 0 {
			k = w.typeTailEnd(k+1) - 1
			continue
		}
		if jslex.IsReserved(t.Text) {
			continue
		}
		if _, ok := literalWords[t.Text]; ok {
			continue
		}
		if _, ok := w.params[k]; ok {
			continue
		}
		inObject := len(braces) > 0 && braces[len(braces)-1] && (prev.Is("{") || prev.Is(","))
		var next jslex.Token
		if k+1 < len(w.toks) {
			next = w.toks[k+1]
		}
		if inObject && (next.Is(":") || next.Is("(")) {
			continue
		}
		shorthand := inObject && (next.Is(",") || next.Is("}"))
		if w.arrowLocal(k, t.Text) || g.local(t.Text) {
			continue
		}
		flush(t.Start)
		if shorthand {
			out.Map(t.Text, g.block, off+t.Start, g.caps(code.PresetNavigationWithoutRename.Caps()))
			out.Text(": ")
		}
		out.Text("__VLS_ctx.")
		out.Map(t.Text, g.block, off+t.Start, caps)
		last = t.End
	}
	flush(len(text))
}

var simpleMember = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:\s*(?:\.|\?\.)\s*[A-Za-z_$][\w$]*|\[[^\]]+\])*$`)

// isFunctionExpr reports whether a handler is already a function value.
func isFunctionExpr(text string) bool {
	w := newExprWalk(text)
	t := w.toks
	if len(t) < 2 {
		return false
	}
	i := 0
	if t[0].Is("async") {
		i++
	}
	switch {
	case t[i].Is("function"):
		return true
	case t[i].IsIdent() && i+1 < len(t) && t[i+1].Is("=>"):
		return true
	case t[i].Is("(") && w.match[i] > i && w.match[i]+1 < len(t) && t[w.match[i]+1].Is("=>"):
		return true
	}
	return false
}
