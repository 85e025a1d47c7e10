package scriptranges

import (
	"vuecore/internal/diag"
	"vuecore/internal/jslex"
	"vuecore/internal/source"
)

// Options configures analysis of one script block.
type Options struct {
	Names    Names
	Reporter diag.Reporter
	File     source.FileID
	// Base is the file offset of the block content, used for diagnostics.
	Base uint32
}

type walker struct {
	src   string
	toks  []jslex.Token
	match []int // index of the matching bracket, -1 when unbalanced
	opts  Options
}

type stmt struct {
	from, to int // token indices [from, to), trailing ';' included
}

func newWalker(src string, opts Options) *walker {
	toks := jslex.Tokenize(src, jslex.Options{Reporter: opts.Reporter, File: opts.File, Base: opts.Base})
	w := &walker{src: src, toks: toks, opts: opts}
	w.match = matchBrackets(toks)
	return w
}

func matchBrackets(toks []jslex.Token) []int {
	match := make([]int, len(toks))
	var stack []int
	for i, t := range toks {
		match[i] = -1
		switch {
		case t.Kind == jslex.TemplateHead:
			stack = append(stack, i)
		case t.Kind == jslex.TemplateTail:
			if n := len(stack); n > 0 && toks[stack[n-1]].Kind == jslex.TemplateHead {
				match[i], match[stack[n-1]] = stack[n-1], i
				stack = stack[:n-1]
			}
		case t.Kind != jslex.Punct:
		case t.Text == "(" || t.Text == "[" || t.Text == "{":
			stack = append(stack, i)
		case t.Text == ")" || t.Text == "]" || t.Text == "}":
			open := map[string]string{")": "(", "]": "[", "}": "{"}[t.Text]
			// незакрытые скобки внутри пропускаем
			for n := len(stack); n > 0; n = len(stack) {
				top := stack[n-1]
				stack = stack[:n-1]
				if toks[top].Kind == jslex.Punct && toks[top].Text == open {
					match[i], match[top] = top, i
					break
				}
			}
		}
	}
	return match
}

func (w *walker) eof() int { return len(w.toks) - 1 }

// skip returns the index after the bracket group opened at i, or i+1.
func (w *walker) skip(i int) int {
	if m := w.match[i]; m > i {
		return m + 1
	}
	t := w.toks[i]
	if t.Kind == jslex.TemplateHead || (t.Kind == jslex.Punct && (t.Text == "(" || t.Text == "[" || t.Text == "{")) {
		return w.eof()
	}
	return i + 1
}

// span covers tokens [from, to).
func (w *walker) span(from, to int) Range {
	if to <= from {
		off := w.toks[from].Start
		return Range{off, off}
	}
	return Range{w.toks[from].Start, w.toks[to-1].End}
}

func (w *walker) statements() []stmt {
	var out []stmt
	i := 0
	for w.toks[i].Kind != jslex.EOF {
		from := i
		for w.toks[i].Kind != jslex.EOF {
			t := w.toks[i]
			if t.Kind == jslex.Punct && t.Text == ";" {
				i++
				break
			}
			i = w.skip(i)
			if next := w.toks[i]; next.Kind == jslex.EOF || (next.NewlineBefore() && endsStatement(w.toks[i-1], next)) {
				break
			}
		}
		out = append(out, stmt{from, i})
	}
	return out
}

// words that cannot end a statement when followed by a line break
var continuingWords = map[string]struct{}{
	"const": {}, "let": {}, "var": {}, "export": {}, "default": {}, "import": {},
	"function": {}, "class": {}, "new": {}, "typeof": {}, "await": {}, "extends": {},
	"implements": {}, "async": {}, "declare": {}, "enum": {}, "interface": {},
	"in": {}, "of": {}, "instanceof": {}, "as": {}, "satisfies": {}, "keyof": {},
	"readonly": {}, "abstract": {}, "yield": {}, "void": {}, "delete": {}, "from": {},
}

// words that continue the previous line
var leadingContinuations = map[string]struct{}{
	"in": {}, "of": {}, "instanceof": {}, "as": {}, "satisfies": {}, "extends": {},
	"implements": {}, "else": {}, "catch": {}, "finally": {}, "from": {},
}

// endsStatement is the automatic semicolon insertion heuristic.
func endsStatement(prev, next jslex.Token) bool {
	switch prev.Kind {
	case jslex.Punct:
		switch prev.Text {
		case ")", "]", "}", "++", "--":
		default:
			return false
		}
	case jslex.Ident:
		if _, ok := continuingWords[prev.Text]; ok {
			return false
		}
	case jslex.TemplateHead, jslex.TemplateMiddle:
		return false
	}
	switch next.Kind {
	case jslex.Punct:
		switch next.Text {
		case "!", "~", "++", "--", "@":
			return true
		case "{":
			return prev.Kind != jslex.Punct || prev.Text == "}"
		}
		return false
	case jslex.Ident:
		_, cont := leadingContinuations[next.Text]
		return !cont
	}
	return true
}

// splitCommas splits tokens [from, to) on top-level commas. Angle brackets
// are balanced too when angles is set (type annotations).
func (w *walker) splitCommas(from, to int, angles bool) [][2]int {
	var out [][2]int
	start, depth := from, 0
	for i := from; i < to; {
		t := w.toks[i]
		if t.Kind == jslex.Punct {
			switch {
			case angles && t.Text == "<":
				depth++
			case angles && t.Text == ">" && depth > 0:
				depth--
			case t.Text == "," && depth == 0:
				out = append(out, [2]int{start, i})
				start = i + 1
			}
		}
		i = min(w.skip(i), to)
	}
	if start < to {
		out = append(out, [2]int{start, to})
	}
	return out
}

// closeAngle finds the '>' closing the '<' at i, or -1.
func (w *walker) closeAngle(i, limit int) int {
	depth := 0
	for j := i; j < limit; {
		t := w.toks[j]
		if t.Kind == jslex.Punct {
			switch t.Text {
			case "<":
				depth++
			case ">":
				depth--
				if depth == 0 {
					return j
				}
			case ";":
				return -1
			}
		}
		j = w.skip(j)
	}
	return -1
}

func (w *walker) is(i int, text string) bool {
	return i >= 0 && i < len(w.toks) && w.toks[i].Is(text)
}

func (w *walker) report(code diag.Code, r Range, msg string) {
	if w.opts.Reporter == nil {
		return
	}
	sp := source.Span{
		File:  w.opts.File,
		Start: w.opts.Base + source.Offset(r.Start),
		End:   w.opts.Base + source.Offset(r.End),
	}
	diag.ReportWarning(w.opts.Reporter, code, sp, msg).Emit()
}

// leadingCommentEnd is the end of the last comment before the first token.
func (w *walker) leadingCommentEnd() int {
	end := 0
	for _, tr := range w.toks[0].Leading {
		if tr.Kind == jslex.TriviaLineComment || tr.Kind == jslex.TriviaBlockComment {
			end = tr.End
		}
	}
	return end
}
