package scriptranges

import (
	"vuecore/internal/jslex"
)

// declaration handles one top-level statement and records its bindings.
// It returns the declarator list when the statement is const/let/var.
func (w *walker) declaration(s stmt, c *Common) (kind BindingKind, decls [][2]int, ok bool) {
	i, to := s.from, s.to
	if w.is(to-1, ";") {
		to--
	}
	if w.is(i, "export") {
		if w.is(i+1, "default") || w.is(i+1, "{") || w.is(i+1, "*") || w.is(i+1, "type") || w.is(i+1, "=") {
			return 0, nil, false
		}
		i++
	}
	if w.is(i, "declare") {
		return 0, nil, false
	}
	if w.is(i, "import") {
		// import(...) и import.meta - это выражения
		if w.is(i+1, "(") || w.is(i+1, ".") {
			return 0, nil, false
		}
		w.importDecl(i, to, c)
		c.ImportSectionEnd = w.toks[s.to-1].End
		return 0, nil, false
	}
	if w.is(i, "async") && w.is(i+1, "function") {
		i++
	}
	switch {
	case w.is(i, "function"):
		if w.is(i+1, "*") {
			i++
		}
		w.bindIdent(i+1, BindFunction, c)
	case w.is(i, "abstract") && w.is(i+1, "class"):
		w.bindIdent(i+2, BindClass, c)
	case w.is(i, "class"):
		w.bindIdent(i+1, BindClass, c)
	case w.is(i, "enum"):
		w.bindIdent(i+1, BindEnum, c)
	case w.is(i, "const") && w.is(i+1, "enum"):
		w.bindIdent(i+2, BindEnum, c)
	case w.is(i, "const") || w.is(i, "let") || w.is(i, "var"):
		kind = BindConst
		if !w.is(i, "const") {
			kind = BindLet
		}
		decls = w.declarators(i+1, to)
		for _, d := range decls {
			w.bindPattern(d[0], kind, c)
		}
		return kind, decls, true
	}
	return 0, nil, false
}

func (w *walker) bindIdent(i int, kind BindingKind, c *Common) {
	t := w.toks[i]
	if !t.IsIdent() {
		return
	}
	c.Bindings = append(c.Bindings, Binding{Name: t.Text, Range: Range{t.Start, t.End}, Kind: kind})
}

// declarators splits "a = 1, { b } = c" into token ranges.
func (w *walker) declarators(from, to int) [][2]int {
	var out [][2]int
	start, inType, depth := from, false, 0
	for i := from; i < to; {
		t := w.toks[i]
		if t.Kind == jslex.Punct {
			switch {
			case t.Text == ":" && depth == 0 && i > start:
				inType = true
			case t.Text == "=" && depth == 0:
				inType = false
			case inType && t.Text == "<":
				depth++
			case inType && t.Text == ">" && depth > 0:
				depth--
			case t.Text == "," && depth == 0:
				out = append(out, [2]int{start, i})
				start = i + 1
				inType = false
			}
		}
		i = min(w.skip(i), to)
	}
	if start < to {
		out = append(out, [2]int{start, to})
	}
	return out
}

// bindPattern records every name bound by the pattern starting at token i.
func (w *walker) bindPattern(i int, kind BindingKind, c *Common) {
	t := w.toks[i]
	switch {
	case t.IsIdent():
		w.bindIdent(i, kind, c)
	case t.Is("{") || t.Is("["):
		end := w.match[i]
		if end < 0 {
			return
		}
		for _, el := range w.splitCommas(i+1, end, false) {
			w.bindElement(el[0], el[1], t.Is("{"), kind, c)
		}
	}
}

func (w *walker) bindElement(from, to int, object bool, kind BindingKind, c *Common) {
	if from >= to {
		return
	}
	if w.is(from, "...") {
		w.bindPattern(from+1, kind, c)
		return
	}
	if !object {
		w.bindPattern(from, kind, c)
		return
	}
	// key [: value] [= default]
	valueAt := from
	for j := from; j < to; j = w.skip(j) {
		if w.is(j, ":") {
			valueAt = j + 1
			break
		}
	}
	w.bindPattern(valueAt, kind, c)
}

// importDecl records value bindings of an import declaration.
func (w *walker) importDecl(i, to int, c *Common) {
	j := i + 1
	if w.is(j, "type") && !w.is(j+1, "from") && !w.is(j+1, ",") {
		return
	}
	if w.toks[j].Kind == jslex.String {
		return
	}
	for j < to {
		t := w.toks[j]
		switch {
		case t.Is("from"):
			return
		case t.Is("*") && w.is(j+1, "as"):
			w.bindIdent(j+2, BindImport, c)
			j += 3
		case t.Is("{"):
			end := w.match[j]
			if end < 0 {
				return
			}
			for _, el := range w.splitCommas(j+1, end, false) {
				w.importSpecifier(el[0], el[1], c)
			}
			j = end + 1
		case t.IsIdent():
			w.bindIdent(j, BindImport, c)
			j++
		default:
			j++
		}
	}
}

// importSpecifier handles "a", "a as b", "type a", "'str' as b".
func (w *walker) importSpecifier(from, to int, c *Common) {
	if from >= to {
		return
	}
	if w.is(from, "type") && to-from > 1 && !w.is(from+1, "as") {
		return
	}
	if to-from >= 3 && w.is(to-2, "as") {
		w.bindIdent(to-1, BindImport, c)
		return
	}
	w.bindIdent(from, BindImport, c)
}
