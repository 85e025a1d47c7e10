package scriptranges

import (
	"vuecore/internal/diag"
	"vuecore/internal/jslex"
)

// ParseScript analyzes a plain <script> block.
func ParseScript(src string, opts Options) *ScriptRanges {
	w := newWalker(src, opts)
	r := &ScriptRanges{}
	r.LeadingCommentEnd = w.leadingCommentEnd()
	for _, s := range w.statements() {
		if w.is(s.from, "export") && w.is(s.from+1, "default") {
			r.ExportDefault = w.exportDefault(s)
			continue
		}
		_, decls, isDecl := w.declaration(s, &r.Common)
		for _, site := range w.calls(s, isDecl, decls) {
			if !site.macro.IsComposable() {
				w.report(diag.ScrMacroOutsideSetup, site.call.Callee,
					site.call.Name+"() is a compiler macro and only works in <script setup>")
			}
		}
	}
	return r
}

func (w *walker) exportDefault(s stmt) *ExportDefault {
	to := s.to
	if w.is(to-1, ";") {
		to--
	}
	from := s.from + 2
	ed := &ExportDefault{Statement: w.span(s.from, s.to), Expr: w.span(from, to)}
	obj := -1
	switch {
	case w.is(from, "{"):
		obj = from
	case w.toks[from].Kind == jslex.Ident && w.is(from+1, "(") && w.is(from+2, "{"):
		// defineComponent({ ... })
		obj = from + 2
	}
	if obj < 0 || w.match[obj] < 0 {
		return ed
	}
	end := w.match[obj]
	ed.Options, ed.HasOptions = w.span(obj, end+1), true
	for _, el := range w.splitCommas(obj+1, end, false) {
		key := w.toks[el[0]]
		if key.Kind != jslex.Ident && key.Kind != jslex.String {
			continue
		}
		name := key.Text
		if key.Kind == jslex.String {
			name = key.StringValue()
		}
		prop := &Property{Key: Range{key.Start, key.End}, Value: w.span(el[0], el[1])}
		if w.is(el[0]+1, ":") {
			prop.Value = w.span(el[0]+2, el[1])
		}
		switch name {
		case "components":
			ed.Components = prop
		case "directives":
			ed.Directives = prop
		case "name":
			ed.Name = prop
		case "inheritAttrs":
			ed.InheritAttrs = prop
		}
	}
	return ed
}
