package scriptranges

import (
	"vuecore/internal/diag"
	"vuecore/internal/jslex"
)

type callSite struct {
	call  Call
	macro Macro
	args  [][2]int
}

// callAt parses "name<T>(args)" spanning exactly tokens [i, to).
func (w *walker) callAt(i, to int) (callSite, bool) {
	t := w.toks[i]
	if t.Kind != jslex.Ident {
		return callSite{}, false
	}
	m := w.opts.Names.lookup(t.Text)
	if m == MacroNone {
		return callSite{}, false
	}
	site := callSite{macro: m, call: Call{Name: t.Text, Callee: Range{t.Start, t.End}}}
	j := i + 1
	if w.is(j, "<") {
		closing := w.closeAngle(j, to)
		if closing < 0 {
			return callSite{}, false
		}
		site.call.TypeArg = w.span(j+1, closing)
		site.call.HasTypeArg = true
		j = closing + 1
	}
	if !w.is(j, "(") || w.match[j] != to-1 {
		return callSite{}, false
	}
	site.args = w.splitCommas(j+1, to-1, false)
	for _, a := range site.args {
		site.call.Args = append(site.call.Args, w.span(a[0], a[1]))
	}
	if len(site.call.Args) > 0 {
		site.call.Arg = site.call.Args[0]
	}
	site.call.Expr = w.span(i, to)
	return site, true
}

// findTop returns the first top-level token equal to text in [from, to).
func (w *walker) findTop(from, to int, text string) int {
	for i := from; i < to; i = w.skip(i) {
		if w.is(i, text) {
			return i
		}
	}
	return -1
}

// calls yields the macro calls of one statement with their assignment targets.
func (w *walker) calls(s stmt, isDecl bool, decls [][2]int) []callSite {
	to := s.to
	if w.is(to-1, ";") {
		to--
	}
	stmtRange := w.span(s.from, s.to)
	var out []callSite
	if !isDecl {
		if site, ok := w.callAt(s.from, to); ok {
			site.call.Statement = stmtRange
			out = append(out, site)
		}
		return out
	}
	for _, d := range decls {
		eq := w.findTop(d[0], d[1], "=")
		if eq < 0 {
			continue
		}
		site, ok := w.callAt(eq+1, d[1])
		if !ok {
			continue
		}
		site.call.Statement = stmtRange
		target := w.toks[d[0]]
		switch {
		case target.IsIdent():
			site.call.Variable = target.Text
			site.call.VariableRange = Range{target.Start, target.End}
		case target.Is("{"):
			site.call.Destructured = w.destructure(d[0])
		}
		out = append(out, site)
	}
	return out
}

// destructure reads a flat object pattern; nested or computed keys give nil.
func (w *walker) destructure(i int) *Destructure {
	end := w.match[i]
	if end < 0 {
		return nil
	}
	d := &Destructure{Range: Range{w.toks[i].Start, w.toks[end].End}}
	for _, el := range w.splitCommas(i+1, end, false) {
		from, to := el[0], el[1]
		if w.is(from, "...") {
			if to-from != 2 || !w.toks[from+1].IsIdent() {
				return nil
			}
			rt := w.toks[from+1]
			d.Rest, d.RestRange = rt.Text, Range{rt.Start, rt.End}
			continue
		}
		key := w.toks[from]
		var p DestructuredProp
		switch key.Kind {
		case jslex.Ident:
			p.Name = key.Text
		case jslex.String:
			p.Name = key.StringValue()
		default:
			return nil
		}
		p.NameRange = Range{key.Start, key.End}
		j := from + 1
		if w.is(j, ":") {
			if j+1 >= to || !w.toks[j+1].IsIdent() {
				return nil
			}
			at := w.toks[j+1]
			p.Alias, p.AliasRange = at.Text, Range{at.Start, at.End}
			j += 2
		} else if key.Kind != jslex.Ident || !key.IsIdent() {
			return nil
		}
		if w.is(j, "=") {
			p.Default = w.span(j+1, to)
			p.HasDefault = true
			j = to
		}
		if j != to {
			return nil
		}
		d.Props = append(d.Props, p)
	}
	return d
}

func (w *walker) recordSetup(site callSite, r *SetupRanges) {
	call := site.call
	single := func(slot **Call) {
		if *slot != nil {
			w.report(diag.ScrDuplicateMacro, call.Expr, "duplicate "+site.macro.String()+"() call")
			return
		}
		c := call
		*slot = &c
	}
	switch site.macro {
	case DefineProps:
		if r.Props != nil {
			w.report(diag.ScrDuplicateMacro, call.Expr, "duplicate defineProps() call")
			return
		}
		r.Props = &Props{Call: call}
	case WithDefaultsMacro:
		if len(site.args) == 0 {
			return
		}
		inner, ok := w.callAt(site.args[0][0], site.args[0][1])
		if !ok || inner.macro != DefineProps {
			return
		}
		if r.Props != nil {
			w.report(diag.ScrDuplicateMacro, call.Expr, "duplicate defineProps() call")
			return
		}
		p := &Props{Call: inner.call}
		p.Statement = call.Statement
		p.Variable, p.VariableRange = call.Variable, call.VariableRange
		p.Destructured = call.Destructured
		p.WithDefaults = &WithDefaults{Expr: call.Expr, Callee: call.Callee}
		if len(call.Args) > 1 {
			p.WithDefaults.Defaults = call.Args[1]
		}
		r.Props = p
	case DefineEmits:
		single(&r.Emits)
	case DefineSlots:
		single(&r.Slots)
	case DefineExpose:
		single(&r.Expose)
	case DefineOptions:
		single(&r.Options)
	case DefineModel:
		m := Model{Call: call, ModelName: "modelValue"}
		opts := 0
		if len(site.args) > 0 {
			first := site.args[0]
			if t := w.toks[first[0]]; t.Kind == jslex.String && first[1]-first[0] == 1 {
				m.ModelName = t.StringValue()
				m.NameRange = Range{t.Start + 1, t.End - 1}
				opts = 1
			}
		}
		if len(call.Args) > opts {
			m.Options, m.HasOptions = call.Args[opts], true
		}
		r.Models = append(r.Models, m)
	case UseAttrs:
		r.UseAttrs = append(r.UseAttrs, call)
	case UseCSSModule:
		r.UseCSSModule = append(r.UseCSSModule, call)
	case UseSlots:
		r.UseSlots = append(r.UseSlots, call)
	case UseTemplateRef:
		tr := TemplateRef{Call: call}
		if len(site.args) > 0 {
			first := site.args[0]
			if t := w.toks[first[0]]; t.Kind == jslex.String && first[1]-first[0] == 1 {
				tr.RefName = t.StringValue()
				tr.NameRange = Range{t.Start + 1, t.End - 1}
			}
		}
		r.UseTemplateRef = append(r.UseTemplateRef, tr)
	}
}

// ParseSetup analyzes a <script setup> block.
func ParseSetup(src string, opts Options) *SetupRanges {
	w := newWalker(src, opts)
	r := &SetupRanges{}
	r.LeadingCommentEnd = w.leadingCommentEnd()
	for _, s := range w.statements() {
		_, decls, isDecl := w.declaration(s, &r.Common)
		for _, site := range w.calls(s, isDecl, decls) {
			w.recordSetup(site, r)
		}
	}
	return r
}
