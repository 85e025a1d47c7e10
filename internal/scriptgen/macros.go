package scriptgen

import (
	"vuecore/internal/code"
	"vuecore/internal/scriptranges"
)

// macroEdits gives every macro result a synthetic name. The call is
// hoisted into "const __VLS_x = <call>;" before its statement and the
// call site reads the name instead; a bare call statement is replaced.
func (g *gen) macroEdits() []edit {
	b, s := g.opts.Desc.ScriptSetup, g.opts.Setup
	var edits []edit
	hoist := func(name string, call *scriptranges.Call, expr scriptranges.Range, inner []edit) {
		decl := func(out *code.Codes) {
			out.Text("const ", name, " = ")
			splice(out, b.Key, b.Content, expr.Start, expr.End, inner)
			out.Text(";\n")
		}
		if call.Statement.Start == expr.Start {
			edits = append(edits, edit{call.Statement.Start, call.Statement.End, decl})
			return
		}
		edits = append(edits,
			edit{call.Statement.Start, call.Statement.Start, decl},
			edit{expr.Start, expr.End, text(name)},
		)
	}
	hoistArg := func(name string, call *scriptranges.Call) {
		if !call.HasArg() {
			return
		}
		arg := call.Arg
		edits = append(edits,
			edit{call.Statement.Start, call.Statement.Start, func(out *code.Codes) {
				out.Text("const ", name, " = ")
				passthrough(out, b.Key, b.Content, arg.Start, arg.End)
				out.Text(";\n")
			}},
			edit{arg.Start, arg.End, text(name)},
		)
	}

	if p := s.Props; p != nil {
		expr := p.Expr
		var inner []edit
		if wd := p.WithDefaults; wd != nil {
			expr = wd.Expr
			if !wd.Defaults.Empty() {
				g.defaults = true
				d := wd.Defaults
				edits = append(edits, edit{p.Statement.Start, p.Statement.Start, func(out *code.Codes) {
					out.Text("const __VLS_defaults = ")
					passthrough(out, b.Key, b.Content, d.Start, d.End)
					out.Text(";\n")
				}})
				inner = append(inner, edit{d.Start, d.End, text("__VLS_defaults")})
			}
		}
		hoist("__VLS_props", &p.Call, expr, inner)
	}
	if s.Emits != nil {
		hoist("__VLS_emit", s.Emits, s.Emits.Expr, nil)
	}
	if s.Slots != nil {
		hoist("__VLS_slots", s.Slots, s.Slots.Expr, nil)
	}
	for i := range s.Models {
		m := &s.Models[i]
		hoist(modelVar(i), &m.Call, m.Expr, nil)
	}
	if s.Expose != nil {
		hoistArg("__VLS_exposed", s.Expose)
	}
	if s.Options != nil {
		hoistArg("__VLS_options", s.Options)
	}
	edits = append(edits, g.refEdits()...)
	return edits
}

// refEdits link useTemplateRef names to the template refs that consumed
// the same token.
func (g *gen) refEdits() []edit {
	tpl := g.opts.Template
	if tpl == nil {
		return nil
	}
	linked := make(map[string]bool, len(tpl.LinkedRefs))
	for _, name := range tpl.LinkedRefs {
		linked[name] = true
	}
	b := g.opts.Desc.ScriptSetup
	var edits []edit
	for _, r := range g.opts.Setup.UseTemplateRef {
		tok, ok := g.opts.RefTokens[r.RefName]
		if !ok || !linked[r.RefName] || r.NameRange.Empty() {
			continue
		}
		// каждый токен связывает ровно две копии
		delete(linked, r.RefName)
		seg := code.Mapped(r.RefName, b.Key, r.NameRange.Start, code.PresetAll.Caps()).WithLinked(tok)
		edits = append(edits, edit{r.NameRange.Start, r.NameRange.End, func(out *code.Codes) { out.Add(seg) }})
	}
	return edits
}

// RefTokens issues one linked token per useTemplateRef name. Pass the map
// to both the template generator and Generate.
func RefTokens(s *scriptranges.SetupRanges, tokens *code.Tokens) map[string]code.Token {
	if s == nil {
		return nil
	}
	out := map[string]code.Token{}
	for _, r := range s.UseTemplateRef {
		if r.RefName == "" {
			continue
		}
		if _, ok := out[r.RefName]; !ok {
			out[r.RefName] = tokens.New()
		}
	}
	return out
}

// SetupBindings lists names the template reaches without the context:
// top-level bindings of both script blocks.
func SetupBindings(script *scriptranges.ScriptRanges, setup *scriptranges.SetupRanges) map[string]bool {
	out := map[string]bool{}
	if script != nil {
		for _, b := range script.Bindings {
			out[b.Name] = true
		}
	}
	if setup != nil {
		for _, b := range setup.Bindings {
			out[b.Name] = true
		}
	}
	return out
}
