package tplgen

import (
	"slices"
	"strconv"
	"strings"

	"vuecore/internal/code"
	"vuecore/internal/diag"
	"vuecore/internal/jslex"
	"vuecore/internal/template"
)

func (g *gen) element(id template.NodeID, n *template.Node) {
	switch {
	case n.Tag == "template":
		if dir, ok := n.Directive("slot"); ok {
			if len(g.comps) == 0 {
				g.report(diag.TplMisplacedVSlot, dir.Loc, "<template v-slot> can only appear inside a component")
				g.children(n.Children)
				return
			}
			g.slotBlock(g.comps[len(g.comps)-1], dir, n.Children)
			return
		}
		g.children(n.Children)
	case n.TagType == template.TagSlot:
		g.slotOutlet(n)
	case n.TagType == template.TagComponent:
		g.component(id, n)
	default:
		g.native(id, n)
	}
}

func (g *gen) native(id template.NodeID, n *template.Node) {
	if dir, ok := n.Directive("slot"); ok {
		g.report(diag.TplMisplacedVSlot, dir.Loc, "v-slot can only be used on components or <template>")
	}
	v := g.newVar()
	g.nodeVar[id] = v
	g.out.Text("const ", v, " = __VLS_elementAsFunction(")
	g.intrinsic(n.Tag, n.TagLoc.Start, code.PresetWithoutHighlight.Caps())
	g.out.Text(")(")
	g.props(n, false, nil)
	g.out.Text(");\n")
	if n.EndTagLoc.Start >= 0 {
		g.intrinsic(n.Tag, n.EndTagLoc.Start, code.PresetNavigation.Caps())
		g.out.Text(";\n")
	}
	g.extras(v, n)
	g.children(n.Children)
}

func (g *gen) intrinsic(tag string, off int, caps code.Capabilities) {
	if jslex.IsIdentifierName(tag) {
		g.out.Text("__VLS_intrinsicElements.")
		g.out.Map(tag, g.block, off, g.caps(caps))
		return
	}
	g.out.Text("__VLS_intrinsicElements['")
	g.out.Map(tag, g.block, off, g.caps(caps))
	g.out.Text("']")
}

func (g *gen) component(id template.NodeID, n *template.Node) {
	if !slices.Contains(g.res.Components, n.Tag) {
		g.res.Components = append(g.res.Components, n.Tag)
	}
	fn, v := g.newVar(), g.newVar()
	g.nodeVar[id] = v
	isProp := boundIs(n)
	dynamic := isProp != nil

	renameCaps := code.PresetAll.Caps().WithRename(code.HookPascal, code.HookHyphenateIfKebab)
	g.out.Text("const ", fn, " = __VLS_asFunctionalComponent(")
	if dynamic {
		g.out.Text("(")
		g.expr(g.out, isProp.Value, isProp.ValueLoc.Start, code.PresetAll.Caps())
		g.out.Text(") as any")
	} else {
		g.componentRef(n.Tag, n.TagLoc.Start, renameCaps)
	}
	g.out.Text(");\n")
	g.out.Text("const ", v, " = ", fn)
	if g.generic != nil {
		g.out.Text("<")
		g.out.Map(g.generic.text, g.block, g.generic.off, g.caps(code.PresetAll.Caps()))
		g.out.Text(">")
	}
	g.out.Text("(")
	g.props(n, true, func(p *template.Prop) bool { return dynamic && p == isProp })
	g.out.Text(", ...__VLS_functionalComponentArgsRest(", fn, "));\n")
	if n.EndTagLoc.Start >= 0 && !dynamic {
		g.componentRef(n.Tag, n.EndTagLoc.Start, code.PresetNavigation.Caps().WithRename(code.HookPascal, code.HookHyphenateIfKebab))
		g.out.Text(";\n")
	}
	g.extras(v, n)
	g.componentSlots(v, n)
}

// boundIs finds :is on <component>.
func boundIs(n *template.Node) *template.Prop {
	if n.Tag != "component" {
		return nil
	}
	for i := range n.Props {
		p := &n.Props[i]
		if p.Kind == template.PropDirective && p.Name == "bind" && p.ArgStatic && p.Arg == "is" && p.HasValue {
			return p
		}
	}
	return nil
}

// componentRef emits the expression resolving a component tag.
func (g *gen) componentRef(tag string, off int, caps code.Capabilities) {
	name := tag
	if !jslex.IsIdentifierName(name) {
		name = code.Pascalize(tag)
	}
	seg := code.Mapped(name, g.block, off, g.caps(caps))
	if name != tag {
		seg = seg.WithSource(tag)
	}
	switch {
	case !jslex.IsIdentifierName(name):
		g.out.Text("__VLS_components['")
		g.out.Map(tag, g.block, off, g.caps(caps))
		g.out.Text("']")
	case g.opts.SetupBindings[name]:
		g.access(name)
		g.out.Add(seg)
	default:
		g.out.Text("__VLS_components.")
		g.out.Add(seg)
	}
}

// props emits the argument object mirroring attributes and directives.
func (g *gen) props(n *template.Node, component bool, skip func(*template.Prop) bool) {
	g.out.Text("{ ")
	for i := range n.Props {
		p := &n.Props[i]
		if skip != nil && skip(p) {
			continue
		}
		if p.Kind == template.PropAttribute {
			switch p.Name {
			case "ref", "key":
				continue
			}
			g.attrProp(p, component)
			continue
		}
		switch p.Name {
		case "bind":
			if p.ArgStatic && (p.Arg == "key" || p.Arg == "ref") {
				continue
			}
			g.bindProp(p, component)
		case "on":
			g.eventProp(p)
		case "model":
			g.modelProp(n, p, component)
		}
	}
	if component {
		switch {
		case !g.opts.CheckUnknownProps:
			g.out.Text("...{} as Record<string, unknown>, ")
		case !g.opts.CheckUnknownEvents:
			g.out.Text("...{} as Record<`on${string}`, unknown>, ")
		}
	}
	g.out.Text("}")
}

// key emits a property name, camelized for components and .camel bindings.
func (g *gen) key(name string, off int, camel bool, caps code.Capabilities) {
	k := name
	if camel && !matchAny(g.opts.HTMLAttributes, name) {
		k = code.Camelize(name)
		caps = caps.WithRename(code.HookCamelize, code.HookHyphenateIfKebab)
	}
	seg := code.Mapped(k, g.block, off, g.caps(caps))
	if k != name {
		seg = seg.WithSource(name)
	}
	if jslex.IsIdentifierName(k) {
		g.out.Add(seg)
		return
	}
	g.out.Text("'")
	g.out.Add(seg)
	g.out.Text("'")
}

func (g *gen) stringLit(value string, off int, caps code.Capabilities) {
	if strings.ContainsAny(value, "'\\\n\r") {
		g.out.Add(code.Mapped(strconv.Quote(value), g.block, off, g.caps(caps)).WithSource(value))
		return
	}
	g.out.Text("'")
	if value != "" {
		g.out.Map(value, g.block, off, g.caps(caps))
	}
	g.out.Text("'")
}

func (g *gen) attrProp(p *template.Prop, component bool) {
	keyCaps := code.PresetWithoutHighlightAndCompletion.Caps()
	valCaps := code.PresetVerification.Caps()
	if matchAny(g.opts.DataAttributes, p.Name) {
		g.out.Text("'")
		g.out.Map(p.Name, g.block, p.NameLoc.Start, g.caps(keyCaps.Without(code.Verification)))
		g.out.Text("': ")
		valCaps = code.PresetNone.Caps()
	} else {
		g.key(p.Name, p.NameLoc.Start, component, keyCaps)
		g.out.Text(": ")
	}
	if p.HasValue {
		g.stringLit(p.Value, p.ValueLoc.Start, valCaps)
	} else {
		g.out.Text("true")
	}
	g.out.Text(", ")
}

func (g *gen) bindProp(p *template.Prop, component bool) {
	if p.Arg == "" && p.ArgStatic {
		if p.HasValue {
			g.out.Text("...(")
			g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetAll.Caps())
			g.out.Text("), ")
		}
		return
	}
	if !p.ArgStatic {
		g.out.Text("[(")
		g.expr(g.out, p.Arg, p.ArgLoc.Start, code.PresetAll.Caps())
		g.out.Text(")]: ")
	} else {
		camel := component || slices.Contains(p.Modifiers, "camel")
		g.key(p.Arg, p.ArgLoc.Start, camel, code.PresetWithoutHighlightAndCompletion.Caps())
		g.out.Text(": ")
	}
	switch {
	case p.HasValue:
		g.out.Text("(")
		g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetAll.Caps())
		g.out.Text(")")
	case p.ArgStatic:
		// :foo без значения означает :foo="foo"
		ident := code.Camelize(p.Arg)
		seg := code.Mapped(ident, g.block, p.ArgLoc.Start, g.caps(code.PresetAll.Caps()))
		if ident != p.Arg {
			seg = seg.WithSource(p.Arg)
		}
		if !g.local(ident) {
			g.out.Text("__VLS_ctx.")
		}
		g.out.Add(seg)
	default:
		g.out.Text("undefined")
	}
	g.out.Text(", ")
}

func (g *gen) eventProp(p *template.Prop) {
	if p.Arg == "" && p.ArgStatic {
		if p.HasValue {
			g.out.Text("...(")
			g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetAll.Caps())
			g.out.Text("), ")
		}
		return
	}
	if !p.ArgStatic {
		g.out.Text("[`on${")
		g.expr(g.out, p.Arg, p.ArgLoc.Start, code.PresetAll.Caps())
		g.out.Text("}`]: ")
	} else {
		name := code.Capitalize(code.Camelize(p.Arg))
		quoted := !jslex.IsIdentifierName("on" + name)
		if quoted {
			g.out.Text("'")
		}
		g.out.Text("on")
		caps := code.PresetWithoutHighlightAndCompletion.Caps().WithRename(code.HookPascal, code.HookHyphenateIfKebab)
		seg := code.Mapped(name, g.block, p.ArgLoc.Start, g.caps(caps))
		if name != p.Arg {
			seg = seg.WithSource(p.Arg)
		}
		g.out.Add(seg)
		if quoted {
			g.out.Text("'")
		}
		g.out.Text(": ")
	}
	g.handler(p)
	g.out.Text(", ")
}

// handler emits an event handler value. Inline statements become a
// closure with $event in scope and the active narrowing guards.
func (g *gen) handler(p *template.Prop) {
	v := strings.TrimSpace(p.Value)
	if !p.HasValue || v == "" {
		g.out.Text("() => {}")
		return
	}
	if simpleMember.MatchString(v) || isFunctionExpr(p.Value) {
		g.out.Text("(")
		g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetAll.Caps())
		g.out.Text(")")
		return
	}
	g.out.Text("(...[$event]) => {\n")
	g.guards(g.out)
	g.pushScope([]string{"$event"})
	g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetAll.Caps())
	g.popScope()
	g.out.Text(";\n}")
}

func (g *gen) modelProp(n *template.Node, p *template.Prop, component bool) {
	if !p.HasValue || !p.ArgStatic {
		return
	}
	if !component {
		prop := g.nativeModelProp(n)
		if prop == "" {
			return
		}
		g.out.Add(code.Mapped(prop, g.block, p.NameLoc.Start, g.caps(code.PresetWithoutHighlightAndCompletion.Caps())).WithSource("v-model"))
		g.out.Text(": (")
		g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetAll.Caps())
		g.out.Text("), ")
		return
	}
	name, off, src := "modelValue", p.NameLoc.Start, "v-model"
	if p.Arg != "" {
		name, off, src = code.Camelize(p.Arg), p.ArgLoc.Start, p.Arg
	}
	caps := code.PresetWithoutHighlightAndCompletion.Caps().WithRename(code.HookCamelize, code.HookHyphenateIfKebab)
	g.out.Add(code.Mapped(name, g.block, off, g.caps(caps)).WithSource(src))
	g.out.Text(": (")
	g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetAll.Caps())
	g.out.Text("), 'onUpdate:", name, "': (...[$event]) => {\n")
	g.guards(g.out)
	g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetNone.Caps())
	g.out.Text(" = $event;\n}, ")
}

var defaultModelProps = map[string][]string{
	"checked": {"input[type=checkbox]", "input[type=radio]"},
	"value":   {"input", "textarea", "select"},
}

// nativeModelProp picks the bound DOM property; selectors with a type
// condition win over bare tags.
func (g *gen) nativeModelProp(n *template.Node) string {
	table := g.opts.ModelProps
	if table == nil {
		table = defaultModelProps
	}
	typ := ""
	if a, ok := n.Attribute("type"); ok {
		typ = a.Value
	}
	props := make([]string, 0, len(table))
	for p := range table {
		props = append(props, p)
	}
	slices.Sort(props)
	for _, withCond := range []bool{true, false} {
		for _, prop := range props {
			for _, sel := range table[prop] {
				tag, cond, has := strings.Cut(sel, "[")
				if has != withCond || tag != n.Tag {
					continue
				}
				if !has || strings.TrimSuffix(cond, "]") == "type="+typ {
					return prop
				}
			}
		}
	}
	return ""
}

// extras emits keys, refs, built-in and custom directives, classes and inline styles.
func (g *gen) extras(v string, n *template.Node) {
	for i := range n.Props {
		p := &n.Props[i]
		if p.Kind == template.PropAttribute {
			switch p.Name {
			case "ref":
				g.ref(v, p)
			case "class":
				g.classes(p)
			case "style":
				g.inlineStyle(p)
			}
			continue
		}
		switch {
		case p.Name == "bind" && p.ArgStatic && (p.Arg == "key" || p.Arg == "ref") && p.HasValue,
			(p.Name == "show" || p.Name == "html" || p.Name == "text" || p.Name == "memo") && p.HasValue:
			g.out.Text("(")
			g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetAll.Caps())
			g.out.Text(");\n")
		case isCustomDirective(p.Name):
			g.customDirective(p)
		}
	}
}

func isCustomDirective(name string) bool {
	_, builtin := builtinDirectives[name]
	return !builtin
}

func (g *gen) customDirective(p *template.Prop) {
	name := "v" + code.Capitalize(code.Camelize(p.Name))
	seg := code.Mapped(name, g.block, p.NameLoc.Start, g.caps(code.PresetAll.Caps())).WithSource("v-" + p.Name)
	g.out.Text("__VLS_directiveAsFunction(")
	if g.opts.SetupBindings[name] {
		g.access(name)
	} else {
		g.out.Text("__VLS_directives.")
	}
	g.out.Add(seg)
	g.out.Text(")(null!, { ...__VLS_directiveBindingRestFields, ")
	if p.HasValue {
		g.out.Text("value: (")
		g.expr(g.out, p.Value, p.ValueLoc.Start, code.PresetAll.Caps())
		g.out.Text("), ")
	}
	switch {
	case p.Arg != "" && p.ArgStatic:
		g.out.Text("arg: ")
		g.stringLit(p.Arg, p.ArgLoc.Start, code.PresetNavigationAndCompletion.Caps())
		g.out.Text(", ")
	case !p.ArgStatic:
		g.out.Text("arg: (")
		g.expr(g.out, p.Arg, p.ArgLoc.Start, code.PresetAll.Caps())
		g.out.Text("), ")
	}
	if len(p.Modifiers) > 0 {
		g.out.Text("modifiers: { ")
		for _, m := range p.Modifiers {
			g.out.Text("'", m, "': true, ")
		}
		g.out.Text("}, ")
	}
	g.out.Text("}, null!, null!);\n")
}

func (g *gen) ref(v string, p *template.Prop) {
	name := strings.TrimSpace(p.Value)
	if !p.HasValue || name == "" || g.refSeen[name] {
		return
	}
	g.refSeen[name] = true
	off := p.ValueLoc.Start + strings.Index(p.Value, name)
	seg := code.Mapped(name, g.block, off, code.PresetNavigation.Caps())
	if tok, ok := g.opts.RefTokens[name]; ok {
		seg = seg.WithLinked(tok)
		g.res.LinkedRefs = append(g.res.LinkedRefs, name)
	}
	g.res.RefsType.Text("'")
	g.res.RefsType.Add(seg)
	g.res.RefsType.Text("': typeof ", v, ",\n")
}

func (g *gen) classes(p *template.Prop) {
	if !p.HasValue {
		return
	}
	for i := 0; i < len(p.Value); {
		for i < len(p.Value) && isSpaceByte(p.Value[i]) {
			i++
		}
		start := i
		for i < len(p.Value) && !isSpaceByte(p.Value[i]) {
			i++
		}
		if i > start {
			g.res.Classes = append(g.res.Classes, ClassRef{Name: p.Value[start:i], Offset: p.ValueLoc.Start + start})
		}
	}
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func (g *gen) inlineStyle(p *template.Prop) {
	if !p.HasValue || strings.TrimSpace(p.Value) == "" {
		return
	}
	g.res.InlineCSS.Text("x { ")
	g.res.InlineCSS.Map(p.Value, g.block, p.ValueLoc.Start, code.PresetWithoutNavigation.Caps().Without(code.Verification))
	g.res.InlineCSS.Text(" }\n")
}
