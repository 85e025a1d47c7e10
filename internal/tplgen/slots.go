package tplgen

import (
	"strings"

	"vuecore/internal/code"
	"vuecore/internal/jslex"
	"vuecore/internal/template"
)

// slotOutlet lowers <slot> into a call of the declared slot and adds the
// slot to the component's slot type.
func (g *gen) slotOutlet(n *template.Node) {
	var nameAttr, nameBind *template.Prop
	for i := range n.Props {
		p := &n.Props[i]
		switch {
		case p.Kind == template.PropAttribute && p.Name == "name":
			nameAttr = p
		case p.Kind == template.PropDirective && p.Name == "bind" && p.ArgStatic && p.Arg == "name":
			nameBind = p
		}
	}
	props := g.newVar()
	g.out.Text("var ", props, " = ")
	g.props(n, false, func(p *template.Prop) bool { return p == nameAttr || p == nameBind })
	g.out.Text(";\n")

	switch {
	case nameAttr != nil && nameAttr.HasValue && nameAttr.Value != "":
		tok := g.opts.Tokens.New()
		name := nameAttr.Value
		g.out.Text("__VLS_normalizeSlot(__VLS_slots['")
		g.out.Add(code.Mapped(name, g.block, nameAttr.ValueLoc.Start, g.caps(code.PresetAll.Caps())).WithMerge(tok))
		g.out.Text("'])?.(", props, ");\n")
		g.res.SlotsType.Text(" & { '")
		g.res.SlotsType.Add(code.Mapped(name, g.block, nameAttr.ValueLoc.Start, code.PresetNavigation.Caps()).WithMerge(tok))
		g.res.SlotsType.Text("'?: (props: typeof ", props, ") => any }")
	case nameBind != nil && nameBind.HasValue:
		nameVar := g.newVar()
		g.out.Text("var ", nameVar, " = (")
		g.expr(g.out, nameBind.Value, nameBind.ValueLoc.Start, code.PresetAll.Caps())
		g.out.Text(");\n")
		g.out.Text("__VLS_normalizeSlot((__VLS_slots as any)[", nameVar, "])?.(", props, ");\n")
		g.res.SlotsType.Text(" & Partial<Record<NonNullable<typeof ", nameVar, ">, (props: typeof ", props, ") => any>>")
	default:
		g.out.Text("__VLS_normalizeSlot(__VLS_slots['default'])?.(", props, ");\n")
		g.res.SlotsType.Text(" & { 'default'?: (props: typeof ", props, ") => any }")
	}
	g.children(n.Children)
}

// componentSlots fills the slots of component v from its children.
// Children outside <template v-slot> form the implicit default slot.
func (g *gen) componentSlots(v string, n *template.Node) {
	if dir, ok := n.Directive("slot"); ok {
		g.slotBlock(v, dir, n.Children)
		return
	}
	var rest []template.NodeID
	content := false
	for _, c := range n.Children {
		cn := g.ast.Node(c)
		if cn.Kind == template.KindElement && cn.Tag == "template" {
			if dir, ok := cn.Directive("slot"); ok {
				g.slotBlock(v, dir, cn.Children)
				continue
			}
		}
		rest = append(rest, c)
		switch cn.Kind {
		case template.KindComment:
		case template.KindText:
			content = content || strings.TrimSpace(cn.Content) != ""
		default:
			content = true
		}
	}
	if content {
		g.slotBlock(v, nil, rest)
	}
}

// slotBlock opens a scope where the slot parameters are locals.
func (g *gen) slotBlock(v string, dir *template.Prop, kids []template.NodeID) {
	g.out.Text("{\n", "const { ")
	switch {
	case dir == nil || (dir.ArgStatic && dir.Arg == ""):
		g.out.Text("default")
	case !dir.ArgStatic:
		g.out.Text("[(")
		g.expr(g.out, dir.Arg, dir.ArgLoc.Start, code.PresetAll.Caps())
		g.out.Text(")]")
	case jslex.IsIdentifierName(dir.Arg):
		g.out.Map(dir.Arg, g.block, dir.ArgLoc.Start, g.caps(code.PresetWithoutHighlight.Caps()))
	default:
		g.out.Text("'")
		g.out.Map(dir.Arg, g.block, dir.ArgLoc.Start, g.caps(code.PresetWithoutHighlight.Caps()))
		g.out.Text("'")
	}
	g.out.Text(": __VLS_thisSlot } = __VLS_componentCtx(", v, ").slots!;\n")
	var names []string
	if dir != nil && dir.HasValue && strings.TrimSpace(dir.Value) != "" {
		g.out.Text("const [")
		g.out.Map(dir.Value, g.block, dir.ValueLoc.Start, g.caps(code.PresetAll.Caps()))
		g.out.Text("] = __VLS_getSlotParams(__VLS_thisSlot);\n")
		names = patternNames(dir.Value)
	}
	g.pushScope(names)
	g.comps = append(g.comps, v)
	g.children(kids)
	g.comps = g.comps[:len(g.comps)-1]
	g.popScope()
	g.out.Text("}\n")
}
