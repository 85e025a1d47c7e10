package scriptgen

import (
	"vuecore/internal/code"
)

// template wraps the lowered template in __VLS_template with the context,
// component, directive and slot tables it reads.
func (g *gen) template() {
	tpl := g.opts.Template
	if tpl == nil {
		return
	}
	setup := g.hasSetup()
	g.out.Text("function __VLS_template() {\n")
	g.context()
	g.out.Text("let __VLS_components!: __VLS_LocalComponents & __VLS_GlobalComponents;\n")
	g.out.Text("let __VLS_directives!: __VLS_LocalDirectives & __VLS_GlobalDirectives;\n")
	definedSlots := setup && g.opts.Setup.Slots != nil
	if !definedSlots {
		g.out.Text("let __VLS_slots!: __VLS_Slots;\n")
	}
	if g.scoped() {
		g.out.Text("let __VLS_styleScopedClasses!: __VLS_StyleScopedClasses;\n")
	}
	g.out.Append(&tpl.Codes)
	// Slot names share merge tokens with the outlets above, so the slots
	// type is emitted even when defineSlots declares the public one.
	if definedSlots {
		g.out.Text("type __VLS_TemplateSlots = ")
	} else {
		g.out.Text("type __VLS_Slots = ")
	}
	g.out.Append(&tpl.SlotsType)
	g.out.Text(";\n")
	g.out.Text("type __VLS_TemplateRefs = ")
	g.out.Append(&tpl.RefsType)
	g.out.Text(";\n")
	root := "any"
	if tpl.RootVar != "" {
		root = "typeof " + tpl.RootVar
	}
	g.out.Text("return {\nslots: __VLS_slots,\nrefs: {} as __VLS_TemplateRefs,\nrootEl: {} as ", root, ",\n};\n}\n")
}

// context declares __VLS_ctx, the object free template identifiers read from.
func (g *gen) context() {
	g.out.Text("const __VLS_ctx = {\n")
	g.out.Text("...{} as import('", g.lib, "').ComponentPublicInstance,\n")
	if g.internal {
		g.out.Text("...{} as InstanceType<__VLS_PickNotAny<typeof __VLS_internalComponent, new () => {}>>,\n")
	}
	if g.hasSetup() {
		s := g.opts.Setup
		if s.Props != nil {
			g.out.Text("...{} as typeof __VLS_props,\n")
		}
		if len(s.Models) > 0 {
			g.out.Text("...{} as __VLS_ModelProps,\n")
		}
		if s.Emits != nil {
			g.out.Text("$emit: __VLS_emit,\n")
		}
	}
	for _, st := range g.opts.Desc.Styles {
		if st.Module == "" {
			continue
		}
		g.out.Text("'", st.Module, "': {} as Record<string, string> & {")
		for _, c := range cssClasses(st.Content) {
			g.out.Text("\n'")
			g.out.Map(c.Name, st.Key, c.Offset, code.PresetNavigationAndCompletion.Caps())
			g.out.Text("': string,")
		}
		g.out.Text("\n},\n")
	}
	g.out.Text("};\n")
}
