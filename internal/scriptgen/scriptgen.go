// Package scriptgen assembles the type-checkable script of a component:
// the original script blocks spliced with macro rewrites, the lowered
// template and the declarations they rely on.
package scriptgen

import (
	"strconv"
	"strings"

	"vuecore/internal/code"
	"vuecore/internal/scriptranges"
	"vuecore/internal/sfc"
	"vuecore/internal/tplgen"
)

// Options configures Generate. Script, Setup and Template are nil when
// the corresponding block is absent.
type Options struct {
	Desc     *sfc.Descriptor
	Script   *scriptranges.ScriptRanges
	Setup    *scriptranges.SetupRanges
	Template *tplgen.Result
	Tokens   *code.Tokens
	// RefTokens must be the map handed to the template generator.
	RefTokens map[string]code.Token

	Globals GlobalOptions
	// GlobalTypesPath is referenced with a triple-slash directive when set.
	GlobalTypesPath string
	// GlobalTypesHolder inlines the global declarations when no path is set.
	GlobalTypesHolder bool
}

// Result is the generated script.
type Result struct {
	Codes code.Codes
	// Helpers lists the emitted helper types in emission order.
	Helpers []string
	// Returns lists the setup bindings exposed to the template.
	Returns []string
}

type gen struct {
	opts    Options
	lib     string
	out     *code.Codes
	res     *Result
	helpers helperSet

	internal bool // plain script declared __VLS_internalComponent
	defaults bool // withDefaults had a defaults argument
}

// Generate builds the script. The only error is a broken helper table.
func Generate(opts Options) (*Result, error) {
	if opts.Tokens == nil {
		opts.Tokens = &code.Tokens{}
	}
	g := &gen{opts: opts, lib: opts.Globals.Lib, res: &Result{}, helpers: helperSet{}}
	if g.lib == "" {
		g.lib = "vue"
	}
	g.out = &g.res.Codes

	if opts.GlobalTypesPath != "" {
		g.out.Text("/// <reference types=", strconv.Quote(opts.GlobalTypesPath), " />\n")
	}
	g.script()
	if g.hasSetup() {
		g.setup()
	} else {
		g.template()
		if g.internal {
			g.out.Text("export default __VLS_internalComponent;\n")
		} else {
			g.out.Text("export default (await import('", g.lib, "')).defineComponent({});\n")
		}
	}
	g.moduleTypes()

	order, err := g.helpers.order()
	if err != nil {
		return g.res, err
	}
	for _, name := range order {
		g.out.Text(strings.ReplaceAll(helpers[name].text, "import('vue')", "import('"+g.lib+"')"))
	}
	g.res.Helpers = order
	if opts.GlobalTypesHolder && opts.GlobalTypesPath == "" {
		g.out.Text(GlobalTypes(opts.Globals))
	}
	return g.res, nil
}

func (g *gen) hasSetup() bool {
	return g.opts.Desc.ScriptSetup != nil && g.opts.Setup != nil
}

func (g *gen) hasScript() bool {
	return g.opts.Desc.Script != nil && g.opts.Script != nil
}

// script passes the plain <script> through, turning its default export
// into a typed component declaration.
func (g *gen) script() {
	if !g.hasScript() {
		return
	}
	b, r := g.opts.Desc.Script, g.opts.Script
	var edits []edit
	ed := r.ExportDefault
	if ed != nil {
		g.internal = true
		edits = append(edits,
			edit{ed.Statement.Start, ed.Expr.Start, text("const __VLS_internalComponent = (await import('", g.lib, "')).defineComponent(")},
			edit{ed.Expr.End, ed.Expr.End, text(")")},
		)
	}
	splice(g.out, b.Key, b.Content, 0, len(b.Content), edits)
	g.out.Text("\n")
	if ed == nil {
		return
	}
	for _, opt := range []struct {
		prop *scriptranges.Property
		name string
	}{{ed.Components, "__VLS_componentsOption"}, {ed.Directives, "__VLS_directivesOption"}} {
		if opt.prop == nil {
			continue
		}
		g.out.Text("const ", opt.name, " = ")
		g.out.Map(opt.prop.Value.Text(b.Content), b.Key, opt.prop.Value.Start, code.PresetNone.Caps())
		g.out.Text(";\n")
	}
}

// setup emits the imports at module level and the rest of <script setup>
// inside an async arrow that also holds the template and the component.
func (g *gen) setup() {
	b, s := g.opts.Desc.ScriptSetup, g.opts.Setup
	edits := g.macroEdits()
	imports := min(s.ImportSectionEnd, len(b.Content))
	splice(g.out, b.Key, b.Content, 0, imports, edits)
	g.out.Text("\n")

	g.out.Text("const __VLS_setup = async ")
	if b.Generic != "" && b.GenericOffset >= 0 {
		g.out.Text("<")
		g.out.Map(b.Generic, b.Key, b.GenericOffset-b.Start, code.PresetAll.Caps())
		if b.Lang == "tsx" {
			g.out.Text(",")
		}
		g.out.Text(">")
	}
	g.out.Text("() => {\n")
	splice(g.out, b.Key, b.Content, imports, len(b.Content), edits)
	g.out.Text("\n")
	g.modelTypes()
	g.template()
	g.component()
	g.out.Text("return {} as typeof __VLS_self;\n};\n")
	g.out.Text("export default {} as Awaited<ReturnType<typeof __VLS_setup>>;\n")
}

// modelTypes declares the prop and event each defineModel contributes.
func (g *gen) modelTypes() {
	models := g.opts.Setup.Models
	if len(models) == 0 {
		return
	}
	b := g.opts.Desc.ScriptSetup
	g.out.Text("type __VLS_ModelProps = {\n")
	for i, m := range models {
		g.modelKey(b, m, "")
		g.out.Text("?: typeof ", modelVar(i), "['value'],\n")
	}
	g.out.Text("};\n")
	g.out.Text("type __VLS_ModelEmits = {\n")
	for i, m := range models {
		g.modelKey(b, m, "update:")
		g.out.Text(": [value: typeof ", modelVar(i), "['value']],\n")
	}
	g.out.Text("};\n")
}

func (g *gen) modelKey(b *sfc.Block, m scriptranges.Model, prefix string) {
	g.out.Text("'", prefix)
	if m.NameRange.Empty() {
		g.out.Text(m.ModelName)
	} else {
		g.out.Map(m.ModelName, b.Key, m.NameRange.Start, code.PresetNavigation.Caps())
	}
	g.out.Text("'")
}

func modelVar(i int) string { return "__VLS_model_" + strconv.Itoa(i) }

// component declares __VLS_self with the setup returns and typed options.
func (g *gen) component() {
	s := g.opts.Setup
	g.out.Text("const __VLS_self = (await import('", g.lib, "')).defineComponent({\n")
	g.out.Text("setup() {\nreturn {\n")
	g.returns()
	g.out.Text("};\n},\n")
	if s.Options != nil && s.Options.HasArg() {
		g.out.Text("...__VLS_options,\n")
	}
	if props := g.propsType(); props != "" {
		g.out.Text("props: {} as ", props, ",\n")
	}
	if emits := g.emitsType(); emits != "" {
		g.out.Text("emits: {} as ", emits, ",\n")
	}
	g.out.Text("});\n")
}

// returns mirrors every template-accessed setup binding. The key points
// at the declaration and is linked with the typeof mirror.
func (g *gen) returns() {
	tpl := g.opts.Template
	if tpl == nil {
		return
	}
	b, s := g.opts.Desc.ScriptSetup, g.opts.Setup
	for _, name := range tpl.AccessedBindings {
		bind, ok := s.Binding(name)
		if !ok {
			continue
		}
		tok := g.opts.Tokens.New()
		g.out.Add(code.Mapped(name, b.Key, bind.Range.Start, code.PresetNavigationWithoutRename.Caps()).WithLinked(tok))
		g.out.Text(": ", name, " as typeof ")
		g.out.Add(code.Linked(name, tok))
		g.out.Text(",\n")
		g.res.Returns = append(g.res.Returns, name)
	}
}

func (g *gen) propsType() string {
	s := g.opts.Setup
	var props string
	if s.Props != nil {
		props = "typeof __VLS_props"
	}
	if len(s.Models) > 0 {
		if props == "" {
			props = "__VLS_ModelProps"
		} else {
			props = g.helpers.use("__VLS_SpreadMerge") + "<" + props + ", __VLS_ModelProps>"
		}
	}
	if props == "" {
		return ""
	}
	props = g.helpers.use("__VLS_TypePropsToOption") + "<" + props + ">"
	if g.defaults {
		props = g.helpers.use("__VLS_WithDefaults") + "<" + props + ", typeof __VLS_defaults>"
	}
	return props
}

func (g *gen) emitsType() string {
	s := g.opts.Setup
	var emits string
	if s.Emits != nil {
		emits = g.helpers.use("__VLS_NormalizeEmits") + "<typeof __VLS_emit>"
	}
	if len(s.Models) > 0 {
		if emits == "" {
			emits = "__VLS_ModelEmits"
		} else {
			emits = g.helpers.use("__VLS_SpreadMerge") + "<" + emits + ", __VLS_ModelEmits>"
		}
	}
	return emits
}

// moduleTypes declares local component and directive tables and the
// class names of scoped styles.
func (g *gen) moduleTypes() {
	if g.hasScript() && g.opts.Script.ExportDefault != nil && g.opts.Script.ExportDefault.Components != nil {
		g.out.Text("type __VLS_LocalComponents = typeof __VLS_componentsOption;\n")
	} else {
		g.out.Text("type __VLS_LocalComponents = {};\n")
	}
	if g.hasScript() && g.opts.Script.ExportDefault != nil && g.opts.Script.ExportDefault.Directives != nil {
		g.out.Text("type __VLS_LocalDirectives = typeof __VLS_directivesOption;\n")
	} else {
		g.out.Text("type __VLS_LocalDirectives = {};\n")
	}
	if !g.scoped() {
		return
	}
	g.out.Text("type __VLS_StyleScopedClasses = {}")
	for _, st := range g.opts.Desc.Styles {
		if !st.Scoped {
			continue
		}
		for _, c := range cssClasses(st.Content) {
			g.out.Text("\n & { '")
			g.out.Map(c.Name, st.Key, c.Offset, code.PresetNavigationAndCompletion.Caps())
			g.out.Text("'?: boolean }")
		}
	}
	g.out.Text(";\n")
}

func (g *gen) scoped() bool {
	for _, st := range g.opts.Desc.Styles {
		if st.Scoped {
			return true
		}
	}
	return false
}
