// Package tplgen lowers a parsed template into TypeScript statements that
// reproduce its data and control flow. Every expression keeps a mapping
// back to the template so checker results can be projected onto it.
package tplgen

import (
	"path"
	"strconv"
	"strings"

	"vuecore/internal/code"
	"vuecore/internal/diag"
	"vuecore/internal/source"
	"vuecore/internal/template"
)

// Options configures one template generation.
type Options struct {
	AST *template.AST
	// Block is the source block key offsets refer to; "template" by default.
	Block string
	// SetupBindings are names reachable directly from the template function.
	SetupBindings map[string]bool
	Tokens        *code.Tokens
	// RefTokens link a template ref name to its useTemplateRef argument.
	RefTokens map[string]code.Token

	ScopedClasses      bool
	CheckUnknownProps  bool
	CheckUnknownEvents bool
	DataAttributes     []string
	HTMLAttributes     []string
	FallthroughNames   []string
	// ModelProps maps a prop name to element selectors such as
	// "input[type=checkbox]" or "textarea".
	ModelProps map[string][]string

	Reporter diag.Reporter
	File     source.FileID
	Base     int
}

// ClassRef is one static class name found in a class attribute.
type ClassRef struct {
	Name   string
	Offset int
}

// Result is the generated template code and what it learned on the way.
type Result struct {
	Codes     code.Codes
	SlotsType code.Codes
	RefsType  code.Codes
	InlineCSS code.Codes

	AccessedBindings []string
	Components       []string
	Classes          []ClassRef
	// LinkedRefs are ref names whose RefTokens were consumed.
	LinkedRefs []string
	// RootVar names the variable of the single root element, if any.
	RootVar           string
	ExpectErrorGroups int
}

type commentKind uint8

const (
	commentNone commentKind = iota
	commentIgnore
	commentExpectError
	commentSkip
	commentGeneric
)

type pending struct {
	kind commentKind
	loc  template.Loc
	text string // generic arguments
	off  int
}

type gen struct {
	opts  Options
	ast   *template.AST
	block string
	res   *Result
	out   *code.Codes

	vars     int
	nodeVar  map[template.NodeID]string
	scopes   []map[string]struct{}
	conds    []string
	mods     []func(code.Capabilities) code.Capabilities
	comment  pending
	generic  *pending
	comps    []string // component variables whose slots are being filled
	accessed map[string]bool
	refSeen  map[string]bool
}

// Generate lowers the template.
func Generate(opts Options) *Result {
	if opts.Block == "" {
		opts.Block = "template"
	}
	if opts.Tokens == nil {
		opts.Tokens = &code.Tokens{}
	}
	g := &gen{
		opts:     opts,
		ast:      opts.AST,
		block:    opts.Block,
		res:      &Result{},
		nodeVar:  map[template.NodeID]string{},
		accessed: map[string]bool{},
		refSeen:  map[string]bool{},
	}
	g.out = &g.res.Codes
	g.res.SlotsType.Text("{}")
	g.res.RefsType.Text("{\n")
	if g.ast != nil {
		g.children(g.ast.Node(g.ast.Root).Children)
		g.res.RootVar = g.rootVar(g.ast.Root)
	}
	g.res.RefsType.Text("}")
	if opts.ScopedClasses {
		for _, c := range g.res.Classes {
			g.out.Text("__VLS_styleScopedClasses['")
			g.out.Map(c.Name, g.block, c.Offset, code.PresetNavigationAndCompletion.Caps())
			g.out.Text("'];\n")
		}
	}
	return g.res
}

func (g *gen) newVar() string {
	v := "__VLS_" + strconv.Itoa(g.vars)
	g.vars++
	return v
}

// caps applies the active directive-comment modifiers.
func (g *gen) caps(c code.Capabilities) code.Capabilities {
	for _, m := range g.mods {
		c = m(c)
	}
	return c
}

func (g *gen) pushScope(names []string) {
	sc := make(map[string]struct{}, len(names))
	for _, n := range names {
		sc[n] = struct{}{}
	}
	g.scopes = append(g.scopes, sc)
}

func (g *gen) popScope() { g.scopes = g.scopes[:len(g.scopes)-1] }

// local reports whether name needs no context prefix; setup bindings are
// remembered for the setup returns object.
func (g *gen) local(name string) bool {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if _, ok := g.scopes[i][name]; ok {
			return true
		}
	}
	if g.opts.SetupBindings[name] {
		g.access(name)
		return true
	}
	return isGlobal(name)
}

func (g *gen) access(name string) {
	if !g.accessed[name] {
		g.accessed[name] = true
		g.res.AccessedBindings = append(g.res.AccessedBindings, name)
	}
}

func (g *gen) report(code diag.Code, loc template.Loc, msg string) {
	if g.opts.Reporter == nil {
		return
	}
	sp := source.Span{
		File:  g.opts.File,
		Start: source.Offset(g.opts.Base + loc.Start),
		End:   source.Offset(g.opts.Base + loc.End),
	}
	diag.ReportWarning(g.opts.Reporter, code, sp, msg).Emit()
}

func (g *gen) children(ids []template.NodeID) {
	for _, id := range ids {
		g.node(id)
	}
}

// node dispatches on the node kind.
func (g *gen) node(id template.NodeID) {
	n := g.ast.Node(id)
	switch n.Kind {
	case template.KindText:
		if strings.TrimSpace(n.Content) != "" {
			g.comment = pending{}
		}
		return
	case template.KindComment:
		g.directiveComment(n)
		return
	}

	c := g.comment
	g.comment = pending{}
	switch c.kind {
	case commentSkip:
		return
	case commentIgnore:
		g.mods = append(g.mods, code.Capabilities.Suppressed)
		defer g.popMod()
	case commentExpectError:
		g.res.ExpectErrorGroups++
		group := g.res.ExpectErrorGroups
		g.out.Add(code.Mapped("// @ts-expect-error __VLS_TS_EXPECT_ERROR", g.block, c.loc.Start,
			code.Capabilities{ExpectErrorDirective: group}).WithSource(g.ast.Source[c.loc.Start:c.loc.End]))
		g.out.Text("\n")
		g.mods = append(g.mods, func(caps code.Capabilities) code.Capabilities { return caps.InGroup(group) })
		defer g.popMod()
	case commentGeneric:
		gc := c
		g.generic = &gc
		defer func() { g.generic = nil }()
	}

	switch n.Kind {
	case template.KindRoot:
		g.children(n.Children)
	case template.KindElement:
		g.element(id, n)
	case template.KindInterpolation:
		if strings.TrimSpace(n.Content) == "" {
			return
		}
		g.out.Text("(")
		g.expr(g.out, n.Content, n.ContentLoc.Start, code.PresetAll.Caps())
		g.out.Text(");\n")
	case template.KindIf:
		g.ifChain(n)
	case template.KindIfBranch:
		g.children(n.Children)
	case template.KindFor:
		g.forLoop(n)
	}
}

func (g *gen) popMod() { g.mods = g.mods[:len(g.mods)-1] }

// directiveComment reads "<!-- @vue-... -->" markers.
func (g *gen) directiveComment(n *template.Node) {
	text := strings.TrimSpace(n.Content)
	if !strings.HasPrefix(text, "@vue-") {
		return
	}
	word, rest, _ := strings.Cut(text, " ")
	p := pending{loc: n.Loc}
	switch word {
	case "@vue-ignore":
		p.kind = commentIgnore
	case "@vue-expect-error":
		p.kind = commentExpectError
	case "@vue-skip":
		p.kind = commentSkip
	case "@vue-generic":
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "{") || !strings.HasSuffix(rest, "}") {
			g.report(diag.GenUnknownDirectiveComment, n.Loc, "@vue-generic expects {Type, ...}")
			return
		}
		p.kind = commentGeneric
		p.text = rest[1 : len(rest)-1]
		p.off = n.ContentLoc.Start + strings.Index(n.Content, rest) + 1
	default:
		g.report(diag.GenUnknownDirectiveComment, n.Loc, "unknown directive comment "+word)
		return
	}
	g.comment = p
}

// ifChain lowers v-if/v-else-if/v-else. Each branch narrows by the
// negations of every previous condition.
func (g *gen) ifChain(n *template.Node) {
	base := len(g.conds)
	for i, bid := range n.Children {
		b := g.ast.Node(bid)
		switch {
		case i == 0:
			g.out.Text("if ")
		case b.Cond != nil:
			g.out.Text("else if ")
		default:
			g.out.Text("else")
		}
		added := false
		if b.Cond != nil {
			var cond code.Codes
			g.expr(&cond, b.Cond.Value, b.Cond.ValueLoc.Start, code.PresetAll.Caps())
			g.out.Text("(")
			g.out.Append(&cond)
			g.out.Text(")")
			g.conds = append(g.conds, "("+cond.String()+")")
			added = true
		}
		g.out.Text(" {\n")
		g.node(bid)
		g.out.Text("}\n")
		if added {
			g.conds[len(g.conds)-1] = "!" + g.conds[len(g.conds)-1]
		}
	}
	g.conds = g.conds[:base]
}

// guards re-emits the active narrowing inside a closure.
func (g *gen) guards(out *code.Codes) {
	for _, c := range g.conds {
		out.Text("if (!", c, ") return;\n")
	}
}

func (g *gen) forLoop(n *template.Node) {
	fp := n.For
	g.out.Text("for (const [")
	if fp != nil && !fp.Aliases.Empty() {
		g.out.Map(fp.Aliases.Text, g.block, fp.Aliases.Loc.Start, g.caps(code.PresetAll.Caps()))
	}
	g.out.Text("] of __VLS_getVForSourceType((")
	if fp != nil && !fp.Source.Empty() {
		g.expr(g.out, fp.Source.Text, fp.Source.Loc.Start, code.PresetAll.Caps())
	} else {
		g.out.Text("{} as any")
	}
	g.out.Text(")!)) {\n")
	var names []string
	if fp != nil {
		names = patternNames(fp.Aliases.Text)
	}
	g.pushScope(names)
	g.children(n.Children)
	g.popScope()
	g.out.Text("}\n")
}

// rootVar finds the single root element, looking through fallthrough components.
func (g *gen) rootVar(parent template.NodeID) string {
	var only template.NodeID
	for _, c := range g.ast.Node(parent).Children {
		n := g.ast.Node(c)
		switch n.Kind {
		case template.KindComment:
			continue
		case template.KindText:
			if strings.TrimSpace(n.Content) == "" {
				continue
			}
		}
		if only.IsValid() || n.Kind != template.KindElement {
			return ""
		}
		only = c
	}
	if !only.IsValid() {
		return ""
	}
	n := g.ast.Node(only)
	if n.TagType == template.TagComponent && g.isFallthrough(n.Tag) {
		if v := g.rootVar(only); v != "" {
			return v
		}
	}
	return g.nodeVar[only]
}

func (g *gen) isFallthrough(tag string) bool {
	for _, name := range g.opts.FallthroughNames {
		if name == tag || code.Pascalize(name) == code.Pascalize(tag) {
			return true
		}
	}
	return false
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
