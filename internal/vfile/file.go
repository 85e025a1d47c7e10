// Package vfile turns component snapshots into trees of virtual codes.
//
// Every VirtualFile owns a small reactive pipeline:
//
//	snapshot -> descriptor -> block views -> analysis -> template codes
//	         -> script codes -> plugin outputs -> artifacts
//
// Block views are offset-free copies of the blocks, so an edit in one block
// only re-runs the stages that read that block. Artifacts are resolved
// against the current block offsets at the very end.
package vfile

import (
	"fmt"
	"slices"
	"sort"

	"vuecore/internal/code"
	"vuecore/internal/config"
	"vuecore/internal/diag"
	"vuecore/internal/mapping"
	"vuecore/internal/observ"
	"vuecore/internal/reactive"
	"vuecore/internal/scriptgen"
	"vuecore/internal/scriptranges"
	"vuecore/internal/sfc"
	"vuecore/internal/source"
	"vuecore/internal/template"
	"vuecore/internal/tplgen"
	"vuecore/internal/trace"
)

// RootID is the id of the node standing for the component file itself.
const RootID = "root"

// Settings configure one virtual file.
type Settings struct {
	Options config.Options
	Kind    source.Kind
	File    source.FileID
	// Project is the holder partition the file belongs to.
	Project string
	// Holder makes the file carry the inline global type declarations.
	Holder  bool
	Plugins []Plugin
	Tracer  trace.Tracer
	Timer   *observ.Timer
}

type scriptAnalysis struct {
	ranges *scriptranges.ScriptRanges
	diags  []diag.Diagnostic
}

type setupAnalysis struct {
	ranges *scriptranges.SetupRanges
	diags  []diag.Diagnostic
}

type templateParse struct {
	ast   *template.AST
	diags []diag.Diagnostic
}

type templateGen struct {
	res   *tplgen.Result
	diags []diag.Diagnostic
}

type scriptOut struct {
	res *scriptgen.Result
	err error
}

type pluginOut struct {
	embedded []Embedded
	diags    []diag.Diagnostic
}

type builtCode struct {
	plugin string
	parent string
	art    *mapping.Artifact
}

type built struct {
	codes []builtCode
	diags []diag.Diagnostic
}

// VirtualFile is the compiled form of one component file. It is not safe
// for concurrent use; Update calls must be serialized.
type VirtualFile struct {
	path   string
	set    Settings
	opts   config.Options
	graph  *reactive.Graph
	tracer trace.Tracer
	tokens *code.Tokens
	seq    uint64

	snapshot *reactive.Source[source.Snapshot]
	holder   *reactive.Source[bool]

	desc     *reactive.Computed[*sfc.Descriptor]
	lastDesc *sfc.Descriptor

	scriptBlock   *reactive.Computed[*sfc.Block]
	setupBlock    *reactive.Computed[*sfc.Block]
	templateBlock *reactive.Computed[*sfc.Block]
	styleBlocks   *reactive.Computed[[]*sfc.Block]
	scoped        *reactive.Computed[bool]

	scriptAn  *reactive.Computed[scriptAnalysis]
	setupAn   *reactive.Computed[setupAnalysis]
	tplAST    *reactive.Computed[templateParse]
	bindings  *reactive.Computed[map[string]bool]
	refNames  *reactive.Computed[[]string]
	refTokens *reactive.Computed[map[string]code.Token]
	// refSeen keeps one linked token per template ref name for the file's
	// lifetime, so re-analysis of the setup block does not renumber them.
	refSeen   map[string]code.Token
	tpl       *reactive.Computed[templateGen]
	script    *reactive.Computed[scriptOut]
	plugins   []*reactive.Computed[pluginOut]
	artifacts *reactive.Computed[*built]
	diags     *reactive.Computed[[]diag.Diagnostic]

	root   *Node
	nodes  map[string]*Node
	synced *built
}

// New creates a standalone virtual file with its own reactive graph.
func New(path string, snap source.Snapshot, set Settings) *VirtualFile {
	return newFile(reactive.NewGraph(set.Tracer), path, snap, set)
}

func newFile(g *reactive.Graph, path string, snap source.Snapshot, set Settings) *VirtualFile {
	if set.Tracer == nil {
		set.Tracer = trace.Nop
	}
	if set.Plugins == nil {
		set.Plugins = DefaultPlugins(set.Options)
	}
	f := &VirtualFile{
		path:    source.NormalizePath(path),
		set:     set,
		opts:    set.Options.Effective(),
		graph:   g,
		tracer:  set.Tracer,
		tokens:  &code.Tokens{},
		nodes:   map[string]*Node{},
		refSeen: map[string]code.Token{},
	}
	f.snapshot = reactive.NewSource(g, snap, reactive.WithName[source.Snapshot]("snapshot"))
	f.holder = reactive.NewSource(g, set.Holder, reactive.WithName[bool]("holder"))
	f.wire()
	return f
}

// wire declares the pipeline; nothing runs until the first read.
func (f *VirtualFile) wire() {
	g := f.graph
	f.desc = reactive.NewComputed(g, f.parse,
		reactive.WithName[*sfc.Descriptor]("descriptor"),
		reactive.WithEqual(func(a, b *sfc.Descriptor) bool { return a == b }))

	f.scriptBlock = reactive.NewComputed(g, func(tr *reactive.Tracker) *sfc.Block {
		return f.desc.Get(tr).Script.Relative()
	}, reactive.WithName[*sfc.Block]("block:script"))
	f.setupBlock = reactive.NewComputed(g, func(tr *reactive.Tracker) *sfc.Block {
		return f.desc.Get(tr).ScriptSetup.Relative()
	}, reactive.WithName[*sfc.Block]("block:scriptSetup"))
	f.templateBlock = reactive.NewComputed(g, func(tr *reactive.Tracker) *sfc.Block {
		return f.desc.Get(tr).Template.Relative()
	}, reactive.WithName[*sfc.Block]("block:template"))
	f.styleBlocks = reactive.NewComputed(g, func(tr *reactive.Tracker) []*sfc.Block {
		var out []*sfc.Block
		for _, st := range f.desc.Get(tr).Styles {
			out = append(out, st.Relative())
		}
		return out
	}, reactive.WithName[[]*sfc.Block]("block:styles"))
	f.scoped = reactive.NewComputed(g, func(tr *reactive.Tracker) bool {
		for _, st := range f.styleBlocks.Get(tr) {
			if st.Scoped {
				return true
			}
		}
		return false
	}, reactive.WithName[bool]("styles:scoped"))

	f.scriptAn = reactive.NewComputed(g, f.analyzeScript, reactive.WithName[scriptAnalysis]("analyze:script"))
	f.setupAn = reactive.NewComputed(g, f.analyzeSetup, reactive.WithName[setupAnalysis]("analyze:setup"))
	// The template generator reads names only; offsets of the analysis
	// change with every script edit and must not reach it.
	f.bindings = reactive.NewComputed(g, func(tr *reactive.Tracker) map[string]bool {
		return scriptgen.SetupBindings(f.scriptAn.Get(tr).ranges, f.setupAn.Get(tr).ranges)
	}, reactive.WithName[map[string]bool]("setup:bindings"))
	f.refNames = reactive.NewComputed(g, func(tr *reactive.Tracker) []string {
		return refNamesOf(f.setupAn.Get(tr).ranges)
	}, reactive.WithName[[]string]("setup:refNames"))
	f.refTokens = reactive.NewComputed(g, f.issueRefTokens, reactive.WithName[map[string]code.Token]("refTokens"))
	f.tplAST = reactive.NewComputed(g, f.parseTemplate, reactive.WithName[templateParse]("template:parse"))
	f.tpl = reactive.NewComputed(g, f.generateTemplate, reactive.WithName[templateGen]("template:codes"))
	f.script = reactive.NewComputed(g, f.generateScript, reactive.WithName[scriptOut]("script:codes"))

	for _, p := range f.set.Plugins {
		f.plugins = append(f.plugins, reactive.NewComputed(g, func(tr *reactive.Tracker) pluginOut {
			return f.runPlugin(p, tr)
		}, reactive.WithName[pluginOut]("plugin:"+p.Name())))
	}
	f.artifacts = reactive.NewComputed(g, f.build, reactive.WithName[*built]("artifacts"))
	f.diags = reactive.NewComputed(g, f.collect, reactive.WithName[[]diag.Diagnostic]("diagnostics"))
}

// parse reuses the previous descriptor when the edit stays inside one block.
func (f *VirtualFile) parse(tr *reactive.Tracker) *sfc.Descriptor {
	snap := f.snapshot.Get(tr)
	opts := sfc.ParseOptions{Kind: f.set.Kind, File: f.set.File}
	var d *sfc.Descriptor
	f.track("parse", func() {
		if prev := f.lastDesc; prev != nil {
			change, ok := source.Diff(prev.Source, snap.Text)
			if !ok {
				d = prev
				return
			}
			next, incremental := sfc.Update(prev, change, opts)
			if incremental {
				trace.Point(f.tracer, trace.ScopeFile, "sfc:incremental", f.path)
			}
			d = next
			return
		}
		d = sfc.Parse(snap.Text, opts)
	})
	f.lastDesc = d
	return d
}

func (f *VirtualFile) analyzeScript(tr *reactive.Tracker) scriptAnalysis {
	b := f.scriptBlock.Get(tr)
	if b == nil {
		return scriptAnalysis{}
	}
	bag := diag.NewBag(0)
	var out scriptAnalysis
	f.track("analyze", func() {
		out.ranges = scriptranges.ParseScript(b.Content, f.rangeOptions(bag))
	})
	out.diags = bag.Items()
	return out
}

func (f *VirtualFile) analyzeSetup(tr *reactive.Tracker) setupAnalysis {
	b := f.setupBlock.Get(tr)
	if b == nil {
		return setupAnalysis{}
	}
	bag := diag.NewBag(0)
	var out setupAnalysis
	f.track("analyze", func() {
		out.ranges = scriptranges.ParseSetup(b.Content, f.rangeOptions(bag))
	})
	out.diags = bag.Items()
	return out
}

func (f *VirtualFile) rangeOptions(bag *diag.Bag) scriptranges.Options {
	return scriptranges.Options{
		Names:    f.opts.Names(),
		Reporter: &diag.BagReporter{Bag: bag},
		File:     f.set.File,
	}
}

func (f *VirtualFile) parseTemplate(tr *reactive.Tracker) templateParse {
	b := f.templateBlock.Get(tr)
	if b == nil {
		return templateParse{}
	}
	bag := diag.NewBag(0)
	var out templateParse
	f.track("parse", func() {
		out.ast = template.Parse(b.Content, template.Options{
			Reporter: &diag.BagReporter{Bag: bag},
			File:     f.set.File,
		})
	})
	out.diags = bag.Items()
	return out
}

func (f *VirtualFile) generateTemplate(tr *reactive.Tracker) templateGen {
	parsed := f.tplAST.Get(tr)
	if parsed.ast == nil {
		return templateGen{}
	}
	bindings := f.bindings.Get(tr)
	scoped := f.scoped.Get(tr)
	bag := diag.NewBag(0)
	var res *tplgen.Result
	f.track("template", func() {
		res = tplgen.Generate(tplgen.Options{
			AST:                parsed.ast,
			SetupBindings:      bindings,
			Tokens:             f.tokens,
			RefTokens:          f.refTokens.Get(tr),
			ScopedClasses:      scoped,
			CheckUnknownProps:  f.opts.CheckUnknownProps,
			CheckUnknownEvents: f.opts.CheckUnknownEvents,
			DataAttributes:     f.opts.DataAttributes,
			HTMLAttributes:     f.opts.HTMLAttributes,
			FallthroughNames:   f.opts.FallthroughComponentNames,
			ModelProps:         f.opts.ExperimentalModelPropName,
			Reporter:           diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
			File:               f.set.File,
		})
	})
	return templateGen{res: res, diags: bag.Items()}
}

// scriptView is the descriptor subset the script generator reads, with
// block-relative offsets.
func (f *VirtualFile) scriptView(tr *reactive.Tracker) *sfc.Descriptor {
	return &sfc.Descriptor{
		Kind:        f.set.Kind,
		Script:      f.scriptBlock.Get(tr),
		ScriptSetup: f.setupBlock.Get(tr),
		Styles:      f.styleBlocks.Get(tr),
	}
}

func refNamesOf(s *scriptranges.SetupRanges) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, r := range s.UseTemplateRef {
		if r.RefName != "" && !slices.Contains(out, r.RefName) {
			out = append(out, r.RefName)
		}
	}
	slices.Sort(out)
	return out
}

// issueRefTokens maps each ref name to its token, reusing earlier ones.
func (f *VirtualFile) issueRefTokens(tr *reactive.Tracker) map[string]code.Token {
	names := f.refNames.Get(tr)
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]code.Token, len(names))
	for _, name := range names {
		tok, ok := f.refSeen[name]
		if !ok {
			tok = f.tokens.New()
			f.refSeen[name] = tok
		}
		out[name] = tok
	}
	return out
}

func (f *VirtualFile) generateScript(tr *reactive.Tracker) scriptOut {
	view := f.scriptView(tr)
	if view.Script == nil && view.ScriptSetup == nil && f.templateBlock.Get(tr) == nil {
		return scriptOut{}
	}
	opts := scriptgen.Options{
		Desc:              view,
		Script:            f.scriptAn.Get(tr).ranges,
		Setup:             f.setupAn.Get(tr).ranges,
		Template:          f.tpl.Get(tr).res,
		Tokens:            f.tokens,
		RefTokens:         f.refTokens.Get(tr),
		Globals:           f.globals(),
		GlobalTypesPath:   f.opts.ResolveGlobalTypesPath(),
		GlobalTypesHolder: f.holder.Get(tr),
	}
	var out scriptOut
	f.track("script", func() {
		out.res, out.err = scriptgen.Generate(opts)
	})
	return out
}

func (f *VirtualFile) globals() scriptgen.GlobalOptions {
	return scriptgen.GlobalOptions{
		Lib:                    f.opts.Lib,
		Target:                 f.opts.Target,
		Strict:                 f.opts.StrictTemplates,
		CheckUnknownComponents: f.opts.CheckUnknownComponents,
		CheckUnknownDirectives: f.opts.CheckUnknownDirectives,
	}
}

// build resolves every plugin output against the current block offsets.
func (f *VirtualFile) build(tr *reactive.Tracker) *built {
	desc := f.desc.Get(tr)
	resolve := mapping.Offsets(desc.BlockStarts())
	out := &built{}
	seen := map[string]bool{RootID: true}
	for i, pc := range f.plugins {
		po := pc.Get(tr)
		out.diags = append(out.diags, po.diags...)
		for _, e := range po.embedded {
			if seen[e.ID] {
				out.diags = append(out.diags, f.fileError(diag.GenPluginFailed,
					fmt.Sprintf("plugin %s: duplicate virtual code %q", f.set.Plugins[i].Name(), e.ID)))
				continue
			}
			seen[e.ID] = true
			var art *mapping.Artifact
			var err error
			f.track("mappings", func() {
				art, err = mapping.Build(e.ID, e.LanguageID, e.Segments, resolve)
			})
			if err != nil {
				out.diags = append(out.diags, f.fileError(diag.GenUnclosedToken,
					fmt.Sprintf("%s: %v", e.ID, err)))
			}
			out.codes = append(out.codes, builtCode{plugin: f.set.Plugins[i].Name(), parent: e.Parent, art: art})
		}
	}
	return out
}

// collect gathers diagnostics of every stage in file coordinates.
func (f *VirtualFile) collect(tr *reactive.Tracker) []diag.Diagnostic {
	desc := f.desc.Get(tr)
	var out []diag.Diagnostic
	out = append(out, desc.Errors...)
	if b := desc.Script; b != nil {
		out = appendShifted(out, f.scriptAn.Get(tr).diags, b.Start)
	}
	if b := desc.ScriptSetup; b != nil {
		out = appendShifted(out, f.setupAn.Get(tr).diags, b.Start)
	}
	if b := desc.Template; b != nil {
		out = appendShifted(out, f.tplAST.Get(tr).diags, b.Start)
		out = appendShifted(out, f.tpl.Get(tr).diags, b.Start)
	}
	if s := f.script.Get(tr); s.err != nil {
		out = append(out, f.fileError(diag.GenPluginFailed, s.err.Error()))
	}
	out = append(out, f.artifacts.Get(tr).diags...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Primary.Start < out[j].Primary.Start
	})
	return out
}

func appendShifted(dst, ds []diag.Diagnostic, delta int) []diag.Diagnostic {
	for _, d := range ds {
		d.Primary = d.Primary.Shift(delta)
		if len(d.Notes) > 0 {
			notes := make([]diag.Note, len(d.Notes))
			for i, n := range d.Notes {
				n.Span = n.Span.Shift(delta)
				notes[i] = n
			}
			d.Notes = notes
		}
		dst = append(dst, d)
	}
	return dst
}

func (f *VirtualFile) fileError(c diag.Code, msg string) diag.Diagnostic {
	return diag.NewError(c, source.Span{File: f.set.File}, msg)
}

func (f *VirtualFile) track(phase string, fn func()) {
	if f.set.Timer == nil {
		fn()
		return
	}
	f.set.Timer.Track(phase, fn)
}

// Path is the normalized file path.
func (f *VirtualFile) Path() string { return f.path }

// Project is the holder partition of the file.
func (f *VirtualFile) Project() string { return f.set.Project }

// Snapshot returns the current text version.
func (f *VirtualFile) Snapshot() source.Snapshot {
	return f.snapshot.Get(nil)
}

// Update replaces the snapshot. Nodes returned earlier stay valid and are
// patched on the next read.
func (f *VirtualFile) Update(snap source.Snapshot) {
	f.snapshot.Set(snap)
	trace.Point(f.tracer, trace.ScopeFile, "vfile:update", fmt.Sprintf("%s v%d", f.path, snap.Version))
}

// UpdateText stores text as the next version.
func (f *VirtualFile) UpdateText(text string) {
	cur := f.Snapshot()
	f.Update(source.Snapshot{Text: text, Version: cur.Version + 1})
}

// IsHolder reports whether the file carries the global type declarations.
func (f *VirtualFile) IsHolder() bool {
	return f.holder.Get(nil)
}

// SetHolder moves the global declarations in or out; only the script
// artifact is invalidated.
func (f *VirtualFile) SetHolder(v bool) {
	f.holder.Set(v)
}

// Descriptor returns the block split of the current snapshot.
func (f *VirtualFile) Descriptor(tr *reactive.Tracker) *sfc.Descriptor {
	return f.desc.Get(tr)
}

// Template returns the template codes, nil without a template.
func (f *VirtualFile) Template(tr *reactive.Tracker) *tplgen.Result {
	return f.tpl.Get(tr).res
}

// Script returns the script codes, nil for a file without script or template.
func (f *VirtualFile) Script(tr *reactive.Tracker) *scriptgen.Result {
	return f.script.Get(tr).res
}

// Setup returns the <script setup> analysis, nil without that block.
func (f *VirtualFile) Setup(tr *reactive.Tracker) *scriptranges.SetupRanges {
	return f.setupAn.Get(tr).ranges
}

// Diagnostics returns every problem found, sorted by offset.
func (f *VirtualFile) Diagnostics() []diag.Diagnostic {
	return f.diags.Get(nil)
}

// Root returns the embedding tree, bringing it up to date first.
func (f *VirtualFile) Root() *Node {
	f.sync()
	return f.root
}

// Node returns the virtual code with id.
func (f *VirtualFile) Node(id string) (*Node, bool) {
	f.sync()
	n, ok := f.nodes[id]
	return n, ok
}

// Artifact returns the compiled virtual code with id.
func (f *VirtualFile) Artifact(id string) (*mapping.Artifact, bool) {
	n, ok := f.Node(id)
	if !ok {
		return nil, false
	}
	return n.Artifact, true
}

// Recomputes reports how often each named stage has run; used by `watch`.
func (f *VirtualFile) Recomputes() map[string]int {
	out := map[string]int{
		"descriptor":     f.desc.Runs(),
		"analyze:script": f.scriptAn.Runs(),
		"analyze:setup":  f.setupAn.Runs(),
		"template:parse": f.tplAST.Runs(),
		"template:codes": f.tpl.Runs(),
		"script:codes":   f.script.Runs(),
		"artifacts":      f.artifacts.Runs(),
	}
	for i, p := range f.plugins {
		out["plugin:"+f.set.Plugins[i].Name()] = p.Runs()
	}
	return out
}

// sync patches the node tree in place from the latest artifacts.
func (f *VirtualFile) sync() {
	b := f.artifacts.Get(nil)
	snap := f.snapshot.Get(nil)
	if f.root == nil {
		f.root = &Node{ID: RootID}
		f.nodes[RootID] = f.root
	}
	f.root.LanguageID = rootLanguage(f.set.Kind)
	if f.root.Artifact == nil || f.root.Artifact.Text != snap.Text {
		f.root.Artifact = &mapping.Artifact{ID: RootID, LanguageID: f.root.LanguageID, Text: snap.Text}
	}
	if b == f.synced {
		return
	}
	f.synced = b

	live := map[string]bool{RootID: true}
	for _, c := range b.codes {
		n, ok := f.nodes[c.art.ID]
		if !ok {
			n = &Node{ID: c.art.ID}
			f.nodes[n.ID] = n
		}
		n.LanguageID = c.art.LanguageID
		n.Plugin = c.plugin
		n.Artifact = c.art
		n.Embedded = nil
		live[n.ID] = true
	}
	f.root.Embedded = nil
	for _, c := range b.codes {
		n := f.nodes[c.art.ID]
		parent := f.root
		if p, ok := f.nodes[c.parent]; ok && c.parent != "" && live[c.parent] {
			parent = p
		}
		n.parent = parent
		parent.Embedded = append(parent.Embedded, n)
	}
	for id, n := range f.nodes {
		if !live[id] {
			n.parent = nil
			delete(f.nodes, id)
		}
	}
}

func rootLanguage(k source.Kind) string {
	switch k {
	case source.KindMarkdown:
		return "markdown"
	case source.KindHTML:
		return "html"
	default:
		return "vue"
	}
}
