package vfile

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"vuecore/internal/config"
	"vuecore/internal/diag"
	"vuecore/internal/mapping"
	"vuecore/internal/reactive"
	"vuecore/internal/source"
	"vuecore/internal/trace"
)

const component = `<script setup lang="ts">
import { ref } from 'vue'
const msg = ref('hi')
</script>

<template>
  <div class="box" style="color: red">{{ msg }}</div>
</template>

<style scoped>
.box { color: blue; }
</style>

<i18n lang="json">
{"en": {}}
</i18n>
`

func openComponent(t *testing.T, text string, set Settings) *VirtualFile {
	t.Helper()
	if set.Options.Lib == "" {
		set.Options = config.Defaults()
	}
	return New("src/App.vue", source.NewSnapshot(text), set)
}

// sourceOf returns the source offset mapped to the generated offset of needle.
func sourceOf(t *testing.T, art *mapping.Artifact, needle string) int {
	t.Helper()
	gen := strings.Index(art.Text, needle)
	if gen < 0 {
		t.Fatalf("%q not found in %s:\n%s", needle, art.ID, art.Text)
	}
	src, _, ok := mapping.NewMapper(art).ToSource(gen, nil)
	if !ok {
		t.Fatalf("no source for %q in %s", needle, art.ID)
	}
	return src
}

func TestEmbeddedTree(t *testing.T) {
	f := openComponent(t, component, Settings{})
	root := f.Root()
	if root.ID != RootID || root.LanguageID != "vue" || root.Artifact.Text != component {
		t.Fatalf("root = %+v", root)
	}
	got := strings.Join(root.IDs(), ",")
	want := "root,script_ts,template,template_inline_css,style_0,customBlock_0"
	if got != want {
		t.Fatalf("ids = %s, want %s", got, want)
	}
	css, ok := f.Node("template_inline_css")
	if !ok || css.Parent().ID != "template" || css.Plugin != "vue-template-inline-css" {
		t.Fatalf("inline css node = %+v", css)
	}
	if src := sourceOf(t, css.Artifact, "color: red"); src != strings.Index(component, "color: red") {
		t.Errorf("inline css maps to %d", src)
	}
	tpl, _ := f.Artifact("template")
	if tpl.LanguageID != "html" || !strings.Contains(tpl.Text, "{{ msg }}") {
		t.Errorf("template artifact = %+v", tpl)
	}
	if src := sourceOf(t, tpl, "{{ msg }}"); src != strings.Index(component, "{{ msg }}") {
		t.Errorf("template maps to %d", src)
	}
	block, _ := f.Artifact("customBlock_0")
	if block.LanguageID != "json" {
		t.Errorf("custom block language = %q", block.LanguageID)
	}
	script, _ := f.Artifact("script_ts")
	if src := sourceOf(t, script, "msg = ref"); src != strings.Index(component, "msg = ref") {
		t.Errorf("script maps to %d", src)
	}
	if ds := f.Diagnostics(); len(ds) != 0 {
		t.Errorf("unexpected diagnostics: %v", ds)
	}
}

func TestUpdatePatchesNodesInPlace(t *testing.T) {
	f := openComponent(t, component, Settings{})
	tplNode, _ := f.Node("template")
	scriptNode, _ := f.Node("script_ts")
	runs := f.Recomputes()

	edited := strings.Replace(component, "{{ msg }}", "{{ msg + 1 }}", 1)
	f.UpdateText(edited)
	root := f.Root()

	if n, _ := f.Node("template"); n != tplNode {
		t.Fatalf("template node was replaced")
	}
	if n, _ := f.Node("script_ts"); n != scriptNode {
		t.Fatalf("script node was replaced")
	}
	if !strings.Contains(tplNode.Artifact.Text, "msg + 1") || root.Artifact.Text != edited {
		t.Errorf("nodes not patched")
	}
	if f.Snapshot().Version != 1 {
		t.Errorf("version = %d", f.Snapshot().Version)
	}
	after := f.Recomputes()
	// правка шаблона не трогает анализ скрипта
	if after["analyze:setup"] != runs["analyze:setup"] {
		t.Errorf("setup re-analyzed: %d -> %d", runs["analyze:setup"], after["analyze:setup"])
	}
	if after["template:codes"] != runs["template:codes"]+1 {
		t.Errorf("template codes runs %d -> %d", runs["template:codes"], after["template:codes"])
	}
}

func TestEditOutsideScriptKeepsAnalysis(t *testing.T) {
	f := openComponent(t, component, Settings{})
	f.Root()
	runs := f.Recomputes()

	f.UpdateText(strings.Replace(component, "color: blue", "color: green", 1))
	f.Root()
	after := f.Recomputes()
	for _, stage := range []string{"analyze:setup", "template:parse", "template:codes"} {
		if after[stage] != runs[stage] {
			t.Errorf("%s re-ran after a style edit", stage)
		}
	}
	style, _ := f.Artifact("style_0")
	if !strings.Contains(style.Text, "green") {
		t.Errorf("style artifact not updated: %q", style.Text)
	}

	// тот же текст: ничего не пересчитывается
	f.Update(source.Snapshot{Text: f.Snapshot().Text, Version: 5})
	f.Root()
	if got := f.Recomputes()["artifacts"]; got != after["artifacts"] {
		t.Errorf("artifacts re-ran for identical text")
	}
}

const refComponent = `<script setup lang="ts">
// note
import { useTemplateRef } from 'vue'
const box = useTemplateRef('box')
</script>

<template>
  <div ref="box">hi</div>
</template>
`

func TestSetupCommentKeepsTemplate(t *testing.T) {
	f := openComponent(t, refComponent, Settings{})
	f.Root()
	runs := f.Recomputes()

	f.UpdateText(strings.Replace(refComponent, "// note", "// a longer note", 1))
	f.Root()
	after := f.Recomputes()
	// имена не изменились, сдвинулись только смещения
	if after["template:codes"] != runs["template:codes"] {
		t.Errorf("template codes runs %d -> %d", runs["template:codes"], after["template:codes"])
	}
	if after["script:codes"] != runs["script:codes"]+1 {
		t.Errorf("script codes runs %d -> %d", runs["script:codes"], after["script:codes"])
	}
	if ds := f.Diagnostics(); len(ds) != 0 {
		t.Fatalf("diagnostics after edit: %v", ds)
	}

	art, _ := f.Artifact("script_ts")
	ref := strings.Index(art.Text, "useTemplateRef('box')") + len("useTemplateRef('")
	key := strings.Index(art.Text, "'box': typeof") + 1
	if got := mapping.NewMapper(art).LinkedOf(ref); !slices.Contains(got, key) {
		t.Errorf("LinkedOf(useTemplateRef arg) = %v, want %d", got, key)
	}
	if want := strings.Index(f.Snapshot().Text, "box')"); sourceOf(t, art, "box')") != want {
		t.Errorf("ref argument no longer maps to %d", want)
	}
}

func artifactsOf(n *Node, out map[string]*mapping.Artifact) map[string]*mapping.Artifact {
	if out == nil {
		out = map[string]*mapping.Artifact{}
	}
	out[n.ID] = n.Artifact
	for _, c := range n.Embedded {
		artifactsOf(c, out)
	}
	return out
}

func TestGenerationIsDeterministic(t *testing.T) {
	for _, text := range []string{component, refComponent} {
		a := artifactsOf(openComponent(t, text, Settings{}).Root(), nil)
		b := artifactsOf(openComponent(t, text, Settings{}).Root(), nil)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("two files over the same text differ")
		}

		// правка и откат дают то же, что и свежий файл
		f := openComponent(t, text, Settings{})
		f.Root()
		f.UpdateText(strings.Replace(text, "</template>", " x</template>", 1))
		f.Root()
		f.UpdateText(text)
		c := artifactsOf(f.Root(), nil)
		for id, want := range a {
			got, ok := c[id]
			if !ok {
				t.Errorf("%s missing after edit and revert", id)
				continue
			}
			if got.Text != want.Text || !reflect.DeepEqual(got.Mappings, want.Mappings) || !reflect.DeepEqual(got.LinkedMappings, want.LinkedMappings) {
				t.Errorf("%s differs after edit and revert:\n%s\n---\n%s", id, got.Text, want.Text)
			}
		}
		if len(c) != len(a) {
			t.Errorf("node count %d, want %d", len(c), len(a))
		}
	}
}

type panicPlugin struct{}

func (panicPlugin) Name() string { return "broken" }

func (panicPlugin) Embedded(*VirtualFile, *reactive.Tracker) []Embedded {
	panic("boom")
}

func TestPluginPanicIsIsolated(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelError)
	f := openComponent(t, component, Settings{
		Plugins: append(DefaultPlugins(config.Defaults()), panicPlugin{}),
		Tracer:  ring,
	})
	if _, ok := f.Artifact("script_ts"); !ok {
		t.Fatalf("other plugins must still contribute")
	}
	var found bool
	for _, d := range f.Diagnostics() {
		if d.Code == diag.GenPluginFailed && strings.Contains(d.Message, "boom") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing GEN4002: %v", f.Diagnostics())
	}
	events := ring.Snapshot()
	if len(events) == 0 || events[len(events)-1].Name != "plugin:broken" {
		t.Errorf("panic not traced: %+v", events)
	}
}

func TestHolderReassignment(t *testing.T) {
	reg := NewRegistry(RegistryOptions{})
	opts := config.Defaults()
	open := func(path string) *VirtualFile {
		t.Helper()
		f, err := reg.Open(Input{Path: path, Project: "/p", Options: opts, Snapshot: source.NewSnapshot(component)})
		if err != nil {
			t.Fatal(err)
		}
		return f
	}
	a, b, c := open("a.vue"), open("b.vue"), open("c.vue")
	other, err := reg.Open(Input{Path: "x.vue", Project: "/q", Options: opts, Snapshot: source.NewSnapshot(component)})
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsHolder() || b.IsHolder() || c.IsHolder() || !other.IsHolder() {
		t.Fatalf("holders: a=%v b=%v c=%v x=%v", a.IsHolder(), b.IsHolder(), c.IsHolder(), other.IsHolder())
	}
	scriptText := func(f *VirtualFile) string {
		art, ok := f.Artifact("script_ts")
		if !ok {
			t.Fatalf("%s: no script", f.Path())
		}
		return art.Text
	}
	if !strings.Contains(scriptText(a), "declare global") || strings.Contains(scriptText(b), "declare global") {
		t.Fatalf("global types placed wrong")
	}
	scriptText(c)
	before := b.Recomputes()

	if !reg.Remove("a.vue", opts) {
		t.Fatalf("Remove failed")
	}
	h, ok := reg.Holder("/p")
	if !ok || h != b {
		t.Fatalf("holder = %v, want b.vue", h)
	}
	if !strings.Contains(scriptText(b), "declare global") {
		t.Errorf("new holder lacks global types")
	}
	after := b.Recomputes()
	if after["script:codes"] != before["script:codes"]+1 || after["template:codes"] != before["template:codes"] {
		t.Errorf("holder change must only re-run script codes: %v -> %v", before, after)
	}
	if strings.Contains(scriptText(c), "declare global") {
		t.Errorf("c.vue must not hold")
	}
	if reg.Remove("a.vue", opts) {
		t.Errorf("second Remove must report false")
	}
	if got := len(reg.Files()); got != 3 || reg.Files()[0] != b {
		t.Errorf("Files() = %d", got)
	}
}

func TestRegistryIdentity(t *testing.T) {
	reg := NewRegistry(RegistryOptions{})
	opts := config.Defaults()
	in := Input{Path: "src/./App.vue", Project: "/p", Options: opts, Snapshot: source.NewSnapshot(component)}
	f1, err := reg.Open(in)
	if err != nil {
		t.Fatal(err)
	}
	in.Path = "src/App.vue"
	in.Snapshot = source.Snapshot{Text: strings.Replace(component, "hi", "hey", 1), Version: 1}
	f2, _ := reg.Open(in)
	if f1 != f2 || reg.Len() != 1 {
		t.Fatalf("same key must reuse the file")
	}
	if !strings.Contains(f1.Root().Artifact.Text, "hey") {
		t.Errorf("update not applied")
	}

	strict := opts
	strict.StrictTemplates = true
	in.Options = strict
	f3, _ := reg.Open(in)
	if f3 == f1 || reg.Len() != 2 {
		t.Errorf("different options must open a second file")
	}
	if got, ok := reg.Get("src/App.vue", strict); !ok || got != f3 {
		t.Errorf("Get by options failed")
	}
}

func TestMarkdownFile(t *testing.T) {
	text := "# Title\n\n```vue\n<div>{{ no }}</div>\n```\n\n<Counter :start=\"count\" />\n"
	f := New("docs/index.md", source.NewSnapshot(text), Settings{
		Options: config.Defaults(),
		Kind:    source.KindMarkdown,
	})
	root := f.Root()
	if root.LanguageID != "markdown" {
		t.Errorf("root language = %q", root.LanguageID)
	}
	script, ok := f.Artifact("script_js")
	if !ok {
		t.Fatalf("no script code: %v", root.IDs())
	}
	if !strings.Contains(script.Text, "count") || strings.Contains(script.Text, "__VLS_ctx.no") {
		t.Errorf("code fences must be blanked:\n%s", script.Text)
	}
}
