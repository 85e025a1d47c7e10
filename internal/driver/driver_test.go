package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vuecore/internal/buildpipeline"
	"vuecore/internal/config"
	"vuecore/internal/diag"
	"vuecore/internal/driver"
	"vuecore/internal/mapping"
	"vuecore/internal/project"
	"vuecore/internal/source"
)

const counter = `<script setup lang="ts">
const props = defineProps<{ start: number }>()
const count = ref(props.start)
</script>

<template>
  <button @click="count++">{{ count }}</button>
</template>
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if _, ok := files["vuecore.toml"]; !ok {
		files["vuecore.toml"] = "[compiler]\ntarget = 3.5\n"
	}
	for name, text := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func loadConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := driver.OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := driver.CacheKey(project.HashBytes([]byte("a")), project.HashBytes([]byte("opts")), false)
	var out driver.DiskPayload
	if ok, err := cache.Get(key, &out); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	art := &mapping.Artifact{
		ID:         "script_ts",
		LanguageID: "typescript",
		Text:       "const a = 1;",
		Mappings: []mapping.Mapping{{
			SourceOffsets: []int{10}, GeneratedOffsets: []int{6}, Lengths: []int{1},
		}},
	}
	in := &driver.DiskPayload{
		Path:        "App.vue",
		Holder:      true,
		Codes:       []driver.Code{{ID: "script_ts", LanguageID: "typescript", Plugin: "vue-tsx", Artifact: art}},
		Diagnostics: []diag.Diagnostic{diag.NewError(diag.TplUnclosedElement, source.Span{Start: 3, End: 5}, "unclosed")},
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err := cache.Get(key, &out)
	if !ok || err != nil {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.Path != "App.vue" || !out.Holder || len(out.Codes) != 1 {
		t.Fatalf("payload = %+v", out)
	}
	got := out.Codes[0].Artifact
	if got.Text != art.Text || got.Mappings[0].SourceOffsets[0] != 10 {
		t.Errorf("artifact = %+v", got)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Code != diag.TplUnclosedElement || out.Diagnostics[0].Primary.End != 5 {
		t.Errorf("diagnostics = %+v", out.Diagnostics)
	}

	other := driver.CacheKey(project.HashBytes([]byte("a")), project.HashBytes([]byte("opts")), true)
	if other == key {
		t.Errorf("holder flag must change the key")
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := cache.Get(key, &out); ok {
		t.Errorf("DropAll left entries behind")
	}
}

func TestCompileDir(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"src/A.vue":        counter,
		"src/B.vue":        counter,
		"src/nested/C.vue": counter,
		"README.md":        "# not a component",
	})
	sink := &buildpipeline.RecordingSink{}
	fs, results, err := driver.CompileDir(context.Background(), dir, driver.Options{
		Config:   loadConfig(t, dir),
		Jobs:     2,
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("CompileDir: %v", err)
	}
	if len(results) != 3 || fs.Len() != 3 {
		t.Fatalf("results = %d, files = %d", len(results), fs.Len())
	}
	for i, r := range results {
		if r.Holder != (i == 0) {
			t.Errorf("%s: holder = %v", r.Path, r.Holder)
		}
		code, ok := r.Code("script_ts")
		if !ok {
			t.Fatalf("%s: no script_ts", r.Path)
		}
		if strings.Contains(code.Artifact.Text, "declare global") != r.Holder {
			t.Errorf("%s: global types placement", r.Path)
		}
		if r.Bag.HasErrors() {
			t.Errorf("%s: %v", r.Path, r.Bag.Items())
		}
	}
	if !strings.HasSuffix(filepath.ToSlash(results[0].Path), "src/A.vue") {
		t.Errorf("order: first = %s", results[0].Path)
	}

	finished := map[string]bool{}
	for _, ev := range sink.Events() {
		if ev.Finished() {
			finished[ev.File] = true
		}
	}
	if len(finished) != 3 {
		t.Errorf("finished events for %d files", len(finished))
	}
}

func TestCompileDirUsesCache(t *testing.T) {
	dir := writeProject(t, map[string]string{"App.vue": counter, "Other.vue": counter})
	cache, err := driver.OpenDiskCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.Options{Config: loadConfig(t, dir), Cache: cache}
	_, first, err := driver.CompileDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := driver.CompileDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range second {
		if first[i].Cached || !second[i].Cached {
			t.Errorf("%s: cached %v then %v", second[i].Path, first[i].Cached, second[i].Cached)
		}
		a, _ := first[i].Code("script_ts")
		b, _ := second[i].Code("script_ts")
		if a.Artifact.Text != b.Artifact.Text || len(a.Artifact.Mappings) != len(b.Artifact.Mappings) {
			t.Errorf("%s: cached artifact differs", second[i].Path)
		}
	}
}

func TestCompileFile(t *testing.T) {
	dir := writeProject(t, map[string]string{"App.vue": "<template><div></template>\n"})
	cfg := loadConfig(t, dir)
	_, res, err := driver.CompileFile(context.Background(), filepath.Join(dir, "App.vue"), driver.Options{Config: cfg, Timings: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Holder || res.Timing == nil {
		t.Errorf("result = %+v", res)
	}
	var codes []diag.Code
	for _, d := range res.Bag.Items() {
		codes = append(codes, d.Code)
	}
	hasCode := func(c diag.Code) bool {
		for _, x := range codes {
			if x == c {
				return true
			}
		}
		return false
	}
	if !hasCode(diag.TplUnclosedElement) || !hasCode(diag.ObsTimings) {
		t.Errorf("codes = %v", codes)
	}
	for _, d := range res.Bag.Items() {
		if d.Code != diag.ObsTimings {
			continue
		}
		// отчёт несёт и счётчики пересчётов графа
		if len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, `"template:codes":1`) {
			t.Errorf("timing note = %+v", d.Notes)
		}
	}

	_, res, err = driver.CompileFile(context.Background(), filepath.Join(dir, "Missing.vue"), driver.Options{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if items := res.Bag.Items(); len(items) != 1 || items[0].Code != diag.IOLoadFileError {
		t.Errorf("missing file: %v", items)
	}
}

func TestSeverityOptions(t *testing.T) {
	// второй <template> даёт предупреждение SfcDuplicateBlock
	dir := writeProject(t, map[string]string{"App.vue": "<template><div/></template>\n<template><span/></template>\n"})
	path := filepath.Join(dir, "App.vue")
	cfg := loadConfig(t, dir)

	severities := func(opts driver.Options) map[diag.Code]diag.Severity {
		t.Helper()
		opts.Config = cfg
		_, res, err := driver.CompileFile(context.Background(), path, opts)
		if err != nil {
			t.Fatal(err)
		}
		out := map[diag.Code]diag.Severity{}
		for _, d := range res.Bag.Items() {
			out[d.Code] = d.Severity
		}
		return out
	}

	if sev, ok := severities(driver.Options{})[diag.SfcDuplicateBlock]; !ok || sev != diag.SevWarning {
		t.Fatalf("default: duplicate block = %v, %v", sev, ok)
	}
	if sev := severities(driver.Options{WarningsAsErrors: true})[diag.SfcDuplicateBlock]; sev != diag.SevError {
		t.Errorf("warnings-as-errors: severity = %v", sev)
	}
	got := severities(driver.Options{IgnoreWarnings: true, Timings: true})
	if _, ok := got[diag.SfcDuplicateBlock]; ok {
		t.Errorf("ignore-warnings kept the warning: %v", got)
	}
	if _, ok := got[diag.ObsTimings]; !ok {
		t.Errorf("ignore-warnings dropped the timing report: %v", got)
	}
}
