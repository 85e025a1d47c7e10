package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vuecore/internal/source"
)

const counter = `<script setup lang="ts">
const count = ref(0)
</script>

<template>
  <button @click="count++">{{ count }}</button>
</template>
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
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

// resetFlags returns every flag to its default; cobra keeps parsed values
// between Execute calls in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, int) {
	t.Helper()
	resetFlags(rootCmd)
	exitCode = 0
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.Execute()
	runCleanups()
	if err != nil {
		t.Fatalf("vuecore %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String(), exitCode
}

func TestProgressViewFlag(t *testing.T) {
	cases := []struct {
		input   string
		want    progressView
		wantErr bool
	}{
		{"", viewAuto, false},
		{"AUTO", viewAuto, false},
		{" on ", viewOn, false},
		{"off", viewOff, false},
		{"sometimes", viewAuto, true},
	}
	for _, tc := range cases {
		v := viewAuto
		err := v.Set(tc.input)
		if (err != nil) != tc.wantErr {
			t.Fatalf("Set(%q) error: %v", tc.input, err)
		}
		if v != tc.want {
			t.Fatalf("Set(%q) = %q, want %q", tc.input, v, tc.want)
		}
	}
	if viewAuto.shows("json", 10) {
		t.Errorf("json output must never get a progress view")
	}
	if viewAuto.shows("text", 1) {
		t.Errorf("a single component needs no progress view")
	}
	if !viewOn.shows("json", 1) {
		t.Errorf("--ui=on forces the view")
	}

	// значение по умолчанию зависит от команды
	for _, c := range []struct {
		name string
		want progressView
	}{{"compile", viewAuto}, {"diag", viewOff}} {
		cmd, _, err := rootCmd.Find([]string{c.name})
		if err != nil {
			t.Fatal(err)
		}
		if got, err := readProgressView(cmd); err != nil || got != c.want {
			t.Errorf("%s --ui default = %q, %v", c.name, got, err)
		}
	}
}

func TestRecomputeDelta(t *testing.T) {
	prev := map[string]int{"descriptor": 1, "template:codes": 1, "script:codes": 1}
	cur := map[string]int{"descriptor": 2, "template:codes": 2, "script:codes": 1}
	if got := recomputeDelta(prev, cur); got != "descriptor+1 template:codes+1" {
		t.Errorf("delta = %q", got)
	}
	if got := recomputeDelta(cur, cur); got != "nothing recomputed" {
		t.Errorf("delta = %q", got)
	}
	// первая компиляция: всё считается с нуля
	if got := recomputeDelta(nil, map[string]int{"descriptor": 1}); got != "descriptor+1" {
		t.Errorf("delta = %q", got)
	}
}

func TestParsePosition(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.Add("/p/App.vue", []byte("ab\ncdé\nf"), 0))
	cases := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"4", 4, false},
		{"2:2", 4, false},
		{"3:1", 8, false},
		{"99", 0, true},
		{"0:1", 0, true},
		{"x", 0, true},
	}
	for _, tc := range cases {
		got, err := parsePosition(f, tc.input)
		if (err != nil) != tc.wantErr {
			t.Fatalf("parsePosition(%q) error: %v", tc.input, err)
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("parsePosition(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestExtensionOf(t *testing.T) {
	cases := map[string]string{
		"typescript":      "ts",
		"typescriptreact": "tsx",
		"css":             "css",
		"":                "txt",
	}
	for in, want := range cases {
		if got := extensionOf(in); got != want {
			t.Errorf("extensionOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompileJSON(t *testing.T) {
	dir := writeProject(t, map[string]string{"App.vue": counter})
	out, code := runCLI(t, "compile", "--format", "json", filepath.Join(dir, "App.vue"))
	if code != 0 {
		t.Fatalf("exit code %d:\n%s", code, out)
	}
	var files []compiledFile
	if err := json.Unmarshal([]byte(out), &files); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(files) != 1 || !files[0].Holder {
		t.Fatalf("files = %+v", files)
	}
	ids := map[string]bool{}
	for _, c := range files[0].Codes {
		ids[c.ID] = true
	}
	for _, id := range []string{"script_ts", "template"} {
		if !ids[id] {
			t.Errorf("missing code %s in %v", id, ids)
		}
	}
}

func TestCompileCodeFilterText(t *testing.T) {
	dir := writeProject(t, map[string]string{"App.vue": counter})
	out, _ := runCLI(t, "compile", "--code", "template", filepath.Join(dir, "App.vue"))
	if !strings.Contains(out, "--- template (html)") || strings.Contains(out, "script_ts") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestDiagShortExitCode(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"Good.vue": counter,
		"Bad.vue":  "<template><div></template>\n",
	})
	out, code := runCLI(t, "diag", "--format", "short", dir)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "TPL2001") || !strings.Contains(out, "Bad.vue") {
		t.Errorf("short output lacks the unclosed element:\n%s", out)
	}
	if strings.Contains(out, "Good.vue") {
		t.Errorf("clean file reported:\n%s", out)
	}
}

func TestInitAndCheck(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, "init", dir)
	if !strings.Contains(out, "vuecore.toml") {
		t.Fatalf("init output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "vuecore.toml")); err != nil {
		t.Fatal(err)
	}
	out, _ = runCLI(t, "init", "--check", dir)
	if !strings.Contains(out, ": ok") || !strings.Contains(out, "fingerprint:") {
		t.Errorf("check output:\n%s", out)
	}
}

func TestVersionCompilerSettings(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"vuecore.toml": "[compiler]\ntarget = 3.3\nglobalTypesPath = \"./types/vue_{target}_{strict}.d.ts\"\n",
	})
	out, _ := runCLI(t, "version", "--format", "json", "--compiler", dir)
	var rep buildReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	c := rep.Compiler
	if rep.Tool != "vuecore" || c == nil {
		t.Fatalf("report = %+v", rep)
	}
	if c.Target != "3.3" || c.Lib != "vue" || c.GlobalTypes != "./types/vue_3.3_false.d.ts" || len(c.Fingerprint) != 12 {
		t.Errorf("compiler = %+v", c)
	}
	if rep.GitCommit != "" {
		t.Errorf("build metadata without --full: %+v", rep)
	}

	out, _ = runCLI(t, "version")
	if !strings.HasPrefix(out, "vuecore ") || strings.Contains(out, "target:") {
		t.Errorf("pretty output:\n%s", out)
	}
}

func TestMapSourceToGenerated(t *testing.T) {
	dir := writeProject(t, map[string]string{"App.vue": counter})
	off := strings.Index(counter, "count")
	out, _ := runCLI(t, "map", "--source", strconv.Itoa(off), filepath.Join(dir, "App.vue"))
	if !strings.Contains(out, "-> generated") {
		t.Errorf("source offset %d did not map:\n%s", off, out)
	}
}
