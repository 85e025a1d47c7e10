package sfc

import (
	"strings"
	"testing"

	"vuecore/internal/diag"
	"vuecore/internal/source"
)

const counter = `<script setup lang="ts" generic="T extends string">
import { ref } from 'vue'
const count = ref(0)
</script>

<template>
  <template v-if="count"><span>{{ count }}</span></template>
  <button @click="count++">+</button>
</template>

<style scoped>
.a { color: red }
</style>
<style module="classes">.b {}</style>
<i18n lang="json">{}</i18n>
`

func TestParseBlocks(t *testing.T) {
	d := Parse(counter, ParseOptions{})
	if len(d.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", d.Errors)
	}
	keys := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		keys = append(keys, b.Key)
	}
	if got := strings.Join(keys, ","); got != "scriptSetup,template,style_0,style_1,customBlock_0" {
		t.Fatalf("keys = %s", got)
	}
	for _, b := range d.Blocks {
		if counter[b.Start:b.End] != b.Content {
			t.Errorf("%s content does not match its range", b.Key)
		}
	}
	setup := d.ScriptSetup
	if !setup.Setup || setup.Lang != "ts" || setup.Generic != "T extends string" {
		t.Errorf("script setup attrs: %+v", setup)
	}
	if counter[setup.GenericOffset:setup.GenericOffset+len(setup.Generic)] != setup.Generic {
		t.Errorf("generic offset %d is wrong", setup.GenericOffset)
	}
	if !strings.Contains(d.Template.Content, "</span></template>\n  <button") {
		t.Errorf("nested template must stay inside the template block: %q", d.Template.Content)
	}
	if !d.Styles[0].Scoped || d.Styles[1].Module != "classes" {
		t.Errorf("style attrs: %+v %+v", d.Styles[0], d.Styles[1])
	}
	if d.CustomBlocks[0].Type != "i18n" || d.CustomBlocks[0].Lang != "json" {
		t.Errorf("custom block: %+v", d.CustomBlocks[0])
	}
	if d.ScriptLang() != "ts" {
		t.Errorf("ScriptLang = %q", d.ScriptLang())
	}
}

func TestDuplicatesFirstWins(t *testing.T) {
	src := "<script>export default {}</script>\n<script>const b = 1</script>\n" +
		"<script setup>const a = 1</script><script setup>const c = 1</script>"
	d := Parse(src, ParseOptions{})
	if d.Script.Content != "export default {}" || d.ScriptSetup.Content != "const a = 1" {
		t.Fatalf("first blocks must win: %q %q", d.Script.Content, d.ScriptSetup.Content)
	}
	if len(d.Blocks) != 2 {
		t.Errorf("duplicates must not be listed: %d blocks", len(d.Blocks))
	}
	dups := 0
	for _, e := range d.Errors {
		if e.Code == diag.SfcDuplicateBlock {
			dups++
		}
	}
	if dups != 2 {
		t.Errorf("expected 2 duplicate warnings, got %d", dups)
	}
}

func TestUnterminatedBlockExtendsToEOF(t *testing.T) {
	src := "<template><div></div>\n<script setup>\nconst x = 1"
	d := Parse(src, ParseOptions{})
	if d.Template == nil || d.Template.End != len(src) || d.Template.Closed {
		t.Fatalf("template = %+v", d.Template)
	}
	if len(d.Errors) != 1 || d.Errors[0].Code != diag.SfcUnclosedBlock {
		t.Fatalf("errors = %+v", d.Errors)
	}
	if d.ScriptSetup != nil {
		t.Errorf("script inside an unterminated template is template content")
	}
}

func TestUnterminatedStartTag(t *testing.T) {
	d := Parse(`<script setup lang="ts"`, ParseOptions{})
	if len(d.Blocks) != 0 || len(d.Errors) != 1 || d.Errors[0].Code != diag.SfcUnclosedStartTag {
		t.Fatalf("blocks=%d errors=%+v", len(d.Blocks), d.Errors)
	}
}

func TestCommentsAndSelfClosing(t *testing.T) {
	src := "<!-- <template>nope</template> -->\n<style src=\"./a.css\" />\n<template><p/></template>"
	d := Parse(src, ParseOptions{})
	if d.Template == nil || d.Template.Content != "<p/>" {
		t.Fatalf("template = %+v", d.Template)
	}
	if len(d.Styles) != 1 || d.Styles[0].Src != "./a.css" || d.Styles[0].Content != "" {
		t.Fatalf("styles = %+v", d.Styles)
	}
}

func TestImplicitTemplateMarkdown(t *testing.T) {
	src := "# Title {{ title }}\n\n```vue\n<script setup>fake</script>\n```\n\nInline `<b>{{ no }}</b>` text\n\n<script setup>\nconst title = 'x'\n</script>\n"
	d := Parse(src, ParseOptions{Kind: source.KindMarkdown})
	if d.Template == nil || d.ScriptSetup == nil {
		t.Fatalf("template=%v setup=%v", d.Template, d.ScriptSetup)
	}
	if strings.TrimSpace(d.ScriptSetup.Content) != "const title = 'x'" {
		t.Errorf("setup content = %q", d.ScriptSetup.Content)
	}
	tpl := d.Template.Content
	if len(tpl) != len(src) {
		t.Fatalf("implicit template must keep offsets")
	}
	if !strings.Contains(tpl, "{{ title }}") {
		t.Errorf("markdown text lost: %q", tpl)
	}
	for _, gone := range []string{"fake", "{{ no }}", "const title"} {
		if strings.Contains(tpl, gone) {
			t.Errorf("%q must be blanked in %q", gone, tpl)
		}
	}
	if strings.Count(tpl, "\n") != strings.Count(src, "\n") {
		t.Errorf("newlines must survive blanking")
	}
}

func TestUpdateIncremental(t *testing.T) {
	d := Parse(counter, ParseOptions{})
	at := strings.Index(counter, "ref(0)") + 4
	next, incremental := Update(d, source.Change{Start: at, End: at + 1, NewText: "10"}, ParseOptions{})
	if !incremental {
		t.Fatalf("edit inside script content must be incremental")
	}
	full := Parse(next.Source, ParseOptions{})
	if len(full.Blocks) != len(next.Blocks) {
		t.Fatalf("block count differs")
	}
	for i := range full.Blocks {
		a, b := full.Blocks[i], next.Blocks[i]
		if a.Key != b.Key || a.Start != b.Start || a.End != b.End || a.Content != b.Content || a.TagEnd != b.TagEnd {
			t.Errorf("block %s: incremental %+v vs full %+v", a.Key, b, a)
		}
	}
	// блоки до правки переиспользуются как есть
	if next.Template.Content != d.Template.Content {
		t.Errorf("untouched template content changed")
	}
	if next.Styles[1].Attrs[0].NameStart != d.Styles[1].Attrs[0].NameStart+1 {
		t.Errorf("attrs of later blocks must shift")
	}
}

func TestUpdateCommentHidesCloseTag(t *testing.T) {
	src := "<template><!- </template> --></template>"
	d := Parse(src, ParseOptions{})
	if d.Template == nil || d.Template.Content != "<!- " {
		t.Fatalf("template = %+v", d.Template)
	}
	// "<!-" становится "<!--", и первый </template> уходит в комментарий
	at := strings.Index(src, "<!-") + len("<!-")
	next, incremental := Update(d, source.Change{Start: at, End: at, NewText: "-"}, ParseOptions{})
	if incremental {
		t.Errorf("expected full reparse")
	}
	if next.Template == nil || next.Template.Content != "<!-- </template> -->" {
		t.Fatalf("template = %+v", next.Template)
	}
	if want := Parse(next.Source, ParseOptions{}); next.Template.End != want.Template.End {
		t.Errorf("template end %d, want %d", next.Template.End, want.Template.End)
	}
}

func TestUpdateFallsBack(t *testing.T) {
	d := Parse(counter, ParseOptions{})
	tests := []struct {
		name   string
		change func() source.Change
	}{
		{"template tag edit", func() source.Change {
			at := strings.Index(counter, "<span>")
			return source.Change{Start: at, End: at + 1, NewText: "<"}
		}},
		{"closing script typed", func() source.Change {
			at := strings.Index(counter, "const count")
			return source.Change{Start: at, End: at, NewText: "</scr"}
		}},
		{"crosses tag", func() source.Change {
			at := strings.Index(counter, "</script>")
			return source.Change{Start: at - 2, End: at + 3}
		}},
		{"outside blocks", func() source.Change {
			at := strings.Index(counter, "\n\n<template>")
			return source.Change{Start: at, End: at, NewText: "\n"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, incremental := Update(d, tt.change(), ParseOptions{}); incremental {
				t.Errorf("expected full reparse")
			}
		})
	}
}
