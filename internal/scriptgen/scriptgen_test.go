package scriptgen

import (
	"slices"
	"strings"
	"testing"

	"vuecore/internal/code"
	"vuecore/internal/diag"
	"vuecore/internal/mapping"
	"vuecore/internal/scriptranges"
	"vuecore/internal/sfc"
	"vuecore/internal/template"
	"vuecore/internal/testkit"
	"vuecore/internal/tplgen"
)

type compiled struct {
	desc *sfc.Descriptor
	res  *Result
	art  *mapping.Artifact
}

// compile runs the whole pipeline for one component and builds the mappings.
func compile(t *testing.T, src string, mod func(*Options)) compiled {
	t.Helper()
	desc := sfc.Parse(src, sfc.ParseOptions{})
	bag := diag.NewBag(0)
	rep := &diag.BagReporter{Bag: bag}
	opts := Options{Desc: desc, Tokens: &code.Tokens{}, Globals: GlobalOptions{Target: 3.5}}
	if b := desc.Script; b != nil {
		opts.Script = scriptranges.ParseScript(b.Content, scriptranges.Options{Reporter: rep})
	}
	if b := desc.ScriptSetup; b != nil {
		opts.Setup = scriptranges.ParseSetup(b.Content, scriptranges.Options{Reporter: rep})
	}
	opts.RefTokens = RefTokens(opts.Setup, opts.Tokens)
	if b := desc.Template; b != nil {
		scoped := false
		for _, st := range desc.Styles {
			scoped = scoped || st.Scoped
		}
		opts.Template = tplgen.Generate(tplgen.Options{
			AST:           template.Parse(b.Content, template.Options{Reporter: rep}),
			SetupBindings: SetupBindings(opts.Script, opts.Setup),
			Tokens:        opts.Tokens,
			RefTokens:     opts.RefTokens,
			ScopedClasses: scoped,
			Reporter:      rep,
		})
	}
	if mod != nil {
		mod(&opts)
	}
	res, err := Generate(opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	art, err := mapping.Build("script_ts", "typescript", res.Codes.Segments(), mapping.Offsets(desc.BlockStarts()))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := testkit.CheckInvariants(art, res.Codes.Segments(), mapping.Offsets(desc.BlockStarts()), src); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	return compiled{desc: desc, res: res, art: art}
}

func mustContain(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("missing %q in:\n%s", w, got)
		}
	}
}

// genAt finds needle in the generated text and returns the offset of its
// part starting at skip.
func genAt(t *testing.T, text, needle string, skip int) int {
	t.Helper()
	i := strings.Index(text, needle)
	if i < 0 {
		t.Fatalf("%q not generated", needle)
	}
	return i + skip
}

const setupSFC = `<script setup lang="ts">
import { ref } from 'vue'
const props = withDefaults(defineProps<{ msg?: string }>(), { msg: 'hi' })
const emit = defineEmits<{ go: [] }>()
const count = ref(0)
const box = useTemplateRef('box')
const model = defineModel<string>()
</script>

<template>
  <div ref="box" @click="count++">{{ count }} {{ msg }}</div>
</template>
`

func TestSetupMacros(t *testing.T) {
	c := compile(t, setupSFC, nil)
	out := c.art.Text
	mustContain(t, out,
		"import { ref } from 'vue'\nconst __VLS_setup = async () => {\n",
		"const __VLS_defaults = { msg: 'hi' };\nconst __VLS_props = withDefaults(defineProps<{ msg?: string }>(), __VLS_defaults);\nconst props = __VLS_props\n",
		"const __VLS_emit = defineEmits<{ go: [] }>();\nconst emit = __VLS_emit\n",
		"const __VLS_model_0 = defineModel<string>();\nconst model = __VLS_model_0\n",
		"type __VLS_ModelProps = {\n'modelValue'?: typeof __VLS_model_0['value'],\n};\n",
		"type __VLS_ModelEmits = {\n'update:modelValue': [value: typeof __VLS_model_0['value']],\n};\n",
		"...{} as typeof __VLS_props,\n...{} as __VLS_ModelProps,\n$emit: __VLS_emit,\n",
		"count: count as typeof count,\n",
		"props: {} as __VLS_WithDefaults<__VLS_TypePropsToOption<__VLS_SpreadMerge<typeof __VLS_props, __VLS_ModelProps>>, typeof __VLS_defaults>,\n",
		"emits: {} as __VLS_SpreadMerge<__VLS_NormalizeEmits<typeof __VLS_emit>, __VLS_ModelEmits>,\n",
		"( __VLS_ctx.msg );",
		"export default {} as Awaited<ReturnType<typeof __VLS_setup>>;\n",
	)
	if !slices.Equal(c.res.Returns, []string{"count"}) {
		t.Errorf("Returns = %v", c.res.Returns)
	}
}

func TestHelpersOrderedOnce(t *testing.T) {
	c := compile(t, setupSFC, nil)
	want := []string{
		"__VLS_NonUndefinedable", "__VLS_Prettify", "__VLS_SpreadMerge", "__VLS_UnionToIntersection",
		"__VLS_NormalizeEmits", "__VLS_TypePropsToOption", "__VLS_WithDefaults",
	}
	if !slices.Equal(c.res.Helpers, want) {
		t.Fatalf("Helpers = %v", c.res.Helpers)
	}
	for _, name := range want {
		if n := strings.Count(c.art.Text, "type "+name+"<"); n != 1 {
			t.Errorf("%s declared %d times", name, n)
		}
	}
	// каждый хелпер объявлен после своих зависимостей
	if strings.Index(c.art.Text, "type __VLS_Prettify<") > strings.Index(c.art.Text, "type __VLS_WithDefaults<") {
		t.Errorf("dependency emitted after dependent")
	}
}

func TestRoundTripToSource(t *testing.T) {
	c := compile(t, setupSFC, nil)
	m := mapping.NewMapper(c.art)
	tests := []struct {
		name     string
		gen      int
		srcToken string
	}{
		{"template ctx access", genAt(t, c.art.Text, "__VLS_ctx.msg", len("__VLS_ctx.")), "msg }}"},
		{"passthrough", genAt(t, c.art.Text, "const count = ref(0)", len("const ")), "count = ref"},
		{"hoisted macro", genAt(t, c.art.Text, "defineEmits<", 0), "defineEmits<"},
	}
	for _, tt := range tests {
		src, _, ok := m.ToSource(tt.gen, nil)
		if !ok {
			t.Errorf("%s: no source for %d", tt.name, tt.gen)
			continue
		}
		if want := strings.Index(setupSFC, tt.srcToken); src != want {
			t.Errorf("%s: source %d, want %d", tt.name, src, want)
		}
	}
}

func TestLinkedMirrors(t *testing.T) {
	c := compile(t, setupSFC, nil)
	if len(c.art.LinkedMappings) != 2 {
		t.Fatalf("linked mappings = %d, want 2", len(c.art.LinkedMappings))
	}
	m := mapping.NewMapper(c.art)

	key := genAt(t, c.art.Text, "count: count as typeof count", 0)
	mirror := genAt(t, c.art.Text, "count: count as typeof count", len("count: count as typeof "))
	if got := m.LinkedOf(key); !slices.Contains(got, mirror) {
		t.Errorf("LinkedOf(return key) = %v, want %d", got, mirror)
	}

	ref := genAt(t, c.art.Text, "useTemplateRef('box')", len("useTemplateRef('"))
	refKey := genAt(t, c.art.Text, "'box': typeof", 1)
	if got := m.LinkedOf(ref); !slices.Contains(got, refKey) {
		t.Errorf("LinkedOf(useTemplateRef arg) = %v, want %d", got, refKey)
	}
}

func TestPlainScript(t *testing.T) {
	src := `<script lang="ts">
import Foo from './Foo.vue'
export default {
  components: { Foo },
  data() { return { n: 1 } },
}
</script>
<template><Foo :n="n" /></template>
`
	c := compile(t, src, nil)
	mustContain(t, c.art.Text,
		"const __VLS_internalComponent = (await import('vue')).defineComponent({\n  components: { Foo },",
		"const __VLS_componentsOption = { Foo };\n",
		"...{} as InstanceType<__VLS_PickNotAny<typeof __VLS_internalComponent, new () => {}>>,\n",
		"__VLS_asFunctionalComponent(Foo)",
		"n: (__VLS_ctx.n)",
		"export default __VLS_internalComponent;\n",
		"type __VLS_LocalComponents = typeof __VLS_componentsOption;\n",
		"type __VLS_LocalDirectives = {};\n",
	)
	if len(c.res.Returns) != 0 || len(c.res.Helpers) != 0 {
		t.Errorf("Returns = %v, Helpers = %v", c.res.Returns, c.res.Helpers)
	}
}

func TestGenericAndBareMacro(t *testing.T) {
	src := "<script setup lang=\"ts\" generic=\"T extends string\">\ndefineProps<{ v: T }>()\ndefineSlots<{ default(): any }>()\n</script>\n<template><slot /></template>"
	c := compile(t, src, nil)
	mustContain(t, c.art.Text,
		"const __VLS_setup = async <T extends string>() => {\n",
		"const __VLS_props = defineProps<{ v: T }>();\n",
		"const __VLS_slots = defineSlots<{ default(): any }>();\n",
	)
	if strings.Contains(c.art.Text, "let __VLS_slots!") {
		t.Errorf("defineSlots must replace the template slots variable")
	}
	m := mapping.NewMapper(c.art)
	gen := genAt(t, c.art.Text, "<T extends", 1)
	if src, _, ok := m.ToSource(gen, nil); !ok || src != strings.Index(c.desc.Source, "T extends") {
		t.Errorf("generic maps to %d,%v", src, ok)
	}
}

func TestDefinedSlotsKeepOutletNames(t *testing.T) {
	src := "<script setup lang=\"ts\">\nconst slots = defineSlots<{ a(): any }>()\n</script>\n<template><slot name=\"a\"></slot><slot></slot></template>"
	// compile сам проверяет, что все merge-токены закрыты
	c := compile(t, src, nil)
	mustContain(t, c.art.Text,
		"const __VLS_slots = defineSlots<{ a(): any }>();\n",
		"type __VLS_TemplateSlots = {} & { 'a'?: (props: typeof ",
	)
	if strings.Contains(c.art.Text, "let __VLS_slots!") {
		t.Errorf("defineSlots must replace the template slots variable")
	}
	name := strings.Index(src, `name="a"`) + len(`name="`)
	if got := mapping.NewMapper(c.art).ToGenerated(name, nil); len(got) != 2 {
		t.Errorf("slot name maps to %v, want the outlet and the slots type", got)
	}
}

func TestScopedAndModuleStyles(t *testing.T) {
	src := `<template><div class="a c" :class="$style.x"></div></template>
<style scoped>
.a { color: red } .b:hover { margin: 1.5em }
</style>
<style module>
.x { background: url(img.png) }
</style>`
	c := compile(t, src, nil)
	mustContain(t, c.art.Text,
		"type __VLS_StyleScopedClasses = {}\n & { 'a'?: boolean }\n & { 'b'?: boolean };\n",
		"let __VLS_styleScopedClasses!: __VLS_StyleScopedClasses;\n",
		"__VLS_styleScopedClasses['c'];\n",
		"'$style': {} as Record<string, string> & {\n'x': string,\n},\n",
	)
}

func TestGlobalTypesPlacement(t *testing.T) {
	src := "<template><div /></template>"
	holder := compile(t, src, func(o *Options) { o.GlobalTypesHolder = true })
	mustContain(t, holder.art.Text, "declare global {", "function __VLS_getVForSourceType")

	other := compile(t, src, nil)
	if strings.Contains(other.art.Text, "declare global") {
		t.Errorf("non-holder inlined globals")
	}

	ref := compile(t, src, func(o *Options) {
		o.GlobalTypesHolder = true
		o.GlobalTypesPath = "./node_modules/.vue-global-types/vue_3.5_true.d.ts"
	})
	if !strings.HasPrefix(ref.art.Text, `/// <reference types="./node_modules/.vue-global-types/vue_3.5_true.d.ts" />`) {
		t.Errorf("missing reference directive:\n%s", ref.art.Text)
	}
	if strings.Contains(ref.art.Text, "declare global") {
		t.Errorf("globals must not be inlined when a path is referenced")
	}
}

func TestGlobalTypesOptions(t *testing.T) {
	loose := GlobalTypes(GlobalOptions{Lib: "vue", Target: 3.2})
	mustContain(t, loose,
		"type __VLS_IntrinsicElements = globalThis.JSX.IntrinsicElements;",
		"type __VLS_GlobalComponents = import('vue').GlobalComponents & Record<string, any>;",
		"type __VLS_GlobalDirectives = {} & Record<string, any>;",
	)
	strict := GlobalTypes(GlobalOptions{Lib: "@vue/runtime-dom", Target: 3.5, Strict: true, CheckUnknownComponents: true, CheckUnknownDirectives: true})
	mustContain(t, strict,
		"type __VLS_IntrinsicElements = import('@vue/runtime-dom/jsx-runtime').JSX.IntrinsicElements;",
		"type __VLS_GlobalComponents = import('@vue/runtime-dom').GlobalComponents;",
		"type __VLS_unknownDirective = never;",
	)
}

func TestCSSClasses(t *testing.T) {
	css := "/* .skip */ .a, .b-c > .a { x: '.q'; y: 1.5em } @media (x) { .d\\:e {} } a.b {}"
	var names []string
	for _, c := range cssClasses(css) {
		names = append(names, c.Name)
		if css[c.Offset:c.Offset+len(c.Name)] != c.Name {
			t.Errorf("offset of %s = %d", c.Name, c.Offset)
		}
	}
	if want := []string{"a", "b-c", "d\\:e"}; !slices.Equal(names, want) {
		t.Errorf("classes = %v, want %v", names, want)
	}
}

func TestForLoopTuple(t *testing.T) {
	src := "<script setup lang=\"ts\">\nconst list: number[] = [1, 2]\n</script>\n<template><ul><li v-for=\"(item, index) in list\">{{ item }} {{ index }}</li></ul></template>"
	c := compile(t, src, func(o *Options) { o.GlobalTypesHolder = true })
	mustContain(t, c.art.Text,
		"for (const [item, index] of __VLS_getVForSourceType((list)!)) {\n",
		// третий элемент кортежа нужен для (value, key, index)
		"function __VLS_getVForSourceType<T extends number>(source: T): [number, number, number][];",
		"function __VLS_getVForSourceType<T extends string>(source: T): [string, number, number][];",
		"function __VLS_getVForSourceType<T extends any[]>(source: T): [T[number], number, number][];",
		"Iterator<infer V> } ? V : never, number, number][];",
		"function __VLS_getVForSourceType<T>(source: T): [T[keyof T], keyof T, number][];",
	)
	m := mapping.NewMapper(c.art)
	gen := genAt(t, c.art.Text, "((list)!)", 2)
	if src2, _, ok := m.ToSource(gen, nil); !ok || src2 != strings.Index(src, "list\">") {
		t.Errorf("loop source maps to %d,%v", src2, ok)
	}
}
