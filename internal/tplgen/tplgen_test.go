package tplgen

import (
	"slices"
	"strings"
	"testing"

	"vuecore/internal/code"
	"vuecore/internal/diag"
	"vuecore/internal/mapping"
	"vuecore/internal/template"
)

func generate(t *testing.T, src string, opts Options) (*Result, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	rep := &diag.BagReporter{Bag: bag}
	opts.AST = template.Parse(src, template.Options{Reporter: rep})
	opts.Reporter = rep
	return Generate(opts), bag
}

func mustContain(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("missing %q in:\n%s", w, got)
		}
	}
}

func TestExpressionRouting(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"free", `{{ foo.bar + 1 }}`, "__VLS_ctx.foo.bar + 1"},
		{"setup binding", `{{ count * 2 }}`, "( count * 2 );"},
		{"global", `{{ Math.max(a, 1) }}`, "Math.max(__VLS_ctx.a, 1)"},
		{"shorthand", `{{ { foo } }}`, "{ foo: __VLS_ctx.foo }"},
		{"object key", `{{ { key: val } }}`, "{ key: __VLS_ctx.val }"},
		{"arrow param", `{{ list.map(x => x.id) }}`, "__VLS_ctx.list.map(x => x.id)"},
		{"member after dot", `{{ a.b.c }}`, "__VLS_ctx.a.b.c"},
		{"as tail", `{{ (v as Foo).x }}`, "(__VLS_ctx.v as Foo).x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := generate(t, tt.src, Options{SetupBindings: map[string]bool{"count": true}})
			mustContain(t, res.Codes.String(), tt.want)
		})
	}
}

func TestAccessedBindings(t *testing.T) {
	res, _ := generate(t, `<div :title="count">{{ count }} {{ other }}</div>`,
		Options{SetupBindings: map[string]bool{"count": true, "unused": true}})
	if !slices.Equal(res.AccessedBindings, []string{"count"}) {
		t.Errorf("AccessedBindings = %v", res.AccessedBindings)
	}
}

func TestIfChainNarrowing(t *testing.T) {
	src := `<div v-if="a"></div><p v-else-if="b"></p><span v-else @click="go(1)"></span>`
	res, _ := generate(t, src, Options{})
	mustContain(t, res.Codes.String(),
		"if (__VLS_ctx.a) {\n",
		"else if (__VLS_ctx.b) {\n",
		"else {\n",
		// обработчик внутри замыкания повторяет отрицания всех условий
		"onClick: (...[$event]) => {\nif (!!(__VLS_ctx.a)) return;\nif (!!(__VLS_ctx.b)) return;\n__VLS_ctx.go(1);\n}",
	)
}

func TestForLoop(t *testing.T) {
	src := `<ul><li v-for="(item, i) in items" :key="item.id">{{ item.name }} {{ i }}</li></ul>`
	res, _ := generate(t, src, Options{})
	out := res.Codes.String()
	mustContain(t, out,
		"for (const [item, i] of __VLS_getVForSourceType((__VLS_ctx.items)!)) {\n",
		"(item.id);\n",
		"( item.name );",
	)
	if strings.Contains(out, "__VLS_ctx.item") || strings.Contains(out, "__VLS_ctx.i)") {
		t.Errorf("loop aliases leaked into context:\n%s", out)
	}
}

func TestComponentProps(t *testing.T) {
	src := `<my-comp some-prop="x" :other-val="y" @update:model-value="onUp" v-model="v"></my-comp>`
	res, bag := generate(t, src, Options{CheckUnknownProps: true, CheckUnknownEvents: true})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	out := res.Codes.String()
	mustContain(t, out,
		"const __VLS_0 = __VLS_asFunctionalComponent(__VLS_components.MyComp);\n",
		"const __VLS_1 = __VLS_0({ someProp: 'x', otherVal: (__VLS_ctx.y), ",
		"'onUpdate:modelValue': (__VLS_ctx.onUp), ",
		"modelValue: (__VLS_ctx.v), 'onUpdate:modelValue': (...[$event]) => {\n__VLS_ctx.v = $event;\n}, ",
		"}, ...__VLS_functionalComponentArgsRest(__VLS_0));\n",
		"__VLS_components.MyComp;\n",
	)
	if strings.Contains(out, "Record<string, unknown>") {
		t.Errorf("strict mode must not widen props")
	}
	if !slices.Equal(res.Components, []string{"my-comp"}) {
		t.Errorf("Components = %v", res.Components)
	}

	var key *code.Segment
	for _, s := range res.Codes.Segments() {
		if s.Text == "someProp" {
			key = &s
			break
		}
	}
	if key == nil || key.Source != "some-prop" || key.Caps.NewName != code.HookCamelize {
		t.Errorf("prop key segment = %+v", key)
	}
}

func TestLooseComponentProps(t *testing.T) {
	res, _ := generate(t, `<Foo />`, Options{SetupBindings: map[string]bool{"Foo": true}})
	mustContain(t, res.Codes.String(),
		"__VLS_asFunctionalComponent(Foo)",
		"...{} as Record<string, unknown>, ",
	)
	if !slices.Contains(res.AccessedBindings, "Foo") {
		t.Errorf("component binding not recorded: %v", res.AccessedBindings)
	}
}

func TestNativeElement(t *testing.T) {
	src := `<input type="checkbox" v-model="ok" data-x="1" disabled>`
	res, _ := generate(t, src, Options{DataAttributes: []string{"data-*"}})
	mustContain(t, res.Codes.String(),
		"__VLS_elementAsFunction(__VLS_intrinsicElements.input)({ type: 'checkbox', checked: (__VLS_ctx.ok), 'data-x': '1', disabled: true, })",
	)
	for _, s := range res.Codes.Segments() {
		if s.Kind == code.KindMapped && s.Text == "data-x" && s.Caps.Verifies() {
			t.Errorf("data attribute must not be verified")
		}
	}
}

func TestCustomDirective(t *testing.T) {
	res, _ := generate(t, `<div v-focus:arg.once="val"></div>`, Options{SetupBindings: map[string]bool{"vFocus": true}})
	mustContain(t, res.Codes.String(),
		"__VLS_directiveAsFunction(vFocus)(null!, { ...__VLS_directiveBindingRestFields, value: (__VLS_ctx.val), arg: 'arg', modifiers: { 'once': true, }, }, null!, null!);\n",
	)
}

func TestSlots(t *testing.T) {
	src := `<Comp><template #header="{ title }">{{ title }}</template></Comp><slot name="foot" :n="1"></slot>`
	res, bag := generate(t, src, Options{})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	mustContain(t, res.Codes.String(),
		"const { header: __VLS_thisSlot } = __VLS_componentCtx(__VLS_1).slots!;\n",
		"const [{ title }] = __VLS_getSlotParams(__VLS_thisSlot);\n",
		"( title );",
		"var __VLS_2 = { n: (1), };\n",
		"__VLS_normalizeSlot(__VLS_slots['foot'])?.(__VLS_2);\n",
	)
	if got := res.SlotsType.String(); got != "{} & { 'foot'?: (props: typeof __VLS_2) => any }" {
		t.Errorf("SlotsType = %q", got)
	}

	// имя слота связано merge-токеном и закрывается при сборке
	segs := append(slices.Clone(res.Codes.Segments()), res.SlotsType.Segments()...)
	art, err := mapping.Build("t.ts", "typescript", segs, func(string) (int, bool) { return 0, true })
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	merged := 0
	for _, m := range art.Mappings {
		if len(m.SourceOffsets) == 2 {
			merged++
		}
	}
	if merged != 1 {
		t.Errorf("merged mappings = %d, want 1", merged)
	}
}

func TestImplicitDefaultSlot(t *testing.T) {
	res, _ := generate(t, `<Comp v-slot="{ x }">{{ x }}</Comp><Other>text</Other>`, Options{})
	out := res.Codes.String()
	mustContain(t, out,
		"const { default: __VLS_thisSlot } = __VLS_componentCtx(__VLS_1).slots!;\nconst [{ x }]",
		"const { default: __VLS_thisSlot } = __VLS_componentCtx(__VLS_3).slots!;\n}",
	)
}

func TestMisplacedSlot(t *testing.T) {
	_, bag := generate(t, `<div v-slot="x"></div><template #a></template>`, Options{})
	items := bag.Items()
	if len(items) != 2 || items[0].Code != diag.TplMisplacedVSlot || items[1].Code != diag.TplMisplacedVSlot {
		t.Errorf("diagnostics = %v", items)
	}
}

func TestRefsAndClasses(t *testing.T) {
	toks := &code.Tokens{}
	tok := toks.New()
	src := `<div ref="box" class="a  b" style="color: red"></div><span ref="box"></span>`
	res, _ := generate(t, src, Options{Tokens: toks, RefTokens: map[string]code.Token{"box": tok}, ScopedClasses: true})
	if got := res.RefsType.String(); got != "{\n'box': typeof __VLS_0,\n}" {
		t.Errorf("RefsType = %q", got)
	}
	if !slices.Equal(res.LinkedRefs, []string{"box"}) {
		t.Errorf("LinkedRefs = %v", res.LinkedRefs)
	}
	want := []ClassRef{{"a", 22}, {"b", 25}}
	if !slices.Equal(res.Classes, want) {
		t.Errorf("Classes = %v, want %v", res.Classes, want)
	}
	mustContain(t, res.Codes.String(), "__VLS_styleScopedClasses['a'];\n", "__VLS_styleScopedClasses['b'];\n")
	if got := res.InlineCSS.String(); got != "x { color: red }\n" {
		t.Errorf("InlineCSS = %q", got)
	}
}

func TestDirectiveComments(t *testing.T) {
	src := "<!-- @vue-expect-error -->\n<div>{{ missing }}</div>\n<!-- @vue-ignore -->\n<p>{{ other }}</p>\n<!-- @vue-skip -->\n<b>{{ gone }}</b>\n<!-- @vue-bogus -->"
	res, bag := generate(t, src, Options{})
	out := res.Codes.String()
	mustContain(t, out, "// @ts-expect-error __VLS_TS_EXPECT_ERROR\n")
	if strings.Contains(out, "gone") {
		t.Errorf("@vue-skip did not skip:\n%s", out)
	}
	if res.ExpectErrorGroups != 1 {
		t.Errorf("ExpectErrorGroups = %d", res.ExpectErrorGroups)
	}
	for _, s := range res.Codes.Segments() {
		switch s.Text {
		case "missing":
			if s.Caps.ExpectError != 1 {
				t.Errorf("missing: caps %v", s.Caps)
			}
		case "other":
			if !s.Caps.Suppress {
				t.Errorf("other: caps %v", s.Caps)
			}
		}
	}
	if items := bag.Items(); len(items) != 1 || items[0].Code != diag.GenUnknownDirectiveComment {
		t.Errorf("diagnostics = %v", items)
	}
}

func TestGenericComment(t *testing.T) {
	res, _ := generate(t, "<!-- @vue-generic {string} -->\n<List :items=\"xs\" />", Options{})
	mustContain(t, res.Codes.String(), "const __VLS_1 = __VLS_0<string>(")
}

func TestRootVar(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`<!-- c --><div></div>`, "__VLS_0"},
		{`<div></div><p></p>`, ""},
		{`<Transition><section></section></Transition>`, "__VLS_2"},
		{`text`, ""},
	}
	for _, tt := range tests {
		res, _ := generate(t, tt.src, Options{FallthroughNames: []string{"transition"}})
		if res.RootVar != tt.want {
			t.Errorf("%s: RootVar = %q, want %q", tt.src, res.RootVar, tt.want)
		}
	}
}
