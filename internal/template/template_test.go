package template

import (
	"strings"
	"testing"

	"vuecore/internal/diag"
)

func parse(t *testing.T, src string) (*AST, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	return Parse(src, Options{Reporter: &diag.BagReporter{Bag: bag}}), bag
}

func kinds(a *AST, ids []NodeID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, a.Node(id).Kind.String())
	}
	return strings.Join(parts, ",")
}

func TestParseElementsAndText(t *testing.T) {
	a, bag := parse(t, `<div class="a"><span>{{ msg }}</span><br><MyComp/></div>`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	root := a.Node(a.Root)
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d", len(root.Children))
	}
	div := a.Node(root.Children[0])
	if div.Tag != "div" || kinds(a, div.Children) != "element,element,element" {
		t.Fatalf("div = %q children %s", div.Tag, kinds(a, div.Children))
	}
	span := a.Node(div.Children[0])
	interp := a.Node(span.Children[0])
	if interp.Kind != KindInterpolation || interp.Content != " msg " {
		t.Errorf("interpolation = %+v", interp)
	}
	if got := a.Source[interp.ContentLoc.Start:interp.ContentLoc.End]; got != " msg " {
		t.Errorf("content loc points at %q", got)
	}
	if comp := a.Node(div.Children[2]); comp.TagType != TagComponent || !comp.SelfClosing {
		t.Errorf("MyComp = %+v", comp)
	}
	if cls, ok := div.Attribute("class"); !ok || cls.Value != "a" {
		t.Errorf("class attribute missing")
	}
}

func TestDirectiveDecomposition(t *testing.T) {
	tests := []struct {
		raw       string
		name, arg string
		static    bool
		mods      string
	}{
		{`:foo="x"`, "bind", "foo", true, ""},
		{`.value="x"`, "bind", "value", true, "prop"},
		{`@click.stop.prevent="go()"`, "on", "click", true, "stop,prevent"},
		{`#default="{ item }"`, "slot", "default", true, ""},
		{`v-model.trim="text"`, "model", "", true, "trim"},
		{`v-bind:[key]="v"`, "bind", "key", false, ""},
		{`v-on:[ evt ]="h"`, "on", " evt ", false, ""},
		{`v-focus`, "focus", "", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a, _ := parse(t, "<input "+tt.raw+">")
			el := a.Node(a.Node(a.Root).Children[0])
			if len(el.Props) != 1 {
				t.Fatalf("props = %d", len(el.Props))
			}
			p := el.Props[0]
			if p.Kind != PropDirective || p.Name != tt.name || p.Arg != tt.arg || p.ArgStatic != tt.static {
				t.Fatalf("got %+v", p)
			}
			if got := strings.Join(p.Modifiers, ","); got != tt.mods {
				t.Errorf("modifiers = %q, want %q", got, tt.mods)
			}
			if p.Arg != "" && a.Source[p.ArgLoc.Start:p.ArgLoc.End] != p.Arg {
				t.Errorf("arg loc = %v", p.ArgLoc)
			}
		})
	}
}

func TestIfChainLifting(t *testing.T) {
	src := `<p v-if="a">1</p>
<!-- note -->
<p v-else-if="b">2</p>
<p v-else>3</p>
<span/>`
	a, bag := parse(t, src)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	root := a.Node(a.Root)
	if got := kinds(a, root.Children); got != "if,text,element" {
		t.Fatalf("root children = %s", got)
	}
	ifn := a.Node(root.Children[0])
	if len(ifn.Children) != 3 {
		t.Fatalf("branches = %d", len(ifn.Children))
	}
	conds := []string{}
	for _, b := range ifn.Children {
		bn := a.Node(b)
		if bn.Cond == nil {
			conds = append(conds, "<else>")
		} else {
			conds = append(conds, bn.Cond.Value)
		}
	}
	if got := strings.Join(conds, "|"); got != "a|b|<else>" {
		t.Errorf("conditions = %s", got)
	}
	// комментарий уезжает внутрь следующей ветки
	second := a.Node(ifn.Children[1])
	if kinds(a, second.Children) != "comment,element" {
		t.Errorf("second branch = %s", kinds(a, second.Children))
	}
	el := a.Node(second.Children[1])
	if _, ok := el.Directive("else-if"); ok {
		t.Errorf("v-else-if must be removed from the element")
	}
}

func TestElseWithoutIf(t *testing.T) {
	a, bag := parse(t, `<div v-else>x</div>`)
	if bag.Len() != 1 || bag.Items()[0].Code != diag.TplElseWithoutIf {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	if a.Node(a.Node(a.Root).Children[0]).Kind != KindElement {
		t.Errorf("element should stay in place")
	}
}

func TestForLifting(t *testing.T) {
	src := `<li v-for="(item, i) in items" :key="item.id">{{ item }}</li>`
	a, bag := parse(t, src)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	f := a.Node(a.Node(a.Root).Children[0])
	if f.Kind != KindFor || f.For == nil {
		t.Fatalf("expected for node, got %s", f.Kind)
	}
	if f.For.Value.Text != "item" || f.For.Key.Text != "i" || f.For.Source.Text != "items" {
		t.Fatalf("for parse = %+v", f.For)
	}
	for _, e := range []Expr{f.For.Value, f.For.Key, f.For.Source, f.For.Aliases} {
		if got := src[e.Loc.Start:e.Loc.End]; got != e.Text {
			t.Errorf("loc of %q points at %q", e.Text, got)
		}
	}
	if li := a.Node(f.Children[0]); li.Tag != "li" || li.Parent != a.Node(a.Root).Children[0] {
		t.Errorf("li not wrapped: %+v", li)
	}
}

func TestParseVFor(t *testing.T) {
	tests := []struct {
		exp                      string
		value, key, index, src   string
		ok                       bool
	}{
		{"item in items", "item", "", "", "items", true},
		{"item of list.filter(x => x)", "item", "", "", "list.filter(x => x)", true},
		{"({ id, name }, idx) in rows", "{ id, name }", "idx", "", "rows", true},
		{"(v, k, i) in obj", "v", "k", "i", "obj", true},
		{"n in 10", "n", "", "", "10", true},
		{"items", "", "", "", "items", false},
		{"x in ", "x", "", "", "", false},
	}
	for _, tt := range tests {
		fp, ok := ParseVFor(tt.exp, 100)
		if ok != tt.ok {
			t.Errorf("%q: ok = %v", tt.exp, ok)
			continue
		}
		if fp.Value.Text != tt.value || fp.Key.Text != tt.key || fp.Index.Text != tt.index || fp.Source.Text != tt.src {
			t.Errorf("%q: got %+v", tt.exp, fp)
		}
		if fp.Source.Text != "" && tt.exp[fp.Source.Loc.Start-100:fp.Source.Loc.End-100] != fp.Source.Text {
			t.Errorf("%q: source loc %v", tt.exp, fp.Source.Loc)
		}
	}
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unclosed element", `<div><span>x</div>`, diag.TplUnclosedElement},
		{"stray end tag", `<div></p></div>`, diag.TplStrayEndTag},
		{"unclosed interpolation", `<p>{{ a </p>`, diag.TplUnclosedInterpolation},
		{"unclosed comment", `<!-- x`, diag.TplUnclosedComment},
		{"invalid v-for", `<p v-for="items"></p>`, diag.TplInvalidVFor},
		{"missing v-if expression", `<p v-if></p>`, diag.TplMissingExpression},
		{"unclosed start tag", `<div <span></span>`, diag.TplUnclosedStartTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := parse(t, tt.src)
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s, got %v", tt.code.ID(), bag.Items())
			}
		})
	}
}

func TestRawTextElements(t *testing.T) {
	a, _ := parse(t, `<textarea>{{ not }} <b></textarea><p/>`)
	root := a.Node(a.Root)
	if kinds(a, root.Children) != "element,element" {
		t.Fatalf("root = %s", kinds(a, root.Children))
	}
	ta := a.Node(root.Children[0])
	if kinds(a, ta.Children) != "text" {
		t.Errorf("textarea children = %s", kinds(a, ta.Children))
	}
}
