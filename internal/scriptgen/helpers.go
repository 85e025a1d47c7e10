package scriptgen

import (
	"fmt"
	"maps"
	"slices"

	"vuecore/internal/project/dag"
)

// helper is a local type alias emitted only when referenced.
type helper struct {
	deps []string
	text string
}

var helpers = map[string]helper{
	"__VLS_Prettify": {
		text: "type __VLS_Prettify<T> = { [K in keyof T]: T[K]; } & {};\n",
	},
	"__VLS_NonUndefinedable": {
		text: "type __VLS_NonUndefinedable<T> = T extends undefined ? never : T;\n",
	},
	"__VLS_WithDefaults": {
		deps: []string{"__VLS_Prettify"},
		text: "type __VLS_WithDefaults<P, D> = {\n" +
			"\t[K in keyof Pick<P, keyof P>]: K extends keyof D\n" +
			"\t\t? __VLS_Prettify<P[K] & { default: D[K] }>\n" +
			"\t\t: P[K]\n" +
			"};\n",
	},
	"__VLS_TypePropsToOption": {
		deps: []string{"__VLS_NonUndefinedable"},
		text: "type __VLS_TypePropsToOption<T> = {\n" +
			"\t[K in keyof T]-?: {} extends Pick<T, K>\n" +
			"\t\t? { type: import('vue').PropType<__VLS_NonUndefinedable<T[K]>> }\n" +
			"\t\t: { type: import('vue').PropType<T[K]>, required: true }\n" +
			"};\n",
	},
	"__VLS_SpreadMerge": {
		text: "type __VLS_SpreadMerge<A, B> = Omit<A, keyof B> & B;\n",
	},
	"__VLS_UnionToIntersection": {
		text: "type __VLS_UnionToIntersection<U> = (U extends unknown ? (arg: U) => unknown : never) extends ((arg: infer P) => unknown) ? P : never;\n",
	},
	"__VLS_NormalizeEmits": {
		deps: []string{"__VLS_Prettify", "__VLS_UnionToIntersection"},
		text: "type __VLS_NormalizeEmits<T> = __VLS_Prettify<__VLS_UnionToIntersection<\n" +
			"\tT extends (event: infer E, ...args: infer A) => any ? E extends string ? { [K in E]: A } : never : T\n" +
			">>;\n",
	},
}

// helperSet records helpers referenced while generating the body.
type helperSet map[string]bool

// use marks name as referenced and returns it for inline emission.
func (h helperSet) use(name string) string {
	if _, ok := helpers[name]; !ok {
		panic(fmt.Sprintf("unknown helper %s", name))
	}
	h[name] = true
	return name
}

// order closes the set over dependencies and sorts it so every helper
// follows the helpers it refers to.
func (h helperSet) order() ([]string, error) {
	todo := slices.Sorted(maps.Keys(h))
	seen := map[string]bool{}
	var nodes []dag.Node
	for len(todo) > 0 {
		name := todo[0]
		todo = todo[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		def := helpers[name]
		nodes = append(nodes, dag.Node{Name: name, Deps: def.deps})
		todo = append(todo, def.deps...)
	}
	order, err := dag.Sort(nodes)
	if err != nil {
		return nil, fmt.Errorf("helper types: %w", err)
	}
	return order, nil
}
