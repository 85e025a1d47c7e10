package scriptgen

import (
	"strings"
)

// GlobalOptions selects the shape of the shared __VLS_* declarations.
type GlobalOptions struct {
	Lib    string
	Target float64
	Strict bool
	// CheckUnknownComponents drops the index signature of __VLS_GlobalComponents.
	CheckUnknownComponents bool
	// CheckUnknownDirectives drops the index signature of __VLS_GlobalDirectives.
	CheckUnknownDirectives bool
}

// GlobalTypes renders the declarations every generated script relies on.
// The text is a global augmentation and must live in a module file.
func GlobalTypes(o GlobalOptions) string {
	lib := o.Lib
	if lib == "" {
		lib = "vue"
	}
	var b strings.Builder
	w := func(lines ...string) {
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	w("export {};", "declare global {")
	if o.Target >= 3.3 {
		w("\ttype __VLS_IntrinsicElements = import('" + lib + "/jsx-runtime').JSX.IntrinsicElements;")
		w("\ttype __VLS_Element = import('" + lib + "/jsx-runtime').JSX.Element;")
	} else {
		w("\ttype __VLS_IntrinsicElements = globalThis.JSX.IntrinsicElements;")
		w("\ttype __VLS_Element = globalThis.JSX.Element;")
	}
	components := "import('" + lib + "').GlobalComponents"
	if !o.CheckUnknownComponents {
		components += " & Record<string, any>"
	}
	w("\ttype __VLS_GlobalComponents = " + components + ";")
	directives := "{}"
	if o.Target >= 3.5 {
		directives = "import('" + lib + "').GlobalDirectives"
	}
	if !o.CheckUnknownDirectives {
		directives += " & Record<string, any>"
	}
	w("\ttype __VLS_GlobalDirectives = " + directives + ";")
	w(
		"\ttype __VLS_IsAny<T> = 0 extends 1 & T ? true : false;",
		"\ttype __VLS_PickNotAny<A, B> = __VLS_IsAny<A> extends true ? B : A;",
		"\tconst __VLS_intrinsicElements: __VLS_IntrinsicElements;",
		"\tconst __VLS_directiveBindingRestFields: { instance: null, oldValue: null, modifiers: any, dir: any };",
	)
	if o.Strict {
		w("\ttype __VLS_unknownDirective = never;")
	} else {
		w("\ttype __VLS_unknownDirective = (arg1: unknown, arg2: unknown, arg3: unknown, arg4: unknown) => void;")
	}
	w(
		"\tfunction __VLS_getVForSourceType<T extends number>(source: T): [number, number, number][];",
		"\tfunction __VLS_getVForSourceType<T extends string>(source: T): [string, number, number][];",
		"\tfunction __VLS_getVForSourceType<T extends any[]>(source: T): [T[number], number, number][];",
		"\tfunction __VLS_getVForSourceType<T extends { [Symbol.iterator](): Iterator<any> }>(source: T): [T extends { [Symbol.iterator](): Iterator<infer V> } ? V : never, number, number][];",
		"\tfunction __VLS_getVForSourceType<T>(source: T): [T[keyof T], keyof T, number][];",
		"\tfunction __VLS_getSlotParams<T>(slot: T): Parameters<__VLS_PickNotAny<NonNullable<T>, (...args: any[]) => any>>;",
		"\tfunction __VLS_normalizeSlot<S>(s: S): S extends () => infer R ? (props: {}) => R : S;",
		"\tfunction __VLS_nonNullable<T>(t: T): T extends null | undefined ? never : T;",
		"\tfunction __VLS_elementAsFunction<T>(tag: T, endTag?: T): (_: T) => void;",
		"\tfunction __VLS_functionalComponentArgsRest<T extends (...args: any) => any>(t: T): 2 extends Parameters<T>['length'] ? [any] : [];",
		"\tfunction __VLS_componentCtx<T>(vnode: T): T extends { __ctx?: infer C } ? NonNullable<C> : any;",
		"\tfunction __VLS_asFunctionalComponent<T, K = T extends new (...args: any) => any ? InstanceType<T> : unknown>(t: T, instance?: K):",
		"\t\tT extends new (...args: any) => any",
		"\t\t? (props: (K extends { $props: infer Props } ? Props : any) & Record<string, unknown>, ctx?: any) => __VLS_Element & {",
		"\t\t\t__ctx?: {",
		"\t\t\t\tattrs?: any;",
		"\t\t\t\tslots?: K extends { $slots: infer Slots } ? Slots : any;",
		"\t\t\t\temit?: K extends { $emit: infer Emit } ? Emit : any;",
		"\t\t\t} & { props?: (K extends { $props: infer Props } ? Props : any) & Record<string, unknown>; expose?(exposed: K): void; }",
		"\t\t}",
		"\t\t: T extends () => any ? (props: {}, ctx?: any) => ReturnType<T>",
		"\t\t: T extends (...args: any) => any ? T",
		"\t\t: (_: {} & Record<string, unknown>, ctx?: any) => { __ctx?: { attrs?: any, expose?: any, slots?: any, emit?: any, props?: {} & Record<string, unknown> } };",
		"\tfunction __VLS_directiveAsFunction<T extends import('"+lib+"').Directive>(dir: T): T extends (...args: any) => any",
		"\t\t? T | __VLS_unknownDirective",
		"\t\t: NonNullable<(T & Record<string, __VLS_unknownDirective>)['created' | 'beforeMount' | 'mounted' | 'beforeUpdate' | 'updated' | 'beforeUnmount' | 'unmounted']>;",
	)
	w("}")
	return b.String()
}
