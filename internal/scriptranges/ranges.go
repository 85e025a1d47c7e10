// Package scriptranges locates top-level bindings and compiler macro calls
// in component scripts. It works on jslex tokens without building an AST and
// skips any shape it does not recognize.
package scriptranges

import "fmt"

// Range is a half-open byte range relative to the script block content.
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) Empty() bool { return r.End <= r.Start }

func (r Range) Text(src string) string {
	if r.Start < 0 || r.End > len(src) || r.Empty() {
		return ""
	}
	return src[r.Start:r.End]
}

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

type BindingKind uint8

const (
	BindConst BindingKind = iota
	BindLet
	BindFunction
	BindClass
	BindImport
	BindEnum
)

func (k BindingKind) String() string {
	switch k {
	case BindConst:
		return "const"
	case BindLet:
		return "let"
	case BindFunction:
		return "function"
	case BindClass:
		return "class"
	case BindImport:
		return "import"
	case BindEnum:
		return "enum"
	}
	return "unknown"
}

// Binding is one top-level name.
type Binding struct {
	Name  string      `json:"name" yaml:"name"`
	Range Range       `json:"range" yaml:"range"`
	Kind  BindingKind `json:"kind" yaml:"kind"`
}

// DestructuredProp is one element of an object pattern bound to a macro result.
type DestructuredProp struct {
	Name       string `json:"name" yaml:"name"`
	NameRange  Range  `json:"nameRange" yaml:"nameRange"`
	Alias      string `json:"alias,omitempty" yaml:"alias,omitempty"`
	AliasRange Range  `json:"aliasRange,omitempty" yaml:"aliasRange,omitempty"`
	Default    Range  `json:"default,omitempty" yaml:"default,omitempty"`
	HasDefault bool   `json:"hasDefault,omitempty" yaml:"hasDefault,omitempty"`
}

// Local returns the name the element is bound to in the script.
func (p DestructuredProp) Local() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

// Destructure is the object pattern a macro result was assigned to.
type Destructure struct {
	Range     Range              `json:"range" yaml:"range"`
	Props     []DestructuredProp `json:"props" yaml:"props"`
	Rest      string             `json:"rest,omitempty" yaml:"rest,omitempty"`
	RestRange Range              `json:"restRange,omitempty" yaml:"restRange,omitempty"`
}

// Call is one recognized macro or composable call.
type Call struct {
	Name      string `json:"name" yaml:"name"`
	Statement Range  `json:"statement" yaml:"statement"`
	Expr      Range  `json:"expr" yaml:"expr"`
	Callee    Range  `json:"callee" yaml:"callee"`
	// Arg is the first runtime argument; Args holds all of them.
	Arg        Range   `json:"arg,omitempty" yaml:"arg,omitempty"`
	Args       []Range `json:"args,omitempty" yaml:"args,omitempty"`
	TypeArg    Range   `json:"typeArg,omitempty" yaml:"typeArg,omitempty"`
	HasTypeArg bool    `json:"hasTypeArg,omitempty" yaml:"hasTypeArg,omitempty"`
	// Variable is set when the result is assigned to a plain identifier.
	Variable      string       `json:"variable,omitempty" yaml:"variable,omitempty"`
	VariableRange Range        `json:"variableRange,omitempty" yaml:"variableRange,omitempty"`
	Destructured  *Destructure `json:"destructured,omitempty" yaml:"destructured,omitempty"`
}

func (c *Call) HasArg() bool { return len(c.Args) > 0 }

// Props is defineProps, optionally wrapped in withDefaults.
type Props struct {
	Call
	WithDefaults *WithDefaults `json:"withDefaults,omitempty" yaml:"withDefaults,omitempty"`
}

type WithDefaults struct {
	Expr     Range `json:"expr" yaml:"expr"`
	Callee   Range `json:"callee" yaml:"callee"`
	Defaults Range `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// Model is one defineModel call. Every call yields a prop and an
// "update:<name>" event.
type Model struct {
	Call
	ModelName  string `json:"modelName" yaml:"modelName"`
	NameRange  Range  `json:"nameRange,omitempty" yaml:"nameRange,omitempty"`
	Options    Range  `json:"options,omitempty" yaml:"options,omitempty"`
	HasOptions bool   `json:"hasOptions,omitempty" yaml:"hasOptions,omitempty"`
}

// TemplateRef is a useTemplateRef call.
type TemplateRef struct {
	Call
	RefName   string `json:"refName,omitempty" yaml:"refName,omitempty"`
	NameRange Range  `json:"nameRange,omitempty" yaml:"nameRange,omitempty"`
}

// Common holds what both script blocks record.
type Common struct {
	Bindings []Binding `json:"bindings" yaml:"bindings"`
	// ImportSectionEnd is the end of the last top-level import, 0 without imports.
	ImportSectionEnd int `json:"importSectionEnd" yaml:"importSectionEnd"`
	// LeadingCommentEnd is the end of the comments preceding the first token.
	LeadingCommentEnd int `json:"leadingCommentEnd" yaml:"leadingCommentEnd"`
}

// Binding looks a top-level binding up by name.
func (c *Common) Binding(name string) (Binding, bool) {
	for _, b := range c.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

// SetupRanges is the analysis of a <script setup> block.
type SetupRanges struct {
	Common
	Props          *Props        `json:"props,omitempty" yaml:"props,omitempty"`
	Emits          *Call         `json:"emits,omitempty" yaml:"emits,omitempty"`
	Slots          *Call         `json:"slots,omitempty" yaml:"slots,omitempty"`
	Expose         *Call         `json:"expose,omitempty" yaml:"expose,omitempty"`
	Options        *Call         `json:"options,omitempty" yaml:"options,omitempty"`
	Models         []Model       `json:"models,omitempty" yaml:"models,omitempty"`
	UseAttrs       []Call        `json:"useAttrs,omitempty" yaml:"useAttrs,omitempty"`
	UseCSSModule   []Call        `json:"useCssModule,omitempty" yaml:"useCssModule,omitempty"`
	UseSlots       []Call        `json:"useSlots,omitempty" yaml:"useSlots,omitempty"`
	UseTemplateRef []TemplateRef `json:"useTemplateRef,omitempty" yaml:"useTemplateRef,omitempty"`
}

// Property is one key of the export default options object.
type Property struct {
	Key   Range `json:"key" yaml:"key"`
	Value Range `json:"value" yaml:"value"`
}

// ExportDefault describes "export default ..." of a plain <script>.
type ExportDefault struct {
	Statement Range `json:"statement" yaml:"statement"`
	Expr      Range `json:"expr" yaml:"expr"`
	// Options is the component options object literal when recognized.
	Options      Range     `json:"options,omitempty" yaml:"options,omitempty"`
	HasOptions   bool      `json:"hasOptions,omitempty" yaml:"hasOptions,omitempty"`
	Components   *Property `json:"components,omitempty" yaml:"components,omitempty"`
	Directives   *Property `json:"directives,omitempty" yaml:"directives,omitempty"`
	Name         *Property `json:"name,omitempty" yaml:"name,omitempty"`
	InheritAttrs *Property `json:"inheritAttrs,omitempty" yaml:"inheritAttrs,omitempty"`
}

// ScriptRanges is the analysis of a plain <script> block.
type ScriptRanges struct {
	Common
	ExportDefault *ExportDefault `json:"exportDefault,omitempty" yaml:"exportDefault,omitempty"`
}
