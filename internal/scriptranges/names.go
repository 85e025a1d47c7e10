package scriptranges

// Macro identifies what a recognized call does.
type Macro uint8

const (
	MacroNone Macro = iota
	DefineProps
	DefineEmits
	DefineSlots
	DefineExpose
	DefineModel
	DefineOptions
	WithDefaultsMacro
	UseAttrs
	UseCSSModule
	UseSlots
	UseTemplateRef
)

var macroDefaults = map[Macro]string{
	DefineProps:       "defineProps",
	DefineEmits:       "defineEmits",
	DefineSlots:       "defineSlots",
	DefineExpose:      "defineExpose",
	DefineModel:       "defineModel",
	DefineOptions:     "defineOptions",
	WithDefaultsMacro: "withDefaults",
	UseAttrs:          "useAttrs",
	UseCSSModule:      "useCssModule",
	UseSlots:          "useSlots",
	UseTemplateRef:    "useTemplateRef",
}

func (m Macro) String() string {
	if s, ok := macroDefaults[m]; ok {
		return s
	}
	return "none"
}

// IsComposable reports whether the call may also appear outside <script setup>.
func (m Macro) IsComposable() bool {
	return m >= UseAttrs
}

// Names maps callee names to macros. Projects may alias a macro to extra
// names; the default names always stay recognized.
type Names map[string]Macro

// DefaultNames returns the stock callee names.
func DefaultNames() Names {
	n := make(Names, len(macroDefaults))
	for m, s := range macroDefaults {
		n[s] = m
	}
	return n
}

// NamesWith adds aliases, keyed by the default macro name, to the defaults.
// Unknown keys are ignored.
func NamesWith(aliases map[string][]string) Names {
	n := DefaultNames()
	for key, names := range aliases {
		m, ok := n[key]
		if !ok {
			continue
		}
		for _, name := range names {
			n[name] = m
		}
	}
	return n
}

func (n Names) lookup(name string) Macro {
	if n == nil {
		n = defaultNames
	}
	return n[name]
}

var defaultNames = DefaultNames()
