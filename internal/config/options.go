// Package config loads vuecore.toml and the environment into compiler options.
package config

import (
	"strconv"
	"strings"

	"vuecore/internal/scriptranges"
)

// Options drive every code generator. They are the [compiler] table of
// vuecore.toml.
type Options struct {
	Target float64 `toml:"target" json:"target" yaml:"target"`
	Lib    string  `toml:"lib" json:"lib" yaml:"lib"`

	StrictTemplates        bool `toml:"strictTemplates" json:"strictTemplates" yaml:"strictTemplates"`
	CheckUnknownProps      bool `toml:"checkUnknownProps" json:"checkUnknownProps" yaml:"checkUnknownProps"`
	CheckUnknownEvents     bool `toml:"checkUnknownEvents" json:"checkUnknownEvents" yaml:"checkUnknownEvents"`
	CheckUnknownComponents bool `toml:"checkUnknownComponents" json:"checkUnknownComponents" yaml:"checkUnknownComponents"`
	CheckUnknownDirectives bool `toml:"checkUnknownDirectives" json:"checkUnknownDirectives" yaml:"checkUnknownDirectives"`

	DataAttributes            []string `toml:"dataAttributes" json:"dataAttributes" yaml:"dataAttributes"`
	HTMLAttributes            []string `toml:"htmlAttributes" json:"htmlAttributes" yaml:"htmlAttributes"`
	FallthroughComponentNames []string `toml:"fallthroughComponentNames" json:"fallthroughComponentNames" yaml:"fallthroughComponentNames"`
	// ExperimentalModelPropName maps a DOM property to the element
	// selectors v-model binds it on, e.g. checked = ["input[type=radio]"].
	ExperimentalModelPropName map[string][]string `toml:"experimentalModelPropName" json:"experimentalModelPropName,omitempty" yaml:"experimentalModelPropName,omitempty"`
	// Macros adds alias names for a macro or composable, keyed by its default name.
	Macros map[string][]string `toml:"macros" json:"macros,omitempty" yaml:"macros,omitempty"`

	// GlobalTypesPath is a template with {lib}, {target} and {strict} holes.
	// Empty means the global declarations are inlined into the holder file.
	GlobalTypesPath string `toml:"globalTypesPath" json:"globalTypesPath,omitempty" yaml:"globalTypesPath,omitempty"`
	InlineCSS       bool   `toml:"inlineCss" json:"inlineCss" yaml:"inlineCss"`

	Extensions Extensions `toml:"extensions" json:"extensions" yaml:"extensions"`
}

// Extensions lists the file extensions of every file kind.
type Extensions struct {
	Vue      []string `toml:"vue" json:"vue" yaml:"vue"`
	Markdown []string `toml:"markdown" json:"markdown" yaml:"markdown"`
	HTML     []string `toml:"html" json:"html" yaml:"html"`
}

// All returns every configured extension.
func (e Extensions) All() []string {
	out := make([]string, 0, len(e.Vue)+len(e.Markdown)+len(e.HTML))
	out = append(out, e.Vue...)
	out = append(out, e.Markdown...)
	return append(out, e.HTML...)
}

// Defaults returns the options used when no vuecore.toml is found.
func Defaults() Options {
	return Options{
		Target:                    3.5,
		Lib:                       "vue",
		HTMLAttributes:            []string{"aria-*"},
		FallthroughComponentNames: []string{"Transition", "KeepAlive", "Teleport", "Suspense"},
		InlineCSS:                 true,
		Extensions: Extensions{
			Vue: []string{".vue"},
		},
	}
}

// Effective applies strictTemplates: it turns every unknown-* check on.
func (o Options) Effective() Options {
	if o.StrictTemplates {
		o.CheckUnknownProps = true
		o.CheckUnknownEvents = true
		o.CheckUnknownComponents = true
		o.CheckUnknownDirectives = true
	}
	return o
}

// Names is the macro table with the configured aliases.
func (o Options) Names() scriptranges.Names {
	return scriptranges.NamesWith(o.Macros)
}

// ResolveGlobalTypesPath fills the holes of GlobalTypesPath.
func (o Options) ResolveGlobalTypesPath() string {
	if o.GlobalTypesPath == "" {
		return ""
	}
	return strings.NewReplacer(
		"{lib}", o.Lib,
		"{target}", strconv.FormatFloat(o.Target, 'f', -1, 64),
		"{strict}", strconv.FormatBool(o.StrictTemplates),
	).Replace(o.GlobalTypesPath)
}
