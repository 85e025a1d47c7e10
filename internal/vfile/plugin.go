package vfile

import (
	"fmt"
	"runtime/debug"

	"vuecore/internal/code"
	"vuecore/internal/config"
	"vuecore/internal/diag"
	"vuecore/internal/reactive"
	"vuecore/internal/trace"
)

// Embedded is one virtual code contributed by a plugin.
type Embedded struct {
	ID         string
	LanguageID string
	// Parent is the id of the embedding code; empty means the file root.
	Parent   string
	Segments []code.Segment
}

// Plugin contributes embedded codes. Implementations read the file through
// its accessors with tr, so they re-run only when what they read changed.
type Plugin interface {
	Name() string
	Embedded(f *VirtualFile, tr *reactive.Tracker) []Embedded
}

// DefaultPlugins returns the built-in plugins in contribution order.
func DefaultPlugins(o config.Options) []Plugin {
	ps := []Plugin{tsxPlugin{}, templatePlugin{}, stylesPlugin{}, customBlocksPlugin{}}
	if o.InlineCSS {
		ps = append(ps, inlineCSSPlugin{})
	}
	return ps
}

// runPlugin isolates a plugin: a panic becomes a GEN4002 diagnostic and an
// empty contribution.
func (f *VirtualFile) runPlugin(p Plugin, tr *reactive.Tracker) (out pluginOut) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if r == reactive.ErrCycle || r == reactive.ErrWriteInCompute {
			panic(r)
		}
		trace.Errorf(f.tracer, "plugin:"+p.Name(), "%s: %v\n%s", f.path, r, debug.Stack())
		out = pluginOut{diags: []diag.Diagnostic{
			f.fileError(diag.GenPluginFailed, fmt.Sprintf("plugin %s failed: %v", p.Name(), r)),
		}}
	}()
	return pluginOut{embedded: p.Embedded(f, tr)}
}

// ScriptCodeID names the script artifact for a script language.
func ScriptCodeID(lang string) (id, languageID string) {
	switch lang {
	case "ts":
		return "script_ts", "typescript"
	case "tsx":
		return "script_tsx", "typescriptreact"
	case "jsx":
		return "script_jsx", "javascriptreact"
	default:
		return "script_js", "javascript"
	}
}

type tsxPlugin struct{}

func (tsxPlugin) Name() string { return "vue-tsx" }

func (tsxPlugin) Embedded(f *VirtualFile, tr *reactive.Tracker) []Embedded {
	res := f.Script(tr)
	if res == nil {
		return nil
	}
	id, lang := ScriptCodeID(f.Descriptor(tr).ScriptLang())
	return []Embedded{{ID: id, LanguageID: lang, Segments: res.Codes.Segments()}}
}

type templatePlugin struct{}

func (templatePlugin) Name() string { return "vue-sfc-template" }

func (templatePlugin) Embedded(f *VirtualFile, tr *reactive.Tracker) []Embedded {
	b := f.Descriptor(tr).Template
	if b == nil {
		return nil
	}
	return []Embedded{{
		ID:         "template",
		LanguageID: b.LangOr("html"),
		Segments:   whole(b.Content, b.Key),
	}}
}

type stylesPlugin struct{}

func (stylesPlugin) Name() string { return "vue-sfc-styles" }

func (stylesPlugin) Embedded(f *VirtualFile, tr *reactive.Tracker) []Embedded {
	var out []Embedded
	for _, st := range f.Descriptor(tr).Styles {
		out = append(out, Embedded{ID: st.Key, LanguageID: st.LangOr("css"), Segments: whole(st.Content, st.Key)})
	}
	return out
}

type customBlocksPlugin struct{}

func (customBlocksPlugin) Name() string { return "vue-sfc-customblocks" }

func (customBlocksPlugin) Embedded(f *VirtualFile, tr *reactive.Tracker) []Embedded {
	var out []Embedded
	for _, b := range f.Descriptor(tr).CustomBlocks {
		out = append(out, Embedded{ID: b.Key, LanguageID: b.LangOr("txt"), Segments: whole(b.Content, b.Key)})
	}
	return out
}

type inlineCSSPlugin struct{}

func (inlineCSSPlugin) Name() string { return "vue-template-inline-css" }

func (inlineCSSPlugin) Embedded(f *VirtualFile, tr *reactive.Tracker) []Embedded {
	t := f.Template(tr)
	if t == nil || t.InlineCSS.Len() == 0 {
		return nil
	}
	return []Embedded{{
		ID:         "template_inline_css",
		LanguageID: "css",
		Parent:     "template",
		Segments:   t.InlineCSS.Segments(),
	}}
}

// whole maps a block's content one to one.
func whole(content, block string) []code.Segment {
	if content == "" {
		return nil
	}
	return []code.Segment{code.Mapped(content, block, 0, code.PresetAll.Caps())}
}
