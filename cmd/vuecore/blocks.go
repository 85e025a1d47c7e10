package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vuecore/internal/diag"
	"vuecore/internal/diagfmt"
	"vuecore/internal/sfc"
	"vuecore/internal/source"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks [flags] <file>",
	Short: "Split a component file into its top-level blocks",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocks,
}

func init() {
	blocksCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	blocksCmd.Flags().Bool("content", false, "print block contents in text format")
}

type blockOut struct {
	Key      string            `json:"key" yaml:"key"`
	Type     string            `json:"type" yaml:"type"`
	Lang     string            `json:"lang,omitempty" yaml:"lang,omitempty"`
	Start    int               `json:"start" yaml:"start"`
	End      int               `json:"end" yaml:"end"`
	Closed   bool              `json:"closed" yaml:"closed"`
	Setup    bool              `json:"setup,omitempty" yaml:"setup,omitempty"`
	Scoped   bool              `json:"scoped,omitempty" yaml:"scoped,omitempty"`
	Module   string            `json:"module,omitempty" yaml:"module,omitempty"`
	Src      string            `json:"src,omitempty" yaml:"src,omitempty"`
	Generic  string            `json:"generic,omitempty" yaml:"generic,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Content  string            `json:"content" yaml:"content"`
	Location string            `json:"location" yaml:"location"`
}

type blocksOut struct {
	File   string                     `json:"file" yaml:"file"`
	Kind   string                     `json:"kind" yaml:"kind"`
	Blocks []blockOut                 `json:"blocks" yaml:"blocks"`
	Errors diagfmt.DiagnosticsOutput `json:"errors" yaml:"errors"`
}

func runBlocks(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	showContent, err := cmd.Flags().GetBool("content")
	if err != nil {
		return fmt.Errorf("failed to get content flag: %w", err)
	}

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}
	fs := source.NewFileSetWithBase(cfg.Root)
	id, err := fs.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}
	file := fs.Get(id)
	kind := source.KindOf(file.Path, cfg.Options.Extensions.Markdown, cfg.Options.Extensions.HTML)
	desc := sfc.Parse(string(file.Content), sfc.ParseOptions{Kind: kind, File: id})

	bag := diag.NewBag(0)
	for _, e := range desc.Errors {
		bag.Add(e)
	}
	bag.Sort()

	out := blocksOut{
		File:   file.FormatPath("auto", fs.BaseDir()),
		Kind:   kind.String(),
		Blocks: make([]blockOut, 0, len(desc.Blocks)),
		Errors: diagfmt.BuildDiagnosticsOutput(bag, fs, diagfmt.JSONOpts{IncludePositions: true}),
	}
	for _, b := range desc.Blocks {
		start, end := fs.Resolve(source.Span{File: id, Start: source.Offset(b.Start), End: source.Offset(b.End)})
		bo := blockOut{
			Key: b.Key, Type: b.Type, Lang: b.Lang,
			Start: b.Start, End: b.End, Closed: b.Closed,
			Setup: b.Setup, Scoped: b.Scoped, Module: b.Module,
			Src: b.Src, Generic: b.Generic, Content: b.Content,
			Location: fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col),
		}
		if len(b.Attrs) > 0 {
			bo.Attrs = make(map[string]string, len(b.Attrs))
			for _, a := range b.Attrs {
				bo.Attrs[a.Name] = a.Value
			}
		}
		out.Blocks = append(out.Blocks, bo)
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		err = writeJSON(w, out)
	case "yaml":
		err = writeYAML(w, out)
	case "text":
		for _, b := range out.Blocks {
			fmt.Fprintf(w, "%-14s <%s> %s", b.Key, b.Type, b.Location)
			var extra []string
			if b.Lang != "" {
				extra = append(extra, "lang="+b.Lang)
			}
			if b.Setup {
				extra = append(extra, "setup")
			}
			if b.Scoped {
				extra = append(extra, "scoped")
			}
			if b.Module != "" {
				extra = append(extra, "module="+b.Module)
			}
			if b.Generic != "" {
				extra = append(extra, "generic="+b.Generic)
			}
			if !b.Closed {
				extra = append(extra, "unclosed")
			}
			if len(extra) > 0 {
				fmt.Fprintf(w, " [%s]", strings.Join(extra, " "))
			}
			fmt.Fprintln(w)
			if showContent {
				fmt.Fprintln(w, indent(b.Content, "    | "))
			}
		}
		if bag.Len() > 0 {
			diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{Color: !color.NoColor, Context: 1})
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to write blocks: %w", err)
	}
	if bag.HasErrors() {
		exitWith(1)
	}
	return nil
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
