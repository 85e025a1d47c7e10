package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vuecore/internal/diagfmt"
	"vuecore/internal/driver"
	"vuecore/internal/observ"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] <file|directory>",
	Short: "Generate virtual TypeScript code for component files",
	Long: `Compile a component file, or every component file of a directory,
into its virtual codes: the generated script, template and style codes
together with their source mappings`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	compileCmd.Flags().StringSlice("code", nil, "only emit the codes with these ids (e.g. script_ts,template)")
	compileCmd.Flags().Bool("mappings", false, "print mapping counts in text format")
	compileCmd.Flags().String("out", "", "write each generated code into this directory")
	addProgressFlag(compileCmd, viewAuto)
	compileCmd.Flags().String("path-mode", "auto", "path display mode (auto|absolute|relative|basename)")
	compileCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	addDriverFlags(compileCmd)
}

type compiledFile struct {
	File        string                    `json:"file" yaml:"file"`
	Holder      bool                      `json:"holder" yaml:"holder"`
	Cached      bool                      `json:"cached" yaml:"cached"`
	Codes       []driver.Code             `json:"codes" yaml:"codes"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics" yaml:"diagnostics"`
	Timing      *observ.Report            `json:"timing,omitempty" yaml:"timing,omitempty"`
}

func runCompile(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	ids, err := cmd.Flags().GetStringSlice("code")
	if err != nil {
		return fmt.Errorf("failed to get code flag: %w", err)
	}
	showMappings, err := cmd.Flags().GetBool("mappings")
	if err != nil {
		return fmt.Errorf("failed to get mappings flag: %w", err)
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	view, err := readProgressView(cmd)
	if err != nil {
		return err
	}
	pathMode, err := readPathMode(cmd)
	if err != nil {
		return err
	}

	run, err := compileTarget(cmd, args[0], view, format)
	if err != nil {
		return err
	}

	if outDir != "" {
		if err := writeCodes(outDir, run, ids); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json", "yaml":
		files := make([]compiledFile, 0, len(run.results))
		for i := range run.results {
			r := &run.results[i]
			files = append(files, compiledFile{
				File:        displayPath(run.fs, r, pathMode),
				Holder:      r.Holder,
				Cached:      r.Cached,
				Codes:       codesOf(r, ids),
				Diagnostics: diagfmt.BuildDiagnosticsOutput(r.Bag, run.fs, diagfmt.JSONOpts{IncludePositions: true, PathMode: pathMode}),
				Timing:      r.Timing,
			})
		}
		if format == "json" {
			err = writeJSON(w, files)
		} else {
			err = writeYAML(w, files)
		}
		if err != nil {
			return fmt.Errorf("failed to encode compile output: %w", err)
		}
	default:
		if outDir == "" || showMappings {
			printCodes(w, run, ids, pathMode, showMappings, outDir == "")
		}
		prettyOpts := diagfmt.PrettyOpts{Color: !color.NoColor, Context: 2, PathMode: pathMode}
		for i := range run.results {
			r := &run.results[i]
			if r.Bag.Len() == 0 {
				continue
			}
			r.Bag.Sort()
			diagfmt.Pretty(os.Stderr, r.Bag, run.fs, prettyOpts)
		}
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if showTimings && !quiet(cmd) {
		printTimings(os.Stderr, run)
	}
	if run.hasErrors() {
		exitWith(1)
	}
	return nil
}

func printCodes(w io.Writer, run *compileRun, ids []string, mode diagfmt.PathMode, showMappings, showText bool) {
	header := color.New(color.Bold)
	faint := color.New(color.Faint)
	for i := range run.results {
		r := &run.results[i]
		if run.dir {
			note := ""
			if r.Cached {
				note = " (cached)"
			}
			header.Fprintf(w, "== %s ==%s\n", displayPath(run.fs, r, mode), note)
		}
		for _, c := range codesOf(r, ids) {
			if c.Artifact == nil {
				continue
			}
			label := fmt.Sprintf("--- %s (%s) [%s]", c.ID, c.LanguageID, c.Plugin)
			if c.Parent != "" {
				label += " in " + c.Parent
			}
			faint.Fprintln(w, label)
			if showMappings {
				spans := 0
				for _, m := range c.Artifact.Mappings {
					spans += len(m.SourceOffsets)
				}
				fmt.Fprintf(w, "mappings: %d (%d spans), linked: %d\n", len(c.Artifact.Mappings), spans, len(c.Artifact.LinkedMappings))
			}
			if showText {
				fmt.Fprint(w, c.Artifact.Text)
				if !strings.HasSuffix(c.Artifact.Text, "\n") {
					fmt.Fprintln(w)
				}
			}
		}
	}
}

// writeCodes mirrors the compiled files under dir as <file>.<code id>.<ext>.
func writeCodes(dir string, run *compileRun, ids []string) error {
	var errs []error
	for i := range run.results {
		r := &run.results[i]
		rel := displayPath(run.fs, r, diagfmt.PathModeRelative)
		if filepath.IsAbs(rel) {
			rel = filepath.Base(rel)
		}
		for _, c := range codesOf(r, ids) {
			if c.Artifact == nil {
				continue
			}
			target := filepath.Join(dir, filepath.FromSlash(rel)+"."+c.ID+"."+extensionOf(c.LanguageID))
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				errs = append(errs, err)
				continue
			}
			if err := os.WriteFile(target, []byte(c.Artifact.Text), 0o600); err != nil {
				errs = append(errs, fmt.Errorf("failed to write %s: %w", target, err))
			}
		}
	}
	return errors.Join(errs...)
}

func extensionOf(languageID string) string {
	switch languageID {
	case "typescript":
		return "ts"
	case "typescriptreact":
		return "tsx"
	case "javascript":
		return "js"
	case "javascriptreact":
		return "jsx"
	case "":
		return "txt"
	default:
		return languageID
	}
}

// codesOf returns the codes of r selected by ids; all codes when ids is empty.
func codesOf(r *driver.Result, ids []string) []driver.Code {
	if len(ids) == 0 {
		return r.Codes
	}
	out := make([]driver.Code, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.Code(id); ok {
			out = append(out, c)
		}
	}
	return out
}
