package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vuecore/internal/diag"
	"vuecore/internal/diagfmt"
	"vuecore/internal/version"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file|directory>",
	Short: "Report diagnostics for component files",
	Long: `Compile component files and report block, template, script and
generation diagnostics for a file or every component file in a directory`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

// init registers CLI flags for the diag command used by runDiagnose.
func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|short|json|yaml|sarif)")
	diagCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	diagCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	diagCmd.Flags().Bool("preview", false, "preview fix edits without modifying files")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	diagCmd.Flags().String("path-mode", "auto", "path display mode (auto|absolute|relative|basename)")
	diagCmd.Flags().Int("context", 2, "lines of source context in pretty output")
	diagCmd.Flags().Int("width", 0, "truncate pretty snippets to this width (0 disables)")
	addProgressFlag(diagCmd, viewOff)
	addDriverFlags(diagCmd)
}

// runDiagnose compiles the path, renders every diagnostic in the chosen
// format and exits with status 1 when any file has errors.
func runDiagnose(cmd *cobra.Command, args []string) error {
	// Ensure trace is dumped on panic
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	contextLines, err := cmd.Flags().GetInt("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}
	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return fmt.Errorf("failed to get width flag: %w", err)
	}
	view, err := readProgressView(cmd)
	if err != nil {
		return err
	}
	pathMode, err := readPathMode(cmd)
	if err != nil {
		return err
	}

	progressFormat := "json"
	if format == "pretty" || format == "short" {
		progressFormat = "text"
	}
	run, err := compileTarget(cmd, args[0], view, progressFormat)
	if err != nil {
		return err
	}

	showFixes := suggest || preview
	prettyOpts := diagfmt.PrettyOpts{
		Color:       !color.NoColor,
		Context:     int8(min(max(contextLines, 0), 10)),
		PathMode:    pathMode,
		Width:       uint8(min(max(width, 0), 255)),
		ShowNotes:   withNotes,
		ShowFixes:   showFixes,
		ShowPreview: preview,
	}
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         pathMode,
		IncludeNotes:     withNotes,
		IncludeFixes:     showFixes,
		IncludePreviews:  preview,
	}
	meta := diagfmt.SarifRunMeta{
		ToolName:       "vuecore",
		ToolVersion:    version.Version,
		InvocationArgs: args,
	}

	w := cmd.OutOrStdout()
	switch format {
	case "short":
		all := diag.NewBag(0)
		for _, r := range run.results {
			all.Merge(r.Bag)
		}
		all.Sort()
		output := diag.FormatShortDiagnostics(all.Pointers(), run.fs, withNotes)
		if output != "" {
			fmt.Fprintln(w, output)
		}
	case "pretty":
		printed := 0
		for i := range run.results {
			r := &run.results[i]
			if run.dir && r.Bag.Len() == 0 {
				continue
			}
			if run.dir {
				if printed > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "== %s ==\n", displayPath(run.fs, r, pathMode))
			}
			diagfmt.Pretty(w, r.Bag, run.fs, prettyOpts)
			printed++
		}
		if !quiet(cmd) {
			printSummary(w, run)
		}
	case "json", "yaml":
		output := make(map[string]diagfmt.DiagnosticsOutput, len(run.results))
		for i := range run.results {
			r := &run.results[i]
			output[displayPath(run.fs, r, pathMode)] = diagfmt.BuildDiagnosticsOutput(r.Bag, run.fs, jsonOpts)
		}
		if format == "json" {
			err = writeJSON(w, output)
		} else {
			err = writeYAML(w, output)
		}
		if err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	case "sarif":
		all := diag.NewBag(0)
		for _, r := range run.results {
			all.Merge(r.Bag)
		}
		all.Sort()
		if err := diagfmt.Sarif(w, all, run.fs, meta); err != nil {
			return fmt.Errorf("failed to write sarif: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if run.hasErrors() {
		exitWith(1)
	}
	return nil
}

func printSummary(w io.Writer, run *compileRun) {
	var errs, warns, files int
	for _, r := range run.results {
		fileErrs := 0
		for _, d := range r.Bag.Items() {
			switch d.Severity {
			case diag.SevError:
				errs++
				fileErrs++
			case diag.SevWarning:
				warns++
			}
		}
		if fileErrs > 0 {
			files++
		}
	}
	if errs == 0 && warns == 0 {
		return
	}
	parts := []string{plural(errs, "error"), plural(warns, "warning")}
	msg := strings.Join(parts, ", ")
	if run.dir {
		msg += fmt.Sprintf(" in %s", plural(files, "file"))
	}
	fmt.Fprintln(w, msg)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
