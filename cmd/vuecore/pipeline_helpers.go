package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vuecore/internal/config"
	"vuecore/internal/diagfmt"
	"vuecore/internal/driver"
	"vuecore/internal/source"
	"vuecore/internal/trace"
)

// compileRun is the outcome of compiling a file or a directory.
type compileRun struct {
	fs      *source.FileSet
	results []driver.Result
	cfg     *config.Config
	dir     bool
}

func (r *compileRun) hasErrors() bool {
	for _, res := range r.results {
		if res.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// readDriverOptions collects the persistent and cache flags into driver options.
func readDriverOptions(cmd *cobra.Command, cfg *config.Config) (driver.Options, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	cacheOn, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get cache flag: %w", err)
	}
	cacheOff, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if cacheOn && cacheOff {
		return driver.Options{}, fmt.Errorf("cache and no-cache flags cannot be used together")
	}

	// diag-only flags
	var ignoreWarnings, warningsAsErrors bool
	if cmd.Flags().Lookup("no-warnings") != nil {
		if ignoreWarnings, err = cmd.Flags().GetBool("no-warnings"); err != nil {
			return driver.Options{}, fmt.Errorf("failed to get no-warnings flag: %w", err)
		}
		if warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
			return driver.Options{}, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
		}
	}

	opts := driver.Options{
		Config:           cfg,
		IgnoreWarnings:   ignoreWarnings,
		WarningsAsErrors: warningsAsErrors,
		Jobs:             jobs,
		MaxDiagnostics:   maxDiagnostics,
		Timings:          showTimings,
		Tracer:           trace.FromContext(cmd.Context()),
	}
	if cacheOn {
		cfg.Cache.Enabled = true
	}
	if dir := cfg.CacheDir(); dir != "" && !cacheOff {
		cache, err := driver.OpenDiskCache(dir)
		if err != nil {
			// без кеша компиляция всё равно возможна
			fmt.Fprintf(os.Stderr, "warning: disk cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}
	return opts, nil
}

// addDriverFlags registers the flags read by readDriverOptions.
func addDriverFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().Bool("cache", false, "use the disk cache even when vuecore.toml leaves it off")
	cmd.Flags().Bool("no-cache", false, "bypass the disk cache")
}

// compileTarget compiles path, a file or a directory. Directories go
// through the progress view when view allows it.
func compileTarget(cmd *cobra.Command, path string, view progressView, format string) (*compileRun, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return nil, err
	}
	opts, err := readDriverOptions(cmd, cfg)
	if err != nil {
		return nil, err
	}
	run := &compileRun{cfg: cfg, dir: st.IsDir()}

	if !st.IsDir() {
		fs, res, err := driver.CompileFile(cmd.Context(), path, opts)
		if err != nil {
			return nil, fmt.Errorf("compile failed: %w", err)
		}
		run.fs, run.results = fs, []driver.Result{*res}
		return run, nil
	}

	if view != viewOff && !quiet(cmd) {
		files, err := driver.ListFiles(path, opts)
		if err != nil {
			return nil, err
		}
		if view.shows(format, len(files)) {
			run.fs, run.results, err = runCompileWithUI(cmd.Context(), "compile", path, files, opts)
			if err != nil {
				return nil, fmt.Errorf("compile failed: %w", err)
			}
			return run, nil
		}
	}
	run.fs, run.results, err = driver.CompileDir(cmd.Context(), path, opts)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}
	return run, nil
}

// displayPath renders a result path the way diagnostics print it.
func displayPath(fs *source.FileSet, r *driver.Result, mode diagfmt.PathMode) string {
	if f := fs.Get(r.FileID); f != nil && f.Path == source.NormalizePath(r.Path) {
		return f.FormatPath(mode.String(), fs.BaseDir())
	}
	return r.Path
}

// readPathMode combines --fullpath with --path-mode; --fullpath wins.
func readPathMode(cmd *cobra.Command) (diagfmt.PathMode, error) {
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return diagfmt.PathModeAuto, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if fullPath {
		return diagfmt.PathModeAbsolute, nil
	}
	raw, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return diagfmt.PathModeAuto, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	mode, ok := diagfmt.ParsePathMode(strings.TrimSpace(raw))
	if !ok {
		return diagfmt.PathModeAuto, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|relative|basename)", raw)
	}
	return mode, nil
}
