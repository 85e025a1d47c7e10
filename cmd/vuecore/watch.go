package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"vuecore/internal/config"
	"vuecore/internal/diag"
	"vuecore/internal/diagfmt"
	"vuecore/internal/source"
	"vuecore/internal/trace"
	"vuecore/internal/vfile"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <directory>",
	Short: "Keep component files compiled while they change",
	Long: `Open every component file of a directory in one registry and recompile
incrementally on each change, reporting which stages reran and the
diagnostics of the edited file`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", 50*time.Millisecond, "wait this long for more writes before recompiling")
	watchCmd.Flags().Bool("diagnostics", true, "print diagnostics of the changed file")
}

type watcher struct {
	out      io.Writer
	cfg      *config.Config
	exts     []string
	fs       *source.FileSet
	reg      *vfile.Registry
	showDiag bool
	// previous recompute counters per path
	seen map[string]map[string]int
}

func runWatch(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	showDiag, err := cmd.Flags().GetBool("diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics flag: %w", err)
	}
	dir := args[0]
	st, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}
	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return err
	}

	w := &watcher{
		out:      cmd.OutOrStdout(),
		cfg:      cfg,
		exts:     cfg.Options.Extensions.All(),
		fs:       source.NewFileSetWithBase(dir),
		reg:      vfile.NewRegistry(vfile.RegistryOptions{Tracer: trace.FromContext(cmd.Context())}),
		showDiag: showDiag,
		seen:     map[string]map[string]int{},
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fsw.Close()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		}
		if w.wanted(path) {
			w.open(path, false)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fmt.Fprintf(w.out, "watching %d files in %s (ctrl+c to stop)\n", w.reg.Len(), dir)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.loop(ctx, fsw, debounce)
}

func skipDir(name string) bool {
	return name == "node_modules" || (strings.HasPrefix(name, ".") && name != ".")
}

func (w *watcher) wanted(path string) bool {
	return slices.Contains(w.exts, strings.ToLower(filepath.Ext(path)))
}

// loop batches events per path until no write arrived for debounce.
func (w *watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, debounce time.Duration) error {
	pending := map[string]bool{}
	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() && !skipDir(filepath.Base(ev.Name)) {
					_ = fsw.Add(ev.Name)
					continue
				}
			}
			if !w.wanted(ev.Name) {
				continue
			}
			pending[ev.Name] = true
			timer.Reset(debounce)
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				w.apply(p)
			}
			clear(pending)
		}
	}
}

// apply reconciles one path with the disk; a rename away looks like a removal.
func (w *watcher) apply(path string) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if w.reg.Remove(path, w.cfg.Options) {
			delete(w.seen, source.NormalizePath(path))
			fmt.Fprintf(w.out, "%s removed\n", w.display(path))
			if h, ok := w.reg.Holder(w.cfg.Root); ok {
				fmt.Fprintf(w.out, "  global types now in %s\n", w.display(h.Path()))
			}
		}
		return
	}
	w.open(path, true)
}

// open loads path into the file set and registry, then reports the run.
func (w *watcher) open(path string, report bool) {
	id, err := w.fs.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", w.display(path), err)
		return
	}
	file := w.fs.Get(id)
	_, existed := w.reg.Get(path, w.cfg.Options)
	start := time.Now()
	vf, err := w.reg.Open(vfile.Input{
		Path:     path,
		Project:  w.cfg.Root,
		File:     id,
		Options:  w.cfg.Options,
		Snapshot: source.NewSnapshot(string(file.Content)),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", w.display(path), err)
		return
	}
	vf.Root()
	diags := vf.Diagnostics()
	elapsed := time.Since(start)

	key := vf.Path()
	counts := vf.Recomputes()
	prev := w.seen[key]
	w.seen[key] = counts
	if !report {
		return
	}

	verb := "changed"
	if !existed {
		verb = "added"
	}
	fmt.Fprintf(w.out, "%s %s in %.1f ms: %s\n", w.display(path), verb, toMillis(elapsed), recomputeDelta(prev, counts))
	bag := diag.NewBag(0)
	for _, d := range diags {
		d.Primary.File = id
		if len(d.Notes) > 0 {
			notes := make([]diag.Note, len(d.Notes))
			for i, n := range d.Notes {
				n.Span.File = id
				notes[i] = n
			}
			d.Notes = notes
		}
		bag.Add(d)
	}
	if bag.Len() == 0 {
		fmt.Fprintln(w.out, "  no diagnostics")
		return
	}
	fmt.Fprintf(w.out, "  %d diagnostics\n", bag.Len())
	if w.showDiag {
		bag.Sort()
		diagfmt.Pretty(w.out, bag, w.fs, diagfmt.PrettyOpts{Color: !color.NoColor, Context: 1})
	}
}

// recomputeDelta lists the stages that ran since the previous report.
func recomputeDelta(prev, cur map[string]int) string {
	names := make([]string, 0, len(cur))
	for name, n := range cur {
		if n > prev[name] {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "nothing recomputed"
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s+%d", name, cur[name]-prev[name])
	}
	return strings.Join(parts, " ")
}

func (w *watcher) display(path string) string {
	if rel, err := filepath.Rel(w.fs.BaseDir(), path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
