// Package driver compiles component files from disk, one at a time or a
// whole directory in parallel, with an optional disk cache.
package driver

import (
	"context"
	"fmt"
	"time"

	"vuecore/internal/buildpipeline"
	"vuecore/internal/config"
	"vuecore/internal/diag"
	"vuecore/internal/mapping"
	"vuecore/internal/observ"
	"vuecore/internal/project"
	"vuecore/internal/source"
	"vuecore/internal/trace"
	"vuecore/internal/vfile"
)

// Options configure CompileFile and CompileDir.
type Options struct {
	// Config is loaded from the input path when nil.
	Config         *config.Config
	Jobs           int
	MaxDiagnostics int
	Cache          *DiskCache
	Timings        bool
	// IgnoreWarnings drops warnings and infos except timing reports.
	IgnoreWarnings   bool
	WarningsAsErrors bool
	Tracer           trace.Tracer
	Progress         buildpipeline.ProgressSink
}

// Code is one virtual code of a compiled file, flattened from the tree.
type Code struct {
	ID         string            `json:"id" yaml:"id" msgpack:"id"`
	LanguageID string            `json:"languageId" yaml:"languageId" msgpack:"lang"`
	Plugin     string            `json:"plugin" yaml:"plugin" msgpack:"plugin"`
	Parent     string            `json:"parent,omitempty" yaml:"parent,omitempty" msgpack:"parent,omitempty"`
	Artifact   *mapping.Artifact `json:"artifact" yaml:"artifact" msgpack:"artifact"`
}

// Result is the outcome for one file.
type Result struct {
	Path   string
	FileID source.FileID
	Holder bool
	Cached bool
	Codes  []Code
	Bag    *diag.Bag
	Timing *observ.Report
}

// Code returns the code with id.
func (r *Result) Code(id string) (Code, bool) {
	for _, c := range r.Codes {
		if c.ID == id {
			return c, true
		}
	}
	return Code{}, false
}

// CompileFile compiles one file; it always holds the global types.
func CompileFile(ctx context.Context, path string, opts Options) (*source.FileSet, *Result, error) {
	cfg, err := resolveConfig(path, opts.Config)
	if err != nil {
		return nil, nil, err
	}
	opts.Config = cfg
	fs := source.NewFileSetWithBase(cfg.Root)
	id, loadErr := fs.Load(path)
	res := compileOne(ctx, fs, path, id, loadErr, true, opts)
	applySeverityOptions(res.Bag, opts)
	return fs, &res, nil
}

func resolveConfig(path string, cfg *config.Config) (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	loaded, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return loaded, nil
}

func tracerOf(ctx context.Context, opts Options) trace.Tracer {
	if opts.Tracer != nil {
		return opts.Tracer
	}
	return trace.FromContext(ctx)
}

// compileOne is safe to run concurrently: every call owns its graph.
func compileOne(ctx context.Context, fs *source.FileSet, path string, id source.FileID, loadErr error, holder bool, opts Options) Result {
	tracer := tracerOf(ctx, opts)
	span := trace.Begin(tracer, trace.ScopeFile, "file:"+path, trace.ParentFromContext(ctx))
	defer span.End("")

	bag := diag.NewBag(opts.MaxDiagnostics)
	res := Result{Path: path, FileID: id, Holder: holder, Bag: bag}
	emit := func(stage buildpipeline.Stage, status buildpipeline.Status, err error, start time.Time) {
		buildpipeline.Emit(opts.Progress, buildpipeline.Event{
			File: path, Stage: stage, Status: status, Err: err, Elapsed: time.Since(start),
		})
	}
	start := time.Now()
	emit(buildpipeline.StageLoad, buildpipeline.StatusWorking, nil, start)

	if loadErr != nil {
		bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+loadErr.Error()))
		emit(buildpipeline.StageLoad, buildpipeline.StatusError, loadErr, start)
		return res
	}
	file := fs.Get(id)
	cfg := opts.Config
	fp, err := cfg.Options.Fingerprint()
	if err != nil {
		bag.Add(diag.NewError(diag.CfgInvalid, source.Span{File: id}, err.Error()))
		emit(buildpipeline.StageLoad, buildpipeline.StatusError, err, start)
		return res
	}
	key := CacheKey(project.Digest(file.Hash), fp, holder)

	if opts.Cache != nil && !opts.Timings {
		var payload DiskPayload
		ok, err := opts.Cache.Get(key, &payload)
		if err != nil {
			diag.ReportWarning(diag.BagReporter{Bag: bag}, diag.IOCacheError, source.Span{File: id}, err.Error()).Emit()
		}
		if ok {
			res.Cached = true
			res.Codes = payload.Codes
			for _, d := range payload.Diagnostics {
				bag.Add(withFile(d, id))
			}
			trace.Point(tracer, trace.ScopeFile, "cache:hit", path)
			emit(buildpipeline.StageLoad, buildpipeline.StatusCached, nil, start)
			return res
		}
	}

	if err := ctx.Err(); err != nil {
		emit(buildpipeline.StageCompile, buildpipeline.StatusError, err, start)
		return res
	}
	emit(buildpipeline.StageCompile, buildpipeline.StatusWorking, nil, start)
	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	f := vfile.New(path, source.NewSnapshot(string(file.Content)), vfile.Settings{
		Options: cfg.Options,
		Kind:    source.KindOf(path, cfg.Options.Extensions.Markdown, cfg.Options.Extensions.HTML),
		File:    id,
		Project: cfg.Root,
		Holder:  holder,
		Tracer:  tracer,
		Timer:   timer,
	})
	res.Codes = flatten(f.Root())
	diags := f.Diagnostics()
	for _, d := range diags {
		bag.Add(d)
	}
	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		reportTimings(bag, id, fileTimings{Path: path, TotalMS: report.TotalMS, Phases: report.Phases, Recomputes: f.Recomputes()})
	}

	if opts.Cache != nil {
		emit(buildpipeline.StageStore, buildpipeline.StatusWorking, nil, start)
		payload := &DiskPayload{Path: path, Holder: holder, Codes: res.Codes, Diagnostics: diags}
		if err := opts.Cache.Put(key, payload); err != nil {
			diag.ReportWarning(diag.BagReporter{Bag: bag}, diag.IOCacheError, source.Span{File: id}, err.Error()).Emit()
		}
	}
	status := buildpipeline.StatusDone
	if bag.HasErrors() {
		status = buildpipeline.StatusError
	}
	emit(buildpipeline.StageCompile, status, nil, start)
	return res
}

func applySeverityOptions(bag *diag.Bag, opts Options) {
	if bag == nil {
		return
	}
	if opts.IgnoreWarnings {
		bag.Filter(func(d diag.Diagnostic) bool {
			return d.Severity == diag.SevError || d.Code == diag.ObsTimings
		})
	}
	if opts.WarningsAsErrors {
		bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}
	// Пересортировываем после изменения severity
	bag.Sort()
}

// flatten lists every embedded code in walk order, skipping the root.
func flatten(root *vfile.Node) []Code {
	var out []Code
	root.Walk(func(n *vfile.Node) bool {
		if n == root {
			return true
		}
		parent := ""
		if p := n.Parent(); p != nil && p != root {
			parent = p.ID
		}
		out = append(out, Code{ID: n.ID, LanguageID: n.LanguageID, Plugin: n.Plugin, Parent: parent, Artifact: n.Artifact})
		return true
	})
	return out
}

func withFile(d diag.Diagnostic, id source.FileID) diag.Diagnostic {
	d.Primary.File = id
	if len(d.Notes) > 0 {
		notes := make([]diag.Note, len(d.Notes))
		for i, n := range d.Notes {
			n.Span.File = id
			notes[i] = n
		}
		d.Notes = notes
	}
	return d
}
