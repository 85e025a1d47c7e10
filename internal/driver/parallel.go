package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"vuecore/internal/buildpipeline"
	"vuecore/internal/project"
	"vuecore/internal/source"
	"vuecore/internal/trace"
)

// ListFiles returns the component files of dir for the configured
// extensions, sorted for deterministic order.
func ListFiles(dir string, opts Options) ([]string, error) {
	cfg, err := resolveConfig(dir, opts.Config)
	if err != nil {
		return nil, err
	}
	return project.CollectFiles(dir, cfg.Options.Extensions.All())
}

// CompileDir компилирует все файлы компонентов в директории параллельно.
// Держатель глобальных типов - первый файл в отсортированном порядке;
// он выбирается до запуска воркеров.
func CompileDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []Result, error) {
	cfg, err := resolveConfig(dir, opts.Config)
	if err != nil {
		return nil, nil, err
	}
	opts.Config = cfg
	files, err := project.CollectFiles(dir, cfg.Options.Extensions.All())
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	tracer := tracerOf(ctx, opts)
	span := trace.Begin(tracer, trace.ScopeDriver, "compile-dir", trace.ParentFromContext(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	// Предзагружаем все файлы: FileSet не потокобезопасен
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make([]error, len(files))
	for i, path := range files {
		fileIDs[i], loadErrors[i] = fileSet.Load(path)
		buildpipeline.Emit(opts.Progress, buildpipeline.Event{File: path, Stage: buildpipeline.StageLoad, Status: buildpipeline.StatusQueued})
	}
	holder := 0
	for holder < len(files)-1 && loadErrors[holder] != nil {
		holder++
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = compileOne(gctx, fileSet, path, fileIDs[i], loadErrors[i], i == holder, opts)
			applySeverityOptions(results[i].Bag, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
