package vfile

import (
	"fmt"
	"sort"

	"vuecore/internal/config"
	"vuecore/internal/observ"
	"vuecore/internal/project"
	"vuecore/internal/reactive"
	"vuecore/internal/source"
	"vuecore/internal/trace"
)

// Key identifies a virtual file: the same path compiled under two option
// sets yields two files.
type Key struct {
	Path        string
	Fingerprint project.Digest
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.Path, k.Fingerprint.Short())
}

// Input opens or updates one file.
type Input struct {
	Path     string
	Project  string
	File     source.FileID
	Options  config.Options
	Snapshot source.Snapshot
}

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	Tracer trace.Tracer
	Timer  *observ.Timer
	// Plugins overrides DefaultPlugins.
	Plugins func(config.Options) []Plugin
}

// Registry owns every open virtual file on one reactive graph and the
// global types holder of each project. It is not safe for concurrent use.
type Registry struct {
	graph   *reactive.Graph
	tracer  trace.Tracer
	timer   *observ.Timer
	plugins func(config.Options) []Plugin
	files   map[Key]*VirtualFile
	holders map[string]Key
	seq     uint64
}

// NewRegistry creates an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	if opts.Plugins == nil {
		opts.Plugins = DefaultPlugins
	}
	return &Registry{
		graph:   reactive.NewGraph(opts.Tracer),
		tracer:  opts.Tracer,
		timer:   opts.Timer,
		plugins: opts.Plugins,
		files:   map[Key]*VirtualFile{},
		holders: map[string]Key{},
	}
}

// KeyOf computes the registry key of path under opts.
func KeyOf(path string, opts config.Options) (Key, error) {
	fp, err := opts.Fingerprint()
	if err != nil {
		return Key{}, err
	}
	return Key{Path: source.NormalizePath(path), Fingerprint: fp}, nil
}

// Open returns the file for in. A known key is updated in place and the
// same *VirtualFile is returned; otherwise a new file is registered and
// becomes its project's holder when the project has none.
func (r *Registry) Open(in Input) (*VirtualFile, error) {
	key, err := KeyOf(in.Path, in.Options)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", in.Path, err)
	}
	if f, ok := r.files[key]; ok {
		f.Update(in.Snapshot)
		return f, nil
	}
	_, hasHolder := r.holders[in.Project]
	kind := source.KindOf(in.Path, in.Options.Extensions.Markdown, in.Options.Extensions.HTML)
	f := newFile(r.graph, in.Path, in.Snapshot, Settings{
		Options: in.Options,
		Kind:    kind,
		File:    in.File,
		Project: in.Project,
		Holder:  !hasHolder,
		Plugins: r.plugins(in.Options),
		Tracer:  r.tracer,
		Timer:   r.timer,
	})
	r.seq++
	f.seq = r.seq
	r.files[key] = f
	if !hasHolder {
		r.holders[in.Project] = key
		trace.Point(r.tracer, trace.ScopeFile, "registry:holder", key.String())
	}
	trace.Point(r.tracer, trace.ScopeFile, "registry:open", key.String())
	return f, nil
}

// Get looks a file up by path and options.
func (r *Registry) Get(path string, opts config.Options) (*VirtualFile, bool) {
	key, err := KeyOf(path, opts)
	if err != nil {
		return nil, false
	}
	f, ok := r.files[key]
	return f, ok
}

// Remove drops a file. When it held its project's global types, the
// earliest-registered remaining file of the project takes over and its
// script artifact is invalidated.
func (r *Registry) Remove(path string, opts config.Options) bool {
	key, err := KeyOf(path, opts)
	if err != nil {
		return false
	}
	f, ok := r.files[key]
	if !ok {
		return false
	}
	delete(r.files, key)
	trace.Point(r.tracer, trace.ScopeFile, "registry:remove", key.String())
	if r.holders[f.set.Project] != key {
		return true
	}
	delete(r.holders, f.set.Project)
	var (
		next    *VirtualFile
		nextKey Key
	)
	for k, cand := range r.files {
		if cand.set.Project != f.set.Project {
			continue
		}
		if next == nil || cand.seq < next.seq {
			next, nextKey = cand, k
		}
	}
	if next != nil {
		r.holders[f.set.Project] = nextKey
		next.SetHolder(true)
		trace.Point(r.tracer, trace.ScopeFile, "registry:holder", nextKey.String())
	}
	return true
}

// Holder returns the global types holder of project.
func (r *Registry) Holder(project string) (*VirtualFile, bool) {
	key, ok := r.holders[project]
	if !ok {
		return nil, false
	}
	f, ok := r.files[key]
	return f, ok
}

// Files lists open files in registration order.
func (r *Registry) Files() []*VirtualFile {
	out := make([]*VirtualFile, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Len is the number of open files.
func (r *Registry) Len() int {
	return len(r.files)
}
