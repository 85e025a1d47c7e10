// Package buildpipeline describes batch compile progress for the CLI.
package buildpipeline

import "time"

// Stage describes a high-level pipeline phase of one file.
type Stage string

const (
	// StageLoad reads the file and checks the cache.
	StageLoad Stage = "load"
	// StageCompile runs the virtual file pipeline.
	StageCompile Stage = "compile"
	// StageStore writes the result to the disk cache.
	StageStore Stage = "store"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusCached indicates the result came from the disk cache.
	StatusCached Status = "cached"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Finished reports whether the event ends the file's work.
func (e Event) Finished() bool {
	switch e.Status {
	case StatusDone, StatusError, StatusCached:
		return true
	}
	return false
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}
