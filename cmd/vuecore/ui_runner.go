package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"vuecore/internal/buildpipeline"
	"vuecore/internal/driver"
	"vuecore/internal/source"
	"vuecore/internal/ui"
)

type compileOutcome struct {
	fs      *source.FileSet
	results []driver.Result
	err     error
}

// runCompileWithUI runs CompileDir behind a progress view. The view is
// drawn on stderr so stdout stays reserved for the compile output.
func runCompileWithUI(ctx context.Context, title, dir string, files []string, opts driver.Options) (*source.FileSet, []driver.Result, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		fs, results, err := driver.CompileDir(ctx, dir, optsCopy)
		outcomeCh <- compileOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, dir, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// the view may quit early on ctrl+c; workers must not block on a full channel
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
