package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// progressView is the --ui flag: whether a directory run shows the live
// per-file progress model instead of printing once at the end.
type progressView string

const (
	viewAuto progressView = "auto"
	viewOn   progressView = "on"
	viewOff  progressView = "off"
)

func (v *progressView) String() string { return string(*v) }

func (v *progressView) Type() string { return "auto|on|off" }

func (v *progressView) Set(raw string) error {
	switch p := progressView(strings.TrimSpace(strings.ToLower(raw))); p {
	case "":
		*v = viewAuto
	case viewAuto, viewOn, viewOff:
		*v = p
	default:
		return fmt.Errorf("invalid --ui value %q (expected auto|on|off)", raw)
	}
	return nil
}

func addProgressFlag(cmd *cobra.Command, def progressView) {
	v := def
	cmd.Flags().Var(&v, "ui", "progress view for directories (auto|on|off)")
}

func readProgressView(cmd *cobra.Command) (progressView, error) {
	f := cmd.Flags().Lookup("ui")
	if f == nil {
		return viewOff, nil
	}
	v, ok := f.Value.(*progressView)
	if !ok {
		return viewOff, fmt.Errorf("ui flag has type %s", f.Value.Type())
	}
	return *v, nil
}

// shows reports whether a run over files components draws the progress
// view. Auto mode needs a text format on a terminal and more than one file;
// machine-readable output never gets terminal frames.
func (v progressView) shows(format string, files int) bool {
	switch v {
	case viewOn:
		return true
	case viewOff:
		return false
	default:
		return format == "text" && files > 1 && isTerminal(os.Stdout) && isTerminal(os.Stderr)
	}
}
