package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"vuecore/internal/diagfmt"
	"vuecore/internal/observ"
)

// printTimings writes the per-file phase reports followed by an
// aggregate per phase and the wall time since the command started.
func printTimings(out io.Writer, run *compileRun) {
	if out == nil || run == nil {
		return
	}
	totals := map[string]observ.PhaseReport{}
	var order []string
	var cached int
	for i := range run.results {
		r := &run.results[i]
		if r.Cached {
			cached++
			continue
		}
		if r.Timing == nil {
			continue
		}
		if run.dir {
			fmt.Fprintf(out, "%s %.2f ms\n", displayPath(run.fs, r, diagfmt.PathModeAuto), r.Timing.TotalMS)
		}
		for _, ph := range r.Timing.Phases {
			if run.dir {
				fmt.Fprintf(out, "  %-20s %7.2f ms\n", ph.Name, ph.DurationMS)
			}
			agg, seen := totals[ph.Name]
			if !seen {
				order = append(order, ph.Name)
				agg.Name = ph.Name
			}
			agg.DurationMS += ph.DurationMS
			agg.Count++
			totals[ph.Name] = agg
		}
	}

	// самые тяжёлые фазы сверху
	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]].DurationMS > totals[order[j]].DurationMS
	})
	if len(order) > 0 {
		fmt.Fprintln(out, "phases:")
	}
	for _, name := range order {
		ph := totals[name]
		fmt.Fprintf(out, "  %-20s %7.2f ms  x%d\n", ph.Name, ph.DurationMS, ph.Count)
	}
	if cached > 0 {
		fmt.Fprintf(out, "cached %d of %d files\n", cached, len(run.results))
	}
	if !started.IsZero() {
		fmt.Fprintf(out, "wall %.1f ms\n", toMillis(time.Since(started)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
