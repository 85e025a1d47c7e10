package driver

import (
	"encoding/json"
	"fmt"

	"vuecore/internal/diag"
	"vuecore/internal/observ"
	"vuecore/internal/source"
)

// fileTimings is the note body of a file's timing report: wall time per
// phase plus how often each node of the file's reactive graph computed.
type fileTimings struct {
	Path       string               `json:"path"`
	TotalMS    float64              `json:"total_ms"`
	Phases     []observ.PhaseReport `json:"phases"`
	Recomputes map[string]int       `json:"recomputes,omitempty"`
}

func (t fileTimings) diagnostic(file source.FileID) (diag.Diagnostic, error) {
	note, err := json.Marshal(t)
	if err != nil {
		return diag.Diagnostic{}, err
	}
	runs := 0
	for _, n := range t.Recomputes {
		runs += n
	}
	span := source.Span{File: file}
	msg := fmt.Sprintf("timings %s: %.2f ms, %d phases, %d graph computations", t.Path, t.TotalMS, len(t.Phases), runs)
	return diag.New(diag.SevInfo, diag.ObsTimings, span, msg).WithNote(span, string(note)), nil
}

// reportTimings adds the report even to a bag that reached its limit.
func reportTimings(bag *diag.Bag, file source.FileID, t fileTimings) {
	d, err := t.diagnostic(file)
	if err != nil || bag.Add(d) {
		return
	}
	extra := diag.NewBag(1)
	extra.Add(d)
	bag.Merge(extra)
}
