package observ

import (
	"strings"
	"testing"
)

func TestTimerMerge(t *testing.T) {
	total := NewTimer()
	for range 3 {
		file := NewTimer()
		file.Track("parse", func() {})
		file.End(file.Begin("template"), "")
		total.Merge(file)
	}
	report := total.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	if report.Phases[0].Name != "parse" || report.Phases[0].Count != 3 {
		t.Errorf("parse phase = %+v", report.Phases[0])
	}
	if !strings.Contains(total.Summary(), "x3") {
		t.Errorf("summary misses counts:\n%s", total.Summary())
	}
}
