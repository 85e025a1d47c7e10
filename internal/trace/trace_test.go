package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	s := Begin(tr, ScopePass, "template", 0)
	Begin(tr, ScopeFile, "file:App.vue", s.ID()).End("")
	Errorf(tr, "plugin", "boom %d", 1)
	s.End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ template") || !strings.Contains(out, "← template (ok)") {
		t.Fatalf("missing pass span:\n%s", out)
	}
	if strings.Contains(out, "App.vue") {
		t.Errorf("file scope must be filtered at phase level:\n%s", out)
	}
	if !strings.Contains(out, "! plugin (boom 1)") {
		t.Errorf("error events must pass:\n%s", out)
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeNode, name, "")
	}
	got := ring.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop by default")
	}
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	span := Begin(FromContext(ctx), ScopeDriver, "compile", 0)
	ctx = WithSpan(ctx, span)
	if ParentFromContext(ctx) != span.ID() {
		t.Fatalf("parent id not propagated")
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"name":"compile"`) {
		t.Errorf("dump = %s", buf.String())
	}
}

func TestRingOverwritten(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for i := range 5 {
		Point(ring, ScopeNode, string(rune('a'+i)), "")
	}
	got := ring.Snapshot()
	if len(got) != 3 || got[0].Name != "c" || got[2].Name != "e" {
		t.Fatalf("snapshot = %+v", got)
	}
	if n := ring.Overwritten(); n != 2 {
		t.Errorf("overwritten = %d", n)
	}
}

func TestSpanKeepsTracer(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	ctx = WithSpan(ctx, Begin(ring, ScopeDriver, "compile-dir", 0))
	if FromContext(ctx) != ring {
		t.Fatalf("WithSpan lost the tracer")
	}
	// новый трейсер не сбрасывает родителя
	parent := ParentFromContext(ctx)
	if ctx = WithTracer(ctx, Nop); ParentFromContext(ctx) != parent || parent == 0 {
		t.Errorf("parent = %d, want %d", ParentFromContext(ctx), parent)
	}
}

func TestHeartbeatNamesOpenFiles(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStreamTracer(&buf, LevelPhase, FormatText)
	h := StartHeartbeat(stream, time.Hour)
	defer h.Stop()

	app := Begin(h, ScopeFile, "file:src/App.vue", 0)
	nav := Begin(h, ScopeFile, "file:src/Nav.vue", 0)
	Point(h, ScopeFile, "cache:hit", "src/Nav.vue")
	nav.End("")

	got := h.InFlight(time.Now())
	if len(got) != 1 || !strings.HasPrefix(got[0], "src/App.vue ") {
		t.Fatalf("in flight = %v", got)
	}
	app.End("")
	if got := h.InFlight(time.Now()); len(got) != 0 {
		t.Errorf("in flight after end = %v", got)
	}
	if strings.Contains(buf.String(), "App.vue") || strings.Contains(buf.String(), "cache:hit") {
		t.Errorf("file events leaked past the phase level:\n%s", buf.String())
	}
}

func TestNewChain(t *testing.T) {
	if _, err := ParseMode("disk"); err == nil {
		t.Errorf("unknown mode accepted")
	}
	mode, err := ParseMode("Both")
	if err != nil || mode != ModeBoth || mode.String() != "both" {
		t.Fatalf("mode = %v, %v", mode, err)
	}
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Mode: mode, Output: &buf, Heartbeat: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()
	if _, ok := tr.(*Heartbeat); !ok {
		t.Fatalf("tracer = %T, want heartbeat in front", tr)
	}
	ring := RingOf(tr)
	if ring == nil {
		t.Fatal("no ring in the chain")
	}
	Point(tr, ScopeFile, "registry:open", "src/App.vue")
	if len(ring.Snapshot()) != 1 || !strings.Contains(buf.String(), "registry:open") {
		t.Errorf("event did not reach both sinks: ring %d, stream %q", len(ring.Snapshot()), buf.String())
	}
}
