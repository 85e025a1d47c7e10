package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last events in memory; a panic dumps them.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	stored uint64 // events ever kept; the next slot is stored % len(events)
	level  Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Kind, ev.Scope) {
		return
	}
	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = NextSeq()
	}
	t.mu.Lock()
	t.events[t.stored%uint64(len(t.events))] = stored
	t.stored++
	t.mu.Unlock()
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := uint64(len(t.events))
	n := min(t.stored, size)
	out := make([]Event, 0, n)
	for i := t.stored - n; i < t.stored; i++ {
		out = append(out, t.events[i%size])
	}
	return out
}

// Overwritten reports how many events fell out of the buffer.
func (t *RingTracer) Overwritten() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if size := uint64(len(t.events)); t.stored > size {
		return t.stored - size
	}
	return 0
}

// Dump writes the kept events to w in the given format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
