package trace

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Heartbeat sits in front of a tracer and remembers which component files
// are being compiled. Every interval it emits a heartbeat naming the files
// still open, oldest first, so a stuck compile points at its file.
type Heartbeat struct {
	next     Tracer
	interval time.Duration

	mu   sync.Mutex
	open map[uint64]openFile

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

type openFile struct {
	path  string
	since time.Time
}

// StartHeartbeat wraps next and starts ticking; nil when disabled.
func StartHeartbeat(next Tracer, interval time.Duration) *Heartbeat {
	if next == nil || !next.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		next:     next,
		interval: interval,
		open:     map[uint64]openFile{},
		stopCh:   make(chan struct{}),
	}
	h.wg.Add(1)
	go h.run()
	return h
}

func (h *Heartbeat) Emit(ev *Event) {
	if ev.Scope == ScopeFile {
		if path, ok := strings.CutPrefix(ev.Name, "file:"); ok {
			h.mu.Lock()
			switch ev.Kind {
			case KindSpanBegin:
				h.open[ev.SpanID] = openFile{path: path, since: ev.Time}
			case KindSpanEnd:
				delete(h.open, ev.SpanID)
			}
			h.mu.Unlock()
		}
	}
	if h.next.Level().ShouldEmit(ev.Kind, ev.Scope) {
		h.next.Emit(ev)
	}
}

// InFlight lists the files whose span is open, oldest first.
func (h *Heartbeat) InFlight(now time.Time) []string {
	h.mu.Lock()
	files := make([]openFile, 0, len(h.open))
	for _, f := range h.open {
		files = append(files, f)
	}
	h.mu.Unlock()
	slices.SortFunc(files, func(a, b openFile) int {
		if c := a.since.Compare(b.since); c != 0 {
			return c
		}
		return strings.Compare(a.path, b.path)
	})
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = fmt.Sprintf("%s %s", f.path, now.Sub(f.since).Round(time.Millisecond))
	}
	return out
}

func (h *Heartbeat) run() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case now := <-ticker.C:
			detail := fmt.Sprintf("#%d idle", n)
			if files := h.InFlight(now); len(files) > 0 {
				detail = fmt.Sprintf("#%d compiling %s", n, strings.Join(files, ", "))
			}
			h.next.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: detail,
			})
		case <-h.stopCh:
			return
		}
	}
}

func (h *Heartbeat) Flush() error { return h.next.Flush() }

// Close stops ticking and closes the wrapped tracer.
func (h *Heartbeat) Close() error {
	h.Stop()
	return h.next.Close()
}

// Level lets file spans through even below LevelDetail; Emit applies the
// wrapped tracer's own level before forwarding.
func (h *Heartbeat) Level() Level { return max(h.next.Level(), LevelDetail) }

func (h *Heartbeat) Enabled() bool { return h.next.Enabled() }

// Stop stops the goroutine and waits for it; safe to call twice or on nil.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stopCh) })
	h.wg.Wait()
}
