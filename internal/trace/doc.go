// Package trace is the logging and tracing layer of vuecore.
//
// Components never print; they emit events to a Tracer taken from their
// options or from context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "template", parent)
//	defer span.End("")
//
// Implementations: Nop (default), StreamTracer (text or NDJSON to a writer),
// RingTracer (last N events, dumped on panic) and MultiTracer.
//
// Levels filter by scope: phase shows driver and pass spans, detail adds
// per-file events, debug adds node events. Recovered failures are emitted
// with Errorf and pass every level except off.
package trace
