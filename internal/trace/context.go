package trace

import "context"

// ctxState is what a context carries: the tracer and the span new spans
// nest under. Both live in one value so a compile-dir span handed to the
// workers keeps its tracer.
type ctxState struct {
	tracer Tracer
	parent uint64
}

type ctxKey struct{}

func stateOf(ctx context.Context) ctxState {
	if ctx != nil {
		if st, ok := ctx.Value(ctxKey{}).(ctxState); ok {
			return st
		}
	}
	return ctxState{tracer: Nop}
}

// FromContext extracts the Tracer from context, Nop if absent.
func FromContext(ctx context.Context) Tracer {
	return stateOf(ctx).tracer
}

// WithTracer attaches t, keeping any parent span already recorded.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	st := stateOf(ctx)
	st.tracer = t
	return context.WithValue(ctx, ctxKey{}, st)
}

// ParentFromContext returns the id of the span stored by WithSpan, or 0.
func ParentFromContext(ctx context.Context) uint64 {
	return stateOf(ctx).parent
}

// WithSpan records s as the parent for spans started from ctx.
func WithSpan(ctx context.Context, s *Span) context.Context {
	st := stateOf(ctx)
	st.parent = s.ID()
	return context.WithValue(ctx, ctxKey{}, st)
}
