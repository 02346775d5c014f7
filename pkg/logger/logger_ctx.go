package logger

import "context"

// tracerCtxKey use concrete type struct{} to avoid allocation when assigning to an interface{}.
type tracerCtxKey struct{}

var tracerKey = tracerCtxKey{}

// Tracer is request-scoped data that every log line carries.
type Tracer struct {
	RemoteAddr string `json:"remote_addr"`
	AppTraceID string `json:"app_trace_id"`
}

// Inject inject Tracer object into context.
// As Go doc said: https://golang.org/pkg/context/#WithValue
// Use context Values only for request-scoped data that transits processes and APIs,
// not for passing optional parameters to functions.
func Inject(ctx context.Context, stuff Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, stuff)
}

// Extract get Tracer information from context.
func Extract(ctx context.Context) (Tracer, bool) {
	stuff, ok := ctx.Value(tracerKey).(Tracer)
	if !ok {
		return Tracer{}, false
	}

	return stuff, ok
}
