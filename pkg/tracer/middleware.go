package tracer

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Middleware opens one span per request. Paths accepted by skipFunc
// (health checks and the like) are passed through untraced.
func Middleware(skipFunc func(r *http.Request) bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipFunc != nil && skipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		spanName := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		ctx, span := StartSpan(r.Context(), spanName, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
