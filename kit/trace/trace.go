package trace

import (
	"go.opentelemetry.io/otel/trace"
)

func CreateNoOpTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("no-op")
}
