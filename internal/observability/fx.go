package observability

import (
	"github.com/smallbiznis/dukaan/internal/observability/metrics"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module wires metrics and tracing. The invoke forces the tracer provider to
// be constructed at startup; nothing else in the graph depends on it, and a
// lazily built provider would never register itself as the otel global.
var Module = fx.Module("observability",
	fx.Provide(metrics.New),
	fx.Provide(NewTracerProvider),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
