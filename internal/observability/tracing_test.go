package observability

import (
	"testing"

	"github.com/smallbiznis/dukaan/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func TestModuleInstallsGlobalTracerProvider(t *testing.T) {
	var provided *sdktrace.TracerProvider

	app := fx.New(
		fx.NopLogger,
		fx.Supply(config.Config{
			AppName:     "dukaan-test",
			AppVersion:  "test",
			Environment: "test",
		}),
		fx.Provide(zap.NewNop),
		Module,
		fx.Populate(&provided),
	)
	require.NoError(t, app.Err())

	// Constructing the graph must already have replaced the default no-op
	// provider, so spans recorded by otelgorm reach the SDK.
	require.NotNil(t, provided)
	assert.Same(t, provided, otel.GetTracerProvider())
}
