package tracing

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func enabledConfig(endpoint string) *Config {
	return &Config{
		Enabled:     true,
		ServiceName: "tracefwd-test",
		OTLP: &OTLPConfig{
			Endpoint: endpoint,
		},
	}
}

func TestNewTracer_NilConfig(t *testing.T) {
	tp, err := NewTracer(nil, "1.0.0")

	assert.Nil(t, tp)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNewTracer_Disabled(t *testing.T) {
	tp, err := NewTracer(DefaultConfig(), "1.0.0")

	require.NoError(t, err)
	assert.NotNil(t, tp)
	_ = tp.Shutdown(context.Background())
}

func TestNewTracer_EmptyServiceName(t *testing.T) {
	cfg := enabledConfig("localhost:4318")
	cfg.ServiceName = ""

	tp, err := NewTracer(cfg, "1.0.0")

	assert.Nil(t, tp)
	assert.ErrorIs(t, err, ErrEmptyServiceName)
}

func TestNewTracer_EmptyEndpoint(t *testing.T) {
	for _, otlp := range []*OTLPConfig{nil, {Endpoint: ""}} {
		cfg := enabledConfig("")
		cfg.OTLP = otlp

		tp, err := NewTracer(cfg, "1.0.0")

		assert.Nil(t, tp)
		assert.ErrorIs(t, err, ErrEmptyEndpoint)
	}
}

func TestNewTracer_Success(t *testing.T) {
	tests := []struct {
		name         string
		endpoint     string
		samplingRate float64
		headers      map[string]string
	}{
		{name: "host:port", endpoint: "localhost:4318", samplingRate: 0.5},
		{name: "http 前缀", endpoint: "http://localhost:4318"},
		{name: "https 前缀", endpoint: "https://localhost:4318"},
		{name: "带请求头", endpoint: "localhost:4318", headers: map[string]string{"Authorization": "Bearer token"}},
		{name: "无效采样率", endpoint: "localhost:4318", samplingRate: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := enabledConfig(tt.endpoint)
			cfg.SamplingRate = tt.samplingRate
			cfg.OTLP.Headers = tt.headers

			tp, err := NewTracer(cfg, "1.0.0")

			require.NoError(t, err)
			assert.NotNil(t, tp)
			_ = tp.Shutdown(context.Background())
		})
	}
}

func TestMustNewTracer(t *testing.T) {
	assert.NotPanics(t, func() {
		tp := MustNewTracer(enabledConfig("localhost:4318"), "1.0.0")
		_ = tp.Shutdown(context.Background())
	})
	assert.Panics(t, func() {
		MustNewTracer(nil, "1.0.0")
	})
}

func TestPropagator_InjectsTraceparent(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "submit")
	defer span.End()

	header := http.Header{}
	Propagator().Inject(ctx, propagation.HeaderCarrier(header))

	assert.NotEmpty(t, header.Get("traceparent"))
	assert.Contains(t, header.Get("traceparent"), span.SpanContext().TraceID().String())
}
