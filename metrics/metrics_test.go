package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_NilConfig(t *testing.T) {
	c, err := NewMetrics(nil)

	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNewMetrics_Success(t *testing.T) {
	c, err := NewMetrics(&Config{Namespace: "test", Path: "/metrics"})

	require.NoError(t, err)
	assert.IsType(t, &PrometheusCollector{}, c)
}

func TestMustNewMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.NotNil(t, MustNewMetrics(&Config{Namespace: "test"}))
	})
	assert.Panics(t, func() {
		MustNewMetrics(nil)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, ":9597", cfg.Addr)
	assert.Equal(t, "/metrics", cfg.Path)
	assert.Equal(t, "tracefwd", cfg.Namespace)
}

func TestPrometheusCollector_Record(t *testing.T) {
	c := MustNewMetrics(&Config{Namespace: "test"})

	c.RecordHook("start", OutcomeForwarded)
	c.RecordHook("start", OutcomeForwarded)
	c.RecordHook("stop", OutcomeFiltered)
	c.RecordSubmission("200", 15*time.Millisecond, 128)
	c.RecordFailure("transport")
	c.SetInFlight(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.hooksTotal.WithLabelValues("start", OutcomeForwarded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.hooksTotal.WithLabelValues("stop", OutcomeFiltered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.submissionsTotal.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failuresTotal.WithLabelValues("transport")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.inFlight))
}

func TestPrometheusCollector_Handler(t *testing.T) {
	c := MustNewMetrics(&Config{Namespace: "test"})
	c.RecordHook("start", OutcomeForwarded)

	server := httptest.NewServer(c.GetHandler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "test_formatter_hooks_total")
	assert.Equal(t, "/metrics", c.GetPath())
}
