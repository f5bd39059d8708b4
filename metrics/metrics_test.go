package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNew(t *testing.T) {
	m := New(Config{Host: "127.0.0.1", Port: 9464, HttpServerReadTimeout: 15})

	require.NotNil(t, m.server)
	assert.Equal(t, "127.0.0.1:9464", m.server.Addr)
	assert.Equal(t, 15*time.Second, m.server.ReadTimeout)
}

func TestNewHttpServer_ServesMetrics(t *testing.T) {
	server := NewHttpServer(Config{Host: "127.0.0.1", Port: 0})

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp404, err := http.Get(ts.URL + "/other")
	require.NoError(t, err)
	defer resp404.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp404.StatusCode)
}

func TestNewMeterProvider_ExportsCounters(t *testing.T) {
	reg := prom.NewRegistry()
	provider, err := NewMeterProvider(reg)
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	counter, err := provider.Meter("test").Int64Counter("mail.messages.sent")
	require.NoError(t, err)
	counter.Add(context.Background(), 3, otelmetric.WithAttributes(attribute.String("sender", "smtp")))

	ts := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mail_messages_sent_total")
	assert.Contains(t, string(body), `sender="smtp"`)
}

func TestMetrics_StartAndClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode")
	}

	m := New(Config{Host: "127.0.0.1", Port: 0, HttpServerReadTimeout: 5})
	require.NoError(t, m.Start())
	// second init is a no-op
	require.NoError(t, InitPrometheus())
	assert.NoError(t, m.Close())
}

func TestSendCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	counters, err := NewSendCounters(provider, "smtp")
	require.NoError(t, err)

	ctx := context.Background()
	counters.Sent(ctx)
	counters.Sent(ctx)
	counters.Failed(ctx)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, m.Name)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value("sender")
				assert.Equal(t, "smtp", v.AsString())
				got[m.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"mail.messages.sent": 2, "mail.messages.failed": 1}, got)
}

func TestNewSendCounters_GlobalProvider(t *testing.T) {
	counters, err := NewSendCounters(nil, "noop")
	require.NoError(t, err)
	counters.Sent(context.Background())
}
