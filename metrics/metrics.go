// Package metrics exposes OpenTelemetry metrics (mail send counters,
// runtime stats) in Prometheus format.
package metrics

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Host                  string `envconfig:"METRICS_HOST" required:"true"`
	Port                  int    `envconfig:"METRICS_PORT" required:"true"`
	HttpServerReadTimeout int    `envconfig:"METRICS_READ_TIMEOUT" default:"30"`
}

// Metrics serves /metrics over HTTP.
type Metrics struct {
	config Config
	server *http.Server
}

var _ io.Closer = (*Metrics)(nil)

// InitDefault installs the Prometheus meter provider and starts serving.
func InitDefault(config Config) (io.Closer, error) {
	m := New(config)
	if err := m.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start metrics server")
	}

	return m, nil
}

func New(config Config) *Metrics {
	return &Metrics{
		config: config,
		server: NewHttpServer(config),
	}
}

// Start installs the global meter provider and serves in the background.
func (m *Metrics) Start() error {
	if err := InitPrometheus(); err != nil {
		return errors.Wrap(err, "failed to init prometheus")
	}

	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Default().Warn("metrics server failed", "error", err.Error())
		}
	}()

	return nil
}

func (m *Metrics) Close() error {
	return errors.Wrap(m.server.Close(), "failed to close metrics")
}

func NewHttpServer(conf Config) *http.Server {
	r := http.NewServeMux()
	r.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:        fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler:     r,
		ReadTimeout: time.Duration(conf.HttpServerReadTimeout) * time.Second,
	}
}
