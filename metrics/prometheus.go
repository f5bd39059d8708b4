package metrics

import (
	"sync"

	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

var initOnce struct {
	sync.Mutex
	done bool
}

// NewMeterProvider creates a meter provider whose instruments are
// collected by reg.
func NewMeterProvider(reg prom.Registerer) (*metric.MeterProvider, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create prometheus instance")
	}
	return metric.NewMeterProvider(metric.WithReader(exporter)), nil
}

// InitPrometheus sets a global meter provider backed by the default
// Prometheus registry and starts runtime instrumentation. Only the first
// call has an effect.
func InitPrometheus() error {
	initOnce.Lock()
	defer initOnce.Unlock()
	if initOnce.done {
		return nil
	}

	provider, err := NewMeterProvider(prom.DefaultRegisterer)
	if err != nil {
		return err
	}
	otel.SetMeterProvider(provider)

	if err := runtime.Start(); err != nil {
		return errors.Wrap(err, "failed to start runtime")
	}

	initOnce.done = true
	return nil
}
