package metrics

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/pure-golang/mailer/metrics"

// SendCounters counts delivered and failed messages of one sender.
type SendCounters struct {
	sent   metric.Int64Counter
	failed metric.Int64Counter
	attrs  metric.MeasurementOption
}

// NewSendCounters registers the mail.messages.sent and
// mail.messages.failed counters on mp, labelled with the sender name.
// A nil mp uses the global meter provider.
func NewSendCounters(mp metric.MeterProvider, sender string) (*SendCounters, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	sent, err := meter.Int64Counter("mail.messages.sent",
		metric.WithDescription("Messages accepted by the delivery engine"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sent counter")
	}

	failed, err := meter.Int64Counter("mail.messages.failed",
		metric.WithDescription("Messages the delivery engine failed to send"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create failed counter")
	}

	return &SendCounters{
		sent:   sent,
		failed: failed,
		attrs:  metric.WithAttributes(attribute.String("sender", sender)),
	}, nil
}

func (c *SendCounters) Sent(ctx context.Context) {
	c.sent.Add(ctx, 1, c.attrs)
}

func (c *SendCounters) Failed(ctx context.Context) {
	c.failed.Add(ctx, 1, c.attrs)
}
