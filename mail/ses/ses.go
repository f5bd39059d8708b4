// Package ses delivers mail.Message values through the AWS SES v2
// SendEmail API as raw MIME messages.
package ses

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/mailer/mail"
	"github.com/pure-golang/mailer/mail/compose"
	"github.com/pure-golang/mailer/metrics"
)

var tracer = otel.Tracer("github.com/pure-golang/mailer/mail/ses")

var _ mail.Sender = (*Sender)(nil)

// Config contains SES client parameters. Empty credentials fall back to
// the default AWS credential chain.
type Config struct {
	Region           string `envconfig:"SES_REGION" required:"true"`
	AccessKeyID      string `envconfig:"SES_ACCESS_KEY_ID"`
	SecretAccessKey  string `envconfig:"SES_SECRET_ACCESS_KEY"`
	Endpoint         string `envconfig:"SES_ENDPOINT"` // custom endpoint, e.g. a local SES emulator
	ConfigurationSet string `envconfig:"SES_CONFIGURATION_SET"`
	MessageIDDomain  string `envconfig:"SES_MESSAGE_ID_DOMAIN"`
}

// SendEmailAPI is the subset of the SES v2 client used by Sender.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender implements mail.Sender over SES v2.
type Sender struct {
	mx       sync.Mutex
	cfg      Config
	client   SendEmailAPI
	logger   *slog.Logger
	counters *metrics.SendCounters
	closed   bool
}

// SenderOptions contains options for creating a Sender.
type SenderOptions struct {
	Logger        *slog.Logger
	MeterProvider metric.MeterProvider // global provider when nil
}

// New loads the AWS configuration and creates a Sender with a real SES client.
func New(ctx context.Context, cfg Config, options *SenderOptions) (*Sender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewWithClient(cfg, client, options), nil
}

// NewWithClient creates a Sender around an existing client.
func NewWithClient(cfg Config, client SendEmailAPI, options *SenderOptions) *Sender {
	if options == nil {
		options = &SenderOptions{}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.WithGroup("ses").With("region", cfg.Region)

	counters, err := metrics.NewSendCounters(options.MeterProvider, "ses")
	if err != nil {
		logger.Warn("send counters disabled", "error", err)
		counters, _ = metrics.NewSendCounters(noop.NewMeterProvider(), "ses")
	}

	return &Sender{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		counters: counters,
	}
}

// Send submits msgs one API call each and stops at the first failure.
// Failed calls are not retried.
func (s *Sender) Send(ctx context.Context, msgs ...*mail.Message) error {
	for i, msg := range msgs {
		if msg == nil {
			return errors.Errorf("message %d is nil", i)
		}
		if err := s.send(ctx, msg); err != nil {
			s.counters.Failed(ctx)
			return err
		}
		s.counters.Sent(ctx)
	}
	return nil
}

func (s *Sender) send(ctx context.Context, msg *mail.Message) error {
	ctx, span := tracer.Start(ctx, "SES.SendEmail", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("mail.subject", msg.Subject()),
		attribute.Int("mail.to_count", len(msg.To())),
		attribute.Int("mail.cc_count", len(msg.Cc())),
		attribute.Int("mail.bcc_count", len(msg.Bcc())),
		attribute.String("aws.region", s.cfg.Region),
	)

	s.mx.Lock()
	defer s.mx.Unlock()

	if s.closed {
		span.SetStatus(codes.Error, "sender is closed")
		return errors.New("sender is closed")
	}

	input, err := s.buildInput(msg)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "SES request failed")
		s.logger.ErrorContext(ctx, "failed to send message", "from", aws.ToString(input.FromEmailAddress), "error", err)
		return errors.Wrap(err, "SES SendEmail failed")
	}

	messageID := aws.ToString(out.MessageId)
	span.SetAttributes(attribute.String("ses.message_id", messageID))
	span.SetStatus(codes.Ok, "")
	s.logger.DebugContext(ctx, "message sent", "message_id", messageID)
	return nil
}

// buildInput renders msg as a raw message. Envelope recipients go into
// Destination so Bcc addresses are delivered without appearing in headers.
func (s *Sender) buildInput(msg *mail.Message) (*sesv2.SendEmailInput, error) {
	from, rcpt, err := compose.Envelope(msg)
	if err != nil {
		return nil, err
	}

	raw, err := compose.Build(msg, &compose.Options{MessageIDDomain: s.cfg.MessageIDDomain})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build raw message")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: rcpt},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	}
	if s.cfg.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(s.cfg.ConfigurationSet)
	}
	return input, nil
}

// Close marks the sender closed. The AWS client holds no resources to release.
func (s *Sender) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.closed = true
	return nil
}
