package smtp

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/mailer/mail"
	"github.com/pure-golang/mailer/mail/compose"
	"github.com/pure-golang/mailer/metrics"
)

var _ mail.Sender = (*Sender)(nil)

// Sender implements mail.Sender using net/smtp.
type Sender struct {
	mx       sync.Mutex
	cfg      Config
	logger   *slog.Logger
	counters *metrics.SendCounters
	closed   bool
}

// SenderOptions contains options for creating a Sender.
type SenderOptions struct {
	Logger        *slog.Logger
	MeterProvider metric.MeterProvider // global provider when nil
}

// NewSender creates a new SMTP Sender.
func NewSender(cfg Config, options *SenderOptions) *Sender {
	if options == nil {
		options = &SenderOptions{}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.WithGroup("smtp").With("host", cfg.Host, "port", cfg.Port)

	counters, err := metrics.NewSendCounters(options.MeterProvider, "smtp")
	if err != nil {
		logger.Warn("send counters disabled", "error", err)
		counters, _ = metrics.NewSendCounters(noop.NewMeterProvider(), "smtp")
	}

	return &Sender{
		cfg:      cfg,
		logger:   logger,
		counters: counters,
	}
}

// Send delivers msgs one connection per message and stops at the first
// failure.
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
	ctx, span := tracer.Start(ctx, "SMTP.Send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("mail.subject", msg.Subject()),
		attribute.Int("mail.to_count", len(msg.To())),
		attribute.Int("mail.cc_count", len(msg.Cc())),
		attribute.Int("mail.bcc_count", len(msg.Bcc())),
		attribute.Int("mail.attachments", len(msg.Attachments())),
		attribute.String("smtp.host", s.cfg.Host),
		attribute.Int("smtp.port", s.cfg.Port),
		attribute.Bool("smtp.tls", s.cfg.TLS),
	)

	s.mx.Lock()
	defer s.mx.Unlock()

	if s.closed {
		span.SetStatus(codes.Error, "sender is closed")
		return errors.New("sender is closed")
	}

	from, rcpt, err := compose.Envelope(msg)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("mail.from", from))

	raw, err := compose.Build(msg, &compose.Options{MessageIDDomain: s.cfg.MessageIDDomain})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build message")
		return errors.Wrap(err, "failed to build message")
	}

	if err := s.deliver(ctx, from, rcpt, raw); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "failed to send message", "from", from, "recipients", len(rcpt), "error", err)
		return errors.Wrap(err, "failed to send email")
	}

	s.logger.DebugContext(ctx, "message sent", "from", from, "recipients", len(rcpt), "size", len(raw))
	span.SetStatus(codes.Ok, "")
	return nil
}

// deliver runs one SMTP transaction: EHLO, optional STARTTLS and AUTH,
// MAIL, RCPT for every recipient, DATA and QUIT.
func (s *Sender) deliver(ctx context.Context, from string, rcpt []string, raw []byte) (err error) {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "failed to connect to SMTP server")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// cancellation unblocks any pending read or write on conn
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer func() {
		if !stop() && err != nil {
			err = errors.Wrap(ctx.Err(), err.Error())
		}
	}()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "failed to start SMTP session")
	}
	defer client.Close()

	helo := s.cfg.HelloName
	if helo == "" {
		helo = "localhost"
	}
	if err := client.Hello(helo); err != nil {
		return errors.Wrap(err, "failed to greet server")
	}

	if s.cfg.TLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsConfig := &tls.Config{
				ServerName:         s.cfg.Host,
				InsecureSkipVerify: s.cfg.Insecure, // #nosec G402 -- controlled by config, user's responsibility
			}
			if err := client.StartTLS(tlsConfig); err != nil {
				return errors.Wrap(err, "failed to start TLS")
			}
		}
	}

	if s.cfg.Username != "" {
		if ok, _ := client.Extension("AUTH"); !ok {
			return errors.New("server does not support AUTH")
		}
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return errors.Wrap(err, "failed to authenticate")
		}
	}

	if err := client.Mail(from); err != nil {
		return errors.Wrap(err, "failed to set sender")
	}
	for _, addr := range rcpt {
		if err := client.Rcpt(addr); err != nil {
			return errors.Wrapf(err, "failed to set recipient: %s", addr)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "failed to get data writer")
	}
	if _, err := writer.Write(raw); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, "failed to write message")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "message rejected")
	}

	// the message is already accepted at this point
	_ = client.Quit()
	return nil
}

// Close closes the sender. Later Send calls fail.
func (s *Sender) Close() error {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.closed = true
	return nil
}
