// Package noop provides a mail.Sender that delivers nothing and keeps
// what it was given, for tests and dry runs.
package noop

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/pure-golang/mailer/mail"
	"github.com/pure-golang/mailer/mail/compose"
)

var _ mail.Sender = (*Sender)(nil)

// Sender is a no-op mail sender for testing.
type Sender struct {
	mx     sync.Mutex
	sent   []*mail.Message
	closed bool
}

// NewSender creates a new no-op Sender.
func NewSender() *Sender {
	return &Sender{}
}

// Send checks that every message has an envelope and records it.
func (n *Sender) Send(_ context.Context, msgs ...*mail.Message) error {
	n.mx.Lock()
	defer n.mx.Unlock()

	if n.closed {
		return errors.New("sender is closed")
	}
	for i, msg := range msgs {
		if msg == nil {
			return errors.Errorf("message %d is nil", i)
		}
		if _, _, err := compose.Envelope(msg); err != nil {
			return err
		}
		n.sent = append(n.sent, msg)
	}
	return nil
}

// Sent returns the recorded messages in send order.
func (n *Sender) Sent() []*mail.Message {
	n.mx.Lock()
	defer n.mx.Unlock()
	return append([]*mail.Message(nil), n.sent...)
}

// Close is a no-op; later Send calls fail.
func (n *Sender) Close() error {
	n.mx.Lock()
	defer n.mx.Unlock()
	n.closed = true
	return nil
}
