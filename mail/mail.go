// Package mail models an outgoing email message independently of the
// engine that delivers it.
//
// A Message is built through its setters and handed to a Sender. Senders
// only read the Message through its getters; the Message knows nothing
// about delivery. A Message is not safe for concurrent mutation.
package mail

import (
	"context"
	"io"
)

// Sender delivers finished messages, e.g. over SMTP or a provider API.
type Sender interface {
	Send(ctx context.Context, msgs ...*Message) error
	io.Closer
}
