package noop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/mailer/mail"
)

func newMessage(subject string) *mail.Message {
	msg := mail.NewMessage(nil).SetSubject(subject)
	msg.AddFrom(mail.NewEmail("test@example.com", ""))
	msg.AddTo(mail.NewEmail("to@example.com", ""))
	return msg
}

func TestSender_Send(t *testing.T) {
	sender := NewSender()

	first, second := newMessage("first"), newMessage("second")
	require.NoError(t, sender.Send(context.Background(), first, second))

	sent := sender.Sent()
	require.Len(t, sent, 2)
	assert.Same(t, first, sent[0])
	assert.Same(t, second, sent[1])
}

func TestSender_Send_EmptyList(t *testing.T) {
	sender := NewSender()

	assert.NoError(t, sender.Send(context.Background()))
	assert.Empty(t, sender.Sent())
}

func TestSender_Send_InvalidEnvelope(t *testing.T) {
	sender := NewSender()

	noRecipients := mail.NewMessage(nil)
	noRecipients.AddFrom(mail.NewEmail("test@example.com", ""))

	err := sender.Send(context.Background(), newMessage("ok"), noRecipients)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipients")
	assert.Len(t, sender.Sent(), 1)

	assert.Error(t, sender.Send(context.Background(), nil))
}

func TestSender_Close(t *testing.T) {
	sender := NewSender()

	assert.NoError(t, sender.Close())
	assert.NoError(t, sender.Close())

	err := sender.Send(context.Background(), newMessage("late"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}
