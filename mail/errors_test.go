package mail

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	withCause := &Error{Code: CodeAttachmentRead, Message: "a.txt", Err: errors.New("EOF")}
	assert.Equal(t, "mail.AttachmentReadFailure: a.txt: EOF", withCause.Error())

	plain := &Error{Code: CodeInvalidEncodingName, Message: "bad"}
	assert.Equal(t, "mail.InvalidEncodingName: bad", plain.Error())
}

func TestError_IsSentinel(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		sentinel error
		check    func(error) bool
	}{
		{CodeInvalidRecipientType, ErrInvalidRecipientType, IsInvalidRecipientType},
		{CodeInvalidEncodingName, ErrInvalidEncodingName, IsInvalidEncodingName},
		{CodeHeaderNotFound, ErrHeaderNotFound, IsHeaderNotFound},
		{CodeAttachmentRead, ErrAttachmentRead, IsAttachmentRead},
		{CodeInvalidAddress, ErrInvalidAddress, IsInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &Error{Code: tt.code})

			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, tt.check(err))
			assert.True(t, tt.check(errors.Wrap(&Error{Code: tt.code}, "context")))
			assert.False(t, tt.check(errors.New("other")))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestError_DifferentCodeIsNotSentinel(t *testing.T) {
	err := &Error{Code: CodeHeaderNotFound}

	assert.NotErrorIs(t, err, ErrInvalidEncodingName)
	assert.False(t, IsInvalidEncodingName(err))
}
