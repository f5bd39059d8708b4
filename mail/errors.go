package mail

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common mail errors.
var (
	ErrInvalidRecipientType = errors.New("recipient must be a mail.Email")
	ErrInvalidEncodingName  = errors.New("invalid encoding name")
	ErrHeaderNotFound       = errors.New("header not found")
	ErrAttachmentRead       = errors.New("failed to read attachment")
	ErrInvalidAddress       = errors.New("invalid email address")
)

// ErrorCode represents a mail error code.
type ErrorCode string

const (
	CodeInvalidRecipientType ErrorCode = "InvalidRecipientType"
	CodeInvalidEncodingName  ErrorCode = "InvalidEncodingName"
	CodeHeaderNotFound       ErrorCode = "HeaderNotFound"
	CodeAttachmentRead       ErrorCode = "AttachmentReadFailure"
	CodeInvalidAddress       ErrorCode = "InvalidAddress"
)

var sentinels = map[ErrorCode]error{
	CodeInvalidRecipientType: ErrInvalidRecipientType,
	CodeInvalidEncodingName:  ErrInvalidEncodingName,
	CodeHeaderNotFound:       ErrHeaderNotFound,
	CodeAttachmentRead:       ErrAttachmentRead,
	CodeInvalidAddress:       ErrInvalidAddress,
}

// Error is returned by Message operations that reject their input.
// The Message is never modified when an Error is returned.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mail.%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("mail.%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Code, so that
// errors.Is(err, ErrHeaderNotFound) works on wrapped values.
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinels[e.Code]
	return ok && sentinel == target
}

func newError(code ErrorCode, msg string, err error) error {
	return &Error{Code: code, Message: msg, Err: err}
}

func hasCode(err error, code ErrorCode) bool {
	var mailErr *Error
	if errors.As(err, &mailErr) {
		return mailErr.Code == code
	}
	return false
}

// IsInvalidRecipientType checks if error is an "invalid recipient type" error.
func IsInvalidRecipientType(err error) bool {
	return hasCode(err, CodeInvalidRecipientType)
}

// IsInvalidEncodingName checks if error is an "invalid encoding" error.
func IsInvalidEncodingName(err error) bool {
	return hasCode(err, CodeInvalidEncodingName)
}

// IsHeaderNotFound checks if error is a "header not found" error.
func IsHeaderNotFound(err error) bool {
	return hasCode(err, CodeHeaderNotFound)
}

// IsAttachmentRead checks if error is an attachment read failure.
func IsAttachmentRead(err error) bool {
	return hasCode(err, CodeAttachmentRead)
}

// IsInvalidAddress checks if error is an address parse failure.
func IsInvalidAddress(err error) bool {
	return hasCode(err, CodeInvalidAddress)
}
