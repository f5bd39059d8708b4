package storage

import (
	"errors"
	"fmt"
)

// Common storage errors.
var (
	ErrNotFound       = errors.New("object not found")
	ErrAccessDenied   = errors.New("access denied")
	ErrBucketNotFound = errors.New("bucket not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// ErrorCode represents a storage error code.
type ErrorCode string

const (
	CodeNotFound       ErrorCode = "NotFound"
	CodeAccessDenied   ErrorCode = "AccessDenied"
	CodeBucketNotFound ErrorCode = "BucketNotFound"
	CodeInvalidKey     ErrorCode = "InvalidKey"
	CodeInternalError  ErrorCode = "InternalError"
)

// StorageError wraps storage operation errors.
type StorageError struct {
	Code    ErrorCode
	Message string
	Err     error
	Bucket  string
	Key     string
}

// NewError builds a StorageError.
func NewError(code ErrorCode, msg string, err error, bucket, key string) *StorageError {
	return &StorageError{Code: code, Message: msg, Err: err, Bucket: bucket, Key: key}
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage.%s: %s (bucket=%s, key=%s): %v", e.Code, e.Message, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("storage.%s: %s (bucket=%s, key=%s)", e.Code, e.Message, e.Bucket, e.Key)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func is(err error, code ErrorCode, sentinel error) bool {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Code == code
	}
	return errors.Is(err, sentinel)
}

// IsNotFound checks if error is a "not found" error.
func IsNotFound(err error) bool {
	return is(err, CodeNotFound, ErrNotFound)
}

// IsAccessDenied checks if error is an "access denied" error.
func IsAccessDenied(err error) bool {
	return is(err, CodeAccessDenied, ErrAccessDenied)
}

// IsBucketNotFound checks if error is a "bucket not found" error.
func IsBucketNotFound(err error) bool {
	return is(err, CodeBucketNotFound, ErrBucketNotFound)
}

// IsInvalidKey checks if error is an "invalid key" error.
func IsInvalidKey(err error) bool {
	return is(err, CodeInvalidKey, ErrInvalidKey)
}
