package minio

import (
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/pure-golang/mailer/storage"
)

// toStorageError converts minio errors to storage errors. S3 error codes
// are preferred; the message text is a fallback for errors that did not
// come from an S3 response.
func toStorageError(err error, bucket, key string) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchBucket":
		return storage.NewError(storage.CodeBucketNotFound, "bucket not found", err, bucket, key)
	case "NoSuchKey", "NotFound":
		return storage.NewError(storage.CodeNotFound, "object not found", err, bucket, key)
	case "AccessDenied", "Forbidden":
		return storage.NewError(storage.CodeAccessDenied, "access denied", err, bucket, key)
	}
	if resp.StatusCode == http.StatusForbidden {
		return storage.NewError(storage.CodeAccessDenied, "access denied", err, bucket, key)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "bucket") && (strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")):
		return storage.NewError(storage.CodeBucketNotFound, "bucket not found", err, bucket, key)
	case strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist"):
		return storage.NewError(storage.CodeNotFound, "object not found", err, bucket, key)
	}

	return storage.NewError(storage.CodeInternalError, "internal storage error", err, bucket, key)
}
