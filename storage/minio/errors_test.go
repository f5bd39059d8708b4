package minio

import (
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/mailer/storage"
)

func TestToStorageError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode storage.ErrorCode
	}{
		{"NoSuchKey response", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, storage.CodeNotFound},
		{"NoSuchBucket response", minio.ErrorResponse{Code: "NoSuchBucket", StatusCode: http.StatusNotFound}, storage.CodeBucketNotFound},
		{"AccessDenied response", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, storage.CodeAccessDenied},
		{"bare 403 response", minio.ErrorResponse{StatusCode: http.StatusForbidden}, storage.CodeAccessDenied},
		{"bucket does not exist text", errors.New("the bucket does not exist"), storage.CodeBucketNotFound},
		{"object not found text", errors.New("object not found"), storage.CodeNotFound},
		{"other error", errors.New("connection reset by peer"), storage.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toStorageError(tt.err, "attachments", "a.pdf")
			require.Error(t, err)

			var storageErr *storage.StorageError
			require.True(t, errors.As(err, &storageErr))
			assert.Equal(t, tt.expectedCode, storageErr.Code)
			assert.Equal(t, "attachments", storageErr.Bucket)
			assert.Equal(t, "a.pdf", storageErr.Key)
			assert.Equal(t, tt.err, storageErr.Err)
		})
	}
}

func TestToStorageError_Nil(t *testing.T) {
	assert.NoError(t, toStorageError(nil, "b", "k"))
}
