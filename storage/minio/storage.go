package minio

import (
	"context"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/mailer/storage"
)

var _ storage.Reader = (*Storage)(nil)

var tracer = otel.Tracer("github.com/pure-golang/mailer/storage/minio")

// Storage reads attachment objects from S3-compatible storage.
type Storage struct {
	client *Client
	cfg    Config
	logger *slog.Logger
}

// StorageOptions contains options for Storage creation.
type StorageOptions struct {
	Logger *slog.Logger
}

// NewStorage creates a new S3 Storage instance.
func NewStorage(client *Client, opts *StorageOptions) *Storage {
	if opts == nil {
		opts = &StorageOptions{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Storage{
		client: client,
		logger: opts.Logger.WithGroup("storage").With("backend", "s3"),
	}
	if client != nil {
		s.cfg = client.cfg
	}
	return s
}

// NewDefault creates a Storage with a new client.
func NewDefault(cfg Config) (*Storage, error) {
	client, err := NewClient(cfg, nil)
	if err != nil {
		return nil, err
	}
	return NewStorage(client, nil), nil
}

func (s *Storage) getClient(bucket, key string) (*minio.Client, error) {
	if s.client == nil || s.client.client == nil {
		return nil, storage.NewError(storage.CodeInternalError, "minio client is not initialized", nil, bucket, key)
	}
	if s.client.IsClosed() {
		return nil, storage.NewError(storage.CodeInternalError, "minio client is closed", nil, bucket, key)
	}
	return s.client.client, nil
}

// Get retrieves an object. The caller must close the returned reader.
func (s *Storage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	ctx, span := tracer.Start(ctx, "S3.Get", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if bucket == "" {
		bucket = s.cfg.DefaultBucket
	}
	span.SetAttributes(
		attribute.String("bucket", bucket),
		attribute.String("key", key),
	)

	client, err := s.getClient(bucket, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, toStorageError(err, bucket, key)
	}

	stat, err := obj.Stat()
	if err != nil {
		if closeErr := obj.Close(); closeErr != nil {
			s.logger.With("error", closeErr).Error("failed to close object after stat error")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, toStorageError(err, bucket, key)
	}

	info := &storage.ObjectInfo{
		Key:          key,
		Size:         stat.Size,
		LastModified: stat.LastModified,
		ETag:         stat.ETag,
		ContentType:  stat.ContentType,
		Metadata:     stat.UserMetadata,
	}

	span.SetAttributes(
		attribute.Int64("size", stat.Size),
		attribute.String("etag", stat.ETag),
	)
	span.SetStatus(codes.Ok, "")
	s.logger.Debug("Object opened", "bucket", bucket, "key", key, "size", stat.Size)

	return obj, info, nil
}

// Close closes the underlying client.
func (s *Storage) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
