// Package local implements storage.Reader on a filesystem, one directory
// per bucket.
package local

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pure-golang/mailer/storage"
)

var _ storage.Reader = (*Storage)(nil)

var tracer = otel.Tracer("github.com/pure-golang/mailer/storage/local")

// Config contains local storage configuration.
type Config struct {
	Root          string `envconfig:"STORAGE_LOCAL_ROOT" default:"."`  // directory holding the buckets
	DefaultBucket string `envconfig:"STORAGE_LOCAL_BUCKET" default:""` // used when Get is called with an empty bucket
}

// StorageOptions contains options for Storage creation.
type StorageOptions struct {
	Logger *slog.Logger
	// Fs overrides the filesystem, e.g. afero.NewMemMapFs() in tests.
	// Root is still applied on top of it.
	Fs afero.Fs
}

// Storage reads objects from Root/bucket/key.
type Storage struct {
	fs     afero.Fs
	cfg    Config
	logger *slog.Logger
}

// NewStorage creates a local Storage.
func NewStorage(cfg Config, opts *StorageOptions) *Storage {
	if opts == nil {
		opts = &StorageOptions{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	base := opts.Fs
	if base == nil {
		base = afero.NewOsFs()
	}
	fs := base
	if cfg.Root != "" {
		fs = afero.NewBasePathFs(base, cfg.Root)
	}

	return &Storage{
		fs:     fs,
		cfg:    cfg,
		logger: opts.Logger.WithGroup("storage").With("backend", "local"),
	}
}

// Get opens bucket/key. The content type is derived from the key extension.
func (s *Storage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	_, span := tracer.Start(ctx, "Local.Get")
	defer span.End()

	if bucket == "" {
		bucket = s.cfg.DefaultBucket
	}
	span.SetAttributes(
		attribute.String("bucket", bucket),
		attribute.String("key", key),
	)

	name, err := objectPath(bucket, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	fi, err := s.fs.Stat(name)
	if err != nil {
		err = s.toStorageError(err, bucket, key)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	if fi.IsDir() {
		err = storage.NewError(storage.CodeNotFound, "object is a directory", nil, bucket, key)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	f, err := s.fs.Open(name)
	if err != nil {
		err = s.toStorageError(err, bucket, key)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	info := &storage.ObjectInfo{
		Key:          key,
		Size:         fi.Size(),
		LastModified: fi.ModTime(),
		ContentType:  mime.TypeByExtension(path.Ext(key)),
	}

	span.SetAttributes(attribute.Int64("size", info.Size))
	span.SetStatus(codes.Ok, "")
	s.logger.Debug("Object opened", "bucket", bucket, "key", key, "size", info.Size)

	return f, info, nil
}

// Close is a no-op; files are closed by the caller.
func (s *Storage) Close() error {
	return nil
}

// objectPath joins bucket and key, rejecting keys that leave the bucket.
func objectPath(bucket, key string) (string, error) {
	if key == "" {
		return "", storage.NewError(storage.CodeInvalidKey, "empty key", storage.ErrInvalidKey, bucket, key)
	}
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(bucket, "..") || strings.ContainsAny(bucket, `/\`) {
		return "", storage.NewError(storage.CodeInvalidKey, "invalid bucket or key", storage.ErrInvalidKey, bucket, key)
	}
	if path.Clean(key) != strings.TrimPrefix(clean, "/") {
		return "", storage.NewError(storage.CodeInvalidKey, "key escapes bucket", storage.ErrInvalidKey, bucket, key)
	}
	return filepath.Join(bucket, filepath.FromSlash(clean)), nil
}

func (s *Storage) toStorageError(err error, bucket, key string) error {
	switch {
	case os.IsNotExist(err):
		if _, bErr := s.fs.Stat(bucket); bucket != "" && os.IsNotExist(bErr) {
			return storage.NewError(storage.CodeBucketNotFound, "bucket not found", err, bucket, key)
		}
		return storage.NewError(storage.CodeNotFound, "object not found", err, bucket, key)
	case os.IsPermission(err):
		return storage.NewError(storage.CodeAccessDenied, "access denied", err, bucket, key)
	default:
		return storage.NewError(storage.CodeInternalError, "internal storage error", err, bucket, key)
	}
}
