package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// FileStore reads and writes plan files through gocloud.dev/blob
type FileStore struct {
	bucket *blob.Bucket
	prefix string
}

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidPath  = errors.New("invalid file path")
)

// OpenFileStore opens the bucket at bucketURL (for example mem://,
// file:///var/data, or s3://bucket)
func OpenFileStore(
	ctx context.Context, bucketURL, prefix string,
) (*FileStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return NewFileStore(bucket, prefix), nil
}

// NewFileStore wraps an already opened bucket
func NewFileStore(bucket *blob.Bucket, prefix string) *FileStore {
	return &FileStore{bucket: bucket, prefix: prefix}
}

func (s *FileStore) Read(ctx context.Context, name string) ([]byte, error) {
	key, err := s.keyFor(name)
	if err != nil {
		return nil, err
	}
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return nil, err
	}
	return data, nil
}

func (s *FileStore) Write(
	ctx context.Context, name string, data []byte, contentType string,
) error {
	key, err := s.keyFor(name)
	if err != nil {
		return err
	}
	var opts *blob.WriterOptions
	if contentType != "" {
		opts = &blob.WriterOptions{ContentType: contentType}
	}
	return s.bucket.WriteAll(ctx, key, data, opts)
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	key, err := s.keyFor(name)
	if err != nil {
		return err
	}
	err = s.bucket.Delete(ctx, key)
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (s *FileStore) Exists(ctx context.Context, name string) (bool, error) {
	key, err := s.keyFor(name)
	if err != nil {
		return false, err
	}
	return s.bucket.Exists(ctx, key)
}

// Accessible reports whether the underlying bucket can be reached
func (s *FileStore) Accessible(ctx context.Context) (bool, error) {
	return s.bucket.IsAccessible(ctx)
}

func (s *FileStore) Close() error {
	return s.bucket.Close()
}

func (s *FileStore) keyFor(name string) (string, error) {
	clean := path.Clean("/" + name)
	if name == "" || clean == "/" || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return s.prefix + strings.TrimPrefix(clean, "/"), nil
}
