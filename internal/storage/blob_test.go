package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"github.com/kode4food/blockplan/internal/storage"
)

func TestFileStoreReadWrite(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewFileStore(memblob.OpenBucket(nil), "plans/")
	defer func() { _ = fs.Close() }()

	require.NoError(t, fs.Write(ctx, "a/b.txt", []byte("hello"), "text/plain"))

	data, err := fs.Read(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	ok, err := fs.Exists(ctx, "a/b.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fs.Delete(ctx, "a/b.txt"))
	_, err = fs.Read(ctx, "a/b.txt")
	assert.ErrorIs(t, err, storage.ErrFileNotFound)

	assert.NoError(t, fs.Delete(ctx, "a/b.txt"))
}

func TestFileStoreInvalidPath(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewFileStore(memblob.OpenBucket(nil), "")

	_, err := fs.Read(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, storage.ErrInvalidPath)

	err = fs.Write(ctx, "", nil, "")
	assert.ErrorIs(t, err, storage.ErrInvalidPath)
}

func TestOpenFileStore(t *testing.T) {
	ctx := context.Background()
	fs, err := storage.OpenFileStore(ctx, "mem://", "")
	require.NoError(t, err)
	defer func() { _ = fs.Close() }()

	ok, err := fs.Accessible(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = storage.OpenFileStore(ctx, "bogus://bucket", "")
	assert.Error(t, err)
}
