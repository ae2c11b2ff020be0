package catalog_test

import (
	"context"
	"testing"

	"github.com/kode4food/blockplan/internal/assert"
	"github.com/kode4food/blockplan/internal/assert/helpers"
	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/catalog"
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/internal/storage"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/builder"
	"github.com/kode4food/blockplan/pkg/fault"
)

func fileOp(a block.Action, path string) *builder.Block {
	return node(catalog.Stream, a).WithSlot("path", str(path))
}

func TestFileWriteReadDelete(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		res, err := env.Run(t, fileOp(catalog.FileWrite, "notes/a.txt").
			WithSlot("content", str("hello")).Template(),
		)
		as.Completed(res, err, api.Integer(5))

		res, err = env.Run(t, fileOp(catalog.FileExists, "notes/a.txt").Template())
		as.Completed(res, err, api.Boolean(true))

		res, err = env.Run(t, fileOp(catalog.FileRead, "notes/a.txt").Template())
		as.Completed(res, err, api.String("hello"))

		res, err = env.Run(t, fileOp(catalog.FileDelete, "notes/a.txt").Template())
		as.Completed(res, err, api.Boolean(true))

		res, err = env.Run(t, fileOp(catalog.FileExists, "notes/a.txt").Template())
		as.Completed(res, err, api.Boolean(false))
	})
}

func TestFileWriteJSON(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		_, err := env.Run(t, fileOp(catalog.FileWrite, "doc.json").
			WithSlot("content", builder.Record(map[string]any{"a": 1})).
			Template(),
		)
		as.Require.NoError(err)

		data, err := env.Files.Read(context.Background(), "doc.json")
		as.Require.NoError(err)
		as.JSONEq(`{"a":1}`, string(data))
	})
}

func TestFileErrors(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		_, err := env.Run(t, fileOp(catalog.FileRead, "missing.txt").Template())
		fe := as.Fault(err, fault.KindFile, "stream", "file-read")
		as.ErrorIs(err, storage.ErrFileNotFound)
		as.Equal(fault.File{Operation: "read", Path: "missing.txt"}, fe.Context)

		_, err = env.Run(t, fileOp(catalog.FileRead, "../etc/passwd").Template())
		as.ErrorIs(err, storage.ErrInvalidPath)

		_, err = env.Run(t, fileOp(catalog.FileRead, "a.txt").Template(),
			helpers.WithoutFiles(),
		)
		as.Fault(err, fault.KindFile, "stream", "file-read")
		as.ErrorIs(err, state.ErrNoFileStore)
	})
}
