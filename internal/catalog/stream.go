package catalog

import (
	"encoding/json"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

// Stream blocks read and write files in the configured blob bucket
const Stream block.Type = "stream"

const (
	FileRead   block.Action = "file-read"
	FileWrite  block.Action = "file-write"
	FileDelete block.Action = "file-delete"
	FileExists block.Action = "file-exists"
)

const (
	slotContent = "content"

	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json"
)

func registerStream(d *block.Dispatcher) {
	f := d.Family(Stream)
	path := block.One(slotPath)
	f.Register(FileRead, block.Eval(fileRead, path))
	f.Register(FileWrite,
		block.Eval(fileWrite, path, block.One(slotContent)),
	)
	f.Register(FileDelete, block.Eval(fileDelete, path))
	f.Register(FileExists, block.Eval(fileExists, path))
}

func fileRead(c *block.Call) (api.Value, error) {
	path, err := c.In.String(slotPath)
	if err != nil {
		return api.Null, err
	}
	files, err := c.Exec.Files()
	if err != nil {
		return api.Null, fileErr("read", path, err)
	}
	data, err := files.Read(c.Context(), path)
	if err != nil {
		return api.Null, fileErr("read", path, err)
	}
	return api.String(string(data)), nil
}

// fileWrite stores strings as text and any other value as JSON, returning
// the number of bytes written
func fileWrite(c *block.Call) (api.Value, error) {
	path, err := c.In.String(slotPath)
	if err != nil {
		return api.Null, err
	}
	files, err := c.Exec.Files()
	if err != nil {
		return api.Null, fileErr("write", path, err)
	}

	content := c.In.Value(slotContent)
	data, contentType := []byte(nil), contentTypeText
	if s, ok := content.AsString(); ok {
		data = []byte(s)
	} else {
		data, err = json.Marshal(content)
		if err != nil {
			return api.Null, err
		}
		contentType = contentTypeJSON
	}

	if err := files.Write(c.Context(), path, data, contentType); err != nil {
		return api.Null, fileErr("write", path, err)
	}
	return api.Integer(int64(len(data))), nil
}

func fileDelete(c *block.Call) (api.Value, error) {
	path, err := c.In.String(slotPath)
	if err != nil {
		return api.Null, err
	}
	files, err := c.Exec.Files()
	if err != nil {
		return api.Null, fileErr("delete", path, err)
	}
	if err := files.Delete(c.Context(), path); err != nil {
		return api.Null, fileErr("delete", path, err)
	}
	return api.Boolean(true), nil
}

func fileExists(c *block.Call) (api.Value, error) {
	path, err := c.In.String(slotPath)
	if err != nil {
		return api.Null, err
	}
	files, err := c.Exec.Files()
	if err != nil {
		return api.Null, fileErr("exists", path, err)
	}
	ok, err := files.Exists(c.Context(), path)
	if err != nil {
		return api.Null, fileErr("exists", path, err)
	}
	return api.Boolean(ok), nil
}

func fileErr(op, path string, err error) error {
	return fault.WithContext(err, fault.File{Operation: op, Path: path})
}
