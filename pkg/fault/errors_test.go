package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

var key = fault.Key{Type: "common-util", Action: "endecode-base64-decode"}

func TestErrorIsKind(t *testing.T) {
	err := fault.New(fault.KindStorage, key, nil, errors.New("down"))

	assert.ErrorIs(t, err, fault.ErrStorage)
	assert.NotErrorIs(t, err, fault.ErrRuntime)

	wrapped := fmt.Errorf("outer: %w", err)
	fe, ok := fault.As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, key, fe.Key)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fault.Runtime(key, nil, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, fault.ErrRuntime)
}

func TestErrorMessage(t *testing.T) {
	err := fault.Runtime(key, nil, errors.New("boom")).WithContext(
		fault.InvalidArgument{Slot: "value", Expected: "string"},
	)

	assert.Equal(t,
		"runtime in common-util/endecode-base64-decode: boom "+
			"(actual= expected=string slot=value type=invalid-argument)",
		err.Error(),
	)
}

func TestErrorFields(t *testing.T) {
	err := fault.New(fault.KindFile, key, api.Extra{"node": "n1"},
		errors.New("missing"),
	).WithContext(fault.File{Operation: "read", Path: "a.txt"})
	err.Stack = []map[string]any{{"id": "util"}}

	fields := err.Fields()
	assert.Equal(t, "file", fields["kind"])
	assert.Equal(t, "common-util", fields["type"])
	assert.Equal(t, "endecode-base64-decode", fields["action"])
	assert.Equal(t, "missing", fields["cause"])
	assert.Equal(t, map[string]any{"node": "n1"}, fields["extra"])
	assert.Equal(t, map[string]any{
		"type": "file", "operation": "read", "path": "a.txt",
	}, fields["context"])
	assert.Equal(t, err.Stack, fields["stack"])
}

func TestDispatch(t *testing.T) {
	err := fault.Dispatch(fault.Key{Type: "x", Action: "y"}, nil)
	assert.ErrorIs(t, err, fault.ErrDispatch)
	assert.Equal(t, "dispatch in x/y", err.Error())
}

func TestWithContext(t *testing.T) {
	cause := errors.New("bad input")
	ctx := fault.InvalidArgument{
		Slot: "value", Expected: "string", Actual: "integer",
	}
	err := fault.WithContext(cause, ctx)

	got, ok := fault.ContextOf(err)
	assert.True(t, ok)
	assert.Equal(t, ctx, got)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, fault.Cause(err))
	assert.Equal(t, fault.KindInvalidArgument, got.Kind())

	_, ok = fault.ContextOf(cause)
	assert.False(t, ok)
}

func TestWithContextNilError(t *testing.T) {
	err := fault.WithContext(nil, fault.Storage{Operation: "get"})
	assert.Error(t, err)

	ctx, ok := fault.ContextOf(err)
	assert.True(t, ok)
	assert.Equal(t, fault.KindStorage, ctx.Kind())
}

func TestContextOfDomainError(t *testing.T) {
	ctx := fault.Signal{Signal: "break", Boundary: "unit"}
	err := fault.Runtime(key, nil, nil).WithContext(ctx)

	got, ok := fault.ContextOf(err)
	assert.True(t, ok)
	assert.Equal(t, ctx, got)
}
