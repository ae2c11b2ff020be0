package fault

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

type (
	// Context describes the circumstances of a failure
	Context interface {
		// ContextType returns the tag naming the concrete context
		ContextType() string

		// Kind returns the domain error kind this context produces
		Kind() Kind

		// Fields flattens the context into a key-value map
		Fields() map[string]any
	}

	// InvalidArgument describes a block input that had the wrong shape
	InvalidArgument struct {
		Slot     string
		Expected string
		Actual   string
	}

	// Storage describes a failed storage collaborator operation
	Storage struct {
		Operation string
		Resource  string
	}

	// File describes a failed file collaborator operation
	File struct {
		Operation string
		Path      string
	}

	// Signal describes a control-flow signal that escaped its handler
	Signal struct {
		Signal   string
		Boundary string
	}

	// contextError is an internal error carrying a Context that has not yet
	// been attributed to a block
	contextError struct {
		err error
		ctx Context
	}
)

var (
	_ Context = InvalidArgument{}
	_ Context = Storage{}
	_ Context = File{}
	_ Context = Signal{}
)

// WithContext attaches a Context to an internal error. The block wrapping
// layer turns it into a domain Error of the context's kind
func WithContext(err error, ctx Context) error {
	if err == nil {
		err = errors.New(ctx.ContextType())
	}
	return &contextError{err: err, ctx: ctx}
}

// ContextOf returns the Context attached to an error, if any
func ContextOf(err error) (Context, bool) {
	var ce *contextError
	if errors.As(err, &ce) {
		return ce.ctx, true
	}
	if fe, ok := As(err); ok && fe.Context != nil {
		return fe.Context, true
	}
	return nil, false
}

func (e *contextError) Error() string {
	return fmt.Sprintf("%s (%s)", e.err.Error(), describe(e.ctx))
}

func (e *contextError) Unwrap() error {
	return e.err
}

// Cause returns the error the context was attached to
func Cause(err error) error {
	var ce *contextError
	if errors.As(err, &ce) {
		return ce.err
	}
	return err
}

func (InvalidArgument) ContextType() string { return "invalid-argument" }
func (InvalidArgument) Kind() Kind          { return KindInvalidArgument }

func (c InvalidArgument) Fields() map[string]any {
	return map[string]any{
		"type":     c.ContextType(),
		"slot":     c.Slot,
		"expected": c.Expected,
		"actual":   c.Actual,
	}
}

func (Storage) ContextType() string { return "storage" }
func (Storage) Kind() Kind          { return KindStorage }

func (c Storage) Fields() map[string]any {
	return map[string]any{
		"type":      c.ContextType(),
		"operation": c.Operation,
		"resource":  c.Resource,
	}
}

func (File) ContextType() string { return "file" }
func (File) Kind() Kind          { return KindFile }

func (c File) Fields() map[string]any {
	return map[string]any{
		"type":      c.ContextType(),
		"operation": c.Operation,
		"path":      c.Path,
	}
}

func (Signal) ContextType() string { return "signal" }
func (Signal) Kind() Kind          { return KindRuntime }

func (c Signal) Fields() map[string]any {
	return map[string]any{
		"type":     c.ContextType(),
		"signal":   c.Signal,
		"boundary": c.Boundary,
	}
}

func contextFields(ctx Context) map[string]any {
	return maps.Clone(ctx.Fields())
}

func describe(ctx Context) string {
	fields := ctx.Fields()
	keys := slices.Sorted(maps.Keys(fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
