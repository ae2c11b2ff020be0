package fault

import (
	"errors"
	"fmt"
	"maps"

	"github.com/kode4food/blockplan/pkg/api"
)

type (
	// Error is a user-facing failure attributed to a specific plan node
	Error struct {
		Err     error
		Context Context
		Extra   api.Extra
		Key     Key
		Kind    Kind
		Stack   []map[string]any
	}

	// Key identifies the failing block by type and action
	Key struct {
		Type   string `json:"type"`
		Action string `json:"action"`
	}

	// Kind classifies a domain error
	Kind string
)

const (
	KindInvalidArgument Kind = "invalid-argument"
	KindRuntime         Kind = "runtime"
	KindStorage         Kind = "storage"
	KindFile            Kind = "file"
	KindDispatch        Kind = "dispatch"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRuntime         = errors.New("runtime error")
	ErrStorage         = errors.New("storage error")
	ErrFile            = errors.New("file error")
	ErrDispatch        = errors.New("dispatch error")
)

var kindSentinels = map[Kind]error{
	KindInvalidArgument: ErrInvalidArgument,
	KindRuntime:         ErrRuntime,
	KindStorage:         ErrStorage,
	KindFile:            ErrFile,
	KindDispatch:        ErrDispatch,
}

// New creates a domain error of the given kind for the block identified by
// key
func New(kind Kind, key Key, extra api.Extra, cause error) *Error {
	return &Error{
		Kind:  kind,
		Key:   key,
		Extra: extra,
		Err:   cause,
	}
}

// Dispatch creates a configuration error raised while resolving a template
func Dispatch(key Key, cause error) *Error {
	return New(KindDispatch, key, nil, cause)
}

// Runtime wraps an unexpected failure of the block identified by key
func Runtime(key Key, extra api.Extra, cause error) *Error {
	return New(KindRuntime, key, extra, cause)
}

// WithContext returns a copy of the error with the context attached
func (e *Error) WithContext(ctx Context) *Error {
	res := *e
	res.Context = ctx
	return &res
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s in %s", e.Kind, e.Key)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	if e.Context != nil {
		msg = fmt.Sprintf("%s (%s)", msg, describe(e.Context))
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the error's kind
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// Fields flattens the error into a key-value map for logging and API error
// rendering
func (e *Error) Fields() map[string]any {
	res := map[string]any{
		"kind":   string(e.Kind),
		"type":   e.Key.Type,
		"action": e.Key.Action,
	}
	if e.Err != nil {
		res["cause"] = e.Err.Error()
	}
	if len(e.Extra) > 0 {
		res["extra"] = maps.Clone(map[string]any(e.Extra))
	}
	if e.Context != nil {
		res["context"] = contextFields(e.Context)
	}
	if len(e.Stack) > 0 {
		res["stack"] = e.Stack
	}
	return res
}

// String renders the key as type/action
func (k Key) String() string {
	return k.Type + "/" + k.Action
}

// As returns the domain error in err's chain, if any
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
