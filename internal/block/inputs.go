package block

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

// Inputs holds the evaluated values of a block's slots, keyed by slot name
type Inputs map[string]api.Value

var ErrUnexpectedKind = errors.New("unexpected value kind")

// Has reports whether the slot produced a value
func (in Inputs) Has(name string) bool {
	_, ok := in[name]
	return ok
}

// Value returns the raw value of a slot, or Null when absent
func (in Inputs) Value(name string) api.Value {
	return in[name]
}

func (in Inputs) String(name string) (string, error) {
	v := in[name]
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	return "", Invalid(name, api.KindString.String(), v)
}

// StringOr returns def when the slot is absent
func (in Inputs) StringOr(name, def string) (string, error) {
	if !in.Has(name) {
		return def, nil
	}
	return in.String(name)
}

func (in Inputs) Integer(name string) (int64, error) {
	v := in[name]
	if i, ok := v.AsInteger(); ok {
		return i, nil
	}
	return 0, Invalid(name, api.KindInteger.String(), v)
}

// IntegerOr returns def when the slot is absent
func (in Inputs) IntegerOr(name string, def int64) (int64, error) {
	if !in.Has(name) {
		return def, nil
	}
	return in.Integer(name)
}

func (in Inputs) Boolean(name string) (bool, error) {
	v := in[name]
	if b, ok := v.AsBoolean(); ok {
		return b, nil
	}
	return false, Invalid(name, api.KindBoolean.String(), v)
}

func (in Inputs) Record(name string) (api.Args, error) {
	v := in[name]
	if r, ok := v.AsRecord(); ok {
		return r, nil
	}
	return nil, Invalid(name, api.KindRecord.String(), v)
}

// RecordOr returns an empty record when the slot is absent
func (in Inputs) RecordOr(name string) (api.Args, error) {
	if !in.Has(name) {
		return api.Args{}, nil
	}
	return in.Record(name)
}

func (in Inputs) List(name string) ([]api.Value, error) {
	v := in[name]
	if l, ok := v.AsList(); ok {
		return l, nil
	}
	return nil, Invalid(name, api.KindList.String(), v)
}

func (in Inputs) Connector(name string) (api.Connector, error) {
	v := in[name]
	if c, ok := v.AsConnector(); ok {
		return c, nil
	}
	return nil, Invalid(name, api.KindConnector.String(), v)
}

// ConnectorAs returns the connector held by a slot after checking that it
// satisfies the shape T
func ConnectorAs[T any](in Inputs, name string) (T, error) {
	var zero T
	c, err := in.Connector(name)
	if err != nil {
		return zero, err
	}
	res, ok := c.(T)
	if !ok {
		return zero, fault.WithContext(
			fmt.Errorf("%w: %s", ErrUnexpectedKind, name),
			fault.InvalidArgument{
				Slot:     name,
				Expected: reflect.TypeFor[T]().String(),
				Actual:   fmt.Sprintf("%T", c),
			},
		)
	}
	return res, nil
}

// Invalid creates the error raised when a slot holds the wrong kind of
// value
func Invalid(slot, expected string, actual api.Value) error {
	return fault.WithContext(
		fmt.Errorf("%w: %s", ErrUnexpectedKind, slot),
		fault.InvalidArgument{
			Slot:     slot,
			Expected: expected,
			Actual:   actual.Kind().String(),
		},
	)
}
