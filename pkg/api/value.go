package api

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
)

type (
	// Value is the discriminated result type produced by every block
	Value struct {
		conn Connector
		rec  Args
		list []Value
		str  string
		num  int64
		flt  float64
		kind Kind
		flag bool
	}

	// Kind identifies which variant a Value holds
	Kind uint8

	// Connector is an opaque collaborator-owned handle passed between blocks
	Connector any
)

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindRecord
	KindList
	KindConnector
)

// Null is the absent value
var Null = Value{}

var kindNames = map[Kind]string{
	KindNull:      "null",
	KindString:    "string",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindBoolean:   "boolean",
	KindRecord:    "record",
	KindList:      "list",
	KindConnector: "connector",
}

// String creates a string Value
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Integer creates an integer Value
func Integer(i int64) Value {
	return Value{kind: KindInteger, num: i}
}

// Float creates a floating point Value
func Float(f float64) Value {
	return Value{kind: KindFloat, flt: f}
}

// Boolean creates a boolean Value
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, flag: b}
}

// Record creates a structured record Value
func Record(a Args) Value {
	if a == nil {
		a = Args{}
	}
	return Value{kind: KindRecord, rec: a}
}

// List creates a list Value
func List(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: KindList, list: vs}
}

// ConnectorValue wraps a collaborator handle
func ConnectorValue(c Connector) Value {
	if c == nil {
		return Null
	}
	return Value{kind: KindConnector, conn: c}
}

// ValueOf converts JSON-like Go data into a Value
func ValueOf(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null
	case Value:
		return v
	case string:
		return String(v)
	case bool:
		return Boolean(v)
	case int:
		return Integer(int64(v))
	case int32:
		return Integer(int64(v))
	case int64:
		return Integer(v)
	case float32:
		return numberValue(float64(v))
	case float64:
		return numberValue(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Integer(i)
		}
		f, _ := v.Float64()
		return Float(f)
	case []any:
		res := make([]Value, len(v))
		for i, item := range v {
			res[i] = ValueOf(item)
		}
		return List(res...)
	case []Value:
		return List(v...)
	case Args:
		return Record(v)
	case map[string]any:
		res := make(Args, len(v))
		for k, item := range v {
			res[Name(k)] = item
		}
		return Record(res)
	default:
		return ConnectorValue(v)
	}
}

func numberValue(f float64) Value {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Integer(int64(f))
	}
	return Float(f)
}

// Kind returns the variant tag of the Value
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull returns whether the Value is the null variant
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsString returns the string payload if the Value is a string
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsInteger returns the integer payload. Floats with no fractional part are
// accepted
func (v Value) AsInteger() (int64, bool) {
	switch v.kind {
	case KindInteger:
		return v.num, true
	case KindFloat:
		if v.flt == math.Trunc(v.flt) {
			return int64(v.flt), true
		}
	}
	return 0, false
}

// AsFloat returns the numeric payload as a float
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.flt, true
	case KindInteger:
		return float64(v.num), true
	default:
		return 0, false
	}
}

// AsBoolean returns the boolean payload if the Value is a boolean
func (v Value) AsBoolean() (bool, bool) {
	return v.flag, v.kind == KindBoolean
}

// AsRecord returns the record payload if the Value is a record
func (v Value) AsRecord() (Args, bool) {
	return v.rec, v.kind == KindRecord
}

// AsList returns the list payload if the Value is a list
func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

// AsConnector returns the collaborator handle if the Value is a connector
func (v Value) AsConnector() (Connector, bool) {
	return v.conn, v.kind == KindConnector
}

// Truthy reports whether the Value counts as true in a condition
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBoolean:
		return v.flag
	case KindString:
		return v.str != ""
	case KindInteger:
		return v.num != 0
	case KindFloat:
		return v.flt != 0
	case KindRecord:
		return len(v.rec) > 0
	case KindList:
		return len(v.list) > 0
	case KindConnector:
		return true
	default:
		return false
	}
}

// Any converts the Value back into plain JSON-like Go data. Connectors have
// no data representation and convert to nil
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.num
	case KindFloat:
		return v.flt
	case KindBoolean:
		return v.flag
	case KindRecord:
		res := make(map[string]any, len(v.rec))
		for k, item := range v.rec {
			res[string(k)] = ValueOf(item).Any()
		}
		return res
	case KindList:
		res := make([]any, len(v.list))
		for i, item := range v.list {
			res[i] = item.Any()
		}
		return res
	default:
		return nil
	}
}

// Equal compares two Values structurally. Integers and floats compare by
// numeric value
func (v Value) Equal(other Value) bool {
	if v.kind == KindInteger && other.kind == KindInteger {
		return v.num == other.num
	}
	if lf, ok := v.AsFloat(); ok {
		if rf, ok := other.AsFloat(); ok {
			return lf == rf
		}
		return false
	}
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindConnector {
		return v.conn == other.conn
	}
	return reflect.DeepEqual(v.Any(), other.Any())
}

// String renders the Value for diagnostics
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNull:
		return "null"
	case KindConnector:
		return fmt.Sprintf("<connector %T>", v.conn)
	default:
		data, err := json.Marshal(v.Any())
		if err != nil {
			return fmt.Sprintf("%v", v.Any())
		}
		return string(data)
	}
}

// MarshalJSON encodes the plain representation of the Value
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes any JSON document into a Value
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// Keys returns the record keys in sorted order
func (v Value) Keys() []Name {
	return slices.Sorted(maps.Keys(v.rec))
}

// String returns the name of the Kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", k)
}
