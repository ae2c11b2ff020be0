package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/blockplan/pkg/api"
)

type handle struct{ name string }

func TestValueOf(t *testing.T) {
	h := &handle{name: "db"}

	tests := []struct {
		name string
		in   any
		kind api.Kind
	}{
		{name: "nil", in: nil, kind: api.KindNull},
		{name: "string", in: "s", kind: api.KindString},
		{name: "int", in: 3, kind: api.KindInteger},
		{name: "integral_float", in: 4.0, kind: api.KindInteger},
		{name: "float", in: 4.5, kind: api.KindFloat},
		{name: "number", in: json.Number("12"), kind: api.KindInteger},
		{name: "bool", in: true, kind: api.KindBoolean},
		{name: "list", in: []any{1, "a"}, kind: api.KindList},
		{name: "map", in: map[string]any{"a": 1}, kind: api.KindRecord},
		{name: "args", in: api.Args{"a": 1}, kind: api.KindRecord},
		{name: "connector", in: h, kind: api.KindConnector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, api.ValueOf(tt.in).Kind())
		})
	}
}

func TestValueAccessors(t *testing.T) {
	s, ok := api.String("x").AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = api.Integer(1).AsString()
	assert.False(t, ok)

	i, ok := api.Float(2).AsInteger()
	assert.True(t, ok)
	assert.Equal(t, int64(2), i)

	_, ok = api.Float(2.5).AsInteger()
	assert.False(t, ok)

	f, ok := api.Integer(7).AsFloat()
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)

	h := &handle{name: "tx"}
	c, ok := api.ConnectorValue(h).AsConnector()
	assert.True(t, ok)
	assert.Same(t, h, c)

	assert.True(t, api.ConnectorValue(nil).IsNull())
}

func TestValueTruthy(t *testing.T) {
	assert.True(t, api.Boolean(true).Truthy())
	assert.False(t, api.Boolean(false).Truthy())
	assert.False(t, api.String("").Truthy())
	assert.True(t, api.String("a").Truthy())
	assert.False(t, api.Integer(0).Truthy())
	assert.False(t, api.List().Truthy())
	assert.True(t, api.Record(api.Args{"a": 1}).Truthy())
	assert.False(t, api.Null.Truthy())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, api.Integer(2).Equal(api.Float(2)))
	assert.False(t, api.Integer(2).Equal(api.String("2")))
	assert.True(t, api.ValueOf(map[string]any{"a": []any{1.0}}).Equal(
		api.Record(api.Args{"a": []any{1.0}}),
	))
	assert.True(t, api.Null.Equal(api.Null))
	assert.False(t, api.Integer(9007199254740993).Equal(
		api.Integer(9007199254740992),
	))
}

func TestValueJSON(t *testing.T) {
	v := api.Record(api.Args{
		"name": "widget",
		"tags": api.List(api.String("a"), api.Integer(1)),
	})

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"widget","tags":["a",1]}`, string(data))

	var back api.Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, api.KindRecord, back.Kind())
	assert.True(t, back.Equal(api.ValueOf(map[string]any{
		"name": "widget", "tags": []any{"a", 1.0},
	})))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "hello", api.String("hello").String())
	assert.Equal(t, "null", api.Null.String())
	assert.Equal(t, "[1,true]",
		api.List(api.Integer(1), api.Boolean(true)).String(),
	)
	assert.Equal(t, "list", api.KindList.String())
}
