package api_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/blockplan/pkg/api"
)

func TestGetValue(t *testing.T) {
	args := api.Args{
		"str":    "hello",
		"num":    float64(3),
		"nested": map[string]any{"a": true},
	}

	assert.Equal(t, api.String("hello"), args.Get("str"))
	assert.Equal(t, api.Integer(3), args.Get("num"))
	assert.Equal(t, api.KindRecord, args.Get("nested").Kind())
	assert.True(t, args.Get("missing").IsNull())
}

func TestSortedNames(t *testing.T) {
	args := api.Args{"b": 1, "c": 2, "a": 3}
	assert.Equal(t, []api.Name{"a", "b", "c"}, args.SortedNames())
}
