package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/blockplan/pkg/api"
)

const nestedTemplate = `{
	"type": "logic-control",
	"action": "sequence",
	"extra": {"label": "main"},
	"template": {
		"zeta": {"type": "primitive", "action": "string", "value": "z"},
		"alpha": [
			{"type": "primitive", "action": "integer", "value": 1},
			{"type": "primitive", "action": "boolean", "value": false}
		],
		"mid": {"type": "share-data", "action": "loop-index"}
	}
}`

func TestTemplateSlotOrder(t *testing.T) {
	var tmpl api.Template
	require.NoError(t, json.Unmarshal([]byte(nestedTemplate), &tmpl))

	assert.Equal(t, "logic-control", tmpl.Type)
	assert.Equal(t, "sequence", tmpl.Action)
	assert.Equal(t, api.Extra{"label": "main"}, tmpl.Extra)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, tmpl.Slots.Names())

	alpha, ok := tmpl.Slots.Get("alpha")
	require.True(t, ok)
	assert.True(t, alpha.List)
	assert.Len(t, alpha.Templates, 2)

	zeta, ok := tmpl.Slots.Get("zeta")
	require.True(t, ok)
	assert.False(t, zeta.List)
	assert.Equal(t, "z", zeta.Templates[0].Value)

	_, ok = tmpl.Slots.Get("missing")
	assert.False(t, ok)
}

func TestTemplateJSONRoundTrip(t *testing.T) {
	var tmpl api.Template
	require.NoError(t, json.Unmarshal([]byte(nestedTemplate), &tmpl))

	data, err := json.Marshal(&tmpl)
	require.NoError(t, err)
	assert.JSONEq(t, nestedTemplate, string(data))

	var again api.Template
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, tmpl, again)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, again.Slots.Names())
}

func TestTemplateEmptyList(t *testing.T) {
	tmpl := &api.Template{
		Type:   "primitive",
		Action: "list",
		Slots:  api.Slots{api.Many("items")},
	}

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"primitive","action":"list","template":{"items":[]}}`,
		string(data),
	)
}

func TestTemplateBadSlots(t *testing.T) {
	var tmpl api.Template
	err := json.Unmarshal(
		[]byte(`{"type":"a","action":"b","template":{"x":"nope"}}`), &tmpl,
	)
	assert.ErrorIs(t, err, api.ErrSlotBadValue)

	err = json.Unmarshal(
		[]byte(`{"type":"a","action":"b","template":[1]}`), &tmpl,
	)
	assert.ErrorIs(t, err, api.ErrSlotNotObject)
}

func TestTemplateKeepsLargeIntegers(t *testing.T) {
	const doc = `{
		"type": "primitive",
		"action": "integer",
		"extra": {"id": 9007199254740995},
		"value": 9007199254740993
	}`

	var tmpl api.Template
	require.NoError(t, json.Unmarshal([]byte(doc), &tmpl))
	assert.Equal(t, json.Number("9007199254740993"), tmpl.Value)
	assert.Equal(t, api.Integer(9007199254740993), api.ValueOf(tmpl.Value))

	data, err := json.Marshal(&tmpl)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"value":9007199254740993`)
	assert.Contains(t, string(data), `"id":9007199254740995`)
	assert.JSONEq(t, doc, string(data))
}
