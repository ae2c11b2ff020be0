package catalog_test

import (
	"testing"

	"github.com/kode4food/blockplan/internal/assert"
	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/catalog"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/builder"
	"github.com/kode4food/blockplan/pkg/fault"
)

func TestCatalogListing(t *testing.T) {
	as := assert.New(t)
	d := catalog.NewDispatcher()

	as.Equal(map[string][]string{
		"primitive": {
			"boolean", "integer", "list", "null", "record", "string",
		},
		"common-util": {
			"endecode-base64-decode", "endecode-base64-encode",
			"endecode-url-decode", "endecode-url-encode",
			"json-decode", "json-encode", "json-path", "sleep",
			"string-concat", "uuid-generate",
		},
		"logic-control": {"equals", "if", "not", "sequence"},
		"loop-control":  {"break", "continue", "for-each", "repeat"},
		"share-data": {
			"frame-value", "get", "loop-index", "loop-item", "loop-key",
			"return-data", "set",
		},
		"protocol-option": {
			"request-body", "request-header", "request-method",
			"request-path", "request-query", "respond",
		},
		"storage-statement": {
			"redis-delete", "redis-get", "redis-set",
			"transaction-begin", "transaction-commit",
			"transaction-rollback",
		},
		"stream": {"file-delete", "file-exists", "file-read", "file-write"},
		"access-control": {
			"account-id", "has-role", "rate-limit", "require-account",
		},
		"custom-util": {"invoke"},
		"script":      {"ale", "lua"},
	}, d.Catalog())
}

func TestRegisterTwicePanics(t *testing.T) {
	as := assert.New(t)
	d := catalog.NewDispatcher()
	as.Panics(func() { catalog.Register(d) })
}

func TestRoundTripEveryAction(t *testing.T) {
	d := catalog.NewDispatcher()

	cases := map[string]*builder.Block{
		"string":  str("hi"),
		"integer": num(3),
		"boolean": builder.Boolean(true),
		"record":  builder.Record(map[string]any{"a": "b"}),
		"null":    builder.Null(),
		"list":    builder.List(str("a"), num(1)),
		"empty":   builder.List(),
		"base64": node(catalog.CommonUtil, catalog.Base64Encode).
			WithSlot("value", str("x")),
		"concat": node(catalog.CommonUtil, catalog.StringConcat).
			WithList("values", str("a"), str("b")),
		"json-path": node(catalog.CommonUtil, catalog.JSONPath).
			WithSlot("document", str(`{}`)).
			WithSlot("path", str("a")),
		"uuid": node(catalog.CommonUtil, catalog.UUIDGenerate),
		"if": node(catalog.LogicControl, catalog.LogicIf).
			WithSlot("condition", builder.Boolean(true)).
			WithSlot("then", str("a")).
			WithSlot("else", str("b")),
		"sequence": node(catalog.LogicControl, catalog.LogicSequence).
			WithList("blocks", str("a"), builder.Get("x")),
		"for-each": node(catalog.LoopControl, catalog.LoopForEach).
			WithSlot("items", builder.List()).
			WithSlot("body", node(catalog.LoopControl, catalog.LoopBreak)),
		"set": builder.Set("x", num(1)),
		"respond": builder.Respond(200, str("ok")).
			WithSlot("header", builder.Record(map[string]any{"a": "b"})),
		"redis-set": node(catalog.StorageStatement, catalog.RedisSet).
			WithSlot("key", str("k")).
			WithSlot("value", num(1)).
			WithSlot("ttl", num(10)),
		"file-write": node(catalog.Stream, catalog.FileWrite).
			WithSlot("path", str("a.txt")).
			WithSlot("content", str("x")),
		"rate-limit": node(catalog.AccessControl, catalog.RateLimit).
			WithSlot("key", str("k")).
			WithSlot("limit", num(1)).
			WithSlot("window", num(1000)),
		"invoke": builder.Invoke("u", builder.Record(map[string]any{})),
		"lua": node(catalog.Script, catalog.ScriptLua).
			WithSlot("source", str("return 1")),
		"ale": node(catalog.Script, catalog.ScriptAle).
			WithSlot("source", str("(+ 1 2)")),
		"extra": str("x").WithExtra("note", "kept"),
	}

	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			as := assert.New(t)
			as.RoundTrip(d, b.Template())
		})
	}
}

func TestUnknownActionFailsHydration(t *testing.T) {
	as := assert.New(t)
	d := catalog.NewDispatcher()

	_, err := d.Hydrate(
		node(catalog.Primitive, "does-not-exist").
			WithExtra("id", "n1").Template(),
	)
	fe := as.Fault(err, fault.KindDispatch, "primitive", "does-not-exist")
	as.ErrorIs(err, block.ErrUnknownAction)
	as.Equal(api.Extra{"id": "n1"}, fe.Extra)

	_, err = d.Hydrate(
		builder.List(str("a"), node(catalog.CommonUtil, "nope")).Template(),
	)
	as.Fault(err, fault.KindDispatch, "common-util", "nope")

	_, err = d.Hydrate(node("unknown", "x").Template())
	as.ErrorIs(err, block.ErrUnknownType)
}

func TestSlotValidationAtHydration(t *testing.T) {
	as := assert.New(t)
	d := catalog.NewDispatcher()

	_, err := d.Hydrate(node(catalog.LogicControl, catalog.LogicIf).
		WithSlot("condition", builder.Boolean(true)).Template(),
	)
	as.ErrorIs(err, block.ErrMissingSlot)

	_, err = d.Hydrate(builder.String("x").
		WithSlot("bogus", builder.Null()).Template(),
	)
	as.ErrorIs(err, block.ErrUnknownSlot)

	_, err = d.Hydrate(node(catalog.LogicControl, catalog.LogicSequence).
		WithSlot("blocks", str("a")).Template(),
	)
	as.ErrorIs(err, block.ErrSlotArity)
}
