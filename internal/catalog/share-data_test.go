package catalog_test

import (
	"testing"

	"github.com/kode4food/blockplan/internal/assert"
	"github.com/kode4food/blockplan/internal/assert/helpers"
	"github.com/kode4food/blockplan/internal/catalog"
	"github.com/kode4food/blockplan/internal/stack"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/builder"
)

func TestSetAndGet(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		res, err := env.Run(t, sequence(
			builder.Set("greeting", str("hi")),
			builder.Get("greeting"),
		).Template())
		as.Completed(res, err, api.String("hi"))

		res, err = env.Run(t, builder.Get("missing").Template())
		as.Completed(res, err, api.Null)
	})
}

func TestReturnData(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		tmpl := node(catalog.ShareData, catalog.ShareReturnData).Template()

		res, err := env.Run(t, tmpl)
		as.Completed(res, err, api.Null)

		ec := env.NewExecution()
		resp := api.NewResponse(200, api.String("prior"))
		resp.Header["X-Unit"] = "u1"
		ec.SetReturnData(resp)

		res, err = env.RunIn(t, ec, tmpl)
		as.Completed(res, err, api.Record(api.Args{
			"statusCode": api.Integer(200),
			"header":     api.Record(api.Args{"X-Unit": api.String("u1")}),
			"body":       api.String("prior"),
		}))
	})
}

func TestFrameValue(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		tmpl := node(catalog.ShareData, catalog.ShareFrameValue).
			WithSlot("name", str("tenant")).Template()

		ec := env.NewExecution()
		ec.Stack().Push(stack.NewFrame(api.Args{"tenant": "acme"}))

		res, err := env.RunIn(t, ec, tmpl)
		as.Completed(res, err, api.String("acme"))

		res, err = env.Run(t, tmpl)
		as.Completed(res, err, api.Null)
	})
}
