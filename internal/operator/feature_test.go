package operator_test

import (
	"testing"

	"github.com/kode4food/blockplan/internal/assert"
	"github.com/kode4food/blockplan/internal/assert/helpers"
	"github.com/kode4food/blockplan/internal/operator"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/builder"
	"github.com/kode4food/blockplan/pkg/fault"
)

func TestValueResponse(t *testing.T) {
	as := assert.New(t)

	res := operator.ValueResponse(api.Null)
	as.Equal(200, res.StatusCode)
	as.True(res.Body.IsNull())

	res = operator.ValueResponse(api.List(api.Integer(1)))
	as.Equal(200, res.StatusCode)
	as.True(api.List(api.Integer(1)).Equal(res.Body))

	res = operator.ValueResponse(api.Record(api.Args{
		"statusCode": 404,
		"header":     map[string]any{"X-Reason": "gone", "X-Code": 7},
		"body":       map[string]any{"error": "missing"},
	}))
	as.Equal(404, res.StatusCode)
	as.Equal(map[string]string{"X-Reason": "gone", "X-Code": "7"}, res.Header)
	as.True(api.Record(api.Args{"error": "missing"}).Equal(res.Body))

	plain := api.Record(api.Args{"statusCode": "ok", "body": 1})
	res = operator.ValueResponse(plain)
	as.Equal(200, res.StatusCode)
	as.True(plain.Equal(res.Body))

	res = operator.ValueResponse(api.Record(api.Args{"statusCode": 42}))
	as.Equal(200, res.StatusCode)
}

func TestBlockFeature(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		f, err := operator.NewFeature(env.Dispatcher, &api.FeatureSpec{
			Kind:     api.FeatureBlock,
			Template: builder.Respond(202, builder.String("queued")).Template(),
		})
		as.Require.NoError(err)
		as.Equal(api.FeatureBlock, f.Kind())

		res, err := f.Do(env.NewExecution())
		as.Require.NoError(err)
		as.Equal(202, res.StatusCode)

		_, err = operator.NewFeature(env.Dispatcher, &api.FeatureSpec{
			Kind: "webhook",
		})
		as.ErrorIs(err, operator.ErrUnknownFeature)
	})
}

func TestStraySignalIsRuntimeError(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		for _, action := range []string{"break", "continue"} {
			f, err := operator.NewBlockFeature(env.Dispatcher,
				builder.NewBlock("logic-control", "sequence").WithList(
					"blocks", builder.NewBlock("loop-control", action),
				).WithExtra("id", "seq").Template(),
			)
			as.Require.NoError(err)

			_, err = f.Do(env.NewExecution())
			fe := as.Fault(err, fault.KindRuntime, "logic-control", "sequence")
			as.ErrorIs(err, operator.ErrSignalEscaped)
			as.Equal(api.Extra{"id": "seq"}, fe.Extra)
			as.Equal(fault.Signal{Signal: action, Boundary: "unit"}, fe.Context)
		}
	})
}
