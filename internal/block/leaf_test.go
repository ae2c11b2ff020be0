package block_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/stack"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

func run(
	t *testing.T, tmpl *api.Template, sc *block.Scratch,
) (block.Result, error) {
	t.Helper()
	b, err := newDispatcher().Hydrate(tmpl)
	require.NoError(t, err)
	return b.Do(newExec(), sc)
}

func TestSlotsEvaluateInDeclaredOrder(t *testing.T) {
	sc := block.NewScratch()
	tmpl := node("pair",
		api.Single("right", track("r")),
		api.Single("left", node("all",
			api.Many("items", track(1), track(2), track(3)),
		)),
	)
	res, err := run(t, tmpl, sc)
	require.NoError(t, err)

	trace, ok := sc.Get("trace")
	require.True(t, ok)
	assert.Equal(t, api.List(
		api.String("r"), api.Integer(1), api.Integer(2), api.Integer(3),
	), trace)
	assert.Equal(t, api.List(
		api.List(api.Integer(1), api.Integer(2), api.Integer(3)),
		api.String("r"),
	), res.Value)
}

func TestSignalStopsEvaluation(t *testing.T) {
	sc := block.NewScratch()
	tmpl := node("all", api.Many("items",
		track(1), node("break"), track(2),
	))
	res, err := run(t, tmpl, sc)
	require.NoError(t, err)
	assert.Equal(t, block.SignalBreak, res.Signal)

	trace, _ := sc.Get("trace")
	assert.Equal(t, api.List(api.Integer(1)), trace)
}

func TestLazyEvaluatesOnDemand(t *testing.T) {
	sc := block.NewScratch()
	tmpl := node("first",
		api.Single("a", track("a")),
		api.Single("b", track("b")),
	)
	res, err := run(t, tmpl, sc)
	require.NoError(t, err)
	assert.Equal(t, api.String("a"), res.Value)

	trace, _ := sc.Get("trace")
	assert.Equal(t, api.List(api.String("a")), trace)
}

func TestGuardContextError(t *testing.T) {
	tmpl := node("upper", api.Single("value", lit(42)))
	tmpl.Extra = api.Extra{"step": "shout"}

	_, err := run(t, tmpl, block.NewScratch())
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrInvalidArgument)
	assert.ErrorIs(t, err, block.ErrUnexpectedKind)

	fe, ok := fault.As(err)
	require.True(t, ok)
	assert.Equal(t, fault.Key{Type: "test", Action: "upper"}, fe.Key)
	assert.Equal(t, api.Extra{"step": "shout"}, fe.Extra)
	assert.Equal(t, fault.InvalidArgument{
		Slot: "value", Expected: "string", Actual: "integer",
	}, fe.Context)
	assert.Nil(t, fe.Stack)
}

func TestGuardPassesChildFaults(t *testing.T) {
	tmpl := node("pair",
		api.Single("left", node("upper", api.Single("value", lit(1)))),
	)
	_, err := run(t, tmpl, block.NewScratch())
	fe, ok := fault.As(err)
	require.True(t, ok)
	assert.Equal(t, "upper", fe.Key.Action)
}

func TestGuardWrapsUnexpectedErrors(t *testing.T) {
	_, err := run(t, node("fail"), block.NewScratch())
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrRuntime)
	assert.ErrorIs(t, err, errBoom)

	fe, ok := fault.As(err)
	require.True(t, ok)
	assert.Equal(t, "fail", fe.Key.Action)
	assert.Nil(t, fe.Context)
}

func TestGuardRecoversPanics(t *testing.T) {
	_, err := run(t, node("panic"), block.NewScratch())
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrRuntime)
	assert.ErrorIs(t, err, block.ErrPanic)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestGuardAttachesStack(t *testing.T) {
	b, err := newDispatcher().Hydrate(node("fail"))
	require.NoError(t, err)

	ec := newExec()
	ec.Stack().Push(stack.NewFrame(api.Args{"outer": 1}))
	ec.Stack().Push(stack.NewUtilFrame("util", api.Args{"x": "y"}))

	_, err = b.Do(ec, block.NewScratch())
	fe, ok := fault.As(err)
	require.True(t, ok)
	require.Len(t, fe.Stack, 1)
	assert.Equal(t, "util", fe.Stack[0]["util_id"])
}

func TestFetchRecordsInput(t *testing.T) {
	d := block.NewDispatcher()
	d.Register(testType, "echo", block.Lazy(
		func(c *block.Call) (block.Result, error) {
			if res, err := c.Fetch("value"); err != nil ||
				res.Interrupted() {
				return res, err
			}
			if _, err := c.Fetch("missing"); err != nil {
				return block.Result{}, err
			}
			assert.False(t, c.In.Has("missing"))
			s, err := c.In.String("value")
			return block.Completed(api.String(s)), err
		},
		block.One("value"), block.Optional("missing"),
	))
	d.Register(testType, "lit", block.Eval(
		func(c *block.Call) (api.Value, error) {
			return api.ValueOf(c.Literal()), nil
		},
	))

	b, err := d.Hydrate(node("echo", api.Single("value", lit("hi"))))
	require.NoError(t, err)
	res, err := b.Do(newExec(), block.NewScratch())
	require.NoError(t, err)
	assert.Equal(t, api.String("hi"), res.Value)
}
