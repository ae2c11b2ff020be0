package block_test

import (
	"context"
	"errors"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/pkg/api"
)

const testType block.Type = "test"

var errBoom = errors.New("boom")

func newDispatcher() *block.Dispatcher {
	d := block.NewDispatcher()
	d.Register(testType, "lit", block.Eval(
		func(c *block.Call) (api.Value, error) {
			return api.ValueOf(c.Literal()), nil
		},
	))
	d.Register(testType, "track", block.Eval(
		func(c *block.Call) (api.Value, error) {
			v := api.ValueOf(c.Literal())
			trace, _ := c.Scratch.Get("trace")
			items, _ := trace.AsList()
			c.Scratch.Set("trace", api.List(append(items, v)...))
			return v, nil
		},
	))
	d.Register(testType, "pair", block.Eval(
		func(c *block.Call) (api.Value, error) {
			return api.List(c.In.Value("left"), c.In.Value("right")), nil
		},
		block.One("left"), block.Optional("right"),
	))
	d.Register(testType, "all", block.Eval(
		func(c *block.Call) (api.Value, error) {
			return c.In.Value("items"), nil
		},
		block.Many("items"),
	))
	d.Register(testType, "upper", block.Eval(
		func(c *block.Call) (api.Value, error) {
			s, err := c.In.String("value")
			if err != nil {
				return api.Null, err
			}
			return api.String(s + "!"), nil
		},
		block.One("value"),
	))
	d.Register(testType, "fail", block.Eval(
		func(*block.Call) (api.Value, error) {
			return api.Null, errBoom
		},
	))
	d.Register(testType, "panic", block.Eval(
		func(*block.Call) (api.Value, error) {
			panic("kaboom")
		},
	))
	d.Register(testType, "break", block.Eager(
		func(*block.Call) (block.Result, error) {
			return block.Break(), nil
		},
	))
	d.Register(testType, "first", block.Lazy(
		func(c *block.Call) (block.Result, error) {
			return c.Eval("a")
		},
		block.One("a"), block.Optional("b"),
	))
	return d
}

func newExec() *state.Execution {
	return state.New(context.Background(), state.Dependencies{})
}

func lit(v any) *api.Template {
	return &api.Template{Type: string(testType), Action: "lit", Value: v}
}

func track(v any) *api.Template {
	return &api.Template{Type: string(testType), Action: "track", Value: v}
}

func node(action string, slots ...*api.Slot) *api.Template {
	return &api.Template{
		Type:   string(testType),
		Action: action,
		Slots:  slots,
	}
}
