package catalog_test

import (
	"context"
	"testing"

	"github.com/kode4food/blockplan/internal/assert"
	"github.com/kode4food/blockplan/internal/assert/helpers"
	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/catalog"
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/builder"
	"github.com/kode4food/blockplan/pkg/fault"
)

func forEach(items, body *builder.Block) *builder.Block {
	return node(catalog.LoopControl, catalog.LoopForEach).
		WithSlot("items", items).
		WithSlot("body", body)
}

func repeat(count int64, body *builder.Block) *builder.Block {
	return node(catalog.LoopControl, catalog.LoopRepeat).
		WithSlot("count", num(count)).
		WithSlot("body", body)
}

func loopBreak() *builder.Block {
	return node(catalog.LoopControl, catalog.LoopBreak)
}

func loopContinue() *builder.Block {
	return node(catalog.LoopControl, catalog.LoopContinue)
}

func loopItem() *builder.Block {
	return node(catalog.ShareData, catalog.ShareLoopItem)
}

func loopIndex() *builder.Block {
	return node(catalog.ShareData, catalog.ShareLoopIndex)
}

func TestForEachList(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		res, err := env.Run(t, forEach(
			builder.List(str("a"), str("b")),
			node(catalog.CommonUtil, catalog.StringConcat).
				WithList("values", loopItem(), loopIndex()),
		).Template())
		as.Completed(res, err, api.List(api.String("a0"), api.String("b1")))
	})
}

func TestForEachRecordInKeyOrder(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		res, err := env.Run(t, forEach(
			builder.Record(map[string]any{"b": 2, "a": 1, "c": 3}),
			node(catalog.CommonUtil, catalog.StringConcat).WithList(
				"values",
				node(catalog.ShareData, catalog.ShareLoopKey),
				loopItem(),
			),
		).Template())
		as.Completed(res, err, api.List(
			api.String("a1"), api.String("b2"), api.String("c3"),
		))
	})
}

func TestForEachNullAndWrongKind(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		res, err := env.Run(t, forEach(builder.Null(), loopItem()).Template())
		as.Completed(res, err, api.List())

		_, err = env.Run(t, forEach(num(3), loopItem()).Template())
		fe := as.Fault(err, fault.KindInvalidArgument,
			"loop-control", "for-each",
		)
		as.Equal("items", fe.Context.(fault.InvalidArgument).Slot)
	})
}

func TestBreakFromNestedBlockReachesLoop(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		sc := block.NewScratch()

		b := env.Hydrate(t, sequence(
			forEach(
				builder.List(num(1), num(2), num(3), num(4)),
				sequence(
					ifBlock(
						node(catalog.LogicControl, catalog.LogicEquals).
							WithSlot("left", loopItem()).
							WithSlot("right", num(3)),
						sequence(builder.Set("stopped", loopIndex()),
							loopBreak(),
						),
						nil,
					),
					loopItem(),
				),
			),
		).Template())

		res, err := b.Do(env.NewExecution(), sc)
		as.Completed(res, err, api.List(api.Integer(1), api.Integer(2)))

		v, _ := sc.Get("stopped")
		as.Equal(api.Integer(2), v)

		_, inLoop := sc.Loop()
		as.False(inLoop)
	})
}

func TestContinueSkipsIteration(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		res, err := env.Run(t, repeat(4, sequence(
			ifBlock(
				node(catalog.LogicControl, catalog.LogicEquals).
					WithSlot("left", loopIndex()).
					WithSlot("right", num(1)),
				loopContinue(), nil,
			),
			loopIndex(),
		)).Template())
		as.Completed(res, err, api.List(
			api.Integer(0), api.Integer(2), api.Integer(3),
		))
	})
}

func TestRespondPropagatesThroughLoop(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		res, err := env.Run(t,
			repeat(3, builder.Respond(202, loopIndex())).Template(),
		)
		as.Signal(res, err, block.SignalRespond)
		as.Equal(202, res.Response.StatusCode)
		as.True(api.Integer(0).Equal(res.Response.Body))
	})
}

func TestNestedLoops(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		res, err := env.Run(t, repeat(2, sequence(
			builder.Set("outer", loopIndex()),
			repeat(2, node(catalog.CommonUtil, catalog.StringConcat).
				WithList("values", builder.Get("outer"), loopIndex()),
			),
		)).Template())
		as.Completed(res, err, api.List(
			api.List(api.String("00"), api.String("01")),
			api.List(api.String("10"), api.String("11")),
		))
	})
}

func TestLoopLimits(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		limits := helpers.WithLimits(state.Limits{MaxLoopIterations: 2})

		_, err := env.Run(t, repeat(3, builder.Null()).Template(), limits)
		as.ErrorIs(err, catalog.ErrLoopLimit)

		_, err = env.Run(t, forEach(
			builder.List(num(1), num(2), num(3)), builder.Null(),
		).Template(), limits)
		as.ErrorIs(err, catalog.ErrLoopLimit)

		_, err = env.Run(t, repeat(-1, builder.Null()).Template())
		as.Fault(err, fault.KindInvalidArgument, "loop-control", "repeat")
	})
}

func TestLoopStopsOnCancellation(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := env.Run(t, repeat(2, builder.Null()).Template(),
			helpers.WithContext(ctx),
		)
		as.ErrorIs(err, context.Canceled)
	})
}

func TestLoopAccessorsOutsideLoop(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)

		_, err := env.Run(t, loopItem().Template())
		as.Fault(err, fault.KindRuntime, "share-data", "loop-item")
		as.ErrorIs(err, catalog.ErrNotInLoop)

		_, err = env.Run(t, loopIndex().Template())
		as.ErrorIs(err, catalog.ErrNotInLoop)
	})
}

func TestStrayBreakIsASignal(t *testing.T) {
	helpers.WithTestEnv(t, func(env *helpers.TestEnv) {
		as := assert.New(t)
		res, err := env.Run(t, sequence(loopBreak(), str("x")).Template())
		as.Signal(res, err, block.SignalBreak)
	})
}
